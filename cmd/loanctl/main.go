// cmd/loanctl/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"loan-approval-workers/internal/common/config"
	"loan-approval-workers/internal/common/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli carries state shared by the subcommands of one invocation.
type cli struct {
	cfgFile string
	cfg     *config.Config
	log     logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "loanctl",
		Short: "Operate the loan approval model",
		Long: `loanctl scores applicants against the trained loan model, verifies and
publishes model artifacts, and validates the activity registry.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.initConfig,
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default: ./configs/config.yaml)")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("backend", "", "artifact store: file, redis, postgres or elasticsearch")
	root.PersistentFlags().String("artifacts-dir", "", "directory of the file artifact store")

	_ = viper.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("artifacts.backend", root.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("artifacts.dir", root.PersistentFlags().Lookup("artifacts-dir"))

	root.AddCommand(c.predictCmd())
	root.AddCommand(c.artifactsCmd())
	root.AddCommand(c.registryCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (c *cli) initConfig(_ *cobra.Command, _ []string) error {
	var err error
	if c.cfgFile != "" {
		c.cfg, err = config.LoadFromFile(c.cfgFile)
	} else {
		c.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.log = logger.NewStructured(c.cfg.Logging.Level, "console")
	return nil
}
