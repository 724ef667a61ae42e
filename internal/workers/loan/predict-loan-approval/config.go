// internal/workers/loan/predict-loan-approval/config.go
package predictloanapproval

import (
	"fmt"
	"time"

	"loan-approval-workers/internal/common/camunda"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	// Retry applies to sending the job result back to the broker.
	Retry *camunda.RetryConfig `mapstructure:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 10,
		Timeout:       10 * time.Second,
		Retry:         camunda.DefaultRetryConfig,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	return nil
}
