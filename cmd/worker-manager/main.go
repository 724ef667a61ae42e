// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"loan-approval-workers/internal/alerts"
	"loan-approval-workers/internal/api"
	"loan-approval-workers/internal/artifacts"
	"loan-approval-workers/internal/common/camunda"
	"loan-approval-workers/internal/common/config"
	"loan-approval-workers/internal/common/logger"
	"loan-approval-workers/internal/common/observability"
	"loan-approval-workers/internal/inference"
	"loan-approval-workers/internal/prediction"

	predictloanapproval "loan-approval-workers/internal/workers/loan/predict-loan-approval"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// startup aborts the process on fatal errors after alerting on-call.
type startup struct {
	ctx      context.Context
	log      *zap.Logger
	notifier *alerts.Notifier
	cleanup  []func()
	exit     func(code int)
}

// onExit registers f to run if startup fails. Deferred calls do not run
// after os.Exit, so resources opened during startup are released here.
func (s *startup) onExit(f func()) {
	s.cleanup = append(s.cleanup, f)
}

func (s *startup) fail(stage string, err error) {
	s.log.Error("startup failed", zap.String("stage", stage), zap.Error(err))
	if s.notifier != nil {
		if nErr := s.notifier.Notify(s.ctx, alerts.StartupFailure(stage, err)); nErr != nil {
			s.log.Error("failed to deliver startup alert", zap.Error(nErr))
		}
	}
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
	_ = s.log.Sync()

	exit := s.exit
	if exit == nil {
		exit = os.Exit
	}
	exit(1)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting loan approval worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("artifactBackend", cfg.Artifacts.Backend),
	)

	obsOpts := []observability.Option{observability.WithSampleRatio(cfg.Tracing.SampleRatio)}
	if cfg.Tracing.Enabled && cfg.Tracing.JaegerEndpoint != "" {
		obsOpts = append(obsOpts, observability.WithJaeger(cfg.Tracing.JaegerEndpoint))
	}
	obs := observability.New(cfg.App.Name, obsOpts...)
	defer obs.Shutdown()

	ctx := context.Background()

	notifier, err := alerts.New(ctx, cfg.Alerts, cfg.App.Name, log)
	if err != nil {
		zapLog.Warn("alerting unavailable, continuing with log-only alerts", zap.Error(err))
		notifier = alerts.NewWithClients(config.AlertsConfig{}, cfg.App.Name, nil, nil, log)
	}
	boot := &startup{ctx: ctx, log: zapLog, notifier: notifier}
	boot.onExit(obs.Shutdown)

	// --- Artifact store (connection retried, loading is not) ---
	var (
		store       artifacts.ReadWriter
		storeCloser io.Closer
	)
	err = retryWithBackoff(func() error {
		var err error
		store, storeCloser, err = artifacts.Open(ctx, cfg)
		return err
	}, 10, 2*time.Second, zapLog, "Artifact store connection")
	if err != nil {
		boot.fail("artifact-store", err)
	}
	defer storeCloser.Close()
	boot.onExit(func() { _ = storeCloser.Close() })

	// --- Model ---
	names := artifacts.NamesFromConfig(cfg.Artifacts.Names)
	art, err := artifacts.NewLoader(store, names, log).LoadAll(ctx)
	if err != nil {
		boot.fail("artifact-load", err)
	}
	pipeline, err := inference.NewPipeline(art)
	if err != nil {
		boot.fail("pipeline", err)
	}
	zapLog.Info("Loan model ready",
		zap.String("classifierKind", pipeline.Describe().ClassifierKind),
		zap.Int("artifacts", len(names.All())),
	)

	predictionService := prediction.NewService(prediction.ServiceDependencies{
		Predictor:     pipeline,
		Observability: obs,
		Logger:        log,
	})

	// --- Zeebe worker ---
	var (
		camundaClient *camunda.Client
		handler       *predictloanapproval.Handler
	)
	if config.IsWorkerEnabled(cfg, predictloanapproval.TaskType) {
		err = retryWithBackoff(func() error {
			var err error
			camundaClient, err = camunda.NewClientWithConfig(camunda.ClientConfigFromAppConfig(cfg.Camunda))
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			boot.fail("zeebe", err)
		}
		zapLog.Info("Zeebe client connected successfully")
		boot.onExit(func() { _ = camundaClient.Close() })

		handler, err = predictloanapproval.NewHandler(predictloanapproval.HandlerOptions{
			AppConfig:     cfg,
			Camunda:       camundaClient,
			Prediction:    predictionService,
			Observability: obs,
			Logger:        log,
		})
		if err != nil {
			boot.fail("worker", err)
		}
		if err := handler.Register(); err != nil {
			boot.fail("worker", err)
		}
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", predictloanapproval.TaskType))
	}

	// --- HTTP API, health and metrics ---
	var server *http.Server
	if cfg.HTTP.Enabled {
		server = api.NewServer(cfg.HTTP, api.NewRouter(api.Options{
			Config:        cfg.HTTP,
			Prediction:    predictionService,
			Model:         pipeline,
			ArtifactCount: len(names.All()),
			Gatherer:      prometheus.DefaultGatherer,
			Logger:        log,
		}))
		go func() {
			zapLog.Info("HTTP server listening", zap.String("address", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zapLog.Error("HTTP server failed", zap.Error(err))
			}
		}()
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error shutting down HTTP server", zap.Error(err))
		}
	}
	if handler != nil {
		handler.Close()
	}
	if camundaClient != nil {
		if err := camundaClient.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Worker manager stopped gracefully")
}
