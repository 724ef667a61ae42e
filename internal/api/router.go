// internal/api/router.go
package api

import (
	"net/http"
	"time"

	"loan-approval-workers/internal/common/config"
	"loan-approval-workers/internal/common/logger"
	"loan-approval-workers/internal/inference"
	"loan-approval-workers/internal/prediction"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ModelDescriber is satisfied by *inference.Pipeline.
type ModelDescriber interface {
	Describe() inference.ModelInfo
}

type Options struct {
	Config     config.HTTPConfig
	Prediction *prediction.Service
	Model      ModelDescriber
	// ArtifactCount is reported by /ready.
	ArtifactCount int
	Gatherer      prometheus.Gatherer
	Logger        logger.Logger
}

// NewRouter wires the prediction endpoints, health checks and /metrics.
func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	timeout := time.Duration(opts.Config.RequestTimeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	origins := opts.Config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	h := &handlers{
		prediction:    opts.Prediction,
		model:         opts.Model,
		artifactCount: opts.ArtifactCount,
		logger:        log,
	}

	r.Get("/health", h.health)
	r.Get("/ready", h.ready)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/predictions", h.predict)
		r.Get("/model", h.describeModel)
	})

	return r
}

// NewServer returns an http.Server for the configured address.
func NewServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	addr := cfg.Address
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Info("HTTP request", map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"durationMs": time.Since(start).Milliseconds(),
				"requestId":  middleware.GetReqID(r.Context()),
				"remoteAddr": r.RemoteAddr,
			})
		})
	}
}
