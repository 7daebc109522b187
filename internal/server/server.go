package server

import (
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/dialspace/dialspace/internal/config"
	"github.com/dialspace/dialspace/internal/metrics"
)

// New creates a configured HTTP server exposing the WebSocket endpoint, the
// read-only REST surface, and Prometheus metrics.
func New(cfg config.Config, log *zap.Logger, router *Router, registry *Registry, sessions *SessionManager) *http.Server {
	mux := http.NewServeMux()
	h := &Handlers{
		Cfg:       cfg,
		Log:       log,
		Router:    router,
		Registry:  registry,
		Sessions:  sessions,
		StartTime: time.Now(),
	}

	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/rooms", h.ListRooms)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /ws", h.HandleWS)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllow,
		AllowedMethods: []string{http.MethodGet},
	})
	handler := loggingMiddleware(log, c.Handler(mux))

	return &http.Server{
		Addr:        cfg.Addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
}

func loggingMiddleware(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}
