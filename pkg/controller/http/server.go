package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/abcbank/voxteller/pkg/usecase"
	"github.com/abcbank/voxteller/pkg/utils/logging"
	"github.com/abcbank/voxteller/pkg/utils/safe"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	router         *chi.Mux
	uc             *usecase.UseCases
	metricsHandler http.Handler
}

type Options func(*Server)

// WithMetricsHandler mounts a metrics endpoint at /metrics
func WithMetricsHandler(handler http.Handler) Options {
	return func(s *Server) {
		s.metricsHandler = handler
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsHandler != nil {
		r.Get("/metrics", s.metricsHandler.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Post("/", s.startSession)
			r.Get("/", s.listSessions)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Post("/end", s.endSession)
				r.Get("/turns", s.listTurns)
				r.Post("/chat", s.chatTurn)
			})
		})
		r.Route("/config", func(r chi.Router) {
			r.Get("/", s.getConfig)
			r.Put("/", s.putConfig)
		})
	})

	// Persistent-connection transport
	r.Get("/ws/call/{sessionID}", s.handleCall)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
