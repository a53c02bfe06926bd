package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"3tcapital/ms_numeracion_core/internal/infrastructure/config"
	httperrors "3tcapital/ms_numeracion_core/internal/infrastructure/http"
	"3tcapital/ms_numeracion_core/internal/infrastructure/http/middleware"
)

// SerialHandler serves the serial-setting and issuance endpoints.
type SerialHandler interface {
	ListSettings(w http.ResponseWriter, r *http.Request)
	CreateSetting(w http.ResponseWriter, r *http.Request)
	GetSetting(w http.ResponseWriter, r *http.Request)
	UpdateSetting(w http.ResponseWriter, r *http.Request)
	DeleteSetting(w http.ResponseWriter, r *http.Request)
	PreviewDraft(w http.ResponseWriter, r *http.Request)
	PreviewSetting(w http.ResponseWriter, r *http.Request)
	ListIssues(w http.ResponseWriter, r *http.Request)
	IssueNext(w http.ResponseWriter, r *http.Request)
}

// Server wraps the HTTP server and its router.
type Server struct {
	log             *slog.Logger
	httpServer      *http.Server
	auth            *middleware.JWTAuthenticator
	shutdownTimeout time.Duration
}

// Options groups the dependencies needed to build the server.
type Options struct {
	Config        config.AppConfig
	Logger        *slog.Logger
	HealthHandler http.Handler
	SerialHandler SerialHandler
	// Authenticator is optional; when nil requests are not authenticated.
	Authenticator *middleware.JWTAuthenticator
}

// New builds the router and the underlying http.Server.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.HealthHandler == nil {
		return nil, errors.New("health handler is required")
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(chimw.Recoverer)
	if opts.Authenticator != nil {
		r.Use(opts.Authenticator.Middleware)
	}
	r.Use(middleware.RequestTimeout(opts.Config.HTTP.RequestTimeout))

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, http.StatusMethodNotAllowed, "Método no permitido", []string{"El método HTTP no está soportado para este recurso"}, opts.Logger)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, http.StatusNotFound, "Recurso no encontrado", []string{"La ruta solicitada no existe"}, opts.Logger)
	})

	r.Method(http.MethodGet, "/health", opts.HealthHandler)

	if opts.SerialHandler != nil {
		h := opts.SerialHandler
		admin := middleware.RequireScope(opts.Config.Auth.AdminScope, opts.Logger)
		r.Route("/api/serial-settings", func(r chi.Router) {
			r.Get("/", h.ListSettings)
			r.With(admin).Post("/", h.CreateSetting)
			r.Post("/preview", h.PreviewDraft)
			r.Get("/{id}", h.GetSetting)
			r.With(admin).Patch("/{id}", h.UpdateSetting)
			r.With(admin).Delete("/{id}", h.DeleteSetting)
			r.Get("/{id}/preview", h.PreviewSetting)
			r.Get("/{id}/issues", h.ListIssues)
		})
		r.Post("/api/serial-numbers/issue", h.IssueNext)
	} else {
		unavailable := serviceUnavailable(opts.Logger)
		r.Handle("/api/serial-settings", unavailable)
		r.Handle("/api/serial-settings/*", unavailable)
		r.Handle("/api/serial-numbers/*", unavailable)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Config.HTTP.Port),
		Handler:      r,
		ReadTimeout:  opts.Config.HTTP.ReadTimeout,
		WriteTimeout: opts.Config.HTTP.WriteTimeout,
		IdleTimeout:  opts.Config.HTTP.IdleTimeout,
	}

	return &Server{
		log:             opts.Logger,
		httpServer:      srv,
		auth:            opts.Authenticator,
		shutdownTimeout: opts.Config.HTTP.ShutdownTimeout,
	}, nil
}

// Run starts the server and blocks until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server started", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutting down HTTP server")
		timeout := s.shutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.auth != nil {
		s.auth.Close()
	}
}

func serviceUnavailable(log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, http.StatusServiceUnavailable, "Servicio no disponible", []string{"El servicio de numeración no está configurado"}, log)
	})
}
