package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/de-tools/pos-atlas/pkg/handlers/dashboard"
	posatlasmiddleware "github.com/de-tools/pos-atlas/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
	onShutdown      func(ctx context.Context)
}

type Dependencies struct {
	Dashboard handlers.Dashboard
	Sessions  handlers.Sessions
	Logger    zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	AllowedOrigins  []string
	Dependencies    Dependencies
	// OnShutdown runs after the listener stops, before Start returns.
	OnShutdown func(ctx context.Context)
}

func ConfigureRouter(config Config) *chi.Mux {
	logger := config.Dependencies.Logger
	h := handlers.NewHandler(config.Dependencies.Dashboard, config.Dependencies.Sessions, config.MaxUploadBytes)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(posatlasmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	router.Get("/healthz", handlers.Health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Route("/sessions/{session}", func(r chi.Router) {
			r.Delete("/", h.DeleteSession)
			r.Put("/dataset", h.ReplaceDataset)
			r.Get("/items", h.ListItems)
			r.Get("/views/{view}", h.GetView)
		})
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)
	logger := config.Dependencies.Logger

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router:          router,
		logger:          &logger,
		shutdownTimeout: timeout,
		onShutdown:      config.OnShutdown,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if w.onShutdown != nil {
			w.onShutdown(w.logger.WithContext(ctx))
		}

		if err != nil {
			return err
		}
	}

	return nil
}
