package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/aaronzipp/word-impostor/internal/config"
	"github.com/aaronzipp/word-impostor/internal/dispatch"
	"github.com/aaronzipp/word-impostor/internal/game"
	"github.com/aaronzipp/word-impostor/internal/handlers"
	"github.com/aaronzipp/word-impostor/internal/sse"
	"github.com/aaronzipp/word-impostor/internal/store"
)

func main() {
	cfg := config.FromEnv()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	if cfg.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	ctx := context.Background()

	var repo store.Repository
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("connecting to database")
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("preparing database schema")
		}
		logger.Info().Msg("using postgres store")
		repo = pg
	} else {
		logger.Info().Msg("DATABASE_URL not set, using in-memory store")
		repo = store.NewMemoryStore()
	}

	hub := sse.NewHub()
	dispatcher := dispatch.New(repo, hub, game.DefaultWords, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(handlers.RequestLogger(logger))

	h := &handlers.Handler{
		Dispatcher: dispatcher,
		Hub:        hub,
		BaseURL:    cfg.PublicBaseURL,
		Log:        logger,
	}
	h.RegisterRoutes(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// No write timeout: the SSE event streams stay open indefinitely.
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info().Str("addr", cfg.Addr).Msg("server starting")
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
