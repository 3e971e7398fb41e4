package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/PandeyAnukrati/Carti/internal/assistant"
	"github.com/PandeyAnukrati/Carti/internal/catalog"
	"github.com/PandeyAnukrati/Carti/internal/config"
	"github.com/PandeyAnukrati/Carti/internal/handler"
	"github.com/PandeyAnukrati/Carti/internal/identity"
	"github.com/PandeyAnukrati/Carti/internal/observability/logging"
	"github.com/PandeyAnukrati/Carti/internal/service/ai"
	"github.com/PandeyAnukrati/Carti/internal/session"
	"github.com/PandeyAnukrati/Carti/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded, continuing with system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// Product catalog
	cat, err := catalog.LoadFile(cfg.Catalog.FixturePath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Catalog.FixturePath).Msg("catalog fixture unavailable, serving empty catalog")
	} else {
		log.Info().Int("products", cat.Len()).Msg("catalog loaded")
	}

	// Transcript store
	var transcripts store.Store
	if cfg.Store.SQLitePath != "" {
		sqlite, err := store.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("sqlite store unavailable, transcripts will not survive restarts")
			transcripts = store.NewMemoryStore()
		} else {
			defer sqlite.Close()
			transcripts = sqlite
		}
	} else {
		transcripts = store.NewMemoryStore()
	}

	// Answer generation (optional: the widget degrades to failure notices
	// when the model is not configured)
	var generator ai.Generator
	if cfg.AI.Enabled() {
		svc, err := ai.NewService(ctx, cat, cfg.AI, logging.WithComponent("ai"))
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize answer generation, continuing without it")
		} else {
			generator = svc
			log.Info().Msg("answer generation initialized")
		}
	} else {
		log.Info().Msg("model credentials not configured, skipping answer generation")
	}

	// Widget session manager, pointed at the assistant endpoint
	client := assistant.NewHTTPClient(cfg.Assistant.BaseURL, &http.Client{Timeout: 60 * time.Second})
	registry := session.NewRegistry(transcripts, client, logging.WithComponent("session"))

	var verifier identity.Verifier
	if len(cfg.Auth.StaticTokens) > 0 {
		verifier = identity.StaticVerifier(cfg.Auth.StaticTokens)
	}

	router := handler.NewRouter(cat, registry, generator, verifier, logging.WithComponent("http"))

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("Carti assistant backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
