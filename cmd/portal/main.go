package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/condominio/portal/internal/api"
	"github.com/condominio/portal/internal/api/middleware"
	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/ports"
	"github.com/condominio/portal/internal/core/service"
	"github.com/condominio/portal/internal/infrastructure/backend"
	mongostore "github.com/condominio/portal/internal/infrastructure/db/mongo"
	redisstore "github.com/condominio/portal/internal/infrastructure/db/redis"
	"github.com/condominio/portal/internal/infrastructure/memory"
	"github.com/condominio/portal/internal/infrastructure/queue"
	"github.com/condominio/portal/internal/pkg/config"
	"github.com/condominio/portal/pkg/logger"
)

func main() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic("load config: " + err.Error())
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "condominio-portal",
	})
	log.Info().
		Str("env", cfg.Env).
		Str("session_store", cfg.Session.Store).
		Msg("starting portal")

	storage, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("session storage")
	}
	defer closeStorage()

	client := backend.NewClient(backend.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout}, log)

	dispatcher := queue.NewLogoutDispatcher(cfg.LogoutWorkers, client, log)
	dispatcher.Start(ctx)

	sessions := service.NewSessions(storage, client, dispatcher, cfg.Session.TTL, log)

	e, err := api.NewRouter(api.Deps{
		Sessions: sessions,
		Cookie:   middleware.NewSessionCookie(cfg.Session.Secret, sessions.TTL(), cfg.Session.CookieSecure),
		Backend:  client,
		Storage:  storage,
		Sections: domain.Sections,
		Log:      log,

		CookieSecure: cfg.Session.CookieSecure,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build router")
	}
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	stop()

	log.Info().Msg("portal stopped")
}

// openStorage connects the session storage selected by SESSION_STORE.
func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.SessionStorage, func(), error) {
	switch cfg.Session.Store {
	case config.StoreMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		storage := mongostore.NewSessionStorage(db)
		if err := storage.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return storage, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("mongo disconnect")
			}
		}, nil

	case config.StoreRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewSessionStorage(client), func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("redis close")
			}
		}, nil

	default:
		log.Warn().Msg("using in-memory session storage; sessions are lost on restart")
		return memory.NewSessionStorage(), func() {}, nil
	}
}
