package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo-api/internal/auth"
	"todo-api/internal/cache"
	"todo-api/internal/config"
	"todo-api/internal/database"
	"todo-api/internal/logging"
	"todo-api/internal/routes"
	"todo-api/internal/services"
	"todo-api/internal/store/filestore"
	"todo-api/internal/store/sqlstore"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	shutdownTimeout = 10 * time.Second
	janitorInterval = time.Minute
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logging.Setup(cfg.Env, cfg.LogLevel)
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
		}); err != nil {
			log.WithError(err).Warn("sentry init failed")
		} else {
			defer sentry.Flush(2 * time.Second)
			log.Info("sentry enabled")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := buildDeps(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialise store")
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           routes.SetupRoutes(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":  cfg.Addr,
			"store": cfg.StoreDriver,
			"auth":  cfg.AuthEnabled(),
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server exited")
}

// buildDeps opens the configured store and wires the services on top of it
func buildDeps(ctx context.Context, cfg *config.Config, log *logrus.Logger) (routes.Deps, func(), error) {
	deps := routes.Deps{Config: cfg, Log: log}

	if cfg.StoreDriver == config.DriverFile {
		store := filestore.New(cfg.TasksFile)
		deps.Tasks = services.NewTaskService(store, log)
		log.WithField("path", cfg.TasksFile).Info("using file store, authentication disabled")
		return deps, func() {}, nil
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		return deps, nil, err
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			log.WithError(err).Warn("closing database")
		}
	}

	store := sqlstore.New(db)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.SessionTTL)
	sessions := auth.NewSessionManager(issuer, cache.NewTTLCache[string, auth.Session](), log)
	sessions.StartJanitor(ctx, janitorInterval)

	authSvc := services.NewAuthService(store, sessions, log)
	users := services.NewUserService(store, sessions, authSvc, log)

	if cfg.AdminEmail != "" {
		if err := users.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			cleanup()
			return deps, nil, err
		}
		log.WithField("email", cfg.AdminEmail).Info("admin account ready")
	}

	deps.Tasks = services.NewTaskService(store, log)
	deps.Auth = authSvc
	deps.Users = users
	deps.Sessions = sessions
	return deps, cleanup, nil
}
