package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"leviathan-server/internal/config"
	"leviathan-server/internal/jwt"
	"leviathan-server/internal/mux"
	"leviathan-server/pkg/chain"
	"leviathan-server/pkg/db"
	"leviathan-server/pkg/launchpad"
	"leviathan-server/pkg/ledger"
	"leviathan-server/pkg/prize"
	"leviathan-server/pkg/statesync"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10
const shutdownTimeout = time.Second * 15
const sessionTTL = time.Hour * 24

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()
	loadDotEnv()
	setupLogger()

	// fail fast
	if err := jwt.LoadPublicKey(); err != nil {
		logrus.WithError(err).Fatal("could not load JWT public key")
	}

	cfg := config.Instance()
	rates := prize.Rates{Platform: cfg.Fees.Platform, Creator: cfg.Fees.Creator}
	if err := rates.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid fee configuration")
	}

	var dbh *sql.DB
	if db.Configured() {
		if err := db.Migrate(); err != nil {
			logrus.WithError(err).Fatal("could not run migrations")
		}

		dbh = db.Instance()
	}

	store, err := sessionStore(cfg, dbh)
	if err != nil {
		logrus.WithError(err).Fatal("could not set up the session store")
	}

	var recorder launchpad.Ledger = ledger.NewMemory()
	if dbh != nil {
		recorder = ledger.NewPostgres(dbh)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncer := statesync.NewSyncer(logrus.StandardLogger(), store, cfg.Sync.PollInterval)
	go func() {
		if err := syncer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logrus.WithError(err).Error("state sync stopped")
		}
	}()

	manager := launchpad.New(launchpad.Options{
		Logger:    logrus.StandardLogger(),
		Publisher: syncer,
		Ledger:    recorder,
		Submitter: chain.LogSubmitter{Logger: logrus.StandardLogger()},
		Rates:     &rates,
	})

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, manager, syncer))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		<-ctx.Done()
		logrus.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("could not shut down cleanly")
		}
	}()

	logrus.WithFields(logrus.Fields{"addr": srv.Addr, "store": cfg.Sync.Store}).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Fatal("server stopped")
	}

	manager.Dispose()
}

// sessionStore returns the configured session store
func sessionStore(cfg config.Config, dbh *sql.DB) (statesync.Store, error) {
	switch cfg.Sync.Store {
	case config.StoreMemory, "":
		return statesync.NewMemoryStore(), nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Sync.Redis.Addr,
			DB:   cfg.Sync.Redis.DB,
		})

		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("could not connect to redis: %w", err)
		}

		return statesync.NewRedisStore(client, sessionTTL), nil
	case config.StorePostgres:
		if dbh == nil {
			return nil, db.ErrNoDSN
		}

		return statesync.NewPostgresStore(dbh), nil
	}

	return nil, fmt.Errorf("unknown session store: %q", cfg.Sync.Store)
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" || !term.IsTerminal(int(os.Stdout.Fd())) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

// loadDotEnv sets environment variables from a .env file in the working directory, if there is one
// Variables that are already set win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Fatal("could not load .env")
	}
}
