// Command taskdeckd serves the task API backing the taskdeck client.
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
	"github.com/sirupsen/logrus"

	"taskdeck/internal/server"
)

const (
	envAddr   = "TASKDECKD_ADDR"
	envDB     = "TASKDECKD_DB"
	envSecret = "TASKDECKD_SECRET"

	defaultAddr = ":8000"
	defaultDB   = "taskdeck.db"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stderr)

	addr := envOr(envAddr, defaultAddr)
	dbPath := envOr(envDB, defaultDB)
	secret := os.Getenv(envSecret)
	if secret == "" {
		log.Fatalf("%s must be set", envSecret)
	}

	store, err := server.OpenStore(dbPath)
	if err != nil {
		log.WithError(err).Fatal("open store")
	}
	defer store.Close()

	engine := server.New(server.Options{
		Store:  store,
		Secret: []byte(secret),
		Log:    log,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.WithFields(logrus.Fields{"addr": addr, "db": dbPath}).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("serve")
	}
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
