// Command taskdeck is a terminal client for a taskdeckd server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"taskdeck/internal/app"
	"taskdeck/internal/backend/httpapi"
	"taskdeck/internal/cli"
	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, buildApp)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func buildApp(ctx context.Context, cfg *config.Config) (*app.App, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	switch {
	case cfg.Debug:
		log.SetLevel(logrus.DebugLevel)
	case cfg.Quiet:
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}

	sessions := session.NewStore(cfg.TokenPath(), cfg.EnsureDir)

	// The store itself is the credential source, so a login that saves a
	// session mid-run authenticates every request that follows.
	client, err := httpapi.New(cfg.ServerURL, sessions, log)
	if err != nil {
		return nil, err
	}
	return app.New(sessions, client, client, log), nil
}
