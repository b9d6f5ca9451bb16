// Command inboxmeshd runs the artifact store as an HTTP daemon: a JSON API
// for artifact and draft operations plus a websocket stream of mutation
// notifications. State is persisted to a snapshot file and auto-saved in the
// background; a final snapshot is written on shutdown.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/inboxmesh"
	"github.com/hupe1980/inboxmesh/config"
	"github.com/hupe1980/inboxmesh/drafter"
	anthropicdrafter "github.com/hupe1980/inboxmesh/drafter/anthropic"
	openaidrafter "github.com/hupe1980/inboxmesh/drafter/openai"
	"github.com/hupe1980/inboxmesh/logging"
	"github.com/hupe1980/inboxmesh/mailer"
	"github.com/hupe1980/inboxmesh/server"
)

func main() {
	configPath := flag.String("config", "inboxmesh.toml", "path to the configuration file")
	flag.Parse()

	logger := logging.NewDefaultSlogLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = buildLogger(cfg.Log)

	var outbound mailer.Mailer
	if cfg.SMTP.Server != "" {
		outbound = mailer.NewSMTPMailer(cfg.SMTP.Server, cfg.SMTP.SMTPPort(), cfg.SMTP.Username, cfg.SMTP.Password, func(o *mailer.Options) {
			o.StartTLS = cfg.SMTP.UseSTARTTLS
			o.SSL = !cfg.SMTP.UseSTARTTLS
			o.Logger = logger
		})
	}

	mesh := inboxmesh.New(func(o *inboxmesh.Options) {
		o.SnapshotPath = cfg.Storage.SnapshotPath
		o.AutoSaveInterval = cfg.Storage.Interval()
		o.Generator = buildGenerator(cfg.Model)
		o.Mailer = outbound
		o.From = cfg.SMTP.From
		o.Logger = logger
	})
	if err := mesh.Open(); err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	srv := server.New(mesh.Store(), func(o *server.Options) {
		o.Mailer = outbound
		o.From = cfg.SMTP.From
		o.Logger = logger
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Server.Addr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	if err := mesh.Close(); err != nil {
		logger.Error("final snapshot failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func buildLogger(cfg config.LogConfig) logging.Logger {
	level := logging.LogLevelInfo
	switch cfg.Level {
	case "debug":
		level = logging.LogLevelDebug
	case "warn":
		level = logging.LogLevelWarn
	case "error":
		level = logging.LogLevelError
	}
	return logging.NewSlogLogger(level, cfg.Format, false)
}

func buildGenerator(cfg config.ModelConfig) drafter.Generator {
	switch cfg.Provider {
	case "anthropic":
		return anthropicdrafter.New(func(o *anthropicdrafter.Options) {
			if cfg.Model != "" {
				o.Model = anthropic.Model(cfg.Model)
			}
		})
	case "openai":
		return openaidrafter.New(func(o *openaidrafter.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		})
	default:
		return drafter.TemplateGenerator{}
	}
}
