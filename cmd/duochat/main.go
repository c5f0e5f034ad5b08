package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/mlevkov/duochat/auth"
	"github.com/mlevkov/duochat/cli"
	"github.com/mlevkov/duochat/config"
	"github.com/mlevkov/duochat/log"
	"github.com/mlevkov/duochat/store"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logDst := io.Writer(os.Stderr)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logDst = f
	}
	if cfg.CloudLog {
		cloud, err := log.NewCloudWriter(ctx, cfg.ProjectID)
		if err != nil {
			return fmt.Errorf("connecting to Cloud Logging: %w", err)
		}
		defer cloud.Close()
		logDst = io.MultiWriter(logDst, cloud)
	}
	logger := slog.New(log.NewClientHandler(logDst))
	ctx = log.WithLogger(ctx, logger)

	var (
		authn cli.Authenticator
		st    store.Store
	)
	switch cfg.Backend {
	case config.BackendMemory:
		authn = auth.NewLocal()
		st = store.NewMemory()
	default:
		var opts []option.ClientOption
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
		if err != nil {
			return fmt.Errorf("initializing firebase app: %w", err)
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return fmt.Errorf("connecting to firestore: %w", err)
		}
		defer client.Close()

		authClient := auth.New(cfg.APIKey)
		refreshCtx, stopRefresh := context.WithCancel(ctx)
		defer stopRefresh()
		go authClient.KeepFresh(refreshCtx)

		authn = authClient
		st = store.NewFirestore(client)
	}

	logger.Info("starting duochat", slog.String("backend", cfg.Backend))
	cli.NewApp(authn, st).Run(ctx)
	return nil
}
