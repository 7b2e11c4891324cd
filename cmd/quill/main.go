// Package main is the entry point for the quill CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"quill/internal/backend/local"
	"quill/internal/backend/mongodb"
	"quill/internal/cli"
	"quill/internal/commands"
	"quill/internal/config"
	"quill/internal/storage"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newStore)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

// newStore constructs the backend selected by the settings.
func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Settings.Storage {
	case config.StorageLocal:
		return local.New(cfg.Settings.Local.Path)
	case config.StorageMongoDB:
		m := cfg.Settings.Mongo
		return mongodb.New(ctx, m.URI, m.Database, m.Collection)
	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.Settings.Storage)
	}
}
