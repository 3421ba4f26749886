// Package main is the entry point for smd, the service manager daemon.
//
// smd is the root broker of the emulated OS IPC layer: processes
// register named services through it and resolve names to live
// sessions. Emulated processes attach over WebSocket; tooling inspects
// the registry over the REST surface.
//
// Configuration comes from environment variables (12-factor), with CLI
// flags as overrides. SIGINT and SIGTERM trigger graceful shutdown.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orbitalos/backend/internal/infrastructure/config"
	"github.com/orbitalos/backend/internal/server"
)

func main() {
	port := flag.String("port", "", "listen port (overrides PORT)")
	dev := flag.Bool("dev", false, "development mode: colored debug logs")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("failed to start service manager: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("server error: %v", err)
	}
}
