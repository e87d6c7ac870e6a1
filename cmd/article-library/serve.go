// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/article-library/internal/library"
	"github.com/pdiddy/article-library/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local HTTP mirror of the article collection",
	Long: `Serve runs a local HTTP server exposing the same article routes as the
backend, answered with offline fallback, plus /status, /sync, /export and
Prometheus /metrics. The connectivity monitor polls the backend in the
background and a sync pass runs automatically when it becomes reachable
again.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := libraryConfig(cmd)

	log, err := zap.NewProduction()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	defer log.Sync()

	lib, err := library.Open(cfg, log)
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.Monitor().Start(); err != nil {
		return err
	}

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Serve.Listen = listen
	}
	srv := server.New(lib, cfg.Serve, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func init() {
	serveCmd.Flags().String("listen", "", "listen address (default: config listen, 127.0.0.1:8600)")

	rootCmd.AddCommand(serveCmd)
}
