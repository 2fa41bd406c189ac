package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/hoplite/pkg/api"
)

func cmdServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "hoplite.yaml", "path to config file")
	addr := fs.String("addr", "", "listen address (overrides config)")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)

	logger, level := newLogger()
	cfg := loadConfig(*cfgPath, logger)
	applyLogLevel(cfg, *verbose, level, logger)
	if *addr != "" {
		cfg.Addr = *addr
	}

	r, err := openResolver(cfg, logger)
	if err != nil {
		logger.Error("lemma resolver", "error", err)
		return 1
	}
	defer r.Close()

	l, err := buildLinter(cfg, r, logger)
	if err != nil {
		logger.Error("build linter", "error", err)
		return 1
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(l, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// SIGHUP: flush the lemma cache.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, saving lemma cache")
			saveCache(r, logger)
		}
	}()

	errc := make(chan error, 1)
	go func() {
		logger.Info("hoplite listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		logger.Error("server error", "error", err)
		return 1
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
	saveCache(r, logger)
	return 0
}

func cmdMCP(args []string) int {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "hoplite.yaml", "path to config file")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)

	// stdout carries the protocol; logs stay on stderr.
	logger, level := newLogger()
	cfg := loadConfig(*cfgPath, logger)
	applyLogLevel(cfg, *verbose, level, logger)

	r, err := openResolver(cfg, logger)
	if err != nil {
		logger.Error("lemma resolver", "error", err)
		return 1
	}
	defer r.Close()

	l, err := buildLinter(cfg, r, logger)
	if err != nil {
		logger.Error("build linter", "error", err)
		return 1
	}

	mcpSrv := server.NewMCPServer("hoplite", "0.1.0", server.WithToolCapabilities(false))
	api.RegisterMCPTools(mcpSrv, l, logger)

	logger.Info("serving MCP on stdio")
	code := 0
	if err := server.ServeStdio(mcpSrv); err != nil {
		logger.Error("mcp server", "error", err)
		code = 1
	}
	saveCache(r, logger)
	return code
}
