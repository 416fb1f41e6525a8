package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/lexicheck/pkg/api"
	"github.com/hazyhaar/lexicheck/pkg/chassis"
	"github.com/hazyhaar/lexicheck/pkg/judge"
	"github.com/hazyhaar/lexicheck/pkg/observe"
	"github.com/hazyhaar/lexicheck/pkg/usage"
	"github.com/mark3labs/mcp-go/server"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "check":
		os.Exit(cmdCheck(os.Args[2:], os.Stdout))
	case "version":
		cmdVersion(os.Stdout)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: lexicheck <command>

Commands:
  serve   Start the validation server (HTTP + MCP)
  check   Validate one answer against a remote validation endpoint
  version Print the version
`)
}

func cmdVersion(out io.Writer) {
	fmt.Fprintf(out, "lexicheck %s\n", version)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	boot := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		boot.Error("load config", "path", *cfgPath, "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.level()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		logger.Error("init metrics", "error", err)
		os.Exit(1)
	}
	defer shutdownMetrics(context.Background())

	deps := api.Deps{
		MonthlyLimit: cfg.MonthlyLimit,
		JudgeTimeout: cfg.Judge.Timeout,
		Metrics:      observe.DefaultMetrics(),
		Logger:       logger,
	}

	if cfg.UsageDB != "" {
		store, err := usage.Open(cfg.UsageDB)
		if err != nil {
			logger.Error("open usage db", "path", cfg.UsageDB, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		deps.Usage = store
		logger.Info("usage metering enabled", "path", cfg.UsageDB, "monthly_limit", cfg.MonthlyLimit)
	}

	if cfg.Judge.APIKey != "" {
		g, err := judge.NewGemini(ctx, judge.GeminiConfig{APIKey: cfg.Judge.APIKey, Model: cfg.Judge.Model})
		if err != nil {
			logger.Error("create judge", "error", err)
			os.Exit(1)
		}
		deps.Judge = judge.Coalesce(g)
		logger.Info("semantic judge enabled", "model", cfg.Judge.Model)
	} else {
		logger.Warn("no judge api key, unresolved answers are rejected (strict mode)")
	}

	if cfg.MCP.Enabled {
		mcpSrv := server.NewMCPServer("lexicheck", version, server.WithToolCapabilities(false))
		api.RegisterMCPTools(mcpSrv, deps)
		deps.MCP = mcpSrv
	}

	srv, err := chassis.New(chassis.Config{
		Addr:     cfg.Addr,
		TLSMode:  cfg.TLS.Mode,
		CertFile: cfg.TLS.CertFile,
		KeyFile:  cfg.TLS.KeyFile,
		Handler:  api.NewRouter(deps),
		Logger:   logger,
	})
	if err != nil {
		logger.Error("create server", "error", err)
		os.Exit(1)
	}

	logger.Info("lexicheck listening", "addr", cfg.Addr, "mcp", cfg.MCP.Enabled)
	if err := srv.Start(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Stop(shutdownCtx)
}
