package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ecochain/config"
	"ecochain/core"
	"ecochain/core/genesis"
	"ecochain/observability"
	"ecochain/observability/logging"
	ecotel "ecochain/observability/otel"
	"ecochain/rpc"
	"ecochain/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("ECO_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup("ecochaind", env, logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if strings.TrimSpace(cfg.OTLPEndpoint) != "" {
		shutdown, err := ecotel.Init(ctx, ecotel.Config{
			ServiceName: "ecochaind",
			Environment: env,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    cfg.OTLPInsecure,
		})
		if err != nil {
			logger.Error("failed to initialise telemetry", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	node := core.NewNode(db)
	node.SetEmitter(observability.NewEventSink(logger))

	if path := strings.TrimSpace(cfg.GenesisFile); path != "" {
		spec, err := genesis.Load(path)
		if err != nil {
			logger.Error("failed to load genesis file", slog.Any("error", err))
			os.Exit(1)
		}
		applied, err := spec.Apply(node.State())
		if err != nil {
			logger.Error("failed to apply genesis", slog.Any("error", err))
			os.Exit(1)
		}
		if applied {
			logger.Info("genesis applied", slog.Int("accounts", len(spec.Accounts)))
		}
	}

	server := rpc.NewServer(node, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.RPCAddress)
	}()

	logger.Info("node started",
		slog.String("network", cfg.NetworkName),
		slog.String("rpc", cfg.RPCAddress),
		slog.String("dataDir", cfg.DataDir),
	)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("rpc server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
