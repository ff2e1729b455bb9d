// Command facilitator runs the settlement service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paygate-labs/paygate-go/facilitator"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := facilitator.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var executor facilitator.TransferExecutor
	if cfg.MockTransfers {
		executor = facilitator.NewMockExecutor()
		logger.Warn("running in mock-transfer mode; no funds will move")
	} else {
		chainExec, err := facilitator.NewChainExecutor(cfg.RPCURL, cfg.PrivateKey)
		if err != nil {
			logger.Error("failed to initialize chain executor", "error", err)
			os.Exit(1)
		}
		executor = chainExec
		logger.Info("on-chain settlement enabled",
			"rpcUrl", cfg.RPCURL,
			"relayer", chainExec.Address().Hex(),
		)
	}

	handler := facilitator.NewHandler(cfg, executor, logger)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           facilitator.NewRouter(handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("facilitator listening",
			"port", cfg.Port,
			"feePercent", cfg.FeePercent,
			"version", facilitator.Version,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
