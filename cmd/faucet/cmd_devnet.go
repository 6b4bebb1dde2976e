package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ledgerfaucet/internal/gateway"
	"ledgerfaucet/internal/ledger"
	"ledgerfaucet/internal/token"
)

// devnetCmd runs a local gateway backed by the ledger simulator
var devnetCmd = &cobra.Command{
	Use:   "devnet",
	Short: "Run a local faucet gateway backed by a ledger simulator",
	Long: `Starts an HTTP gateway that serves the faucet transfer API from an
in-memory ledger simulator. Point other clients at it with --gateway.

Endpoints:
  POST /api/v1/transfer/legacy
  POST /api/v1/transfer/standard
  GET  /api/v1/account
  GET  /readiness
  GET  /metrics`,
	Args: cobra.NoArgs,
	RunE: runDevnet,
}

func newDevnet() (*gateway.Server, *ledger.Simulator, error) {
	sim, err := ledger.NewSimulator(cfg.Devnet.Ledger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start ledger simulator: %w", err)
	}
	srv := gateway.NewServer(cfg.Devnet.Addr, sim,
		gateway.WithRegistry(prometheus.NewRegistry()),
		gateway.WithLogger(logger))
	return srv, sim, nil
}

func runDevnet(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	srv, sim, err := newDevnet()
	if err != nil {
		return err
	}

	fmt.Printf("Faucet gateway on http://%s\n", srv.Addr())
	fmt.Printf("Faucet account: %s\n", sim.AccountIdentifier())
	for _, tt := range token.All {
		fmt.Printf("  %-8s ledger %s  balance %s\n",
			tt.Symbol(), sim.Canister(tt), ledger.FormatE8s(sim.FaucetBalance(tt)))
	}

	logger.Info("Devnet starting", zap.String("addr", srv.Addr()))
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("gateway stopped: %w", err)
	}
	logger.Info("Devnet stopped")
	return nil
}
