package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ledgerfaucet/cmd/faucet/ui"
	"ledgerfaucet/internal/faucet"
	"ledgerfaucet/internal/logging"
	"ledgerfaucet/internal/validate"
)

// errRequestFailed makes the process exit non-zero after the failure
// message has been printed.
var errRequestFailed = errors.New("request failed")

// requestCmd submits one transfer through the orchestrator
var requestCmd = &cobra.Command{
	Use:   "request [identifier]",
	Short: "Request 10 test tokens for a Principal or Account Identifier",
	Long: `Validates the identifier locally and asks the faucet to transfer
10 tokens of the selected type.

Examples:
  faucet request rdmx6-jaaaa-aaaah-qcaiq-cai --token standard
  faucet request <64-char account id> --token legacy
  faucet request rdmx6-jaaaa-aaaah-qcaiq-cai --devnet --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRequest,
}

// validateCmd checks an identifier without contacting the faucet
var validateCmd = &cobra.Command{
	Use:   "validate [identifier]",
	Short: "Check whether an identifier is accepted for a token type",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

// accountCmd prints the faucet's own account
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show the faucet's account identifier",
	RunE:  runAccount,
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func runRequest(cmd *cobra.Command, args []string) error {
	tt, err := faucet.ParseTokenType(tokenName)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	b, err := newBackend(cfg)
	if err != nil {
		return err
	}

	orch := faucet.New(b)
	orch.ChangeTokenType(tt)

	logger.Info("Requesting tokens", zap.String("token", tt.String()), zap.String("identifier", args[0]))
	snap := orch.Submit(ctx, args[0])
	logger.Debug("Request finished",
		zap.String("attempt", snap.Attempt),
		zap.Stringer("state", snap.State.Kind))

	if jsonOutput {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Println(snap.State.Message)
		if hint := ui.FailureHint(snap); hint != "" {
			fmt.Println(hint)
		}
	}

	if snap.State.Kind != faucet.Succeeded {
		return errRequestFailed
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	tt, err := faucet.ParseTokenType(tokenName)
	if err != nil {
		return err
	}

	out := validate.Validate(args[0], tt)
	if !out.Valid {
		fmt.Printf("Invalid for %s: %s\n", tt.Symbol(), out.Err)
		return errRequestFailed
	}

	switch out.Format {
	case validate.FormatPrincipal:
		fmt.Printf("Valid Principal for %s: %s\n", tt.Symbol(), out.Principal)
	default:
		fmt.Printf("Valid Account Identifier for %s: %s\n", tt.Symbol(), out.Text)
	}
	return nil
}

func runAccount(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	b, err := newBackend(cfg)
	if err != nil {
		return err
	}
	id, err := b.AccountIdentifier(ctx)
	if err != nil {
		logging.BootWarn("account lookup failed: %v", err)
		return fmt.Errorf("failed to fetch faucet account: %w", err)
	}
	fmt.Println(id)
	return nil
}
