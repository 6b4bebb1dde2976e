package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ledgerfaucet/internal/config"
	"ledgerfaucet/internal/faucet"
	"ledgerfaucet/internal/ledger"
	"ledgerfaucet/internal/logging"
	"ledgerfaucet/internal/remote"
)

var (
	// Global flags
	verbose    bool
	configPath string
	gatewayURL string
	useDevnet  bool

	// Per-command flags
	tokenName  string
	jsonOutput bool

	// Loaded in PersistentPreRunE
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "faucet",
	Short: "Request test tokens from the ledger faucet",
	Long: `faucet transfers 10 test tokens to a Principal or Account Identifier.

Two token types are available:
  legacy    TESTICP, accepts a Principal or a 64-character Account Identifier
  standard  TICRC1, accepts a Principal only

Run without arguments to start the interactive form.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}
		if err := logging.Initialize(cfg.Logging.LogsDir(), cfg.Logging.Options()); err != nil {
			return fmt.Errorf("failed to initialize file logging: %w", err)
		}
		logging.Boot("command %q, config %s", cmd.CommandPath(), resolveConfigPath())

		// The interactive form owns the terminal, so log to file only.
		if cmd == cmd.Root() {
			logger = logging.Get(logging.CategoryUI).Zap()
			return nil
		}

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context())
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&gatewayURL, "gateway", "", "Faucet gateway URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&useDevnet, "devnet", false, "Use an in-process ledger simulator instead of the gateway")

	for _, c := range []*cobra.Command{requestCmd, validateCmd} {
		c.Flags().StringVarP(&tokenName, "token", "t", faucet.TokenLegacy.String(), "Token type: legacy or standard")
	}
	requestCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the final session as JSON")

	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(devnetCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

func loadConfig() (*config.Config, error) {
	c, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	if gatewayURL != "" {
		c.Gateway.URL = gatewayURL
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// backend is what the commands need from either the gateway client or the
// in-process simulator.
type backend interface {
	faucet.RemoteClient
	AccountIdentifier(ctx context.Context) (string, error)
}

// simulatorBackend adapts the simulator's context-free account lookup.
type simulatorBackend struct {
	*ledger.Simulator
}

func (s simulatorBackend) AccountIdentifier(ctx context.Context) (string, error) {
	return s.Simulator.AccountIdentifier(), nil
}

func newBackend(c *config.Config) (backend, error) {
	if useDevnet {
		sim, err := ledger.NewSimulator(c.Devnet.Ledger)
		if err != nil {
			return nil, err
		}
		logger.Debug("using in-process ledger simulator")
		return simulatorBackend{sim}, nil
	}
	logger.Debug("using faucet gateway", zap.String("url", c.Gateway.URL))
	logging.RemoteDebug("gateway %s, timeout %s", c.Gateway.URL, c.GetGatewayTimeout())
	return remote.NewHTTPClient(c.Gateway.URL, c.GetGatewayTimeout()), nil
}
