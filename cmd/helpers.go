package cmd

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"ftn/config"
	"ftn/events"
	"ftn/logx"
	"ftn/store"
	"ftn/token"
	"ftn/utils"
)

var (
	genesisPath string
	runtimePath string
	callerAddr  string
	depositStr  string
)

// addLedgerFlags wires the config-file flags shared by every command that
// touches the persisted ledger.
func addLedgerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&genesisPath, "genesis", config.DefaultGenesisPath, "Path to genesis configuration file")
	cmd.Flags().StringVar(&runtimePath, "config", config.DefaultRuntimePath, "Path to runtime configuration file")
}

// addCallFlags wires the identity and payment flags of submit commands.
func addCallFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&callerAddr, "caller", "", "Address the verb executes as")
	cmd.Flags().StringVar(&depositStr, "deposit", "0", "Payment attached to the call, base-10 units")
}

// openLedger opens the persisted ledger described by the genesis config.
// The returned closer releases the backing store; both stores share one
// provider, so it is closed exactly once.
func openLedger() (*token.Token, func(), error) {
	cfg, err := config.LoadGenesisConfig(genesisPath)
	if err != nil {
		return nil, nil, err
	}

	accounts, state, provider, err := store.CreateStore(&cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open backing store: %w", err)
	}
	closer := func() { state.MustClose() }

	opts := &token.Options{
		StoragePricePerByte:    loadStoragePrice(),
		AutoRegisterRecipients: cfg.AutoRegisterRecipients,
		Refunder:               token.LogRefunder{},
		EventBus:               events.NewEventBus(),
	}

	tok, err := token.Open(accounts, state, provider, opts)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return tok, closer, nil
}

// loadStoragePrice reads the per-byte storage price from the runtime config,
// falling back to the built-in default when the file or section is absent.
func loadStoragePrice() *uint256.Int {
	storageCfg, err := config.LoadStorageConfig(runtimePath)
	if err != nil || storageCfg.PricePerByte == 0 {
		logx.Warn("CMD", fmt.Sprintf("No storage pricing in %s, using default price %d", runtimePath, token.DefaultStoragePricePerByte))
		return uint256.NewInt(token.DefaultStoragePricePerByte)
	}
	return uint256.NewInt(storageCfg.PricePerByte)
}

// callContext builds the call envelope from the --caller and --deposit flags.
func callContext() (token.CallContext, error) {
	if callerAddr == "" {
		return token.CallContext{}, fmt.Errorf("--caller is required")
	}
	deposit, err := utils.Uint256FromString(depositStr)
	if err != nil {
		return token.CallContext{}, fmt.Errorf("invalid --deposit: %w", err)
	}
	return token.NewCallContext(callerAddr, deposit), nil
}

func parseAmount(raw string) (*uint256.Int, error) {
	amount, err := utils.Uint256FromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	return amount, nil
}
