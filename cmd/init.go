package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ftn/config"
	"ftn/logx"
	"ftn/monitoring"
	"ftn/store"
	"ftn/token"
	"ftn/utils"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the token ledger from the genesis configuration",
	Long: `Initialize a new token ledger by:
- Loading owner, metadata and supply cap from the genesis configuration file
- Setting up the backing store directory
- Writing the initial ledger state and metadata`,
	Run: func(cmd *cobra.Command, args []string) {
		initializeLedger()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	addLedgerFlags(initCmd)
}

// initializeLedger creates the singleton ledger state. Running it against an
// already initialized store fails rather than overwriting.
func initializeLedger() {
	monitoring.InitMetrics()

	cfg, err := config.LoadGenesisConfig(genesisPath)
	if err != nil {
		logx.Error("INIT", "Failed to load genesis configuration:", err.Error())
		return
	}

	if cfg.Store.Directory != "" {
		if err := os.MkdirAll(cfg.Store.Directory, 0o755); err != nil {
			logx.Error("INIT", "Failed to create store directory:", err.Error())
			return
		}
	}

	maxSupply, err := utils.Uint256FromString(cfg.MaxSupply)
	if err != nil {
		logx.Error("INIT", "Invalid max_supply in genesis configuration:", err.Error())
		return
	}

	accounts, state, provider, err := store.CreateStore(&cfg.Store)
	if err != nil {
		logx.Error("INIT", "Failed to open backing store:", err.Error())
		return
	}
	defer state.MustClose()

	opts := &token.Options{
		StoragePricePerByte:    loadStoragePrice(),
		AutoRegisterRecipients: cfg.AutoRegisterRecipients,
	}
	tok, err := token.Init(accounts, state, provider, cfg.Owner, &cfg.Metadata, maxSupply, opts)
	if err != nil {
		logx.Error("INIT", "Failed to initialize ledger:", err.Error())
		return
	}

	fmt.Printf("Initialized %s (%s) ledger\n", cfg.Metadata.Name, cfg.Metadata.Symbol)
	fmt.Printf("Owner:      %s\n", cfg.Owner)
	fmt.Printf("Max supply: %s\n", utils.Uint256ToString(tok.MaxSupply()))
	fmt.Printf("Store:      %s (%s)\n", cfg.Store.Directory, cfg.Store.Type)

	logx.Info("INIT", "Ledger initialization completed successfully")
}
