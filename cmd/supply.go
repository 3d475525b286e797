package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ftn/logx"
	"ftn/utils"
)

var supplyCmd = &cobra.Command{
	Use:   "supply",
	Short: "Show total supply, supply cap and storage usage",
	Run: func(cmd *cobra.Command, args []string) {
		showSupply()
	},
}

func init() {
	rootCmd.AddCommand(supplyCmd)
	addLedgerFlags(supplyCmd)
}

func showSupply() {
	tok, closeStore, err := openLedger()
	if err != nil {
		logx.Error("SUPPLY", "Failed to open ledger:", err.Error())
		return
	}
	defer closeStore()

	md := tok.Metadata()
	fmt.Printf("Token:        %s (%s), %d decimals\n", md.Name, md.Symbol, md.Decimals)
	fmt.Printf("Total supply: %s\n", utils.Uint256ToString(tok.TotalSupply()))
	fmt.Printf("Max supply:   %s\n", utils.Uint256ToString(tok.MaxSupply()))
	fmt.Printf("Storage used: %d bytes\n", tok.StorageUsage())

	if err := tok.VerifySupply(); err != nil {
		fmt.Println("Supply check:  FAILED:", err)
		return
	}
	fmt.Println("Supply check: OK")
}
