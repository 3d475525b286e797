package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ftn/logx"
	"ftn/utils"
)

var balanceAccount string

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the balance of an account",
	Run: func(cmd *cobra.Command, args []string) {
		showBalance()
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	addLedgerFlags(balanceCmd)
	balanceCmd.Flags().StringVar(&balanceAccount, "account", "", "Account address to query")
	balanceCmd.MarkFlagRequired("account")
}

func showBalance() {
	tok, closeStore, err := openLedger()
	if err != nil {
		logx.Error("BALANCE", "Failed to open ledger:", err.Error())
		return
	}
	defer closeStore()

	md := tok.Metadata()
	fmt.Printf("@%s: %s %s\n", balanceAccount, utils.Uint256ToString(tok.BalanceOf(balanceAccount)), md.Symbol)
}
