package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ftn/logx"
	"ftn/utils"
)

var (
	burnAccount string
	burnAmount  string
)

var burnCmd = &cobra.Command{
	Use:   "burn",
	Short: "Burn tokens from a registered account (owner only, requires --deposit 1)",
	Run: func(cmd *cobra.Command, args []string) {
		burnTokens()
	},
}

func init() {
	rootCmd.AddCommand(burnCmd)
	addLedgerFlags(burnCmd)
	addCallFlags(burnCmd)
	burnCmd.Flags().StringVar(&burnAccount, "account", "", "Account to burn from")
	burnCmd.Flags().StringVar(&burnAmount, "amount", "", "Amount to burn, base-10 units")
	burnCmd.MarkFlagRequired("account")
	burnCmd.MarkFlagRequired("amount")
}

func burnTokens() {
	call, err := callContext()
	if err != nil {
		logx.Error("BURN", err.Error())
		return
	}
	amount, err := parseAmount(burnAmount)
	if err != nil {
		logx.Error("BURN", err.Error())
		return
	}

	tok, closeStore, err := openLedger()
	if err != nil {
		logx.Error("BURN", "Failed to open ledger:", err.Error())
		return
	}
	defer closeStore()

	if err := tok.Burn(call, burnAccount, amount); err != nil {
		logx.Error("BURN", "Burn failed:", err.Error())
		fmt.Println("Burn failed:", err)
		return
	}

	fmt.Printf("Burned %s from @%s\n", burnAmount, burnAccount)
	fmt.Printf("Total supply: %s\n", utils.Uint256ToString(tok.TotalSupply()))
}
