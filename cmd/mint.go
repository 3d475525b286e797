package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ftn/logx"
	"ftn/utils"
)

var (
	mintAccount string
	mintAmount  string
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint new tokens to a registered account (owner only)",
	Run: func(cmd *cobra.Command, args []string) {
		mintTokens()
	},
}

func init() {
	rootCmd.AddCommand(mintCmd)
	addLedgerFlags(mintCmd)
	addCallFlags(mintCmd)
	mintCmd.Flags().StringVar(&mintAccount, "account", "", "Recipient account address")
	mintCmd.Flags().StringVar(&mintAmount, "amount", "", "Amount to mint, base-10 units")
	mintCmd.MarkFlagRequired("account")
	mintCmd.MarkFlagRequired("amount")
}

func mintTokens() {
	call, err := callContext()
	if err != nil {
		logx.Error("MINT", err.Error())
		return
	}
	amount, err := parseAmount(mintAmount)
	if err != nil {
		logx.Error("MINT", err.Error())
		return
	}

	tok, closeStore, err := openLedger()
	if err != nil {
		logx.Error("MINT", "Failed to open ledger:", err.Error())
		return
	}
	defer closeStore()

	minted, err := tok.Mint(call, mintAccount, amount)
	if err != nil {
		logx.Error("MINT", "Mint failed:", err.Error())
		fmt.Println("Mint failed:", err)
		return
	}

	fmt.Printf("Minted %s to @%s\n", utils.Uint256ToString(minted), mintAccount)
	fmt.Printf("Total supply: %s\n", utils.Uint256ToString(tok.TotalSupply()))
}
