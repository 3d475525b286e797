package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ftn/logx"
	"ftn/utils"
)

var (
	transferTo     string
	transferAmount string
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer tokens from the caller to another registered account",
	Run: func(cmd *cobra.Command, args []string) {
		transferTokens()
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)
	addLedgerFlags(transferCmd)
	addCallFlags(transferCmd)
	transferCmd.Flags().StringVar(&transferTo, "to", "", "Recipient account address")
	transferCmd.Flags().StringVar(&transferAmount, "amount", "", "Amount to transfer, base-10 units")
	transferCmd.MarkFlagRequired("to")
	transferCmd.MarkFlagRequired("amount")
}

func transferTokens() {
	call, err := callContext()
	if err != nil {
		logx.Error("TRANSFER", err.Error())
		return
	}
	amount, err := parseAmount(transferAmount)
	if err != nil {
		logx.Error("TRANSFER", err.Error())
		return
	}

	tok, closeStore, err := openLedger()
	if err != nil {
		logx.Error("TRANSFER", "Failed to open ledger:", err.Error())
		return
	}
	defer closeStore()

	if err := tok.Transfer(call, transferTo, amount); err != nil {
		logx.Error("TRANSFER", "Transfer failed:", err.Error())
		fmt.Println("Transfer failed:", err)
		return
	}

	fmt.Printf("Transferred %s from @%s to @%s\n", transferAmount, call.Caller, transferTo)
	fmt.Printf("Sender balance: %s\n", utils.Uint256ToString(tok.BalanceOf(call.Caller)))
}
