package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ftn/logx"
)

var newOwnerAddr string

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Show the current ledger owner",
	Run: func(cmd *cobra.Command, args []string) {
		showOwner()
	},
}

var setOwnerCmd = &cobra.Command{
	Use:   "set-owner",
	Short: "Transfer ledger ownership to another address (owner only)",
	Run: func(cmd *cobra.Command, args []string) {
		setOwner()
	},
}

func init() {
	rootCmd.AddCommand(ownerCmd)
	addLedgerFlags(ownerCmd)

	rootCmd.AddCommand(setOwnerCmd)
	addLedgerFlags(setOwnerCmd)
	addCallFlags(setOwnerCmd)
	setOwnerCmd.Flags().StringVar(&newOwnerAddr, "new-owner", "", "Address of the new owner")
	setOwnerCmd.MarkFlagRequired("new-owner")
}

func showOwner() {
	tok, closeStore, err := openLedger()
	if err != nil {
		logx.Error("OWNER", "Failed to open ledger:", err.Error())
		return
	}
	defer closeStore()

	owner, err := tok.Owner()
	if err != nil {
		logx.Error("OWNER", "Failed to read owner:", err.Error())
		return
	}
	fmt.Printf("Owner: %s\n", owner)
}

func setOwner() {
	call, err := callContext()
	if err != nil {
		logx.Error("OWNER", err.Error())
		return
	}

	tok, closeStore, err := openLedger()
	if err != nil {
		logx.Error("OWNER", "Failed to open ledger:", err.Error())
		return
	}
	defer closeStore()

	owner, err := tok.SetOwner(call, newOwnerAddr)
	if err != nil {
		logx.Error("OWNER", "Ownership transfer failed:", err.Error())
		fmt.Println("Ownership transfer failed:", err)
		return
	}
	fmt.Printf("Owner is now %s\n", owner)
}
