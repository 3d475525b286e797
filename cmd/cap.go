package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ftn/logx"
	"ftn/utils"
)

var newCapStr string

var setCapCmd = &cobra.Command{
	Use:   "set-cap",
	Short: "Change the supply cap (owner only, requires --deposit 1)",
	Run: func(cmd *cobra.Command, args []string) {
		setCap()
	},
}

func init() {
	rootCmd.AddCommand(setCapCmd)
	addLedgerFlags(setCapCmd)
	addCallFlags(setCapCmd)
	setCapCmd.Flags().StringVar(&newCapStr, "cap", "", "New supply cap, base-10 units")
	setCapCmd.MarkFlagRequired("cap")
}

func setCap() {
	call, err := callContext()
	if err != nil {
		logx.Error("CAP", err.Error())
		return
	}
	newCap, err := parseAmount(newCapStr)
	if err != nil {
		logx.Error("CAP", err.Error())
		return
	}

	tok, closeStore, err := openLedger()
	if err != nil {
		logx.Error("CAP", "Failed to open ledger:", err.Error())
		return
	}
	defer closeStore()

	if err := tok.SetMaxSupply(call, newCap); err != nil {
		logx.Error("CAP", "Cap change failed:", err.Error())
		fmt.Println("Cap change failed:", err)
		return
	}

	fmt.Printf("Max supply is now %s\n", utils.Uint256ToString(tok.MaxSupply()))
}
