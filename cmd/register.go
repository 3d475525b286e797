package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ftn/logx"
	"ftn/utils"
)

var registerAccount string

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an account, paying the storage deposit from --deposit",
	Run: func(cmd *cobra.Command, args []string) {
		registerAccountCmd()
	},
}

var unregisterCmd = &cobra.Command{
	Use:   "unregister",
	Short: "Close the caller's empty account and refund its storage deposit (requires --deposit 1)",
	Run: func(cmd *cobra.Command, args []string) {
		unregisterAccountCmd()
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	addLedgerFlags(registerCmd)
	addCallFlags(registerCmd)
	registerCmd.Flags().StringVar(&registerAccount, "account", "", "Account to register (defaults to the caller)")

	rootCmd.AddCommand(unregisterCmd)
	addLedgerFlags(unregisterCmd)
	addCallFlags(unregisterCmd)
}

func registerAccountCmd() {
	call, err := callContext()
	if err != nil {
		logx.Error("REGISTER", err.Error())
		return
	}
	account := registerAccount
	if account == "" {
		account = call.Caller
	}

	tok, closeStore, err := openLedger()
	if err != nil {
		logx.Error("REGISTER", "Failed to open ledger:", err.Error())
		return
	}
	defer closeStore()

	if err := tok.Register(call, account); err != nil {
		logx.Error("REGISTER", "Registration failed:", err.Error())
		fmt.Println("Registration failed:", err)
		return
	}

	fmt.Printf("Registered @%s\n", account)
	fmt.Printf("Storage used: %d bytes\n", tok.StorageUsage())
}

func unregisterAccountCmd() {
	call, err := callContext()
	if err != nil {
		logx.Error("UNREGISTER", err.Error())
		return
	}

	tok, closeStore, err := openLedger()
	if err != nil {
		logx.Error("UNREGISTER", "Failed to open ledger:", err.Error())
		return
	}
	defer closeStore()

	if err := tok.Unregister(call); err != nil {
		logx.Error("UNREGISTER", "Unregistration failed:", err.Error())
		fmt.Println("Unregistration failed:", err)
		return
	}

	fmt.Printf("Closed @%s\n", call.Caller)
	fmt.Printf("Total supply: %s\n", utils.Uint256ToString(tok.TotalSupply()))
}
