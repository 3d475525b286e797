package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"ftn/logx"
)

var rootCmd = &cobra.Command{
	Use:   "ftn",
	Short: "Capped-supply fungible token ledger CLI",
	Long:  "Command line interface for initializing, running and administering a capped-supply fungible token ledger node.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
