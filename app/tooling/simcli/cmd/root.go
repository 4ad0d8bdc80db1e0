// Package cmd contains the simulation inspection commands.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var url string

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the simulation debug api.")
}

var rootCmd = &cobra.Command{
	Use:   "simcli",
	Short: "Inspect a running ledger simulation.",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
