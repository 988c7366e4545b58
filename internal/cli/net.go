package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var netCmd = &cobra.Command{
	Use:   "net",
	Short: "Show network availability and type",
	RunE: func(cmd *cobra.Command, args []string) error {
		available := "no"
		if appInstance.Service.NetworkAvailable() {
			available = "yes"
		}
		fmt.Printf("Available: %s\n", available)
		fmt.Printf("Type:      %s\n", appInstance.Service.NetworkType())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(netCmd)
}
