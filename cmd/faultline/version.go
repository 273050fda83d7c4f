package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the faultline version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(toolVersion)
		return nil
	},
}
