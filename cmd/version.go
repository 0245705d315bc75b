package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version and Commit are stamped at build time:
//
//	go build -ldflags "-X github.com/harmonia-mir/harmonia/cmd.Version=v1.0.0"
var (
	Version = "dev"
	Commit  = ""
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the harmonia version",
	Run: func(cmd *cobra.Command, args []string) {
		line := "harmonia " + Version
		if Commit != "" {
			line += " (" + Commit + ")"
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	},
}
