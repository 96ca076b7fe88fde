// Package cli implements the dotrepd command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "dotrepd",
	Short: "Trust-weighted reputation and Sybil-risk engine",
	Long: `dotrepd scores actors in an interaction graph: trust-weighted temporal
PageRank, multi-dimensional reputation, Sybil-risk assessment, and
coordinated-flagging analysis, served over a REST API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to TOML config file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
