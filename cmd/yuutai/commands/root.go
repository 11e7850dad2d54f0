package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "yuutai",
	Short: "優待クロス パフォーマンス計算システム",
	Long: `優待クロス CLI

株主優待のつなぎ売り（優待クロス）の収益性を計算し、
静的サイトとAPIで公開するためのツール群。

Usage:
  go run ./cmd/yuutai [command]

Examples:
  go run ./cmd/yuutai fetch zaiko --all
  go run ./cmd/yuutai perform --month 2
  go run ./cmd/yuutai rank --month 2
  go run ./cmd/yuutai generate
  go run ./cmd/yuutai serve`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
