package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	flagStore  string
	flagPort   string
	flagLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "blog-api",
	Short: "Blog JSON API: users, posts, comments, categories and tags",
	// Без подкоманды работает как serve
	RunE:         runServe,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagStore, "storage", "", "Storage type (in-memory or postgres)")
	rootCmd.PersistentFlags().StringVar(&flagPort, "port", "", "HTTP port")
	rootCmd.PersistentFlags().StringVar(&flagLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
