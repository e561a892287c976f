// Package cmd is the uburu command line.
package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "uburu",
		Short:         "Team-aware support agent for the alliance game",
		Long:          "uburu recognises teammates through signed identity broadcasts, tracks them across renames, and picks whom to support each round.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./uburu.toml or ~/.uburu/uburu.toml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newKeygenCmd(),
		newServeCmd(&configFile),
		newSignCmd(&configFile),
		newDecideCmd(&configFile),
	)

	return rootCmd
}
