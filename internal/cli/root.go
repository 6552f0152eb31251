// Package cli defines the softphone-sync command tree.
package cli

import (
	"github.com/pdxmph/softphone-sync/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

type configLoader func() (*config.Config, string, error)

// NewRootCmd builds the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "softphone-sync",
		Short:         "Keep the agent desktop and the CRM softphone in step",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/softphone-sync/config.toml)")

	load := func() (*config.Config, string, error) {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return nil, "", err
			}
		}
		cfg, err := config.LoadFrom(path)
		return cfg, path, err
	}

	rootCmd.AddCommand(initCmd(load))
	rootCmd.AddCommand(runCmd(load))
	rootCmd.AddCommand(logsCmd(load))
	rootCmd.AddCommand(transcriptCmd(load))

	return rootCmd
}
