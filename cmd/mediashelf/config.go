package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and list warnings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, warning := range cfg.Warnings() {
			fmt.Fprintf(out, "warning: %s\n", warning)
		}
		fmt.Fprintf(out, "configuration ok (listening on %s, database %s)\n",
			cfg.Server.Address(), cfg.Database.Path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configCheckCmd)
}
