package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxpert/amqp-go-client/config"
)

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config <file>",
	Short: "Write the default configuration to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DefaultConfig().Save(args[0]); err != nil {
			return fmt.Errorf("failed to generate config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration: %s\n", args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "Edit the file and run: amqp-client --config %s <command>\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateConfigCmd)
}
