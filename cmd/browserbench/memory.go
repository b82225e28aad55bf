package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newMemoryCmd() *cobra.Command {
	memoryCommand := &cobra.Command{
		Use:   "memory [flags]",
		Short: "Collect memory metrics of the configured browser",
		Args:  cobra.NoArgs,
		Long: `Runs the memory metrics helper for the configured browser and
prints the metrics it reports as JSON.`,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlag("memory.interpreter", cmd.Flags().Lookup("interpreter"))
			viper.BindPFlag("memory.script", cmd.Flags().Lookup("script"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := loadOptions()
			if err != nil {
				return err
			}

			metrics, err := newCollector().Collect(cmd.Context(), options)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			return nil
		},
	}

	memoryCommand.Flags().String("interpreter", "", "the interpreter running the helper")
	memoryCommand.Flags().String("script", "", "the path to the memory metrics helper")

	return memoryCommand
}
