package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "clipforge",
		Short:         "Turn still images into short video clips with sound effects",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
