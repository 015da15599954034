package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridable at build time with -ldflags "-X main.version=...".
var version = "dev"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the clipforge version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("clipforge %s\n", version)
		},
	}
}
