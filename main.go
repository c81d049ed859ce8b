package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "priorities",
		Short:         "Rank five things, then try to recall your own ranking",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSoloCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
