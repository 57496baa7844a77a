package main

import (
	"os"

	"github.com/spf13/cobra"

	"keygate/internal/interfaces/cli/migrate"
	"keygate/internal/interfaces/cli/server"
	"keygate/internal/interfaces/cli/token"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "keygate",
		Short: "Keygate - license key issuance and validation service",
		Long:  `Keygate issues time-limited license keys, enforces issuer quotas, and validates keys for asset delivery.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
