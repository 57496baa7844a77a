package token

import (
	"fmt"

	"github.com/spf13/cobra"

	"keygate/internal/infrastructure/auth"
	"keygate/internal/infrastructure/config"
	"keygate/internal/shared/biztime"
)

var (
	env        string
	configPath string
	actorID    string
)

// NewCommand mints a service token for the command API. Run it on the host
// with access to the deployment configuration; the resulting token is
// handed to the operator tooling that calls /api.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a service token for the command API",
		Long:  `Generate a signed bearer token for an actor. The actor's role is resolved from configuration at request time.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVarP(&actorID, "actor", "a", "", "Actor ID to embed in the token (required)")
	cmd.MarkFlagRequired("actor")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	if cfg.Auth.TokenSecret == "" {
		return fmt.Errorf("auth.token_secret is not configured")
	}

	jwtService := auth.NewJWTService(cfg.Auth.TokenSecret, cfg.Auth.TokenExpHours)
	token, err := jwtService.Generate(actorID)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Println(token)
	return nil
}
