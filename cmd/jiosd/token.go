package main

import (
	"fmt"
	"time"

	"jios-backend/pkg/utils"

	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token signed with JWT_SECRET (development)",
		Example: `  jiosd token --user 3f1c... --ttl 1h
  curl -H "Authorization: Bearer $(jiosd token --user alice)" localhost:3000/api/posts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to mint tokens in production")
			}

			token, _, err := utils.NewJWTService(cfg.JWTSecret).GenerateAccessToken(userID, email, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the token (required)")
	cmd.Flags().StringVar(&email, "email", "", "optional email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", utils.DefaultAccessTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
