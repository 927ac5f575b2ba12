package main

import (
	"fmt"

	"jios-backend/pkg/database"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default gyms and timings (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openForCLI()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db.DB(), db.Driver()); err != nil {
				return err
			}
			if err := database.Seed(cmd.Context(), db); err != nil {
				return err
			}

			gyms, err := db.ListGyms(cmd.Context())
			if err != nil {
				return err
			}
			for _, gym := range gyms {
				fmt.Printf("  #%-3d %s\n", gym.ID, gym.Name)
			}
			fmt.Printf("🎉 %d gyms available\n", len(gyms))
			return nil
		},
	}
}
