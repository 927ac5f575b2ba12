package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func timingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timings",
		Short: "List the preset timings or link one to a Jio",
	}
	cmd.AddCommand(timingsListCmd(), timingsAttachCmd())
	return cmd
}

func timingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the preset timings",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openForCLI()
			if err != nil {
				return err
			}
			defer db.Close()

			timings, err := db.ListTimings(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range timings {
				fmt.Printf("  #%-3d %-10s %s-%s\n", t.ID, t.Name, t.StartTime, t.EndTime)
			}
			return nil
		},
	}
}

func timingsAttachCmd() *cobra.Command {
	var (
		postID   string
		timingID int64
	)

	cmd := &cobra.Command{
		Use:     "attach",
		Short:   "Link a preset timing to a Jio (idempotent)",
		Example: `  jiosd timings attach --post 6f0e... --timing 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openForCLI()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.AttachTiming(cmd.Context(), postID, timingID); err != nil {
				return fmt.Errorf("attach timing %d to %s: %w", timingID, postID, err)
			}
			fmt.Printf("✅ Timing #%d linked to %s\n", timingID, postID)
			return nil
		},
	}

	cmd.Flags().StringVar(&postID, "post", "", "Jio id")
	cmd.Flags().Int64Var(&timingID, "timing", 0, "timing id (see jiosd timings list)")
	_ = cmd.MarkFlagRequired("post")
	_ = cmd.MarkFlagRequired("timing")
	return cmd
}
