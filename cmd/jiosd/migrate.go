package main

import (
	"fmt"
	"sort"

	"jios-backend/pkg/database"
	"jios-backend/pkg/router"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply, roll back or inspect the embedded schema migrations
against the configured database (POSTGRES_DSN, else SQLite at SQLITE_PATH).`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openForCLI()
			if err != nil {
				return err
			}
			defer db.Close()
			return database.Migrate(db.DB(), db.Driver())
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Example: `  jiosd migrate down --steps 1
  jiosd migrate down --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			if !all && steps <= 0 {
				return fmt.Errorf("pass --steps N or --all")
			}
			if all {
				steps = 0
			}
			db, err := openForCLI()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.MigrateDown(db.DB(), db.Driver(), steps); err != nil {
				return err
			}
			fmt.Println("✅ Rollback complete")
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back")
	down.Flags().Bool("all", false, "roll back every migration")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the schema version and table row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openForCLI()
			if err != nil {
				return err
			}
			defer db.Close()

			version, dirty, ok, err := database.MigrationVersion(db.DB(), db.Driver())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("Driver: %s\nSchema: not migrated\n", db.Driver())
				return nil
			}
			fmt.Printf("Driver: %s\nSchema version: %d (dirty=%t)\n", db.Driver(), version, dirty)

			// 验证表是否创建成功
			counts, err := db.TableCounts(cmd.Context())
			if err != nil {
				return err
			}
			tables := make([]string, 0, len(counts))
			for t := range counts {
				tables = append(tables, t)
			}
			sort.Strings(tables)
			for _, t := range tables {
				fmt.Printf("  %-12s %d rows\n", t, counts[t])
			}
			return nil
		},
	})

	return cmd
}

// openForCLI opens the configured store without auto-migrating.
func openForCLI() (*database.SQLDatabase, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	dbCfg := router.DatabaseConfig(cfg)
	dbCfg.AutoMigrate = false
	if cfg.PostgresDSN != "" {
		fmt.Printf("🔗 Connecting to database: %s\n", database.MaskDSN(cfg.PostgresDSN))
	}
	return database.Open(dbCfg)
}
