package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"blog/internal/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Long: `Create the database file and its tables if they do not exist yet.

Running it again is harmless; "serve" migrates on start-up as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := database.Open(cmd.Context(), cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "schema ready in %s\n", cfg.Database.Path)
			return nil
		},
	}
}
