package main

import (
	"github.com/spf13/cobra"

	"github.com/teecraft/storefront/internal/data/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(log, cfg.DB.ToDB())
		if err != nil {
			return err
		}
		defer database.Close()
		if err := db.AutoMigrateAll(database.DB()); err != nil {
			return err
		}
		log.Info("Migrations applied", "driver", database.Driver())
		return nil
	},
}
