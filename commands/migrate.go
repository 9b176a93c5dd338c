package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"smartsquare-server/storage"
)

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := storage.InitializeDB(cfg)
			if err != nil {
				return err
			}
			defer storage.Close(db)
			fmt.Println("Schema is up to date.")
			return nil
		},
	}
}
