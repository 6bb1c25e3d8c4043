package cmd

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"propshop.GO/config"
)

var migrationsPath string

func newMigrate() (*migrate.Migrate, error) {
	return migrate.New("file://"+migrationsPath, "mysql://"+config.MySQLDSN())
}

var migrateUpCmd = &cobra.Command{
	Use:   "migrate:up",
	Short: "Apply all pending schema migrations",
	Run: func(cmd *cobra.Command, args []string) {
		m, err := newMigrate()
		if err != nil {
			fmt.Printf("Migrate init failed: %v\n", err)
			return
		}
		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Println("No pending migrations.")
				return
			}
			fmt.Printf("Migrate up failed: %v\n", err)
			return
		}
		fmt.Println("Migrations applied.")
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "migrate:down",
	Short: "Roll back the most recent schema migration",
	Run: func(cmd *cobra.Command, args []string) {
		m, err := newMigrate()
		if err != nil {
			fmt.Printf("Migrate init failed: %v\n", err)
			return
		}
		if err := m.Steps(-1); err != nil {
			fmt.Printf("Migrate down failed: %v\n", err)
			return
		}
		fmt.Println("Rolled back one migration.")
	},
}

func init() {
	migrateUpCmd.Flags().StringVar(&migrationsPath, "path", "migrations", "Migrations directory")
	migrateDownCmd.Flags().StringVar(&migrationsPath, "path", "migrations", "Migrations directory")
	rootCmd.AddCommand(migrateUpCmd)
	rootCmd.AddCommand(migrateDownCmd)
}
