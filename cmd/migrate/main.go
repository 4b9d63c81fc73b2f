// Command migrate manages the PostgreSQL schema of the farm backend.
package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"github.com/farmsaathi/backend/internal/infrastructure/config"
	"github.com/farmsaathi/backend/internal/infrastructure/logger"
	"github.com/farmsaathi/backend/internal/infrastructure/migration"
	"github.com/farmsaathi/backend/migrations"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	migrationsPath string
	logLevel       string

	log *zap.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "FarmSaathi database migration tool",
		Long: `Applies, rolls back and scaffolds the versioned PostgreSQL schema.

Database settings come from config.toml or FARM_DATABASE_* environment variables.
Without --path the schema embedded in the binary is used.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			log, err = logger.New(&logger.Config{
				Level:      logLevel,
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&migrationsPath, "path", "", "read migrations from this directory instead of the embedded schema")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		upCmd(), downCmd(), stepCmd(), gotoCmd(), versionCmd(), forceCmd(), dropCmd(),
		createCmd(), listCmd(),
	)
	return root
}

func migrationSource() fs.FS {
	if migrationsPath != "" {
		return os.DirFS(migrationsPath)
	}
	return migrations.FS
}

// withMigrator opens the configured database, runs fn and closes everything
func withMigrator(fn func(m *migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("SQL migrations target PostgreSQL; %s databases are created with auto-migrate", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// closing the migrator closes db
	m, err := migration.NewFromFS(db, migrationSource(), log)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	return fn(m)
}
