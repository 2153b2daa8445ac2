package migration

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

// SchemaName is the Postgres schema that holds every dispatch table.
const SchemaName = "dispatch"

// Embed SQL files from the local migrations folder
//
//go:embed migrations/*.sql
var embeddedMigrations embed.FS

func RunMigrations(dbUrl string, logger zerolog.Logger) error {
	db, err := sql.Open("postgres", dbUrl)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + SchemaName); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", SchemaName, err)
	}

	goose.SetBaseFS(embeddedMigrations)
	goose.SetTableName(SchemaName + ".goose_db_version")
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info().Str("schema", SchemaName).Msg("Migrations completed successfully")
	return nil
}
