package database

import (
	"embed"
	"fmt"
	"path"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrations embed.FS

// gooseDialect maps our dialect names onto the names goose expects.
func (d Dialect) gooseDialect() string {
	if d == DialectSQLite {
		return "sqlite3"
	}
	return string(d)
}

func (d Dialect) migrationsDir() string {
	return path.Join("migrations", string(d))
}

func prepareGoose(db *DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(db.Dialect.gooseDialect()); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return nil
}

// Migrate applies all pending schema migrations for the connection's dialect.
func Migrate(db *DB) error {
	if err := prepareGoose(db); err != nil {
		return err
	}
	if err := goose.Up(db.DB, db.Dialect.migrationsDir()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SchemaVersion returns the current applied migration version.
func SchemaVersion(db *DB) (int64, error) {
	if err := prepareGoose(db); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersion(db.DB)
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, nil
}

// SilenceMigrations turns off goose's progress output.
func SilenceMigrations() {
	goose.SetLogger(goose.NopLogger())
}
