package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationFiles lists the embedded migrations in apply order.
func MigrationFiles() ([]string, error) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Migrate applies every embedded migration. Each file is idempotent, so
// re-running is safe. It returns the files applied.
func Migrate(ctx context.Context, db *DB) ([]string, error) {
	files, err := MigrationFiles()
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		data, err := migrations.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			return nil, fmt.Errorf("exec %s: %w", f, err)
		}
	}
	return files, nil
}

// Drop removes the snippets table.
func Drop(ctx context.Context, db *DB) error {
	_, err := db.Pool.Exec(ctx, `DROP TABLE IF EXISTS snippets`)
	return err
}
