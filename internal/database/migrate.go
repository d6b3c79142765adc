package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate applies every embedded schema file in name order.  The DDL is
// idempotent (CREATE ... IF NOT EXISTS) and portable between MySQL and
// SQLite; statements run one by one because the MySQL DSN does not enable
// multiStatements.
func Migrate(ctx context.Context, db *sql.DB) error {
	files, err := fs.Glob(schemaFS, "schema/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, name := range files {
		raw, err := schemaFS.ReadFile(name)
		if err != nil {
			return err
		}
		for _, stmt := range strings.Split(string(raw), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrate %s: %w", name, err)
			}
		}
	}
	return nil
}
