package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// EnsureSchema aplica en orden los scripts de schema/. Son idempotentes (IF NOT EXISTS),
// por lo que pueden ejecutarse en cada arranque.
func EnsureSchema(ctx context.Context, q Querier) ([]string, error) {
	files, err := fs.Glob(schemaFS, "schema/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	for _, name := range files {
		script, err := schemaFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", name, err)
		}
		if _, err := q.Exec(ctx, string(script)); err != nil {
			return nil, fmt.Errorf("aplicar %s: %w", name, err)
		}
	}
	return files, nil
}
