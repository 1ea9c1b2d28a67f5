package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"
)

// querier is satisfied by both *DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// quoteIdent quotes a sanitized identifier for use in a statement.
// Anything that did not come out of llmfetch.ColumnName or tableName is a
// programming error, so quoteIdent panics instead of returning an error.
func quoteIdent(ident string) string {
	if !identPattern.MatchString(ident) {
		panic(fmt.Sprintf("sqlite: unsanitized identifier %q", ident))
	}
	return `"` + ident + `"`
}

// tableName returns the name of the table backing job id.
func tableName(id int64, createdAt time.Time) string {
	return fmt.Sprintf("job_%d_%s", id, createdAt.UTC().Format("2006_01_02_15_04_05"))
}
