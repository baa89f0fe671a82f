// Package store writes the merged provider table into the relational
// catalog. Every load replaces the table wholesale; there are no migrations.
package store

import (
	"context"
	"regexp"
	"strings"

	"github.com/hazyhaar/provider-directory/pkg/provider"
)

// Sink is a catalog destination.
type Sink interface {
	// Replace drops table if it exists, recreates it with t's columns,
	// writes every record and builds the lookup indexes.
	Replace(ctx context.Context, table string, t *provider.Table) error
	Close() error
}

// IndexedColumns are indexed when present in the written table.
var IndexedColumns = []string{
	provider.FieldLastName,
	provider.FieldFirstName,
	provider.FieldPriSpec,
	provider.FieldSecSpec1,
	provider.FieldSecSpec2,
	provider.FieldSecSpec3,
	provider.FieldSecSpec4,
	provider.FieldState,
	provider.FieldZipCode,
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidIdent reports whether name can be used unquoted as a table name.
func ValidIdent(name string) bool {
	return identRe.MatchString(name)
}

// quote returns name as a double-quoted SQL identifier.
func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func createTableSQL(table string, columns []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(quote(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(c))
		b.WriteString(" TEXT")
	}
	b.WriteString(")")
	return b.String()
}

func indexSQL(table string, t *provider.Table) []string {
	var out []string
	for _, c := range IndexedColumns {
		if !t.HasColumn(c) {
			continue
		}
		out = append(out, "CREATE INDEX "+quote("idx_"+table+"_"+c)+" ON "+quote(table)+" ("+quote(c)+")")
	}
	return out
}

// args converts a record's values to driver arguments, nil for NULL.
func args(r *provider.Record, columns []string) []any {
	vals := r.Values(columns)
	out := make([]any, len(vals))
	for i, v := range vals {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}
