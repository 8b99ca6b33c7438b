package loader

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/nao1215/pgimport/domain/model"
)

// Dialect is the SQL flavour DDL is rendered for.
type Dialect int

const (
	// DialectPostgres renders PostgreSQL DDL
	DialectPostgres Dialect = iota
	// DialectSQLite renders SQLite DDL
	DialectSQLite
)

// String returns the dialect name
func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	case DialectSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// ParseDialect parses a dialect name as printed by Dialect.String.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

var postgresTypes = map[model.ColumnType]string{
	model.ColumnTypeInteger:   "BIGINT",
	model.ColumnTypeFloat:     "DOUBLE PRECISION",
	model.ColumnTypeBoolean:   "BOOLEAN",
	model.ColumnTypeDate:      "DATE",
	model.ColumnTypeTimestamp: "TIMESTAMP",
	model.ColumnTypeText:      "TEXT",
}

var sqliteTypes = map[model.ColumnType]string{
	model.ColumnTypeInteger:   "INTEGER",
	model.ColumnTypeFloat:     "REAL",
	model.ColumnTypeBoolean:   "INTEGER",
	model.ColumnTypeDate:      "TEXT",
	model.ColumnTypeTimestamp: "TEXT",
	model.ColumnTypeText:      "TEXT",
}

// SQLType returns the column type of the dialect for a column type tag.
// Unknown tags map to TEXT.
func SQLType(dialect Dialect, columnType model.ColumnType) string {
	types := postgresTypes
	if dialect == DialectSQLite {
		types = sqliteTypes
	}
	if t, ok := types[columnType]; ok {
		return t
	}
	return "TEXT"
}

// QuoteIdentifier quotes a table or column name.
func QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// CreateTableSQL renders CREATE TABLE IF NOT EXISTS for spec.
func CreateTableSQL(dialect Dialect, spec *model.TableSpec) string {
	columns := make([]string, 0, len(spec.Columns))
	for _, col := range spec.Columns {
		columns = append(columns, QuoteIdentifier(col.Name)+" "+SQLType(dialect, col.Type))
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)",
		QuoteIdentifier(spec.Name),
		strings.Join(columns, ", "),
	)
}

// DropTableSQL renders DROP TABLE IF EXISTS for spec.
func DropTableSQL(spec *model.TableSpec) string {
	return "DROP TABLE IF EXISTS " + QuoteIdentifier(spec.Name)
}

// insertSQL renders a multi-row INSERT with rows groups of placeholders.
func insertSQL(spec *model.TableSpec, rows int) string {
	columns := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		columns[i] = QuoteIdentifier(col.Name)
	}

	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(spec.Columns)), ", ") + ")"
	groups := make([]string, rows)
	for i := range groups {
		groups[i] = group
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		QuoteIdentifier(spec.Name),
		strings.Join(columns, ", "),
		strings.Join(groups, ", "),
	)
}
