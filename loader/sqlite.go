package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/pgimport/domain/model"
	_ "modernc.org/sqlite" // register "sqlite" driver
)

// sqliteMaxVariables is the bound-parameter limit of SQLite.
const sqliteMaxVariables = 32766

// SQLite date and time layouts. SQLite has no date type; ISO text sorts and
// compares correctly and is understood by its date functions.
const (
	sqliteDateLayout      = "2006-01-02"
	sqliteTimestampLayout = "2006-01-02 15:04:05.999999999"
)

// SQLite loads tables into a SQLite database file with chunked INSERTs.
type SQLite struct {
	db        *sql.DB
	replace   bool
	chunkSize int
	logger    *slog.Logger
}

var _ Loader = (*SQLite)(nil)

// NewSQLite opens or creates the SQLite database at path.
func NewSQLite(ctx context.Context, path string, opts Options) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases and transactions consistent.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	return &SQLite{
		db:        db,
		replace:   opts.Replace,
		chunkSize: opts.chunkSize(),
		logger:    opts.logger(),
	}, nil
}

// DB returns the underlying database handle.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Load implements Loader.
func (s *SQLite) Load(ctx context.Context, spec *model.TableSpec, ds *model.Dataset) (n int64, err error) {
	if err := ValidateSpec(spec, ds); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if s.replace {
		if _, err := tx.ExecContext(ctx, DropTableSQL(spec)); err != nil {
			return 0, fmt.Errorf("failed to drop table %s: %w", spec.Name, err)
		}
	}
	if _, err := tx.ExecContext(ctx, CreateTableSQL(DialectSQLite, spec)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", spec.Name, err)
	}

	n, err = s.insertRecords(ctx, tx, spec, ds.Records)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit table %s: %w", spec.Name, err)
	}

	s.logger.Debug("table loaded", "table", spec.Name, "rows", n)
	return n, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// insertRecords inserts records in chunks of multi-row INSERTs. Full chunks
// share one prepared statement.
func (s *SQLite) insertRecords(ctx context.Context, tx *sql.Tx, spec *model.TableSpec, records []model.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	chunk := min(s.chunkSize, max(1, sqliteMaxVariables/len(spec.Columns)))

	var stmt *sql.Stmt
	defer func() {
		if stmt != nil {
			_ = stmt.Close()
		}
	}()

	var inserted int64
	for start := 0; start < len(records); start += chunk {
		end := min(start+chunk, len(records))

		args := make([]any, 0, (end-start)*len(spec.Columns))
		for i, record := range records[start:end] {
			values, err := spec.ConvertRecord(record)
			if err != nil {
				return 0, fmt.Errorf("row %d: %w", start+i+1, err)
			}
			args = append(args, sqliteValues(spec, values)...)
		}

		var err error
		if end-start == chunk {
			if stmt == nil {
				if stmt, err = tx.PrepareContext(ctx, insertSQL(spec, chunk)); err != nil {
					return 0, fmt.Errorf("failed to prepare insert into %s: %w", spec.Name, err)
				}
			}
			_, err = stmt.ExecContext(ctx, args...)
		} else {
			_, err = tx.ExecContext(ctx, insertSQL(spec, end-start), args...)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to insert rows %d-%d into %s: %w", start+1, end, spec.Name, err)
		}
		inserted += int64(end - start)
	}

	return inserted, nil
}

// sqliteValues renders dates and timestamps as ISO text and booleans as 0/1.
func sqliteValues(spec *model.TableSpec, values []any) []any {
	for i, v := range values {
		switch val := v.(type) {
		case time.Time:
			if spec.Columns[i].Type == model.ColumnTypeDate {
				values[i] = val.Format(sqliteDateLayout)
			} else {
				values[i] = val.Format(sqliteTimestampLayout)
			}
		case bool:
			if val {
				values[i] = int64(1)
			} else {
				values[i] = int64(0)
			}
		}
	}
	return values
}
