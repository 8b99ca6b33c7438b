package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nao1215/pgimport/domain/model"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns limits concurrent connections. Tables are loaded one at a time.
	DefaultMaxConns = 5

	// DefaultMinConns maintains at least one connection in the pool.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime keeps connections alive between large files.
	DefaultMaxConnIdleTime = 30 * time.Minute
)

// Postgres loads tables into PostgreSQL with COPY FROM STDIN.
type Postgres struct {
	pool    *pgxpool.Pool
	replace bool
	logger  *slog.Logger
}

var _ Loader = (*Postgres)(nil)

// NewPostgres connects to the database described by connString, a
// postgres:// URI or a key=value DSN, and verifies the connection.
func NewPostgres(ctx context.Context, connString string, opts Options) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	logger := opts.logger()
	configurePool(poolConfig, logger)

	cfg := poolConfig.ConnConfig
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
	}

	return &Postgres{pool: pool, replace: opts.Replace, logger: logger}, nil
}

func configurePool(poolConfig *pgxpool.Config, logger *slog.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Info("server notice", "severity", notice.Severity, "message", notice.Message)
	}
}

// Load implements Loader. The table is created and filled in one
// transaction, so a failed load leaves no partial table behind.
func (p *Postgres) Load(ctx context.Context, spec *model.TableSpec, ds *model.Dataset) (n int64, err error) {
	if err := ValidateSpec(spec, ds); err != nil {
		return 0, err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if p.replace {
		if _, err := tx.Exec(ctx, DropTableSQL(spec)); err != nil {
			return 0, fmt.Errorf("failed to drop table %s: %w", spec.Name, err)
		}
	}
	if _, err := tx.Exec(ctx, CreateTableSQL(DialectPostgres, spec)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", spec.Name, err)
	}

	n, err = tx.CopyFrom(ctx, pgx.Identifier{spec.Name}, spec.ColumnNames(), newCopySource(spec, ds))
	if err != nil {
		return 0, fmt.Errorf("failed to copy rows into %s: %w", spec.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit table %s: %w", spec.Name, err)
	}

	p.logger.Debug("table loaded", "table", spec.Name, "rows", n)
	return n, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// copySource feeds dataset records to CopyFrom, converting each cell with
// the type inferred for its column.
type copySource struct {
	spec    *model.TableSpec
	records []model.Record
	row     int
	values  []any
	err     error
}

var _ pgx.CopyFromSource = (*copySource)(nil)

func newCopySource(spec *model.TableSpec, ds *model.Dataset) *copySource {
	return &copySource{spec: spec, records: ds.Records, row: -1}
}

func (s *copySource) Next() bool {
	if s.err != nil {
		return false
	}
	s.row++
	if s.row >= len(s.records) {
		return false
	}
	s.values, s.err = s.spec.ConvertRecord(s.records[s.row])
	if s.err != nil {
		s.err = fmt.Errorf("row %d: %w", s.row+1, s.err)
		return false
	}
	return true
}

func (s *copySource) Values() ([]any, error) {
	return s.values, nil
}

func (s *copySource) Err() error {
	return s.err
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port uint16, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port in config.json or PGHOST/PGPORT

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check config.json or $PGPASSWORD)
  - Wrong username

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

To create it:
  createdb %s

Original error: %w`, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Original error: %w`, addr, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}
