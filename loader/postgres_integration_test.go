//go:build integration

package loader

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nao1215/pgimport/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("pgimport"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ctr.Terminate(context.Background())
	})

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return connStr
}

func TestPostgres_Load(t *testing.T) {
	connStr := startPostgres(t)
	ctx := context.Background()

	l, err := NewPostgres(ctx, connStr, Options{})
	require.NoError(t, err)
	defer l.Close()

	n, err := l.Load(ctx, testSpec(), salesDataset())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	conn, err := pgx.Connect(ctx, connStr)
	require.NoError(t, err)
	defer conn.Close(ctx)

	var (
		dataType string
		count    int
	)
	require.NoError(t, conn.QueryRow(ctx,
		`SELECT data_type FROM information_schema.columns WHERE table_name = 'sales' AND column_name = 'price'`,
	).Scan(&dataType))
	assert.Equal(t, "double precision", dataType)

	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE paid`).Scan(&count))
	assert.Equal(t, 2, count)

	var day time.Time
	require.NoError(t, conn.QueryRow(ctx, `SELECT day FROM sales WHERE id = 1`).Scan(&day))
	assert.Equal(t, "2024-01-02", day.Format("2006-01-02"))

	var price *float64
	require.NoError(t, conn.QueryRow(ctx, `SELECT price FROM sales WHERE id = 2`).Scan(&price))
	assert.Nil(t, price)
}

func TestPostgres_LoadFailureLeavesNoTable(t *testing.T) {
	connStr := startPostgres(t)
	ctx := context.Background()

	l, err := NewPostgres(ctx, connStr, Options{})
	require.NoError(t, err)
	defer l.Close()

	spec := &model.TableSpec{Name: "nums", Columns: []model.ColumnSpec{{Name: "n", Type: model.ColumnTypeInteger}}}
	ds := model.NewDataset("nums", model.NewHeader([]string{"n"}), []model.Record{
		model.NewRecord([]string{"1"}),
		model.NewRecord([]string{"x"}),
	})
	_, err = l.Load(ctx, spec, ds)
	require.ErrorIs(t, err, model.ErrInvalidValue)

	conn, err := pgx.Connect(ctx, connStr)
	require.NoError(t, err)
	defer conn.Close(ctx)

	var exists bool
	require.NoError(t, conn.QueryRow(ctx, `SELECT to_regclass('public.nums') IS NOT NULL`).Scan(&exists))
	assert.False(t, exists)
}

func TestPostgres_Replace(t *testing.T) {
	connStr := startPostgres(t)
	ctx := context.Background()

	spec := &model.TableSpec{Name: "t", Columns: []model.ColumnSpec{{Name: "a", Type: model.ColumnTypeText}}}
	ds := model.NewDataset("t", model.NewHeader([]string{"a"}), []model.Record{model.NewRecord([]string{"x"})})

	for range 2 {
		l, err := NewPostgres(ctx, connStr, Options{Replace: true})
		require.NoError(t, err)
		_, err = l.Load(ctx, spec, ds)
		require.NoError(t, err)
		require.NoError(t, l.Close())
	}

	conn, err := pgx.Connect(ctx, connStr)
	require.NoError(t, err)
	defer conn.Close(ctx)

	var count int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM t`).Scan(&count))
	assert.Equal(t, 1, count)
}
