package loader

import (
	"context"
	"log/slog"

	"github.com/nao1215/pgimport/domain/model"
)

// DefaultChunkSize is the default number of rows per INSERT batch
const DefaultChunkSize = 1000

// Loader creates the table for a spec and loads the rows of a dataset into it.
type Loader interface {
	// Load creates spec's table if it does not exist and loads every record
	// of ds in one transaction. It returns the number of rows loaded.
	Load(ctx context.Context, spec *model.TableSpec, ds *model.Dataset) (int64, error)
	// Close releases the database connection.
	Close() error
}

// Options configures a Loader.
type Options struct {
	// Replace drops an existing table before creating it.
	Replace bool
	// ChunkSize is the number of rows per INSERT batch. Zero means DefaultChunkSize.
	// Postgres ignores it; COPY streams all rows.
	ChunkSize int
	// Logger receives per-table progress. Nil discards.
	Logger *slog.Logger
}

func (o Options) chunkSize() int {
	if o.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return o.ChunkSize
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
