package pgimport

import (
	"context"
	"fmt"
	"log/slog"
)

// Builder collects input paths and options for an Importer. The setters
// return the builder so calls can be chained:
//
//	importer, err := pgimport.NewBuilder().
//		AddPath("unprocessed_data").
//		EnableExport("processed_data", pgimport.NewExportOptions()).
//		Build(ctx)
//	if err != nil {
//		return err
//	}
//	report, err := importer.Run(ctx, l)
type Builder struct {
	paths  []string
	export *exportConfig // nil unless EnableExport was called
	logger *slog.Logger
}

type exportConfig struct {
	dir     string
	options ExportOptions
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddPath adds a data file or a directory. A directory contributes the
// supported files directly inside it; subdirectories are not scanned.
// Files may carry a .gz, .bz2, .xz or .zst suffix.
func (b *Builder) AddPath(path string) *Builder {
	b.paths = append(b.paths, path)
	return b
}

// AddPaths is AddPath for several paths.
func (b *Builder) AddPaths(paths ...string) *Builder {
	b.paths = append(b.paths, paths...)
	return b
}

// EnableExport writes every successfully loaded dataset to outputDir with
// its normalized column names.
func (b *Builder) EnableExport(outputDir string, options ExportOptions) *Builder {
	b.export = &exportConfig{dir: outputDir, options: options}
	return b
}

// SetLogger sets the logger for import progress. Without one, logs are discarded.
func (b *Builder) SetLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build checks every path and the export settings, then expands
// directories into their data files. It fails with ErrNoInputFiles when
// nothing is left to import.
func (b *Builder) Build(ctx context.Context) (*Importer, error) {
	if len(b.paths) == 0 {
		return nil, fmt.Errorf("%w: no path was added", ErrNoInputFiles)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := newValidator()
	for _, path := range b.paths {
		if err := v.validatePath(path); err != nil {
			return nil, err
		}
	}

	if b.export != nil {
		if err := v.validateOutputDirectory(b.export.dir); err != nil {
			return nil, err
		}
		if err := b.export.options.Validate(); err != nil {
			return nil, err
		}
	}

	files, err := collectFiles(b.paths)
	if err != nil {
		return nil, err
	}
	if err := v.validateInputsAvailable(files); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Importer{
		files:  files,
		export: b.export,
		logger: logger,
	}, nil
}
