package pgimport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/pgimport/domain/model"
	"github.com/nao1215/pgimport/loader"
)

// Importer turns the collected data files into tables. Create one with Builder.
type Importer struct {
	files  []string
	export *exportConfig
	logger *slog.Logger
}

// TableResult describes one dataset that became a table.
type TableResult struct {
	// Spec is the table that was created.
	Spec *model.TableSpec
	// Source is the path of the file the dataset came from.
	Source string
	// Rows is the number of rows loaded, or that would be loaded by Plan.
	Rows int64
	// ExportPath is the normalized export, empty when export is disabled.
	ExportPath string
}

// Failure is an error scoped to one file or one dataset.
type Failure struct {
	// Source is the path of the file.
	Source string
	// Dataset is the dataset name, empty when the file could not be read at all.
	Dataset string
	Err     error
}

// Report summarizes a run.
type Report struct {
	Tables   []TableResult
	Failures []Failure
}

// RowsLoaded returns the number of rows across all tables.
func (r *Report) RowsLoaded() int64 {
	var n int64
	for _, t := range r.Tables {
		n += t.Rows
	}
	return n
}

// Err joins the errors of all failures, or returns nil when there were none.
func (r *Report) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

func (r *Report) addFailure(source, dataset string, err error) {
	r.Failures = append(r.Failures, Failure{Source: source, Dataset: dataset, Err: err})
}

// Files returns the data files the importer will read, in order.
func (im *Importer) Files() []string {
	return append([]string(nil), im.files...)
}

// Run loads every dataset of every file through l. Files are processed
// sequentially and table names are unique within the run. A dataset that
// fails is recorded in the report and the run moves on. Run returns an
// error when ctx is cancelled or when no table could be loaded.
func (im *Importer) Run(ctx context.Context, l loader.Loader) (*Report, error) {
	report, err := im.process(ctx, func(ctx context.Context, spec *model.TableSpec, ds *model.Dataset, result *TableResult) error {
		rows, err := l.Load(ctx, spec, ds)
		if err != nil {
			return err
		}
		result.Rows = rows
		im.logger.Info("table loaded", "table", spec.Name, "source", result.Source, "rows", rows, "columns", len(spec.Columns))

		if im.export != nil {
			path, err := ExportDataset(im.export.dir, spec, ds, im.export.options)
			if err != nil {
				im.logger.Warn("export failed", "table", spec.Name, "error", err)
				return nil
			}
			result.ExportPath = path
			im.logger.Debug("dataset exported", "table", spec.Name, "path", path)
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	im.logger.Info("import finished", "tables", len(report.Tables), "rows", report.RowsLoaded(), "failures", len(report.Failures))
	if len(report.Tables) == 0 {
		return report, fmt.Errorf("%w: %d files, %d failures", ErrNothingLoaded, len(im.files), len(report.Failures))
	}
	return report, nil
}

// Plan reads every file and derives the table specs without touching a
// database. It uses its own name registry, so the names match what Run
// would create.
func (im *Importer) Plan(ctx context.Context) (*Report, error) {
	return im.process(ctx, func(_ context.Context, _ *model.TableSpec, ds *model.Dataset, result *TableResult) error {
		result.Rows = int64(ds.NumRows())
		return nil
	})
}

// datasetHandler handles one dataset whose spec has been built. A returned
// error fails the dataset and releases its table name.
type datasetHandler func(ctx context.Context, spec *model.TableSpec, ds *model.Dataset, result *TableResult) error

func (im *Importer) process(ctx context.Context, handle datasetHandler) (*Report, error) {
	names := model.NewNameRegistry()
	report := &Report{}

	for _, path := range im.files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		src, err := NewDatasetSource(path)
		if err != nil {
			im.logger.Error("cannot read file", "file", path, "error", err)
			report.addFailure(path, "", err)
			continue
		}

		im.logger.Debug("processing file", "file", path, "type", src.File().Type().String())
		for ds, err := range src.Datasets(ctx) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			if err != nil {
				im.logger.Error("cannot read dataset", "file", path, "error", err)
				report.addFailure(path, "", err)
				continue
			}
			im.processDataset(ctx, names, path, ds, handle, report)
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (im *Importer) processDataset(ctx context.Context, names *model.NameRegistry, path string, ds *model.Dataset, handle datasetHandler, report *Report) {
	spec, err := model.BuildTableSpec(ds.Name, ds, names)
	if err != nil {
		err = NewErrorContext("build table spec", path).WithDetails("dataset " + ds.Name).Error(err)
		im.logger.Error("cannot build table spec", "file", path, "dataset", ds.Name, "error", err)
		report.addFailure(path, ds.Name, err)
		return
	}

	result := TableResult{Spec: spec, Source: path}
	if err := handle(ctx, spec, ds, &result); err != nil {
		names.Release(spec.Name)
		err = NewErrorContext("load", path).WithTable(spec.Name).Error(err)
		im.logger.Error("cannot load table", "file", path, "table", spec.Name, "error", err)
		report.addFailure(path, ds.Name, err)
		return
	}
	report.Tables = append(report.Tables, result)
}
