package pgimport

import (
	"fmt"

	"github.com/nao1215/pgimport/domain/model"
)

// OutputFormat represents the output file format
type OutputFormat int

const (
	// OutputFormatCSV represents CSV output format
	OutputFormatCSV OutputFormat = iota
	// OutputFormatTSV represents TSV output format
	OutputFormatTSV
)

// String returns the string representation of OutputFormat
func (f OutputFormat) String() string {
	switch f {
	case OutputFormatTSV:
		return "tsv"
	default:
		return "csv"
	}
}

// Extension returns the file extension for the format
func (f OutputFormat) Extension() string {
	switch f {
	case OutputFormatTSV:
		return model.ExtTSV
	default:
		return model.ExtCSV
	}
}

func (f OutputFormat) delimiter() rune {
	if f == OutputFormatTSV {
		return tsvDelimiter
	}
	return csvDelimiter
}

// ExportOptions configures how normalized datasets are written after a
// successful load.
//
// Example:
//
//	options := NewExportOptions().
//		WithFormat(OutputFormatTSV).
//		WithCompression(model.CompressionGZ)
type ExportOptions struct {
	// Format specifies the output file format
	Format OutputFormat
	// Compression specifies the compression type
	Compression model.Compression
}

// NewExportOptions creates default export options (CSV, no compression).
func NewExportOptions() ExportOptions {
	return ExportOptions{
		Format:      OutputFormatCSV,
		Compression: model.CompressionNone,
	}
}

// WithFormat sets the output file format.
func (o ExportOptions) WithFormat(format OutputFormat) ExportOptions {
	o.Format = format
	return o
}

// WithCompression adds compression to output files.
//
// Options:
//   - model.CompressionNone: No compression (default)
//   - model.CompressionGZ: Gzip compression (.gz)
//   - model.CompressionXZ: XZ compression (.xz)
//   - model.CompressionZSTD: Zstandard compression (.zst)
func (o ExportOptions) WithCompression(compression model.Compression) ExportOptions {
	o.Compression = compression
	return o
}

// FileExtension returns the complete file extension including compression
func (o ExportOptions) FileExtension() string {
	return o.Format.Extension() + o.Compression.Extension()
}

// Validate reports options that cannot be written.
func (o ExportOptions) Validate() error {
	if o.Format != OutputFormatCSV && o.Format != OutputFormatTSV {
		return fmt.Errorf("%w: output format %d", ErrInvalidOption, o.Format)
	}
	switch o.Compression {
	case model.CompressionNone, model.CompressionGZ, model.CompressionXZ, model.CompressionZSTD:
		return nil
	default:
		return fmt.Errorf("%w: %s compression is not supported for writing", ErrInvalidOption, o.Compression)
	}
}
