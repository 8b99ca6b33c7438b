package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileType is the data format of an input file, detected from its extension.
type FileType int

const (
	FileTypeCSV FileType = iota
	FileTypeTSV
	FileTypeJSON
	FileTypeXLSX // .xlsx and .xlsm
	FileTypeParquet
	FileTypeUnsupported
)

// String returns the file type name
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "csv"
	case FileTypeTSV:
		return "tsv"
	case FileTypeJSON:
		return "json"
	case FileTypeXLSX:
		return "xlsx"
	case FileTypeParquet:
		return "parquet"
	default:
		return "unsupported"
	}
}

// Data format extensions, matched case-insensitively.
const (
	ExtCSV     = ".csv"
	ExtTSV     = ".tsv"
	ExtJSON    = ".json"
	ExtXLSX    = ".xlsx"
	ExtXLSM    = ".xlsm" // macro-enabled workbook
	ExtParquet = ".parquet"
)

// Compression extensions. They follow the data extension: "sales.csv.gz".
const (
	ExtGZ   = ".gz"
	ExtBZ2  = ".bz2"
	ExtXZ   = ".xz"
	ExtZSTD = ".zst"
)

var compressionExtensions = []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD}

// Compression represents the compression applied to a file
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGZ
	CompressionBZ2 // read-only
	CompressionXZ
	CompressionZSTD
)

// String returns the short name used by ParseCompression, "none" included.
func (c Compression) String() string {
	switch c {
	case CompressionGZ:
		return "gz"
	case CompressionBZ2:
		return "bz2"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file extension for the compression type
func (c Compression) Extension() string {
	switch c {
	case CompressionGZ:
		return ExtGZ
	case CompressionBZ2:
		return ExtBZ2
	case CompressionXZ:
		return ExtXZ
	case CompressionZSTD:
		return ExtZSTD
	default:
		return ""
	}
}

// ParseCompression parses a compression name as printed by Compression.String.
// "zst" is accepted as an alias of "zstd" and "" as "none".
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "gz", "gzip":
		return CompressionGZ, nil
	case "bz2", "bzip2":
		return CompressionBZ2, nil
	case "xz":
		return CompressionXZ, nil
	case "zst", "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression %q", name)
	}
}

// File is a data file path with its detected format and compression.
type File struct {
	path        string
	fileType    FileType
	compression Compression
}

// NewFile detects the type and compression of path. It does not touch the file system.
func NewFile(path string) *File {
	return &File{
		path:        path,
		fileType:    DetectFileType(path),
		compression: DetectCompression(path),
	}
}

// Path is the path the File was created with.
func (f *File) Path() string {
	return f.path
}

// Type is FileTypeUnsupported for unknown extensions.
func (f *File) Type() FileType {
	return f.fileType
}

// Compression returns the compression of the file
func (f *File) Compression() Compression {
	return f.compression
}

// IsCompressed reports whether the name carries a compression suffix.
func (f *File) IsCompressed() bool {
	return f.compression != CompressionNone
}

// DatasetName returns the raw dataset name derived from the file path
func (f *File) DatasetName() string {
	return TableFromFilePath(f.path)
}

// IsSupportedFile reports whether fileName, minus any compression suffix,
// has a data format extension.
func IsSupportedFile(fileName string) bool {
	return DetectFileType(fileName) != FileTypeUnsupported
}

// DetectCompression detects the compression type from a file path
func DetectCompression(path string) Compression {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ExtGZ):
		return CompressionGZ
	case strings.HasSuffix(lower, ExtBZ2):
		return CompressionBZ2
	case strings.HasSuffix(lower, ExtXZ):
		return CompressionXZ
	case strings.HasSuffix(lower, ExtZSTD):
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

// DetectFileType detects file type from extension, considering compressed files
func DetectFileType(path string) FileType {
	basePath := strings.TrimSuffix(strings.ToLower(path), DetectCompression(path).Extension())

	switch filepath.Ext(basePath) {
	case ExtCSV:
		return FileTypeCSV
	case ExtTSV:
		return FileTypeTSV
	case ExtJSON:
		return FileTypeJSON
	case ExtXLSX, ExtXLSM:
		return FileTypeXLSX
	case ExtParquet:
		return FileTypeParquet
	default:
		return FileTypeUnsupported
	}
}
