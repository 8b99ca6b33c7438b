package pgimport

import (
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/nao1215/pgimport/domain/model"
	"github.com/ulikunitz/xz"
)

// CompressionHandler wraps streams with the codec of one model.Compression.
// Both wrap methods return a close function that must be called once the
// stream is done; for writers it flushes the codec trailer.
type CompressionHandler interface {
	CreateReader(r io.Reader) (io.Reader, func() error, error)
	CreateWriter(w io.Writer) (io.Writer, func() error, error)
	// Extension is the suffix the codec adds to a file name, "" for none.
	Extension() string
}

// codec pairs the decode and encode side of one compression format.
// A nil encode means the format is read-only.
type codec struct {
	decode func(io.Reader) (io.Reader, func() error, error)
	encode func(io.Writer) (io.Writer, func() error, error)
}

var codecs = map[model.Compression]codec{
	model.CompressionNone: {
		decode: func(r io.Reader) (io.Reader, func() error, error) { return r, nopClose, nil },
		encode: func(w io.Writer) (io.Writer, func() error, error) { return w, nopClose, nil },
	},
	model.CompressionGZ: {
		decode: func(r io.Reader) (io.Reader, func() error, error) {
			gz, err := gzip.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("gzip: %w", err)
			}
			return gz, gz.Close, nil
		},
		encode: func(w io.Writer) (io.Writer, func() error, error) {
			gz := gzip.NewWriter(w)
			return gz, gz.Close, nil
		},
	},
	model.CompressionBZ2: {
		decode: func(r io.Reader) (io.Reader, func() error, error) { return bzip2.NewReader(r), nopClose, nil },
	},
	model.CompressionXZ: {
		decode: func(r io.Reader) (io.Reader, func() error, error) {
			xr, err := xz.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("xz: %w", err)
			}
			return xr, nopClose, nil
		},
		encode: func(w io.Writer) (io.Writer, func() error, error) {
			xw, err := xz.NewWriter(w)
			if err != nil {
				return nil, nil, fmt.Errorf("xz: %w", err)
			}
			return xw, xw.Close, nil
		},
	},
	model.CompressionZSTD: {
		decode: func(r io.Reader) (io.Reader, func() error, error) {
			dec, err := zstd.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("zstd: %w", err)
			}
			return dec, func() error {
				dec.Close()
				return nil
			}, nil
		},
		encode: func(w io.Writer) (io.Writer, func() error, error) {
			enc, err := zstd.NewWriter(w)
			if err != nil {
				return nil, nil, fmt.Errorf("zstd: %w", err)
			}
			return enc, enc.Close, nil
		},
	},
}

type codecHandler struct {
	kind model.Compression
}

// NewCompressionHandler returns the handler for kind.
func NewCompressionHandler(kind model.Compression) CompressionHandler {
	return codecHandler{kind: kind}
}

func (h codecHandler) CreateReader(r io.Reader) (io.Reader, func() error, error) {
	c, ok := codecs[h.kind]
	if !ok {
		return nil, nil, fmt.Errorf("cannot decompress %v", h.kind)
	}
	return c.decode(r)
}

func (h codecHandler) CreateWriter(w io.Writer) (io.Writer, func() error, error) {
	c, ok := codecs[h.kind]
	if !ok || c.encode == nil {
		return nil, nil, fmt.Errorf("cannot compress with %v", h.kind)
	}
	return c.encode(w)
}

func (h codecHandler) Extension() string {
	return h.kind.Extension()
}

func nopClose() error { return nil }

// openDecompressed opens f and returns its decoded content. The close func releases
// the codec and then the file.
func openDecompressed(f *model.File) (io.Reader, func() error, error) {
	fp, err := os.Open(f.Path()) //nolint:gosec // paths come from the caller
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", f.Path(), err)
	}

	r, release, err := NewCompressionHandler(f.Compression()).CreateReader(fp)
	if err != nil {
		_ = fp.Close()
		return nil, nil, err
	}
	return r, func() error { return errors.Join(release(), fp.Close()) }, nil
}

// createCompressed creates path and returns a writer encoding into it. A
// codec that cannot write leaves no file behind. The close func flushes the codec
// before syncing and closing the file, and reports the first error.
func createCompressed(path string, kind model.Compression) (io.Writer, func() error, error) {
	fp, err := os.Create(path) //nolint:gosec // paths come from the caller
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}

	w, flush, err := NewCompressionHandler(kind).CreateWriter(fp)
	if err != nil {
		_ = fp.Close()
		_ = os.Remove(path)
		return nil, nil, err
	}

	return w, func() error {
		err := flush()
		if syncErr := fp.Sync(); err == nil {
			err = syncErr
		}
		if closeErr := fp.Close(); err == nil {
			err = closeErr
		}
		return err
	}, nil
}
