package pgimport

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/nao1215/pgimport/domain/model"
)

// validator checks Builder inputs before any file is read.
type validator struct{}

func newValidator() *validator {
	return &validator{}
}

// validatePath accepts an existing directory or an existing file with a
// supported extension.
func (v *validator) validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty input path", ErrInvalidOption)
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	case err != nil:
		return fmt.Errorf("stat %s: %w", path, err)
	case info.IsDir(), model.IsSupportedFile(path):
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// validateOutputDirectory accepts a directory or a path that does not exist
// yet; exports create it.
func (v *validator) validateOutputDirectory(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("%w: empty export directory", ErrInvalidOption)
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("stat %s: %w", dir, err)
	case !info.IsDir():
		return fmt.Errorf("%w: export path %s is not a directory", ErrInvalidOption, dir)
	}
	return nil
}

func (v *validator) validateInputsAvailable(files []string) error {
	if len(files) == 0 {
		return ErrNoInputFiles
	}
	return nil
}
