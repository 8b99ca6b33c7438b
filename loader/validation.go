package loader

import (
	"fmt"

	"github.com/nao1215/pgimport/domain/model"
)

// MaxColumnCount is the PostgreSQL limit of columns per table
const MaxColumnCount = 1600

// ValidateSpec checks that spec can be turned into DDL and that ds fits it.
func ValidateSpec(spec *model.TableSpec, ds *model.Dataset) error {
	if len(spec.Columns) > MaxColumnCount {
		return fmt.Errorf("%w: table %s has %d columns, limit is %d",
			ErrTooManyColumns, spec.Name, len(spec.Columns), MaxColumnCount)
	}
	if !model.IsValidIdentifier(spec.Name) {
		return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, spec.Name)
	}
	for _, col := range spec.Columns {
		if !model.IsValidIdentifier(col.Name) {
			return fmt.Errorf("%w: column %q of table %s", ErrInvalidIdentifier, col.Name, spec.Name)
		}
	}
	if ds == nil {
		return nil
	}
	if ds.NumColumns() != len(spec.Columns) {
		return fmt.Errorf("%w: table %s has %d columns, dataset %q has %d",
			ErrColumnMismatch, spec.Name, len(spec.Columns), ds.Name, ds.NumColumns())
	}
	return ds.Validate()
}
