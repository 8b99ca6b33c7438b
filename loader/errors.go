package loader

import "errors"

// Predefined errors
var (
	// ErrTooManyColumns is returned when a table exceeds the column limit of the target database
	ErrTooManyColumns = errors.New("loader: too many columns")

	// ErrInvalidIdentifier is returned when a table or column name is not a normalized identifier
	ErrInvalidIdentifier = errors.New("loader: invalid SQL identifier")

	// ErrColumnMismatch is returned when a dataset does not match its table spec
	ErrColumnMismatch = errors.New("loader: dataset does not match table spec")

	// ErrUnknownDialect is returned for an unsupported SQL dialect
	ErrUnknownDialect = errors.New("loader: unknown dialect")
)
