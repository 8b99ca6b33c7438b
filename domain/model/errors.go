package model

import "errors"

var (
	// ErrEmptySchema is returned when a dataset has no columns, so there is no table to create.
	ErrEmptySchema = errors.New("empty schema: dataset has no columns")

	// ErrNameCollisionExhausted is returned when no free numeric suffix was found for a name.
	ErrNameCollisionExhausted = errors.New("name collision: numeric suffixes exhausted")

	// ErrRaggedRecord is returned when a record does not have one cell per column.
	ErrRaggedRecord = errors.New("record length does not match header")

	// ErrInvalidValue is returned when a cell cannot be converted to its column type.
	ErrInvalidValue = errors.New("invalid value for column type")
)
