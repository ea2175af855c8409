package quotes

import "errors"

var (
	// ErrValidation reports a missing or empty required field, or an import
	// document whose top level is not a sequence.
	ErrValidation = errors.New("validation failed")
	// ErrParse reports a malformed import document.
	ErrParse = errors.New("malformed document")
	// ErrEmptyImport reports a well-formed document with no valid records.
	ErrEmptyImport = errors.New("no valid quotes in document")
	// ErrPersistenceWrite reports that the durable store rejected a write.
	ErrPersistenceWrite = errors.New("durable write failed")
)
