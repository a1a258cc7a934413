// Package apperr defines the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")

	// ErrAttachmentsUnavailable means the blob store could not be opened;
	// job tracking keeps working without it.
	ErrAttachmentsUnavailable = errors.New("attachment storage unavailable")
	// ErrAttachmentMissing means a record references an attachment that no
	// longer exists in the blob store.
	ErrAttachmentMissing = errors.New("attachment not found (maybe deleted)")
	// ErrInvalidImport means an import payload was rejected and nothing
	// was changed.
	ErrInvalidImport = errors.New("import failed: not a valid export file")
)
