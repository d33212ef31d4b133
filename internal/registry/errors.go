package registry

import "errors"

// Every failure a Registry operation can report is classified under one of
// these sentinels. Callers match with errors.Is; the wrapped chain keeps the
// backend diagnostic for logging without leaking it to clients.
var (
	// ErrValidation covers empty or unsafe filenames and missing upload content.
	ErrValidation = errors.New("validation failed")

	// ErrSizeLimit is returned when an upload exceeds the configured maximum.
	ErrSizeLimit = errors.New("file exceeds size limit")

	// ErrNotFound is returned when an id has no row in the metadata store.
	ErrNotFound = errors.New("file not found")

	// ErrStorageWrite is returned when the object-store put fails. No
	// metadata row is created in that case.
	ErrStorageWrite = errors.New("object store write failed")

	// ErrStorageDelete is returned when the object-store delete call itself
	// fails. The record keeps its previous status.
	ErrStorageDelete = errors.New("object store delete failed")

	// ErrMetadataWrite is returned when the metadata store fails after the
	// object store already succeeded. Distinct from ErrStorageWrite so
	// operators can detect orphaned objects.
	ErrMetadataWrite = errors.New("metadata store write failed")

	// ErrUnauthorized is returned by access gates on a missing or wrong key.
	ErrUnauthorized = errors.New("unauthorized")
)
