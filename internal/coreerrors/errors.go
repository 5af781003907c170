// Package coreerrors defines the sentinel error kinds shared across the
// versioning and caching core. Collaborators match them with errors.Is;
// the core never swallows an error from its own dependencies except where
// cascade deletion explicitly tolerates it (see internal/corpus).
package coreerrors

import "errors"

var (
	// ErrInvalidArgument marks missing or malformed caller input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks an absent resource, version, or hash.
	ErrNotFound = errors.New("not found")

	// ErrInvalidVersion marks a version override that is not strictly
	// greater than the resource's current latest version.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrCorruptedCache marks a content-address checksum mismatch, or a
	// cache blob missing behind an extant metadata document.
	ErrCorruptedCache = errors.New("corrupted cache entry")

	// ErrBackend marks a document-store or cache-backend I/O failure.
	ErrBackend = errors.New("backend error")

	// ErrConcurrencyConflict marks a lost race during the insert-new/
	// flip-prior sequence of a save.
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrCancelled marks a cooperatively cancelled background task.
	ErrCancelled = errors.New("cancelled")

	// ErrBackendMiss marks a disk-cache backend I/O failure distinct from
	// an ordinary cache miss (missing file, permission error, corruption).
	ErrBackendMiss = errors.New("cache backend miss")
)
