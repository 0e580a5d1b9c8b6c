package biz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrImageNotFound means no persisted image matches the given id
	ErrImageNotFound = errors.New("image not found")

	// ErrDuplicateImage means an image with the same content hash is
	// already persisted
	ErrDuplicateImage = errors.New("duplicate image detected")

	// ErrSessionNotFound means the chunk referenced an unknown session id
	ErrSessionNotFound = errors.New("upload session not found")

	// ErrSessionExpired means the session is past its 24-hour lifetime
	ErrSessionExpired = errors.New("upload session expired")

	// ErrSessionFinished means the session already reached a terminal state
	ErrSessionFinished = errors.New("upload session already finished")

	// ErrChunkOutOfRange means the chunk index is outside 0..totalChunks-1
	ErrChunkOutOfRange = errors.New("chunk index out of range")

	// ErrChunkCountMismatch means the declared total differs from the
	// session's declared total
	ErrChunkCountMismatch = errors.New("total chunk count does not match session")
)

// ValidationError carries the full violation list for a rejected upload.
// The violations are user-facing strings, fully explaining the rejection.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("image validation failed: %s", strings.Join(e.Violations, "; "))
}

// StorageError wraps a blob-store or metadata-store failure with the
// operation that produced it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
