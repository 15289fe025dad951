package domain

import "fmt"

// StorageError reports a failed schema, connect, insert, update or query operation
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err for the given store operation
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// ModelLoadError reports a missing or malformed model artifact.
// It is fatal at startup.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("classifier: failed to load model %q: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// PredictionError reports that the classifier rejected or failed on a feature vector
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("classifier: failed to predict: %v", e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }
