package ingest

import (
	"errors"
	"fmt"
)

// ErrMissingInput reports that a required input file (provider export,
// taxonomy, auxiliary source) does not exist. It aborts a load.
var ErrMissingInput = errors.New("input file not found")

// FileError carries the file path and operation of a file-level failure.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// RequireFile returns a FileError wrapping ErrMissingInput when path is absent.
func RequireFile(path string) error {
	if path == "" {
		return &FileError{Op: "stat", Path: path, Err: fmt.Errorf("%w: empty path", ErrMissingInput)}
	}
	if _, err := statFile(path); err != nil {
		return err
	}
	return nil
}
