package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrBucketNotFound is returned when the configured bucket does not exist
	ErrBucketNotFound = errors.New("bucket does not exist")

	// ErrBlobNotFound is returned when a blob is read or deleted but is absent
	ErrBlobNotFound = errors.New("blob not found")

	// ErrBlobAlreadyExists is returned when a write with failIfExists hits an occupied key
	ErrBlobAlreadyExists = errors.New("blob already exists")
)

// StoreError reports a blob store that could not be initialized.
// The store must not be used after it is returned.
type StoreError struct {
	Bucket string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("blob store for bucket [%s]: %v", e.Bucket, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// MoveError reports a failed move. When Copied is true the target was written
// before the failure and both source and target are present.
type MoveError struct {
	Source string
	Target string
	Copied bool
	Err    error
}

func (e *MoveError) Error() string {
	if e.Copied {
		return fmt.Sprintf("move [%s] -> [%s]: copied but source not deleted: %v", e.Source, e.Target, e.Err)
	}
	return fmt.Sprintf("move [%s] -> [%s]: copy failed: %v", e.Source, e.Target, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}
