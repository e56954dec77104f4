package asset

import (
	"errors"
	"fmt"
)

// package errors
var (
	ErrUnknownAssetKind = errors.New("asset: no loader registered for kind")
	ErrResourceNotFound = errors.New("asset: resource not found")
	ErrAssetMissing     = errors.New("asset: referenced asset is not in the store")
	ErrInvalidCommit    = errors.New("asset: invalid commit")
	ErrBatchClosed      = errors.New("asset: batch already finished")
	ErrQueueEmpty       = errors.New("asset: queue is empty")
)

// LoadError names the request that failed a batch.
type LoadError struct {
	Kind  Kind
	Alias string
	Path  string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("asset: loading %s %q from %q: %v", e.Kind, e.Alias, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func wrap(req Request, err error) error {
	var le *LoadError
	if errors.As(err, &le) && le.Alias == req.Alias && le.Path == req.Path {
		return err
	}
	return &LoadError{Kind: req.Kind, Alias: req.Alias, Path: req.Path, Err: err}
}
