package dataset

import (
	"errors"
	"fmt"
)

// ErrLoad matches every *LoadError.
var ErrLoad = errors.New("dataset load failed")

type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }
