package lint

import (
	"errors"
	"fmt"
)

// ErrTimeout indicates the linter did not finish within the configured timeout
var ErrTimeout = errors.New("linter timed out")

// StagingError wraps failures writing the temporary copy of the document
type StagingError struct {
	Err error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("stage document: %v", e.Err)
}

func (e *StagingError) Unwrap() error {
	return e.Err
}
