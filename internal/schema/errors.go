package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedSource   = errors.New("unsupported schema source")
	ErrIncompatibleVersion = errors.New("incompatible schema version")
)

// ValidationError lists every invariant a schema document violates.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid schema: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid schema (%d problems): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}
