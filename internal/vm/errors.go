package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceExhausted matches every *ResourceError under errors.Is.
	ErrResourceExhausted = errors.New("resource exhausted")

	ErrThreadLimit = errors.New("backtrack thread ceiling reached")
	ErrStepLimit   = errors.New("instruction step limit reached")
)

// ResourceError reports a match aborted because its backtracking state
// outgrew a configured limit. The search was incomplete, so the result is
// not a reliable no-match.
type ResourceError struct {
	Resource string // "blocks", "threads" or "steps"
	Limit    int64
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("vm: %s exhausted (limit %d): %v", e.Resource, e.Limit, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

func (e *ResourceError) Is(target error) bool {
	return target == ErrResourceExhausted
}
