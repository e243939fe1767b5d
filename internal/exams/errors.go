package exams

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrAttemptFinished = errors.New("attempt already finished")
	ErrInvalidRequest  = errors.New("invalid request")
)

// InsufficientQuestionsError reports a sampling pool that cannot satisfy the
// requested exam size. No exam is created when this is returned.
type InsufficientQuestionsError struct {
	Pool      string
	Requested int
	Found     int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("insufficient questions in %s pool: requested %d, found %d", e.Pool, e.Requested, e.Found)
}
