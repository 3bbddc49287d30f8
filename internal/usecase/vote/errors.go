package vote

import "errors"

// ErrRateLimited indicates the identity submitted again before the minimum
// inter-request interval elapsed for at least one category.
var ErrRateLimited = errors.New("too many requests, retry later")

// PersistenceError wraps an unexpected failure of the durable ledger. It is
// the only error class the HTTP boundary converts to a generic 500 response.
type PersistenceError struct {
	Op  string
	Err error
}

// Error returns the operation and underlying error.
func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
