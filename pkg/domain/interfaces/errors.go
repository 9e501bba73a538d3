package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is wrapped by all repository backends when a record does not
// exist, so callers can branch with errors.Is regardless of backend.
var ErrNotFound = goerr.New("record not found")
