package httpx

import "errors"

// ErrNotFound is returned by upstream clients when the remote resource
// does not exist, so handlers can map it to a 404 problem.
var ErrNotFound = errors.New("resource not found")
