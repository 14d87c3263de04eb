package serialize

import "github.com/cockroachdb/errors"

// ErrMalformed is this package's error kind sentinel: every structural
// violation found while decoding wraps it, so callers can test with
// errors.Is regardless of which specific check failed.
var ErrMalformed = errors.New("serialize: malformed dump")
