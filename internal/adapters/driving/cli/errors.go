package cli

import "errors"

// errChecksFailed is returned when a validation command completes but its
// checks did not pass, so the process exits non-zero.
var errChecksFailed = errors.New("validation checks failed")
