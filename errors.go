package tagline

import (
	"errors"
	"fmt"

	"github.com/zeebo/errs"
)

// Error roots every error this driver raises.
var Error = errs.Class("tagline")

// Sentinel error kinds. Alloc, Transport, IO and RecoveryFailed are
// returned to callers wrapped by Error so that errors.Is still matches the
// sentinel; a malformed response is folded into ErrTransport by
// Driver.send rather than getting its own kind, since callers handle it the
// same way either way. DiskFailed has no exported sentinel: it never
// reaches a caller directly, it only drives Recover internally.
var (
	ErrAlloc          = errors.New("alloc")
	ErrTransport      = errors.New("transport")
	ErrIO             = errors.New("io")
	ErrRecoveryFailed = errors.New("recovery failed")
)

func wrapAlloc(err error) error {
	return Error.Wrap(fmt.Errorf("%w: %v", ErrAlloc, err))
}

func wrapTransport(err error) error {
	return Error.Wrap(fmt.Errorf("%w: %v", ErrTransport, err))
}

func wrapIO(err error) error {
	return Error.Wrap(fmt.Errorf("%w: %v", ErrIO, err))
}

func wrapRecoveryFailed(err error) error {
	return Error.Wrap(fmt.Errorf("%w: %v", ErrRecoveryFailed, err))
}
