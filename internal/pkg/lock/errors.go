package lock

import "errors"

// ErrLockTimeout is returned when a key cannot be taken within the timeout.
var ErrLockTimeout = errors.New("lock acquisition timeout")
