package database

import "errors"

// ErrConflict marks retryable concurrency losses: unique-key races and
// serialization failures. Callers may re-read and retry; every other
// constraint violation is a logic bug and is not wrapped into it.
var ErrConflict = errors.New("conflicting concurrent write")
