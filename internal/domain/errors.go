package domain

import "errors"

// ErrNotFound is returned when a requested resource (trip, airport, geocode
// entry, sheet row) does not exist. Handlers map this to HTTP 404; the
// resolver maps a lookup miss at a call site that required a resolution into
// ErrValidation instead.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (missing required field, unresolvable location, unknown mode).
// Detected before any lock is taken. Handlers map this to HTTP 422.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write loses an authoritative check inside
// the exclusive lock: creating a trip whose id already exists, or updating /
// deleting a trip that does not. Handlers map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrLockTimeout is returned when the store-wide exclusive lock cannot be
// acquired within the configured bound. The operation performed no writes
// and is never retried automatically. Handlers map this to HTTP 503.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// ErrStoreUnavailable is returned when the backing sheets are missing their
// header rows, i.e. the store was never bootstrapped. Detected before any
// write. Handlers map this to HTTP 503.
var ErrStoreUnavailable = errors.New("row store unavailable")
