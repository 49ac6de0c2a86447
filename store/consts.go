package store

import "errors"

// ErrUnknownRecord signals a record type the store does not project
var ErrUnknownRecord = errors.New("unknown record")

// ErrNoConnection signals a poll before any connection was registered
var ErrNoConnection = errors.New("no connection registered")
