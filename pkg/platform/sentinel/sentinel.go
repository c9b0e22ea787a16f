package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, ledger adapters and the
// demo service return these (optionally wrapped) so callers can match on them
// with errors.Is.
//
// - ErrNotFound: record, asset or identity does not exist
// - ErrConflict: a concurrent operation already holds the resource (the live run slot)
// - ErrInvalidState: resource in the wrong state for the requested operation (a run executed twice)
// - ErrUnavailable: backing service temporarily unreachable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
