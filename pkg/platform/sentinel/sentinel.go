package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and provider adapters return
// these (optionally wrapped) so services can decide how to degrade.
//
// These describe the state of a resource, not a validation failure:
// - ErrNotFound: key does not exist in the store (or has expired)
// - ErrUnavailable: backend temporarily unreachable
// - ErrNotConfigured: collaborator is missing credentials or an endpoint
//
// For validation errors (bad input, oversized batches), use pkg/domain-errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnavailable   = errors.New("unavailable")
	ErrNotConfigured = errors.New("not configured")
)
