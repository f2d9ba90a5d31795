package contract

import "errors"

var (
	// ErrConfiguration means a required credential or setting is absent or
	// invalid. It is raised once at construction time, never per request.
	ErrConfiguration = errors.New("assistant configuration invalid")

	// ErrUpstream means the model backend was unreachable, timed out, or
	// returned output we could not interpret. Retryable by the caller.
	ErrUpstream = errors.New("model backend failed")

	// ErrValidation covers malformed inbound requests and tool arguments
	// that fail their declared schema.
	ErrValidation = errors.New("validation failed")

	// ErrStorage means a domain store write failed.
	ErrStorage = errors.New("record store failed")
)
