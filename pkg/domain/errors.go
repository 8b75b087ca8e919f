package domain

import "errors"

// error taxonomy shared by all roles, check with errors.Is
var (
	// ErrTransientFetch is a failure of one source fetch, retried on the next tick
	ErrTransientFetch = errors.New("transient fetch error")
	// ErrUnknownSource means no fetcher is registered for the task's source type
	ErrUnknownSource = errors.New("unknown source type")
	// ErrCapabilityUnavailable is a failed call to the judgment or refinement capability
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	// ErrMalformedResponse is a capability response that can't be interpreted
	ErrMalformedResponse = errors.New("malformed response")
	// ErrValidation marks unusable input or output, e.g. an empty refined criterion
	ErrValidation = errors.New("validation error")
	// ErrStoreUnavailable means the task store can't serve the operation, the message is redelivered
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrBrokerUnavailable means the broker connection is gone, fatal for the process
	ErrBrokerUnavailable = errors.New("broker unavailable")
	// ErrTaskNotFound is returned for unknown task ids
	ErrTaskNotFound = errors.New("task not found")
)
