package events

import "errors"

var (
	// ErrMalformedEvent indicates a message payload is not a valid document event.
	ErrMalformedEvent = errors.New("malformed document event")

	// ErrClosed indicates the publisher or consumer has been closed.
	ErrClosed = errors.New("event channel closed")
)
