package event

import "errors"

// Sentinel errors for event delivery.
var (
	// ErrEndpointClosed is returned by Deliver once the receiving side
	// has gone away.
	ErrEndpointClosed = errors.New("endpoint closed")

	// ErrDeliveryTimeout is returned when an endpoint stays full for
	// longer than the bus delivery timeout.
	ErrDeliveryTimeout = errors.New("delivery timeout exceeded")
)
