package event

import (
	"time"

	"github.com/dshills/textcore/internal/logging"
)

// BusOption configures a Bus.
type BusOption func(*busConfig)

type busConfig struct {
	// deliveryTimeout bounds a single Deliver call. Zero waits forever.
	deliveryTimeout time.Duration

	logger *logging.Logger
}

func defaultBusConfig() busConfig {
	return busConfig{
		deliveryTimeout: 5 * time.Second,
		logger:          logging.Nop(),
	}
}

// WithDeliveryTimeout bounds how long one endpoint may hold up a dispatch.
// An endpoint that times out is treated as unresponsive and removed.
// Zero disables the bound.
func WithDeliveryTimeout(d time.Duration) BusOption {
	return func(c *busConfig) {
		if d >= 0 {
			c.deliveryTimeout = d
		}
	}
}

// WithLogger sets the logger used to report pruned endpoints.
func WithLogger(l *logging.Logger) BusOption {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
