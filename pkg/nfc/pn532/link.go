package pn532

import (
	"context"
)

// Link moves raw bytes between the host and the chip.
type Link interface {
	// Write sends a complete frame.
	Write(ctx context.Context, frame []byte) error
	// Read copies received bytes into buf. It returns 0 and no error when
	// nothing arrived within the link's own short poll window.
	Read(ctx context.Context, buf []byte) (int, error)
	Close() error
}

// waker is implemented by links that need a wakeup sequence before the
// first command (HSU).
type waker interface {
	Wake(ctx context.Context) error
}
