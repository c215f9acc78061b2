package pn532

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gregLibert/tapid/internal/syncutil"
	"github.com/gregLibert/tapid/pkg/nfc"
)

// DefaultPollInterval is the pause between two empty field polls.
const DefaultPollInterval = 100 * time.Millisecond

// Transceiver adapts a Device to nfc.Transceiver.
type Transceiver struct {
	dev  *Device
	poll time.Duration

	mu     syncutil.Mutex
	ready  bool
	target *Target
}

var _ nfc.Transceiver = (*Transceiver)(nil)

// NewTransceiver wraps dev. A poll interval of 0 selects
// DefaultPollInterval.
func NewTransceiver(dev *Device, poll time.Duration) *Transceiver {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Transceiver{dev: dev, poll: poll}
}

// Target returns the target of the current session, nil outside one.
func (t *Transceiver) Target() *Target {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.target
}

// RequestSession initializes the chip on first use, then polls the field
// until an ISO-DEP target answers or ctx is done. A target without ISO
// 14443-4 support fails with nfc.ErrNoTechnologyAvailable.
func (t *Transceiver) RequestSession(ctx context.Context, tech nfc.Technology) error {
	if tech != nfc.IsoDep {
		return fmt.Errorf("PN532 cannot provide %s: %w", tech, nfc.ErrNoTechnologyAvailable)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ready {
		if err := t.dev.Init(ctx); err != nil {
			return fmt.Errorf("PN532 init: %w", err)
		}
		t.ready = true
	}

	for {
		target, err := t.dev.InListPassiveTarget(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrNoTarget):
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(t.poll):
			}
			continue
		default:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("PN532 poll: %w", err)
		}

		if !target.SupportsISO14443_4() {
			_ = t.dev.InRelease(context.Background(), target.Number)
			return fmt.Errorf("target %X (SEL_RES %02X) is not ISO 14443-4: %w",
				target.UID, target.SelRes, nfc.ErrNoTechnologyAvailable)
		}

		t.target = target
		return nil
	}
}

func (t *Transceiver) Transceive(ctx context.Context, apdu []byte) ([]byte, error) {
	t.mu.Lock()
	target := t.target
	t.mu.Unlock()

	if target == nil {
		return nil, nfc.ErrNoSession
	}

	resp, err := t.dev.InDataExchange(ctx, target.Number, apdu)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, transceiveError("InDataExchange", err)
	}
	return resp, nil
}

// ReleaseSession deselects the target. Errors from a target that already
// left the field are ignored.
func (t *Transceiver) ReleaseSession() error {
	t.mu.Lock()
	target := t.target
	t.target = nil
	t.mu.Unlock()

	if target == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.dev.timeout)
	defer cancel()

	var se *StatusError
	if err := t.dev.InRelease(ctx, target.Number); err != nil && !errors.As(err, &se) {
		return fmt.Errorf("PN532 release: %w", err)
	}
	return nil
}

// Close releases any session and closes the link.
func (t *Transceiver) Close() error {
	_ = t.ReleaseSession()
	return t.dev.Close()
}
