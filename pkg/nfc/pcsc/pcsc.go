// Package pcsc implements nfc.Transceiver on top of a PC/SC reader, e.g. an
// ACR122U or any contactless reader with a CCID driver.
package pcsc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ebfe/scard"

	"github.com/gregLibert/tapid/internal/syncutil"
	"github.com/gregLibert/tapid/pkg/nfc"
)

// pollInterval bounds each GetStatusChange call so ctx is checked regularly
// even when Context.Cancel is not honoured by the PC/SC service.
const pollInterval = 250 * time.Millisecond

// Card is the part of *scard.Card the transceiver uses.
type Card interface {
	Transmit(cmd []byte) ([]byte, error)
	Disconnect(d scard.Disposition) error
}

// Context is the part of *scard.Context the transceiver uses.
type Context interface {
	ListReaders() ([]string, error)
	GetStatusChange(rs []scard.ReaderState, timeout time.Duration) error
	Connect(reader string, mode scard.ShareMode, proto scard.Protocol) (Card, error)
	Cancel() error
	Release() error
}

type realContext struct {
	ctx *scard.Context
}

func (r *realContext) ListReaders() ([]string, error) {
	return r.ctx.ListReaders()
}

func (r *realContext) GetStatusChange(rs []scard.ReaderState, timeout time.Duration) error {
	return r.ctx.GetStatusChange(rs, timeout)
}

func (r *realContext) Connect(reader string, mode scard.ShareMode, proto scard.Protocol) (Card, error) {
	card, err := r.ctx.Connect(reader, mode, proto)
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (r *realContext) Cancel() error {
	return r.ctx.Cancel()
}

func (r *realContext) Release() error {
	return r.ctx.Release()
}

// EstablishContext opens the system PC/SC resource manager.
func EstablishContext() (Context, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("failed to establish PC/SC context: %w", mapError("establish", err))
	}
	return &realContext{ctx: ctx}, nil
}

// Transceiver talks to the card presented on one PC/SC reader.
type Transceiver struct {
	ctx    Context
	reader string

	mu   syncutil.Mutex
	card Card
}

var _ nfc.Transceiver = (*Transceiver)(nil)

// New returns a Transceiver bound to reader. An empty reader selects the
// first one the service reports.
func New(ctx Context, reader string) (*Transceiver, error) {
	if reader == "" {
		readers, err := ctx.ListReaders()
		if err != nil {
			return nil, fmt.Errorf("failed to list readers: %w", mapError("list readers", err))
		}
		if len(readers) == 0 {
			return nil, fmt.Errorf("no PC/SC reader found: %w", nfc.ErrNoTechnologyAvailable)
		}
		reader = readers[0]
	}
	return &Transceiver{ctx: ctx, reader: reader}, nil
}

// Reader returns the name of the reader in use.
func (t *Transceiver) Reader() string {
	return t.reader
}

// RequestSession waits for a card on the reader and connects to it.
func (t *Transceiver) RequestSession(ctx context.Context, tech nfc.Technology) error {
	if tech != nfc.IsoDep {
		return fmt.Errorf("PC/SC reader cannot provide %s: %w", tech, nfc.ErrNoTechnologyAvailable)
	}

	stop := context.AfterFunc(ctx, func() { _ = t.ctx.Cancel() })
	defer stop()

	if err := t.waitForCard(ctx); err != nil {
		return err
	}

	card, err := t.ctx.Connect(t.reader, scard.ShareExclusive, scard.ProtocolAny)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", t.reader, mapError("connect", err))
	}

	t.mu.Lock()
	t.card = card
	t.mu.Unlock()
	return nil
}

func (t *Transceiver) waitForCard(ctx context.Context) error {
	rs := []scard.ReaderState{{Reader: t.reader, CurrentState: scard.StateUnaware}}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := t.ctx.GetStatusChange(rs, pollInterval)
		switch {
		case err == nil:
		case errors.Is(err, scard.ErrTimeout):
			continue
		case errors.Is(err, scard.ErrCancelled) && ctx.Err() != nil:
			return ctx.Err()
		default:
			return fmt.Errorf("failed to wait for card: %w", mapError("wait", err))
		}

		if rs[0].EventState&scard.StatePresent != 0 {
			return nil
		}
		rs[0].CurrentState = rs[0].EventState
	}
}

// Transceive transmits apdu to the connected card. SCardTransmit has no
// cancellation of its own: when ctx ends mid exchange the card is
// disconnected, which makes the pending transmit return, and the session
// ends.
func (t *Transceiver) Transceive(ctx context.Context, apdu []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	card := t.card
	t.mu.Unlock()
	if card == nil {
		return nil, nfc.ErrNoSession
	}

	stop := context.AfterFunc(ctx, func() { t.abort(card) })
	resp, err := card.Transmit(apdu)
	if !stop() {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, mapError("transmit", err)
	}
	return resp, nil
}

// abort drops card from the session and disconnects it.
func (t *Transceiver) abort(card Card) {
	t.mu.Lock()
	if t.card != card {
		t.mu.Unlock()
		return
	}
	t.card = nil
	t.mu.Unlock()

	_ = card.Disconnect(scard.ResetCard)
}

// ReleaseSession disconnects from the card, resetting it so the next tap
// starts clean. It is a no-op without a session.
func (t *Transceiver) ReleaseSession() error {
	t.mu.Lock()
	card := t.card
	t.card = nil
	t.mu.Unlock()

	if card == nil {
		return nil
	}
	if err := card.Disconnect(scard.ResetCard); err != nil {
		return fmt.Errorf("failed to disconnect: %w", mapError("disconnect", err))
	}
	return nil
}

// Close releases the PC/SC context.
func (t *Transceiver) Close() error {
	_ = t.ReleaseSession()
	return t.ctx.Release()
}

// mapError translates PC/SC codes into the nfc error vocabulary.
func mapError(op string, err error) error {
	var code scard.Error
	if !errors.As(err, &code) {
		return &nfc.TransceiveError{Op: op, Err: err}
	}

	switch code {
	case scard.ErrRemovedCard, scard.ErrResetCard, scard.ErrUnpoweredCard, scard.ErrNoSmartcard:
		return &nfc.TransceiveError{Op: op, Reason: nfc.ReasonTagLost, Err: err}
	case scard.ErrCommError, scard.ErrUnresponsiveCard, scard.ErrProtoMismatch, scard.ErrInvalidAtr:
		return &nfc.TransceiveError{Op: op, Reason: nfc.ReasonCorruptedFrame, Err: err}
	case scard.ErrTimeout:
		return &nfc.TransceiveError{Op: op, Reason: nfc.ReasonTimeout, Err: err}
	case scard.ErrSharingViolation, scard.ErrSecurityViolation:
		return fmt.Errorf("%s: %w: %w", op, nfc.ErrPermissionDenied, err)
	case scard.ErrNoReadersAvailable, scard.ErrUnknownReader, scard.ErrReaderUnavailable,
		scard.ErrNoService, scard.ErrServiceStopped, scard.ErrUnsupportedCard, scard.ErrCardUnsupported:
		return fmt.Errorf("%s: %w: %w", op, nfc.ErrNoTechnologyAvailable, err)
	default:
		return &nfc.TransceiveError{Op: op, Err: err}
	}
}
