// Package nfc defines the boundary between the card identification engine
// and the radio: a Transceiver opens a session with a tapped object, carries
// APDUs to it and releases it. Concrete readers live in the pcsc and pn532
// subpackages.
package nfc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
)

// Technology is the RF protocol a session is requested for.
type Technology int

const (
	// IsoDep is ISO/IEC 14443-4, the transport of contactless payment cards.
	IsoDep Technology = iota
)

func (t Technology) String() string {
	switch t {
	case IsoDep:
		return "ISO-DEP"
	default:
		return fmt.Sprintf("Technology(%d)", int(t))
	}
}

var (
	// ErrNoTechnologyAvailable means the reader cannot engage the requested
	// technology, or no matching object is in the field.
	ErrNoTechnologyAvailable = errors.New("nfc: no technology available")
	// ErrPermissionDenied means the reader exists but may not be used.
	ErrPermissionDenied = errors.New("nfc: permission denied")
	// ErrTransceive is matched by every *TransceiveError.
	ErrTransceive = errors.New("nfc: transceive failed")
	// ErrNoSession is returned by Transceive outside a session.
	ErrNoSession = errors.New("nfc: no session")
)

// Reason classifies a transceive failure.
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonTagLost
	ReasonCorruptedFrame
	ReasonTimeout
)

func (r Reason) String() string {
	switch r {
	case ReasonTagLost:
		return "tag lost"
	case ReasonCorruptedFrame:
		return "corrupted frame"
	case ReasonTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// TransceiveError reports a failed exchange with the tapped object.
type TransceiveError struct {
	Err    error
	Op     string
	Reason Reason
}

func (e *TransceiveError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
}

func (e *TransceiveError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTransceive) hold for any TransceiveError.
func (*TransceiveError) Is(target error) bool {
	return target == ErrTransceive
}

// Transceiver is a reader able to talk to one tapped object at a time.
type Transceiver interface {
	// RequestSession blocks until an object supporting tech is in the field,
	// ctx is done, or the reader fails.
	RequestSession(ctx context.Context, tech Technology) error
	// Transceive sends one APDU and returns the raw answer, status word
	// included.
	Transceive(ctx context.Context, apdu []byte) ([]byte, error)
	// ReleaseSession ends the session. It is safe to call at any time and
	// more than once.
	ReleaseSession() error
}

// Logger is the subset of *log.Logger the package writes to.
type Logger interface {
	Printf(format string, v ...any)
}

// DiscardLogger drops everything.
var DiscardLogger Logger = log.New(io.Discard, "", 0)
