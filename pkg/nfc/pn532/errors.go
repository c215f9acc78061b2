package pn532

import (
	"errors"
	"fmt"

	"github.com/gregLibert/tapid/pkg/nfc"
)

var (
	ErrTimeout       = errors.New("pn532: timeout")
	ErrNoACK         = errors.New("pn532: no ACK received")
	ErrNACK          = errors.New("pn532: NACK received")
	ErrBadLCS        = errors.New("pn532: bad length checksum")
	ErrBadDCS        = errors.New("pn532: bad data checksum")
	ErrBadTFI        = errors.New("pn532: bad TFI byte")
	ErrFrameTooLarge = errors.New("pn532: frame too large")
	ErrUnexpected    = errors.New("pn532: unexpected response")
	ErrNoTarget      = errors.New("pn532: no target in field")
)

// StatusError is a non-zero status byte returned by InDataExchange and the
// other initiator commands.
type StatusError struct {
	Command byte
	Code    byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pn532: command 0x%02X failed with 0x%02X (%s)", e.Command, e.Code, statusMeaning(e.Code))
}

var statusMeanings = map[byte]string{
	0x01: "target timeout",
	0x02: "CRC error",
	0x03: "parity error",
	0x04: "anti-collision bit count error",
	0x05: "framing error",
	0x06: "abnormal bit collision",
	0x07: "buffer size insufficient",
	0x09: "RF buffer overflow",
	0x0A: "RF field not switched on in time",
	0x0B: "RF protocol error",
	0x0D: "overheating",
	0x0E: "internal buffer overflow",
	0x10: "invalid parameter",
	0x27: "wrong context",
	0x29: "target released",
	0x2A: "card ID mismatch",
	0x2B: "card disappeared",
}

func statusMeaning(code byte) string {
	if m, ok := statusMeanings[code]; ok {
		return m
	}
	return "unknown error"
}

// transceiveError maps a driver failure during an exchange onto the nfc
// vocabulary.
func transceiveError(op string, err error) error {
	if err == nil {
		return nil
	}

	reason := nfc.ReasonUnknown
	var se *StatusError
	switch {
	case errors.As(err, &se):
		switch se.Code {
		case 0x01:
			reason = nfc.ReasonTimeout
		case 0x29, 0x2A, 0x2B:
			reason = nfc.ReasonTagLost
		case 0x02, 0x03, 0x04, 0x05, 0x06, 0x0B:
			reason = nfc.ReasonCorruptedFrame
		}
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrNoACK):
		reason = nfc.ReasonTimeout
	case errors.Is(err, ErrBadLCS), errors.Is(err, ErrBadDCS), errors.Is(err, ErrBadTFI), errors.Is(err, ErrNACK):
		reason = nfc.ReasonCorruptedFrame
	}

	return &nfc.TransceiveError{Op: op, Reason: reason, Err: err}
}
