package iso7816

import (
	"bytes"
	"fmt"
)

// APDU (Application Protocol Data Unit) encodings, ISO/IEC 7816-3 and 7816-4.
//
// COMMAND APDU (C-APDU):
//   Header: CLA INS P1 P2
//   Body:   [Lc Data] [Le]
//
// ENCODING CASES:
// - Case 1: header only.
// - Case 2: header + Le.
// - Case 3: header + Lc + Data.
// - Case 4: header + Lc + Data + Le. Used by every EMV command in this module
//           since the contactless T=CL protocol carries Lc and Le together.
//
// Short lengths take one byte (Le 0x00 means 256). Extended lengths are used
// once Lc > 255 or Le > 256; contactless payment cards never need them but
// the encoder keeps them for completeness.
//
// RESPONSE APDU (R-APDU):
//   [Data] SW1 SW2

// APDU length limits.
const (
	MaxShortLc    = 255
	MaxShortLe    = 256
	MaxExtendedLc = 65535
	MaxExtendedLe = 65536
)

// CommandAPDU represents a command sent to the card.
type CommandAPDU struct {
	Class       Class
	Instruction Instruction
	P1, P2      byte
	Data        []byte
	Ne          int // Expected response length (0 means none)
}

// NewCommandAPDU creates a basic command.
func NewCommandAPDU(cla Class, ins Instruction, p1, p2 byte, data []byte, ne int) *CommandAPDU {
	return &CommandAPDU{
		Class:       cla,
		Instruction: ins,
		P1:          p1,
		P2:          p2,
		Data:        data,
		Ne:          ne,
	}
}

// Bytes encodes the command, choosing short or extended length fields.
func (c *CommandAPDU) Bytes() ([]byte, error) {
	nc := len(c.Data)
	if nc > MaxExtendedLc {
		return nil, fmt.Errorf("command data too long: %d bytes", nc)
	}
	if c.Ne < 0 || c.Ne > MaxExtendedLe {
		return nil, fmt.Errorf("expected length out of range: %d", c.Ne)
	}

	cla, err := c.Class.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode Class: %w", err)
	}

	buf := new(bytes.Buffer)
	buf.Write([]byte{cla, byte(c.Instruction.Raw), c.P1, c.P2})

	extended := nc > MaxShortLc || c.Ne > MaxShortLe

	if nc > 0 {
		if extended {
			buf.Write([]byte{0x00, byte(nc >> 8), byte(nc)})
		} else {
			buf.WriteByte(byte(nc))
		}
		buf.Write(c.Data)
	}

	switch {
	case c.Ne == 0:
	case !extended:
		// 256 wraps to 0x00.
		buf.WriteByte(byte(c.Ne))
	default:
		if nc == 0 {
			buf.WriteByte(0x00)
		}
		// 65536 wraps to 0x0000.
		buf.Write([]byte{byte(c.Ne >> 8), byte(c.Ne)})
	}

	return buf.Bytes(), nil
}

// String returns a readable representation of the command meta-data.
func (c *CommandAPDU) String() string {
	return fmt.Sprintf("%s | P1: %02X, P2: %02X | Lc: %d | Le: %d",
		c.Instruction.Verbose(), c.P1, c.P2, len(c.Data), c.Ne)
}

// ResponseAPDU represents the reply from the card (R-APDU).
type ResponseAPDU struct {
	Data   []byte
	Status StatusWord
}

// ParseResponseAPDU splits raw card output into data and status word.
// The input must contain at least SW1 and SW2.
func ParseResponseAPDU(raw []byte) (*ResponseAPDU, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("response too short: length %d", len(raw))
	}

	sw := len(raw) - 2
	return &ResponseAPDU{
		Data:   raw[:sw],
		Status: NewStatusWord(raw[sw], raw[sw+1]),
	}, nil
}

// String returns a readable representation of the response.
func (r *ResponseAPDU) String() string {
	return fmt.Sprintf("Data (%d bytes) | Status: %s", len(r.Data), r.Status.Verbose())
}
