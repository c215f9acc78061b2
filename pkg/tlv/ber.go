package tlv

import (
	"errors"
	"fmt"

	"github.com/moov-io/bertlv"

	"github.com/gregLibert/tapid/pkg/bits"
)

// bertlv.Decode accepts long form lengths of any width and lets them
// overflow, which turns hostile card data into a negative slice bound.
// DecodeBER walks the input first with bertlv's own tag rules and refuses
// anything wider than the two length bytes EMV ever uses.

// maxLengthBytes is the widest long form length accepted ('82' XX XX).
const maxLengthBytes = 2

var errMalformed = errors.New("tlv: malformed data object")

// DecodeBER is bertlv.Decode for untrusted input.
func DecodeBER(data []byte) ([]bertlv.TLV, error) {
	if err := CheckBER(data); err != nil {
		return nil, err
	}
	return bertlv.Decode(data)
}

// CheckBER reports whether data is safe to hand to bertlv.Decode: every tag
// complete, every length at most two bytes wide and within its parent, and
// nesting no deeper than MaxDepth.
func CheckBER(data []byte) error {
	return checkBER(data, 0)
}

func checkBER(data []byte, depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("%w: nested deeper than %d", errMalformed, MaxDepth)
	}

	for len(data) > 0 {
		n := berTagLen(data)
		if n == 0 {
			return fmt.Errorf("%w: incomplete tag", errTruncated)
		}
		first := data[0]
		data = data[n:]

		// '00' between objects is padding.
		if first == 0x00 {
			continue
		}

		length, m, err := berLength(data)
		if err != nil {
			return err
		}
		data = data[m:]

		if length > len(data) {
			return fmt.Errorf("%w: %d bytes declared, %d left", errTruncated, length, len(data))
		}
		value := data[:length]
		data = data[length:]

		if first&0x20 != 0 {
			if err := checkBER(value, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// berTagLen returns the tag size under X.690 rules, 0 when incomplete.
func berTagLen(data []byte) int {
	if !bits.AllSet(data[0], multiByteTagMask) {
		return 1
	}
	for i := 1; i < len(data); i++ {
		if data[i]&0x80 == 0 {
			return i + 1
		}
	}
	return 0
}

func berLength(data []byte) (int, int, error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("%w: missing length", errTruncated)
	}
	if data[0] < 0x80 {
		return int(data[0]), 1, nil
	}

	width := int(data[0] & 0x7F)
	if width > maxLengthBytes {
		return 0, 0, fmt.Errorf("%w: %d byte length field", errMalformed, width)
	}
	if len(data) < width+1 {
		return 0, 0, fmt.Errorf("%w: incomplete length", errTruncated)
	}

	length := 0
	for _, b := range data[1 : width+1] {
		length = length<<8 | int(b)
	}
	return length, width + 1, nil
}
