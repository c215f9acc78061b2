package tlv

import (
	"errors"
	"fmt"

	"github.com/gregLibert/tapid/pkg/bits"
)

// EMV TLV DECODING:
// Responses coming back over the radio link are not trusted. They may be
// truncated when the card leaves the field, and a value may or may not be a
// constructed data object. The decoder below is therefore tolerant: it never
// fails, it only stops.
//
// Tag:    1 byte, or 2 bytes when bits 5-1 of the first byte are all set.
//         EMV never needs more than 2.
// Length: '81' -> next byte is the length (<= 255).
//         '82' -> next two bytes, big endian (<= 65535).
//         otherwise the byte itself is the length.

// MaxDepth bounds the nesting FindTag and FindAllTags will descend into.
const MaxDepth = 16

const multiByteTagMask = 0x1F

var errTruncated = errors.New("tlv: truncated data object")

// Entry is a single decoded data object. Value may itself hold nested
// entries (constructed data object); use FindTag to search through them.
type Entry struct {
	Tag    string
	Length int
	Value  []byte
}

// String renders the entry as "TAG [len] VALUE".
func (e Entry) String() string {
	return fmt.Sprintf("%s [%d] %X", e.Tag, e.Length, e.Value)
}

// Decode parses buf into a flat list of entries. When a declared length runs
// past the end of buf, decoding stops and the entries read so far are
// returned.
func Decode(buf []byte) []Entry {
	entries, _ := decode(buf)
	return entries
}

// DecodeStrict parses buf and fails unless every byte belongs to a
// well-formed entry.
func DecodeStrict(buf []byte) ([]Entry, error) {
	entries, err := decode(buf)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func decode(buf []byte) ([]Entry, error) {
	var entries []Entry

	for pos := 0; pos < len(buf); {
		// Padding between objects (EMV Book 3, Annex B).
		if buf[pos] == 0x00 || buf[pos] == 0xFF {
			pos++
			continue
		}

		tag, n, err := readTag(buf[pos:])
		if err != nil {
			return entries, err
		}
		pos += n

		length, n, err := readLength(buf[pos:])
		if err != nil {
			return entries, err
		}
		pos += n

		if length > len(buf)-pos {
			return entries, fmt.Errorf("%w: tag %s declares %d bytes, %d left", errTruncated, tag, length, len(buf)-pos)
		}

		entries = append(entries, Entry{
			Tag:    tag,
			Length: length,
			Value:  buf[pos : pos+length],
		})
		pos += length
	}

	return entries, nil
}

func readTag(buf []byte) (string, int, error) {
	if len(buf) == 0 {
		return "", 0, errTruncated
	}
	if !bits.AllSet(buf[0], multiByteTagMask) {
		return fmt.Sprintf("%02X", buf[0]), 1, nil
	}
	if len(buf) < 2 {
		return "", 0, errTruncated
	}
	return fmt.Sprintf("%02X%02X", buf[0], buf[1]), 2, nil
}

func readLength(buf []byte) (int, int, error) {
	if len(buf) == 0 {
		return 0, 0, errTruncated
	}

	switch buf[0] {
	case 0x81:
		if len(buf) < 2 {
			return 0, 0, errTruncated
		}
		return int(buf[1]), 2, nil
	case 0x82:
		if len(buf) < 3 {
			return 0, 0, errTruncated
		}
		return int(buf[1])<<8 | int(buf[2]), 3, nil
	default:
		return int(buf[0]), 1, nil
	}
}
