package tlv

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseHex decodes a hex string such as "A0 00 00 00 03 10 10". Spaces are
// ignored and case does not matter.
func ParseHex(parts ...string) ([]byte, error) {
	clean := strings.ReplaceAll(strings.Join(parts, ""), " ", "")

	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", clean, err)
	}
	return data, nil
}

// Hex is ParseHex for literals known to be valid. It panics on bad input.
func Hex(parts ...string) []byte {
	data, err := ParseHex(parts...)
	if err != nil {
		panic(err.Error())
	}
	return data
}

// HexString renders data as upper case hex without separators.
func HexString(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}
