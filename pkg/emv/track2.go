package emv

import (
	"strings"

	"github.com/gregLibert/tapid/pkg/tlv"
)

// Track2 is the magnetic stripe equivalent data carried in tags '57' and
// '9F6B': PAN 'D' YYMM service-code discretionary, padded with 'F'.
type Track2 struct {
	PAN           string
	Expiry        string // MM/YY, empty when the data is too short
	ServiceCode   string
	Discretionary string
}

// DecodePAN renders the BCD digits of tag '5A', dropping the trailing 'F'
// padding nibbles.
func DecodePAN(value []byte) string {
	return strings.TrimRight(tlv.HexString(value), "F")
}

// ParseTrack2 splits the hex rendering of a Track2 value. The separator is
// matched case-insensitively. It reports false when there is no separator
// or no PAN in front of it.
func ParseTrack2(hexDigits string) (Track2, bool) {
	s := strings.TrimRight(strings.ToUpper(hexDigits), "F")

	pan, rest, found := strings.Cut(s, "D")
	if !found || pan == "" {
		return Track2{}, false
	}

	t := Track2{PAN: pan}
	if len(rest) >= 4 {
		t.Expiry = swapYYMM(rest[:4])
		rest = rest[4:]
	} else {
		rest = ""
	}
	if len(rest) >= 3 {
		t.ServiceCode, rest = rest[:3], rest[3:]
	}
	t.Discretionary = rest

	return t, true
}

// FormatExpiryDate turns the YYMMDD of tag '5F24' into MM/YY. It returns ""
// when fewer than four digits are present.
func FormatExpiryDate(value []byte) string {
	s := tlv.HexString(value)
	if len(s) < 4 {
		return ""
	}
	return swapYYMM(s[:4])
}

// DecodeHolderName renders tag '5F20'. EMV writes names as LAST/FIRST; the
// slash becomes a space.
func DecodeHolderName(value []byte) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/':
			return ' '
		case r < 0x20 || r > 0x7E:
			return -1
		}
		return r
	}, string(value))
	return strings.TrimSpace(name)
}

func swapYYMM(yymm string) string {
	for _, c := range yymm {
		if c < '0' || c > '9' {
			return ""
		}
	}
	return yymm[2:4] + "/" + yymm[0:2]
}
