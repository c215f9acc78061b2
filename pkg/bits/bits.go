// Package bits holds the small bit helpers used to pick apart ISO 7816 and
// EMV header bytes. Bit numbering follows the standards: 1 is the least
// significant bit, 8 the most significant.
package bits

// Bit returns a byte with only the n-th bit set (1 to 8).
func Bit(n uint) byte {
	if n < 1 || n > 8 {
		return 0
	}
	return 1 << (n - 1)
}

// IsSet checks if the n-th bit is set (1 to 8).
func IsSet(b byte, n uint) bool {
	return b&Bit(n) != 0
}

// GetRange extracts the value held by bits high..low, inclusive.
// Example: GetRange(0b00001100, 4, 3) returns 3 (0b11).
func GetRange(b byte, high, low uint) byte {
	if high < low || high > 8 || low < 1 {
		return 0
	}

	width := high - low + 1
	mask := byte((1 << width) - 1)

	return (b >> (low - 1)) & mask
}

// Set returns b with the n-th bit set.
func Set(b byte, n uint) byte {
	return b | Bit(n)
}

// AllSet reports whether every bit of mask is set in b.
func AllSet(b, mask byte) bool {
	return b&mask == mask
}

// Nibbles splits b into its high and low half-bytes.
func Nibbles(b byte) (high, low byte) {
	return GetRange(b, 8, 5), GetRange(b, 4, 1)
}
