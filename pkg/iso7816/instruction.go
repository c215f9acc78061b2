package iso7816

import (
	"fmt"

	"github.com/gregLibert/tapid/pkg/bits"
)

// Instruction Byte (INS), ISO/IEC 7816-4 §5.4.2.
//
// Bit 1 of an interindustry INS selects BER-TLV encoded data (READ BINARY
// 'B0' vs 'B1'). INS values '6X' and '9X' are invalid: they collide with
// SW1 procedure bytes of ISO/IEC 7816-3.

// InsCode is a typed representation of the instruction byte.
type InsCode byte

// Instruction codes used by the identification flow, plus the common ISO
// ones that show up in debug traces.
const (
	INS_VERIFY                          InsCode = 0x20
	INS_EXTERNAL_AUTHENTICATE           InsCode = 0x82
	INS_GET_CHALLENGE                   InsCode = 0x84
	INS_INTERNAL_AUTHENTICATE           InsCode = 0x88
	INS_SELECT                          InsCode = 0xA4
	INS_GET_PROCESSING_OPTIONS          InsCode = 0xA8 // EMV Book 3, CLA '80'
	INS_READ_BINARY                     InsCode = 0xB0
	INS_READ_BINARY_BER                 InsCode = 0xB1
	INS_READ_RECORD                     InsCode = 0xB2
	INS_READ_RECORD_BER                 InsCode = 0xB3
	INS_GET_RESPONSE                    InsCode = 0xC0
	INS_GET_DATA                        InsCode = 0xCA
	INS_GET_DATA_BER                    InsCode = 0xCB
	INS_GENERATE_APPLICATION_CRYPTOGRAM InsCode = 0xAE // EMV Book 3, never sent here
)

var insNames = map[InsCode]string{
	INS_VERIFY:                          "INS_VERIFY",
	INS_EXTERNAL_AUTHENTICATE:           "INS_EXTERNAL_AUTHENTICATE",
	INS_GET_CHALLENGE:                   "INS_GET_CHALLENGE",
	INS_INTERNAL_AUTHENTICATE:           "INS_INTERNAL_AUTHENTICATE",
	INS_SELECT:                          "INS_SELECT",
	INS_GET_PROCESSING_OPTIONS:          "INS_GET_PROCESSING_OPTIONS",
	INS_READ_BINARY:                     "INS_READ_BINARY",
	INS_READ_BINARY_BER:                 "INS_READ_BINARY_BER",
	INS_READ_RECORD:                     "INS_READ_RECORD",
	INS_READ_RECORD_BER:                 "INS_READ_RECORD_BER",
	INS_GET_RESPONSE:                    "INS_GET_RESPONSE",
	INS_GET_DATA:                        "INS_GET_DATA",
	INS_GET_DATA_BER:                    "INS_GET_DATA_BER",
	INS_GENERATE_APPLICATION_CRYPTOGRAM: "INS_GENERATE_APPLICATION_CRYPTOGRAM",
}

func (i InsCode) String() string {
	if name, ok := insNames[i]; ok {
		return name
	}
	return fmt.Sprintf("InsCode(0x%02X)", byte(i))
}

// Instruction represents the parsed ISO 7816-4 Instruction byte (INS).
type Instruction struct {
	Raw      InsCode
	IsBERTLV bool
}

// NewInstruction creates an Instruction object with validation.
func NewInstruction(ins InsCode) (Instruction, error) {
	high, _ := bits.Nibbles(byte(ins))
	if high == 0x6 || high == 0x9 {
		return Instruction{}, fmt.Errorf("invalid INS 0x%02X: 6X and 9X are reserved", byte(ins))
	}

	return Instruction{
		Raw:      ins,
		IsBERTLV: bits.IsSet(byte(ins), 1),
	}, nil
}

// MustInstruction is NewInstruction for the constants above.
func MustInstruction(ins InsCode) Instruction {
	i, err := NewInstruction(ins)
	if err != nil {
		panic(err)
	}
	return i
}

// Verbose returns a human-readable description of the instruction.
func (i Instruction) Verbose() string {
	format := "Standard"
	if i.IsBERTLV {
		format = "BER-TLV"
	}
	return fmt.Sprintf("INS: 0x%02X | Command: %s | Format: %s", byte(i.Raw), i.Raw.String(), format)
}
