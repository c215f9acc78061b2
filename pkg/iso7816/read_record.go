package iso7816

import (
	"fmt"
)

// READ RECORD (INS 'B2', ISO 7816-4 §11.3.3).
//
// P1 is a record number when P2 bit 3 is set, a record identifier otherwise.
// P2 bits 8-4 carry the Short File Identifier (0 = current EF) and bits 3-1
// the reference mode below.

// ReadRecordMode is the low three bits of P2.
type ReadRecordMode byte

const (
	RefByID_FirstOccurrence ReadRecordMode = 0b000
	RefByID_NextOccurrence  ReadRecordMode = 0b010
	RefByNum_ReadP1         ReadRecordMode = 0b100
	RefByNum_ReadAllFromP1  ReadRecordMode = 0b101
)

func (m ReadRecordMode) String() string {
	switch m {
	case RefByID_FirstOccurrence:
		return "record ID, first"
	case RefByID_NextOccurrence:
		return "record ID, next"
	case RefByNum_ReadP1:
		return "record P1"
	case RefByNum_ReadAllFromP1:
		return "all records from P1"
	default:
		return fmt.Sprintf("mode 0b%03b", byte(m))
	}
}

// MaxSFI is the largest value that fits the five SFI bits of P2.
const MaxSFI = 30

// NewReadRecordCommand builds a READ RECORD expecting up to 256 bytes.
func NewReadRecordCommand(cla Class, sfi byte, p1 byte, mode ReadRecordMode) *CommandAPDU {
	ins, _ := NewInstruction(INS_READ_RECORD)
	p2 := (sfi&0x1F)<<3 | byte(mode)&0x07
	return NewCommandAPDU(cla, ins, p1, p2, nil, MaxShortLe)
}

// ReadRecord reads record number recordNumber of the file sfi.
func ReadRecord(cla Class, sfi byte, recordNumber byte) *CommandAPDU {
	return NewReadRecordCommand(cla, sfi, recordNumber, RefByNum_ReadP1)
}
