package iso7816

import (
	"fmt"
)

// SELECT (INS 'A4', ISO 7816-4 §11.2.2).
//
// P1 tells how the target is named. Payment applications are always selected
// by DF name, i.e. by AID (P1 = '04').
// P2 bits 4-3 choose what the card answers with; bits 2-1 choose the
// occurrence when several files share a name (first/next).

// SelectionMethod is the P1 of a SELECT.
type SelectionMethod byte

const (
	SelectByFileID   SelectionMethod = 0x00
	SelectByDFName   SelectionMethod = 0x04
	SelectPathFromMF SelectionMethod = 0x08
)

func (s SelectionMethod) String() string {
	switch s {
	case SelectByFileID:
		return "by file ID"
	case SelectByDFName:
		return "by DF name"
	case SelectPathFromMF:
		return "by path from MF"
	default:
		return fmt.Sprintf("method 0x%02X", byte(s))
	}
}

// SelectionControl is the P2 of a SELECT.
type SelectionControl byte

const (
	ReturnFCI    SelectionControl = 0b0000_0000
	ReturnFCP    SelectionControl = 0b0000_0100
	ReturnNoData SelectionControl = 0b0000_1100

	// NextOccurrence can be OR-ed into any of the above.
	NextOccurrence SelectionControl = 0b0000_0010
)

// NewSelectCommand builds a SELECT. Unless ctrl asks for no data, the
// command carries Le = 256 so contactless readers return the full FCI in
// one exchange.
func NewSelectCommand(cla Class, method SelectionMethod, ctrl SelectionControl, data []byte) *CommandAPDU {
	ins, _ := NewInstruction(INS_SELECT)

	ne := MaxShortLe
	if ctrl&ReturnNoData == ReturnNoData {
		ne = 0
	}

	return NewCommandAPDU(cla, ins, byte(method), byte(ctrl), data, ne)
}

// SelectByAID selects an application by its AID (or any DF name, such as
// the proximity payment directory).
func SelectByAID(cla Class, aid []byte) *CommandAPDU {
	return NewSelectCommand(cla, SelectByDFName, ReturnFCI, aid)
}
