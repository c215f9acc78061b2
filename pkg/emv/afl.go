package emv

import (
	"github.com/gregLibert/tapid/pkg/bits"
	"github.com/gregLibert/tapid/pkg/iso7816"
)

// APPLICATION FILE LOCATOR (tag '94', EMV Book 3 §10.2).
// A sequence of 4-byte groups:
//   byte 1  bits 8-4 SFI, bits 3-1 zero
//   byte 2  first record
//   byte 3  last record
//   byte 4  records involved in offline data authentication

// AFLEntry is one group of the AFL.
type AFLEntry struct {
	SFI              byte
	FirstRecord      byte
	LastRecord       byte
	OfflineAuthCount byte
}

// Records lists the record numbers the entry covers.
func (e AFLEntry) Records() []byte {
	if e.FirstRecord == 0 || e.LastRecord < e.FirstRecord {
		return nil
	}
	recs := make([]byte, 0, int(e.LastRecord-e.FirstRecord)+1)
	for r := int(e.FirstRecord); r <= int(e.LastRecord); r++ {
		recs = append(recs, byte(r))
	}
	return recs
}

// ParseAFL decodes the AFL value. A trailing partial group is ignored, as are
// groups naming SFI 0, a first record of 0, or a last record before the
// first.
func ParseAFL(value []byte) []AFLEntry {
	var out []AFLEntry
	for i := 0; i+4 <= len(value); i += 4 {
		e := AFLEntry{
			SFI:              bits.GetRange(value[i], 8, 4),
			FirstRecord:      value[i+1],
			LastRecord:       value[i+2],
			OfflineAuthCount: value[i+3],
		}
		if e.SFI == 0 || e.SFI > iso7816.MaxSFI || e.FirstRecord == 0 || e.LastRecord < e.FirstRecord {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SplitResponseTemplate1 splits the value of a format 1 GPO answer (tag
// '80') into the Application Interchange Profile and the AFL.
func SplitResponseTemplate1(value []byte) (aip, afl []byte, ok bool) {
	if len(value) < 2 {
		return nil, nil, false
	}
	return value[:2], value[2:], true
}
