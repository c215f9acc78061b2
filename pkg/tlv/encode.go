package tlv

import (
	"fmt"

	"github.com/moov-io/bertlv"
)

// Encode serializes entries back to BER-TLV. Values are written as-is; the
// Length field is ignored in favour of len(Value).
func Encode(entries []Entry) ([]byte, error) {
	packets := make([]bertlv.TLV, 0, len(entries))
	for _, e := range entries {
		packets = append(packets, bertlv.TLV{Tag: e.Tag, Value: e.Value})
	}

	data, err := bertlv.Encode(packets)
	if err != nil {
		return nil, fmt.Errorf("bertlv encode failed: %w", err)
	}
	return data, nil
}
