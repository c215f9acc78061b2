package iso7816

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gregLibert/tapid/pkg/tlv"
)

func TestNewReadRecordCommand(t *testing.T) {
	cls := MustClass(0x00)

	tests := []struct {
		name string
		cmd  *CommandAPDU
		want []byte
	}{
		{"SFI 1 record 1", ReadRecord(cls, 1, 1), tlv.Hex("00 B2 01 0C 00")},
		{"SFI 2 record 1", ReadRecord(cls, 2, 1), tlv.Hex("00 B2 01 14 00")},
		{"SFI 4 record 5", ReadRecord(cls, 4, 5), tlv.Hex("00 B2 05 24 00")},
		{"current EF", ReadRecord(cls, 0, 5), tlv.Hex("00 B2 05 04 00")},
		{"all from 1", NewReadRecordCommand(cls, 2, 1, RefByNum_ReadAllFromP1), tlv.Hex("00 B2 01 15 00")},
		{"next by ID", NewReadRecordCommand(cls, 10, 0xAA, RefByID_NextOccurrence), tlv.Hex("00 B2 AA 52 00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmd.Bytes()
			if err != nil {
				t.Fatalf("Bytes() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Bytes() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
