package emv

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gregLibert/tapid/pkg/tlv"
)

func TestParseAFL(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []AFLEntry
	}{
		{
			name: "two groups",
			in:   tlv.Hex("08010100 10010301"),
			want: []AFLEntry{
				{SFI: 1, FirstRecord: 1, LastRecord: 1},
				{SFI: 2, FirstRecord: 1, LastRecord: 3, OfflineAuthCount: 1},
			},
		},
		{
			name: "trailing partial group ignored",
			in:   tlv.Hex("18020200 1001"),
			want: []AFLEntry{{SFI: 3, FirstRecord: 2, LastRecord: 2}},
		},
		{
			name: "invalid groups skipped",
			in:   tlv.Hex("00010100 08000100 08030200 20010200"),
			want: []AFLEntry{{SFI: 4, FirstRecord: 1, LastRecord: 2}},
		},
		{name: "empty", in: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseAFL(tt.in)); diff != "" {
				t.Errorf("ParseAFL() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAFLEntry_Records(t *testing.T) {
	if diff := cmp.Diff([]byte{2, 3, 4}, AFLEntry{SFI: 1, FirstRecord: 2, LastRecord: 4}.Records()); diff != "" {
		t.Errorf("Records() mismatch (-want +got):\n%s", diff)
	}
	if got := (AFLEntry{SFI: 1, FirstRecord: 3, LastRecord: 1}).Records(); got != nil {
		t.Errorf("Records() = %v, want nil", got)
	}
	if got := (AFLEntry{SFI: 1, FirstRecord: 255, LastRecord: 255}).Records(); len(got) != 1 || got[0] != 255 {
		t.Errorf("Records() = %v, want [255]", got)
	}
}

func TestSplitResponseTemplate1(t *testing.T) {
	aip, afl, ok := SplitResponseTemplate1(tlv.Hex("1980 08010100"))
	if !ok {
		t.Fatal("ok = false")
	}
	if diff := cmp.Diff(tlv.Hex("1980"), aip); diff != "" {
		t.Errorf("AIP mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tlv.Hex("08010100"), afl); diff != "" {
		t.Errorf("AFL mismatch (-want +got):\n%s", diff)
	}

	if _, _, ok := SplitResponseTemplate1([]byte{0x19}); ok {
		t.Error("ok = true for a one-byte value")
	}
}
