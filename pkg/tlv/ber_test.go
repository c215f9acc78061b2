package tlv

import (
	"errors"
	"testing"
)

func TestCheckBER(t *testing.T) {
	deep := Hex("5A 01 12")
	for i := 0; i <= MaxDepth+1; i++ {
		deep = append([]byte{0xE1, byte(len(deep))}, deep...)
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "nested FCI", data: Hex("6F 0A 84 02 A000 A5 04 50 02 5649")},
		{name: "long form length", data: Hex("70 81 03 5A 01 12")},
		{name: "padding", data: Hex("00 5A 01 12 00")},
		{name: "overflowing length", data: Hex("6F 88 FFFFFFFFFFFFFFFF"), wantErr: errMalformed},
		{name: "three byte length", data: Hex("6F 83 000001 00"), wantErr: errMalformed},
		{name: "wide length inside template", data: Hex("6F 05 A5 83 000000"), wantErr: errMalformed},
		{name: "value past the end", data: Hex("5A 08 4111"), wantErr: errTruncated},
		{name: "incomplete tag", data: Hex("9F 81"), wantErr: errTruncated},
		{name: "missing length", data: Hex("9F 12"), wantErr: errTruncated},
		{name: "too deep", data: deep, wantErr: errMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBER(tt.data)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("CheckBER() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckBER() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeBER_HostileLength(t *testing.T) {
	packets, err := DecodeBER(Hex("6F 88 FFFFFFFFFFFFFFFF 9000"))
	if err == nil {
		t.Fatalf("DecodeBER() = %v, want error", packets)
	}

	packets, err = DecodeBER(Hex("6F 04 50 02 5649"))
	if err != nil {
		t.Fatalf("DecodeBER() error = %v", err)
	}
	if len(packets) != 1 || len(packets[0].TLVs) != 1 || packets[0].TLVs[0].Tag != "50" {
		t.Errorf("unexpected packets: %+v", packets)
	}
}
