package emv

import (
	"fmt"

	"github.com/gregLibert/tapid/pkg/iso7816"
	"github.com/gregLibert/tapid/pkg/tlv"
)

// PPSEName is the DF name of the Proximity Payment System Environment.
var PPSEName = []byte("2PAY.SYS.DDF01")

// VASAID is the Apple Value Added Services application ("OSE.VAS.01").
var VASAID = []byte("OSE.VAS.01")

var (
	interindustry = iso7816.MustClass(0x00)
	proprietary   = iso7816.MustClass(0x80)
)

// SelectAID builds SELECT by name for the AID given in hex.
// The encoding is 00 A4 04 00 Lc AID 00.
func SelectAID(aidHex string) (*iso7816.CommandAPDU, error) {
	aid, err := tlv.ParseHex(aidHex)
	if err != nil {
		return nil, fmt.Errorf("select AID: %w", err)
	}
	return iso7816.SelectByAID(interindustry, aid), nil
}

// SelectPPSE builds 00 A4 04 00 0E "2PAY.SYS.DDF01" 00.
func SelectPPSE() *iso7816.CommandAPDU {
	return iso7816.SelectByAID(interindustry, PPSEName)
}

// SelectVAS builds the SELECT of the Apple VAS application.
func SelectVAS() *iso7816.CommandAPDU {
	return iso7816.SelectByAID(interindustry, VASAID)
}

// GetProcessingOptions builds 80 A8 00 00 02 83 00 00: GPO with an empty
// PDOL data object.
func GetProcessingOptions() *iso7816.CommandAPDU {
	ins, _ := iso7816.NewInstruction(iso7816.INS_GET_PROCESSING_OPTIONS)
	return iso7816.NewCommandAPDU(proprietary, ins, 0x00, 0x00, []byte{0x83, 0x00}, iso7816.MaxShortLe)
}

// ReadRecord builds 00 B2 record (sfi<<3)|4 00.
func ReadRecord(sfi, record byte) *iso7816.CommandAPDU {
	return iso7816.ReadRecord(interindustry, sfi, record)
}
