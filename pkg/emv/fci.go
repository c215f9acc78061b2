package emv

import (
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"

	"github.com/gregLibert/tapid/pkg/tlv"
)

// FILE CONTROL INFORMATION (EMV Book 1 §11.3.4).
//
// Both the proximity payment directory (PPSE) and a payment application
// answer SELECT with a '6F' template:
//
//	6F  FCI template
//	    84  DF name (PPSE name or AID)
//	    A5  proprietary template
//	        50    application label
//	        9F12  application preferred name
//	        BF0C  issuer discretionary data
//	              61  directory entry (PPSE only, one per application)
//	                  4F  AID
//	                  50  label
//	                  87  priority

// FCI is the File Control Information returned by SELECT.
type FCI struct {
	DFName              []byte                 `tlv:"84" fmt:"ascii"`
	ProprietaryTemplate FCIProprietaryTemplate `tlv:"A5"`
}

// FCIProprietaryTemplate is the content of tag 'A5'.
type FCIProprietaryTemplate struct {
	ApplicationLabel             []byte `tlv:"50" fmt:"ascii"`
	ApplicationPriorityIndicator []byte `tlv:"87" fmt:"int"`
	SFI                          []byte `tlv:"88"`
	PDOL                         []byte `tlv:"9F38"`
	LanguagePreference           []byte `tlv:"5F2D" fmt:"ascii"`
	IssuerCodeTableIndex         []byte `tlv:"9F11" fmt:"int"`
	ApplicationPreferredName     []byte `tlv:"9F12" fmt:"ascii"`

	IssuerDiscretionaryData *FCIIssuerDiscretionaryData `tlv:"BF0C"`

	Unknown []bertlv.TLV `tlv:",unknown"`
}

// FCIIssuerDiscretionaryData is the content of tag 'BF0C'. In a PPSE answer
// it lists the payment applications the card offers.
type FCIIssuerDiscretionaryData struct {
	Applications []ApplicationTemplate `tlv:"61"`

	LogEntry                   []byte `tlv:"9F4D"`
	IssuerCountryCodeAlpha2    []byte `tlv:"5F55" fmt:"ascii"`
	IssuerCountryCodeAlpha3    []byte `tlv:"5F56" fmt:"ascii"`
	IssuerURL                  []byte `tlv:"5F50" fmt:"ascii"`
	IssuerIdentificationNumber []byte `tlv:"42"`

	Unknown []bertlv.TLV `tlv:",unknown"`
}

// ApplicationTemplate (tag '61') is one directory entry of the PPSE.
type ApplicationTemplate struct {
	AID                          []byte `tlv:"4F"`
	ApplicationLabel             []byte `tlv:"50" fmt:"ascii"`
	ApplicationPriorityIndicator []byte `tlv:"87" fmt:"int"`
	ApplicationPreferredName     []byte `tlv:"9F12" fmt:"ascii"`
	KernelIdentifier             []byte `tlv:"9F2A"`

	Unknown []bertlv.TLV `tlv:",unknown"`
}

// ParseFCI maps a SELECT answer onto an FCI. The '6F' wrapper is optional.
// Unlike tlv.Decode this is strict: malformed data is an error.
func ParseFCI(data []byte) (*FCI, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty data cannot be parsed")
	}

	packets, err := tlv.DecodeBER(data)
	if err != nil {
		return nil, fmt.Errorf("BER-TLV decode failed: %w", err)
	}

	if len(packets) > 0 && strings.EqualFold(packets[0].Tag, "6F") {
		packets = packets[0].TLVs
	}

	fci := &FCI{}
	if err := tlv.UnmarshalFromPackets(packets, fci); err != nil {
		return nil, fmt.Errorf("failed to map structure: %w", err)
	}

	return fci, nil
}

// Label is the name the card gives itself: the preferred name when present,
// else the application label. Non printable bytes become '.'.
func (f *FCI) Label() string {
	p := f.ProprietaryTemplate
	for _, v := range [][]byte{p.ApplicationPreferredName, p.ApplicationLabel} {
		if s := strings.TrimSpace(tlv.MakeSafeASCII(v)); s != "" {
			return s
		}
	}
	return ""
}

// Applications returns the PPSE directory entries, if any.
func (f *FCI) Applications() []ApplicationTemplate {
	if f.ProprietaryTemplate.IssuerDiscretionaryData == nil {
		return nil
	}
	return f.ProprietaryTemplate.IssuerDiscretionaryData.Applications
}

// Describe generates a detailed report of the FCI content.
func (f *FCI) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== EMV FCI TEMPLATE ===")

	tlv.WriteStructFields(&sb, "FCI", f)
	tlv.WriteStructFields(&sb, "Proprietary", f.ProprietaryTemplate)

	if dd := f.ProprietaryTemplate.IssuerDiscretionaryData; dd != nil {
		tlv.WriteStructFields(&sb, "Discretionary", dd)
		for i, app := range dd.Applications {
			tlv.WriteStructFields(&sb, fmt.Sprintf("App[%d]", i+1), app)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
