package emv

import (
	"strings"
)

// Scheme is the payment network an application belongs to.
type Scheme string

const (
	SchemeVisa       Scheme = "visa"
	SchemeMastercard Scheme = "mastercard"
	SchemeAmex       Scheme = "amex"
	SchemeUnknown    Scheme = "unknown"
)

// UnknownLabel is the display label of an AID the registry does not know.
const UnknownLabel = "unknown"

// KnownApplication maps an AID prefix to its scheme and display label.
type KnownApplication struct {
	AID    string
	Scheme Scheme
	Label  string
}

// Registry order is the fallback probing order.
var knownApplications = [...]KnownApplication{
	{AID: "A0000000031010", Scheme: SchemeVisa, Label: "VISA"},
	{AID: "A0000000032010", Scheme: SchemeVisa, Label: "VISA ELECTRON"},
	{AID: "A0000000032020", Scheme: SchemeVisa, Label: "V PAY"},
	{AID: "A0000000038010", Scheme: SchemeVisa, Label: "VISA PLUS"},
	{AID: "A0000000041010", Scheme: SchemeMastercard, Label: "MASTERCARD"},
	{AID: "A0000000043060", Scheme: SchemeMastercard, Label: "MAESTRO"},
	{AID: "A0000000042203", Scheme: SchemeMastercard, Label: "MASTERCARD US DEBIT"},
	{AID: "A0000000046000", Scheme: SchemeMastercard, Label: "CIRRUS"},
	{AID: "A00000002501", Scheme: SchemeAmex, Label: "AMEX"},
}

// KnownApplications returns a copy of the registry in probing order.
func KnownApplications() []KnownApplication {
	out := make([]KnownApplication, len(knownApplications))
	copy(out, knownApplications[:])
	return out
}

// Lookup finds the registry row whose AID is a prefix of aidHex, ignoring
// case. Cards often append a suffix to the registered AID.
func Lookup(aidHex string) (KnownApplication, bool) {
	aid := strings.ToUpper(aidHex)
	if aid == "" {
		return KnownApplication{}, false
	}
	for _, app := range knownApplications {
		if strings.HasPrefix(aid, app.AID) {
			return app, true
		}
	}
	return KnownApplication{}, false
}
