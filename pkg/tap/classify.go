package tap

import (
	"github.com/gregLibert/tapid/pkg/emv"
)

// Device is the kind of object that was tapped.
type Device string

const (
	DeviceCard     Device = "card"
	DeviceApplePay Device = "apple-pay"
)

// Heuristics selects the wallet rules Classify applies.
type Heuristics struct {
	// VASProbe: any answer to the Apple VAS SELECT means Apple hardware.
	VASProbe bool
	// AbsentFields: a recognized scheme with neither holder name nor
	// expiry is taken as a tokenized wallet credential.
	AbsentFields bool
}

// DefaultHeuristics enables both rules.
var DefaultHeuristics = Heuristics{VASProbe: true, AbsentFields: true}

// Signals are the observations Classify works from.
type Signals struct {
	VASResponded bool
	Scheme       emv.Scheme
	Fields       emv.Fields
}

// Classify tells a physical card from a phone wallet. Both rules are
// guesses: some Apple devices ignore VAS, and some plain cards omit the
// holder name and expiry from their contactless records.
func Classify(s Signals, h Heuristics) Device {
	if h.VASProbe && s.VASResponded {
		return DeviceApplePay
	}
	if h.AbsentFields && s.Scheme != emv.SchemeUnknown && s.Scheme != "" &&
		s.Fields.HolderName == "" && s.Fields.Expiry == "" {
		return DeviceApplePay
	}
	return DeviceCard
}
