package tap

import (
	"fmt"

	"github.com/gregLibert/tapid/pkg/emv"
)

const (
	// NoLastFour stands in for the last four digits when no PAN was read.
	NoLastFour = "????"
	// NoExpiry stands in for an expiry that was never found.
	NoExpiry = "--/--"
)

// CardInfo is what a read reports. The PAN itself is never kept.
type CardInfo struct {
	Scheme     emv.Scheme `json:"scheme"`
	Label      string     `json:"label"`
	LastFour   string     `json:"lastFour"`
	Expiry     string     `json:"expiry"`
	HolderName string     `json:"holderName,omitempty"`
	AID        string     `json:"aid"`
	Device     Device     `json:"device"`

	// CardLabel is the application name the card reports about itself.
	CardLabel string `json:"cardLabel,omitempty"`
}

func (c *CardInfo) String() string {
	s := fmt.Sprintf("%s **** %s exp %s (%s)", c.Label, c.LastFour, c.Expiry, c.Device)
	if c.HolderName != "" {
		s += " " + c.HolderName
	}
	return s
}

// Assemble builds the CardInfo from the resolved application, the fields
// extracted and the classification.
func Assemble(res Resolution, f emv.Fields, d Device) *CardInfo {
	info := &CardInfo{
		Scheme:     res.Scheme,
		Label:      res.Label,
		LastFour:   NoLastFour,
		Expiry:     NoExpiry,
		HolderName: f.HolderName,
		AID:        res.AID,
		Device:     d,
		CardLabel:  res.CardLabel,
	}
	if info.Scheme == "" {
		info.Scheme = emv.SchemeUnknown
	}
	if info.Label == "" {
		info.Label = emv.UnknownLabel
	}
	if len(f.PAN) >= 4 {
		info.LastFour = f.PAN[len(f.PAN)-4:]
	}
	if f.Expiry != "" {
		info.Expiry = f.Expiry
	}
	return info
}
