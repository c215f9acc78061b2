package emv

import (
	"github.com/gregLibert/tapid/pkg/tlv"
)

// Data objects read during field extraction.
const (
	TagPAN                = "5A"
	TagTrack2             = "57"
	TagTokenTrack2        = "9F6B"
	TagExpiryDate         = "5F24"
	TagHolderName         = "5F20"
	TagAFL                = "94"
	TagAID                = "4F"
	TagResponseTemplate1  = "80"
	TagResponseTemplate2  = "77"
	TagReadRecordTemplate = "70"
)

// Fields accumulates the cardholder data found so far. Empty strings mean
// "not found yet".
type Fields struct {
	PAN        string
	Expiry     string // MM/YY
	HolderName string
}

// Fill copies every field of other that is still empty in f. Values that are
// already set are never overwritten.
func (f *Fields) Fill(other Fields) {
	if f.PAN == "" {
		f.PAN = other.PAN
	}
	if f.Expiry == "" {
		f.Expiry = other.Expiry
	}
	if f.HolderName == "" {
		f.HolderName = other.HolderName
	}
}

// HasPAN reports whether a PAN was found.
func (f Fields) HasPAN() bool {
	return f.PAN != ""
}

// ExtractFields reads the cardholder data objects out of one decoded
// response. PAN sources in priority order: '5A', '57', '9F6B'. The expiry
// comes from '5F24', else from the Track2 object that supplied the PAN.
func ExtractFields(entries []tlv.Entry) Fields {
	var f Fields
	var track2Expiry string

	if v := tlv.FindValue(entries, TagPAN); v != nil {
		f.PAN = DecodePAN(v)
	}

	for _, tag := range []string{TagTrack2, TagTokenTrack2} {
		if f.PAN != "" {
			break
		}
		v := tlv.FindValue(entries, tag)
		if v == nil {
			continue
		}
		if t, ok := ParseTrack2(tlv.HexString(v)); ok {
			f.PAN = t.PAN
			track2Expiry = t.Expiry
		}
	}

	if v := tlv.FindValue(entries, TagExpiryDate); v != nil {
		f.Expiry = FormatExpiryDate(v)
	}
	if f.Expiry == "" {
		f.Expiry = track2Expiry
	}

	if v := tlv.FindValue(entries, TagHolderName); v != nil {
		f.HolderName = DecodeHolderName(v)
	}

	return f
}
