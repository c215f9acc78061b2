/*
Package emv holds the EMV contactless building blocks that sit on top of
ISO 7816: the fixed command templates, the registry of known payment
applications, and the pure decoders for the cardholder data objects.

Nothing in this package talks to a card. Each function takes bytes (or a
decoded tlv.Entry list) and returns values, so it can be exercised without
hardware:

	entries := tlv.Decode(gpoResponse)
	fields := emv.ExtractFields(entries)
	if fields.PAN == "" {
	    for _, e := range emv.ParseAFL(tlv.FindValue(entries, emv.TagAFL)) {
	        ...
	    }
	}
*/
package emv
