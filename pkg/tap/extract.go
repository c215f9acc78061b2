package tap

import (
	"context"
	"fmt"

	"github.com/gregLibert/tapid/pkg/emv"
	"github.com/gregLibert/tapid/pkg/tlv"
)

// Brute force sweep bounds, both inclusive.
const (
	SweepMaxSFI    = 4
	SweepMaxRecord = 5
)

// extract gathers PAN, expiry and holder name in three tiers, each entered
// only while the PAN is still missing: the GPO response, the records the
// AFL lists, then a sweep of SFI 1..SweepMaxSFI x record 1..SweepMaxRecord.
// A transport failure on GPO is returned; failures on individual records
// are skipped.
func (s *session) extract(ctx context.Context) (emv.Fields, error) {
	var f emv.Fields

	trace, err := s.send(ctx, "GPO", emv.GetProcessingOptions())
	if err != nil {
		return f, fmt.Errorf("get processing options: %w", err)
	}

	var afl []byte
	if trace.Completed() {
		entries := tlv.Decode(trace.Data())
		f.Fill(emv.ExtractFields(entries))
		afl = findAFL(entries)
	}
	if f.HasPAN() {
		return f, nil
	}

	for _, e := range emv.ParseAFL(afl) {
		for _, rec := range e.Records() {
			if err := s.readRecord(ctx, &f, e.SFI, rec); err != nil {
				return f, err
			}
			if f.HasPAN() {
				return f, nil
			}
		}
	}

	for sfi := byte(1); sfi <= SweepMaxSFI; sfi++ {
		for rec := byte(1); rec <= SweepMaxRecord; rec++ {
			if err := s.readRecord(ctx, &f, sfi, rec); err != nil {
				return f, err
			}
			if f.HasPAN() {
				return f, nil
			}
		}
	}

	return f, nil
}

// findAFL returns the AFL from tag '94' or, for a format 1 response, from
// the tail of tag '80'.
func findAFL(entries []tlv.Entry) []byte {
	if afl := tlv.FindValue(entries, emv.TagAFL); afl != nil {
		return afl
	}
	if v := tlv.FindValue(entries, emv.TagResponseTemplate1); v != nil {
		if _, afl, ok := emv.SplitResponseTemplate1(v); ok {
			return afl
		}
	}
	return nil
}

// readRecord reads one record into f. It only fails when ctx is done.
func (s *session) readRecord(ctx context.Context, f *emv.Fields, sfi, rec byte) error {
	trace, err := s.send(ctx, fmt.Sprintf("read SFI %d record %d", sfi, rec), emv.ReadRecord(sfi, rec))
	if err != nil {
		return ctx.Err()
	}
	if trace.Completed() {
		f.Fill(emv.ExtractFields(tlv.Decode(trace.Data())))
	}
	return nil
}
