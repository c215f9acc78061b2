// Package tap identifies the contactless payment object held against a
// reader: which scheme it belongs to, the last four digits of its PAN, its
// expiry, and whether it is a plastic card or a phone wallet.
package tap

import (
	"context"
	"fmt"

	"github.com/gregLibert/tapid/pkg/iso7816"
	"github.com/gregLibert/tapid/pkg/nfc"
)

// Reader runs the identification pipeline over an nfc.Transceiver.
type Reader struct {
	t          nfc.Transceiver
	logger     nfc.Logger
	debug      bool
	heuristics Heuristics
}

// NewReader returns a Reader using t. Both wallet heuristics are on unless
// an option turns them off.
func NewReader(t nfc.Transceiver, opts ...Option) *Reader {
	r := &Reader{
		t:          t,
		logger:     nfc.DiscardLogger,
		heuristics: DefaultHeuristics,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read waits for an ISO-DEP object, identifies it and releases the session.
// It returns a nil CardInfo with an error when no session could be opened,
// when ctx ends, or when the transport fails on a step the pipeline cannot
// skip. Every other card misbehavior degrades into placeholder fields.
func (r *Reader) Read(ctx context.Context) (*CardInfo, error) {
	defer func() {
		if err := r.t.ReleaseSession(); err != nil {
			r.logger.Printf("release session: %v", err)
		}
	}()

	if err := r.t.RequestSession(ctx, nfc.IsoDep); err != nil {
		return nil, fmt.Errorf("request session: %w", err)
	}

	s := &session{client: iso7816.NewClient(r.t), logger: r.logger, debug: r.debug}

	var vas bool
	if r.heuristics.VASProbe {
		vas = s.probeVAS(ctx)
	}

	res, err := s.resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve application: %w", err)
	}

	fields, err := s.extract(ctx)
	if err != nil {
		return nil, err
	}

	device := Classify(Signals{VASResponded: vas, Scheme: res.Scheme, Fields: fields}, r.heuristics)
	return Assemble(res, fields, device), nil
}
