package tap

import (
	"context"
	"fmt"

	"github.com/gregLibert/tapid/pkg/emv"
	"github.com/gregLibert/tapid/pkg/tlv"
)

// Resolution is the payment application picked for the tapped object.
type Resolution struct {
	AID       string
	Scheme    emv.Scheme
	Label     string
	CardLabel string
}

var unresolved = Resolution{Scheme: emv.SchemeUnknown, Label: emv.UnknownLabel}

// probeVAS selects the Apple VAS applet. Any answer, success or not, counts
// as a response; only a transport failure does not.
func (s *session) probeVAS(ctx context.Context) bool {
	_, err := s.send(ctx, "select VAS", emv.SelectVAS())
	return err == nil
}

// resolve picks the application to read: from the PPSE directory when the
// card has one, else by probing the registry in order. The chosen AID is
// then selected again so later commands address it. Only a failure of that
// final SELECT, or ctx ending, is returned as an error.
func (s *session) resolve(ctx context.Context) (Resolution, error) {
	res, ok := s.resolveFromPPSE(ctx)
	if !ok {
		if err := ctx.Err(); err != nil {
			return unresolved, err
		}
		var err error
		if res, err = s.resolveByProbing(ctx); err != nil {
			return unresolved, err
		}
	}

	if res.AID == "" {
		return res, nil
	}

	cmd, err := emv.SelectAID(res.AID)
	if err != nil {
		return res, err
	}
	trace, err := s.send(ctx, "select "+res.AID, cmd)
	if err != nil {
		return res, fmt.Errorf("selecting %s: %w", res.AID, err)
	}
	if trace.Completed() {
		if fci, err := emv.ParseFCI(trace.Data()); err == nil {
			res.CardLabel = fci.Label()
			if s.debug {
				s.logger.Printf("select %s: FCI\n%s", res.AID, fci.Describe())
			}
		} else {
			s.logger.Printf("select %s: FCI: %v", res.AID, err)
		}
	}
	return res, nil
}

// resolveFromPPSE reads the contactless directory. The first listed AID the
// registry knows wins; failing that, the first listed AID is kept with an
// unknown scheme.
func (s *session) resolveFromPPSE(ctx context.Context) (Resolution, bool) {
	trace, err := s.send(ctx, "select PPSE", emv.SelectPPSE())
	if err != nil || !trace.Completed() {
		return unresolved, false
	}

	if s.debug {
		if fci, err := emv.ParseFCI(trace.Data()); err == nil {
			s.logger.Printf("select PPSE: %d directory entries\n%s", len(fci.Applications()), fci.Describe())
		}
	}

	aids := tlv.FindAllTags(tlv.Decode(trace.Data()), emv.TagAID)
	if len(aids) == 0 {
		return unresolved, false
	}

	for _, e := range aids {
		aid := tlv.HexString(e.Value)
		if app, ok := emv.Lookup(aid); ok {
			return Resolution{AID: aid, Scheme: app.Scheme, Label: app.Label}, true
		}
	}

	res := unresolved
	res.AID = tlv.HexString(aids[0].Value)
	return res, true
}

// resolveByProbing selects every known AID in registry order and keeps the
// first one the card accepts.
func (s *session) resolveByProbing(ctx context.Context) (Resolution, error) {
	for _, app := range emv.KnownApplications() {
		cmd, err := emv.SelectAID(app.AID)
		if err != nil {
			continue
		}
		trace, err := s.send(ctx, "probe "+app.Label, cmd)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return unresolved, ctxErr
			}
			continue
		}
		if trace.Completed() {
			return Resolution{AID: app.AID, Scheme: app.Scheme, Label: app.Label}, nil
		}
	}
	return unresolved, nil
}
