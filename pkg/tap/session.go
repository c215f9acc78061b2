package tap

import (
	"context"

	"github.com/gregLibert/tapid/pkg/iso7816"
	"github.com/gregLibert/tapid/pkg/nfc"
)

// session carries the per-tap state through the pipeline.
type session struct {
	client *iso7816.Client
	logger nfc.Logger
	// debug enables the decoded trace of every exchange.
	debug bool
}

// send runs one command and logs the exchange. A non nil error means the
// transport failed; status words are left to the caller.
func (s *session) send(ctx context.Context, step string, cmd *iso7816.CommandAPDU) (iso7816.Trace, error) {
	trace, err := s.client.Send(ctx, cmd)
	if err != nil {
		s.logger.Printf("%s: %v", step, err)
		return trace, err
	}
	if s.debug {
		s.logger.Printf("%s:\n%s", step, trace.Describe())
	}
	return trace, nil
}
