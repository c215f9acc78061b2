package tap

import (
	"github.com/gregLibert/tapid/pkg/nfc"
)

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets where the pipeline writes its debug trace. The default
// discards it and skips building the trace altogether.
func WithLogger(l nfc.Logger) Option {
	return func(r *Reader) {
		if l != nil && l != nfc.DiscardLogger {
			r.logger = l
			r.debug = true
		}
	}
}

// WithVASProbe enables or disables the Apple VAS probe and the wallet
// signal derived from it. Enabled by default.
func WithVASProbe(enabled bool) Option {
	return func(r *Reader) {
		r.heuristics.VASProbe = enabled
	}
}

// WithAbsentFieldsHeuristic enables or disables classifying a recognized
// credential without holder name and expiry as a wallet. Enabled by default.
func WithAbsentFieldsHeuristic(enabled bool) Option {
	return func(r *Reader) {
		r.heuristics.AbsentFields = enabled
	}
}
