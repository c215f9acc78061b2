package nfc

import (
	"context"
)

const debugChunk = 32

// DebugTransceiver logs every session event and APDU exchanged through Base.
type DebugTransceiver struct {
	Base   Transceiver
	Logger Logger
}

var _ Transceiver = (*DebugTransceiver)(nil)

// NewDebugTransceiver wraps base. A nil logger discards.
func NewDebugTransceiver(base Transceiver, logger Logger) *DebugTransceiver {
	if logger == nil {
		logger = DiscardLogger
	}
	return &DebugTransceiver{Base: base, Logger: logger}
}

func (d *DebugTransceiver) RequestSession(ctx context.Context, tech Technology) error {
	d.Logger.Printf("session: request %s", tech)
	err := d.Base.RequestSession(ctx, tech)
	if err != nil {
		d.Logger.Printf("session: %v", err)
	}
	return err
}

func (d *DebugTransceiver) Transceive(ctx context.Context, apdu []byte) ([]byte, error) {
	logChunks(d.Logger, "->", apdu)

	resp, err := d.Base.Transceive(ctx, apdu)
	if err != nil {
		d.Logger.Printf("<- error: %v", err)
		return resp, err
	}

	logChunks(d.Logger, "<-", resp)
	return resp, nil
}

func (d *DebugTransceiver) ReleaseSession() error {
	d.Logger.Printf("session: release")
	return d.Base.ReleaseSession()
}

func logChunks(l Logger, dir string, buf []byte) {
	if len(buf) == 0 {
		l.Printf("%s (empty)", dir)
		return
	}
	for i := 0; i < len(buf); i += debugChunk {
		end := min(i+debugChunk, len(buf))
		if i == 0 {
			l.Printf("%s %X", dir, buf[i:end])
		} else {
			l.Printf("%s %X", "  ", buf[i:end])
		}
	}
}
