package tap

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gregLibert/tapid/pkg/iso7816"
	"github.com/gregLibert/tapid/pkg/nfc"
	"github.com/gregLibert/tapid/pkg/tlv"
)

var errMute = errors.New("card did not answer")

// fakeCard answers scripted commands and fails every other one at the
// transport level, the way a card that ignores a command looks over RF.
type fakeCard struct {
	answers    map[string][]byte
	failAll    error
	sessionErr error
	onSend     func(cmd string)

	sent      []string
	requested int
	released  int
}

var _ nfc.Transceiver = (*fakeCard)(nil)

func newFakeCard() *fakeCard {
	return &fakeCard{answers: make(map[string][]byte)}
}

func (f *fakeCard) on(t *testing.T, cmd *iso7816.CommandAPDU, resp ...[]byte) *fakeCard {
	t.Helper()
	f.answers[cmdHex(t, cmd)] = bytes.Join(resp, nil)
	return f
}

func (f *fakeCard) RequestSession(context.Context, nfc.Technology) error {
	f.requested++
	return f.sessionErr
}

func (f *fakeCard) Transceive(ctx context.Context, apdu []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cmd := tlv.HexString(apdu)
	f.sent = append(f.sent, cmd)
	if f.onSend != nil {
		f.onSend(cmd)
	}
	if f.failAll != nil {
		return nil, f.failAll
	}
	if resp, ok := f.answers[cmd]; ok {
		return resp, nil
	}
	return nil, &nfc.TransceiveError{Op: "transceive", Reason: nfc.ReasonTimeout, Err: errMute}
}

func (f *fakeCard) ReleaseSession() error {
	f.released++
	return nil
}

// readRecords returns the READ RECORD commands sent, in order.
func (f *fakeCard) readRecords() []string {
	var out []string
	for _, c := range f.sent {
		if strings.HasPrefix(c, "00B2") {
			out = append(out, c)
		}
	}
	return out
}

func cmdHex(t *testing.T, cmd *iso7816.CommandAPDU) string {
	t.Helper()
	b, err := cmd.Bytes()
	require.NoError(t, err)
	return tlv.HexString(b)
}

// obj encodes one data object with a short form length.
func obj(tag string, parts ...[]byte) []byte {
	value := bytes.Join(parts, nil)
	out := append(tlv.Hex(tag), byte(len(value)))
	return append(out, value...)
}

var (
	sw9000 = tlv.Hex("9000")
	sw6A82 = tlv.Hex("6A82")
)
