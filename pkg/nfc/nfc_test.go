package nfc

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransceiveError(t *testing.T) {
	cause := errors.New("card removed")
	err := error(&TransceiveError{Op: "transmit", Reason: ReasonTagLost, Err: cause})

	assert.ErrorIs(t, err, ErrTransceive)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, "transmit: tag lost: card removed", err.Error())

	var te *TransceiveError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ReasonTagLost, te.Reason)

	assert.Equal(t, "exchange: timeout", (&TransceiveError{Op: "exchange", Reason: ReasonTimeout}).Error())
}

func TestTechnology_String(t *testing.T) {
	assert.Equal(t, "ISO-DEP", IsoDep.String())
	assert.Equal(t, "Technology(7)", Technology(7).String())
}

type echoTransceiver struct {
	released int
	fail     error
}

func (*echoTransceiver) RequestSession(context.Context, Technology) error { return nil }

func (e *echoTransceiver) Transceive(_ context.Context, apdu []byte) ([]byte, error) {
	if e.fail != nil {
		return nil, e.fail
	}
	return append(append([]byte{}, apdu...), 0x90, 0x00), nil
}

func (e *echoTransceiver) ReleaseSession() error {
	e.released++
	return nil
}

func TestDebugTransceiver(t *testing.T) {
	var buf bytes.Buffer
	base := &echoTransceiver{}
	d := NewDebugTransceiver(base, log.New(&buf, "", 0))

	require.NoError(t, d.RequestSession(context.Background(), IsoDep))

	long := bytes.Repeat([]byte{0xAB}, 40)
	resp, err := d.Transceive(context.Background(), long)
	require.NoError(t, err)
	assert.Len(t, resp, 42)
	require.NoError(t, d.ReleaseSession())
	assert.Equal(t, 1, base.released)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "session: request ISO-DEP", lines[0])
	assert.Equal(t, "-> "+strings.Repeat("AB", 32), lines[1])
	assert.Equal(t, "   "+strings.Repeat("AB", 8), lines[2])
	assert.Equal(t, "<- "+strings.Repeat("AB", 32), lines[3])
	assert.Equal(t, "   "+strings.Repeat("AB", 8)+"9000", lines[4])
	assert.Equal(t, "session: release", lines[5])
}

func TestDebugTransceiver_Error(t *testing.T) {
	var buf bytes.Buffer
	d := NewDebugTransceiver(&echoTransceiver{fail: ErrNoSession}, log.New(&buf, "", 0))

	_, err := d.Transceive(context.Background(), []byte{0x00})
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Contains(t, buf.String(), "<- error: nfc: no session")
}
