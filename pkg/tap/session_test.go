package tap

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregLibert/tapid/pkg/emv"
	"github.com/gregLibert/tapid/pkg/iso7816"
	"github.com/gregLibert/tapid/pkg/nfc"
	"github.com/gregLibert/tapid/pkg/tlv"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) contains(s string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func TestSession_TraceOnlyWhenDebugging(t *testing.T) {
	card := newFakeCard().on(t, emv.SelectPPSE(), ppse(visaAID), sw9000)

	logger := &recordingLogger{}
	s := &session{client: iso7816.NewClient(card), logger: logger}
	trace, err := s.send(context.Background(), "select PPSE", emv.SelectPPSE())
	require.NoError(t, err)
	assert.True(t, trace.Completed())
	assert.Empty(t, logger.lines)

	s.debug = true
	_, err = s.send(context.Background(), "select PPSE", emv.SelectPPSE())
	require.NoError(t, err)
	assert.True(t, logger.contains(">> "+cmdHex(t, emv.SelectPPSE())), "lines: %q", logger.lines)
	assert.True(t, logger.contains("[9000]"))
}

func TestSession_TransportErrorsAlwaysLogged(t *testing.T) {
	logger := &recordingLogger{}
	s := &session{client: iso7816.NewClient(newFakeCard()), logger: logger}

	_, err := s.send(context.Background(), "select VAS", emv.SelectVAS())
	require.ErrorIs(t, err, nfc.ErrTransceive)
	require.Len(t, logger.lines, 1)
	assert.Contains(t, logger.lines[0], "select VAS")
}

func TestReader_WithLogger(t *testing.T) {
	card := newFakeCard().
		on(t, emv.SelectPPSE(), ppse(visaAID), sw9000).
		on(t, selectAID(t, visaAID), fci(visaAID, "VISA CREDIT"), sw9000).
		on(t, emv.GetProcessingOptions(), obj("77", obj("5A", tlv.Hex("4111111111111111"))), sw9000)

	logger := &recordingLogger{}
	_, err := NewReader(card, WithLogger(logger)).Read(context.Background())
	require.NoError(t, err)
	assert.True(t, logger.contains("EMV FCI TEMPLATE"))

	quiet := NewReader(card, WithLogger(nfc.DiscardLogger))
	assert.False(t, quiet.debug)
}
