package iso7816

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gregLibert/tapid/pkg/tlv"
)

// scriptedCard answers with the queued responses in order and records what
// it was sent.
type scriptedCard struct {
	answers [][]byte
	errs    []error
	sent    [][]byte
}

func (s *scriptedCard) Transceive(_ context.Context, apdu []byte) ([]byte, error) {
	i := len(s.sent)
	s.sent = append(s.sent, apdu)
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.answers) {
		return tlv.Hex("6F00"), nil
	}
	return s.answers[i], nil
}

func TestClient_Send(t *testing.T) {
	cls := MustClass(0x00)

	t.Run("single exchange", func(t *testing.T) {
		card := &scriptedCard{answers: [][]byte{tlv.Hex("6F00 9000")}}
		trace, err := NewClient(card).Send(context.Background(), SelectByAID(cls, tlv.Hex("A0000000031010")))
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if len(trace) != 1 || !trace.Completed() {
			t.Fatalf("unexpected trace: %d transactions, status %s", len(trace), trace.Status())
		}
		if diff := cmp.Diff(tlv.Hex("6F00"), trace.Data()); diff != "" {
			t.Errorf("Data() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("61XX issues GET RESPONSE", func(t *testing.T) {
		card := &scriptedCard{answers: [][]byte{tlv.Hex("6110"), tlv.Hex("0102 9000")}}
		trace, err := NewClient(card).Send(context.Background(), ReadRecord(cls, 1, 1))
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if len(trace) != 2 {
			t.Fatalf("len(trace) = %d, want 2", len(trace))
		}
		if diff := cmp.Diff(tlv.Hex("00C00000 10"), card.sent[1]); diff != "" {
			t.Errorf("GET RESPONSE mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]byte{1, 2}, trace.Data()); diff != "" {
			t.Errorf("Data() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("GET RESPONSE after a proprietary command is interindustry", func(t *testing.T) {
		ins, _ := NewInstruction(INS_GET_PROCESSING_OPTIONS)
		gpo := NewCommandAPDU(MustClass(0x80), ins, 0x00, 0x00, tlv.Hex("8300"), MaxShortLe)
		card := &scriptedCard{answers: [][]byte{tlv.Hex("6110"), tlv.Hex("7700 9000")}}
		if _, err := NewClient(card).Send(context.Background(), gpo); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if diff := cmp.Diff(tlv.Hex("00C00000 10"), card.sent[1]); diff != "" {
			t.Errorf("GET RESPONSE mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("GET RESPONSE keeps the logical channel", func(t *testing.T) {
		card := &scriptedCard{answers: [][]byte{tlv.Hex("6108"), tlv.Hex("6F00 9000")}}
		if _, err := NewClient(card).Send(context.Background(), SelectByAID(MustClass(0x01), tlv.Hex("A0000000031010"))); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if diff := cmp.Diff(tlv.Hex("01C00000 08"), card.sent[1]); diff != "" {
			t.Errorf("GET RESPONSE mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("6CXX re-sends with corrected Le", func(t *testing.T) {
		card := &scriptedCard{answers: [][]byte{tlv.Hex("6C1A"), tlv.Hex("70 00 9000")}}
		trace, err := NewClient(card).Send(context.Background(), ReadRecord(cls, 2, 1))
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if diff := cmp.Diff(tlv.Hex("00B20114 1A"), card.sent[1]); diff != "" {
			t.Errorf("re-sent command mismatch (-want +got):\n%s", diff)
		}
		if !trace.Completed() {
			t.Errorf("Completed() = false, status %s", trace.Status())
		}
	})

	t.Run("endless 61XX is bounded", func(t *testing.T) {
		answers := make([][]byte, MaxFollowUps+5)
		for i := range answers {
			answers[i] = tlv.Hex("6101")
		}
		card := &scriptedCard{answers: answers}
		_, err := NewClient(card).Send(context.Background(), ReadRecord(cls, 1, 1))
		if err == nil {
			t.Fatal("expected an error")
		}
		if len(card.sent) != MaxFollowUps+1 {
			t.Errorf("sent %d commands, want %d", len(card.sent), MaxFollowUps+1)
		}
	})

	t.Run("transport error is wrapped", func(t *testing.T) {
		lost := errors.New("tag lost")
		card := &scriptedCard{errs: []error{lost}}
		trace, err := NewClient(card).Send(context.Background(), ReadRecord(cls, 1, 1))
		if !errors.Is(err, lost) {
			t.Fatalf("Send() error = %v, want wrapping %v", err, lost)
		}
		if len(trace) != 0 {
			t.Errorf("len(trace) = %d, want 0", len(trace))
		}
	})

	t.Run("cancelled context sends nothing", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		card := &scriptedCard{}
		_, err := NewClient(card).Send(ctx, ReadRecord(cls, 1, 1))
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Send() error = %v, want context.Canceled", err)
		}
		if len(card.sent) != 0 {
			t.Errorf("sent %d commands, want 0", len(card.sent))
		}
	})
}
