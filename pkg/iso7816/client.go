package iso7816

import (
	"context"
	"fmt"
)

// The Client turns one logical command into as many exchanges as the card
// requires:
//   '61XX' the card holds XX more bytes; fetch them with GET RESPONSE.
//   '6CXX' wrong Le; send the same command again with Le = XX.
// Everything that was exchanged is returned as a Trace.

// MaxFollowUps bounds the GET RESPONSE / re-send chain of a single Send.
const MaxFollowUps = 8

// Transmitter carries one raw APDU to the card and returns the raw answer.
type Transmitter interface {
	Transceive(ctx context.Context, apdu []byte) ([]byte, error)
}

// Client manages the high-level communication with the card.
type Client struct {
	Card Transmitter
}

// NewClient creates a new Client instance.
func NewClient(card Transmitter) *Client {
	return &Client{Card: card}
}

// Send transmits cmd and follows '61XX' and '6CXX' answers. On a transport
// error the returned trace holds the exchanges completed before it.
func (c *Client) Send(ctx context.Context, cmd *CommandAPDU) (Trace, error) {
	var trace Trace

	next := cmd
	for i := 0; i <= MaxFollowUps; i++ {
		resp, err := c.exchange(ctx, next)
		if err != nil {
			return trace, err
		}
		trace = append(trace, Transaction{Command: next, Response: resp})

		sw1, sw2 := resp.Status.SW1(), resp.Status.SW2()
		switch sw1 {
		case 0x61:
			// GET RESPONSE is interindustry, even after a proprietary
			// command such as GPO, and stays on the command's channel.
			cls := Class{Channel: cmd.Class.Channel}
			ins, _ := NewInstruction(INS_GET_RESPONSE)
			next = NewCommandAPDU(cls, ins, 0x00, 0x00, nil, leFromSW2(sw2))
		case 0x6C:
			retry := *cmd
			retry.Ne = leFromSW2(sw2)
			next = &retry
		default:
			return trace, nil
		}
	}

	return trace, fmt.Errorf("%s: more than %d follow-up exchanges", cmd.Instruction.Verbose(), MaxFollowUps)
}

func (c *Client) exchange(ctx context.Context, cmd *CommandAPDU) (*ResponseAPDU, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := cmd.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	rawResp, err := c.Card.Transceive(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("transmission error: %w", err)
	}

	return ParseResponseAPDU(rawResp)
}

// SW2 = 00 stands for 256 bytes.
func leFromSW2(sw2 byte) int {
	if sw2 == 0 {
		return MaxShortLe
	}
	return int(sw2)
}
