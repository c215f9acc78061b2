package pn532

import (
	"bytes"
	"errors"
)

// PN532 host frames (User Manual §6.2.1):
//
//	normal: 00 00 FF LEN LCS TFI PD0..PDn DCS 00
//	ACK:    00 00 FF 00 FF 00
//	NACK:   00 00 FF FF 00 00
//
// LEN counts TFI and the data bytes. LCS makes LEN+LCS = 0 and DCS makes
// TFI+PD0+..+PDn+DCS = 0, both modulo 256. TFI is D4 towards the chip and
// D5 back; PD0 is the command code, answered with code+1.

const (
	tfiHostToPN532 = 0xD4
	tfiPN532ToHost = 0xD5

	// maxFrameData is TFI + command + payload in a normal frame.
	maxFrameData = 255
)

var (
	ackFrame  = []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}
	nackFrame = []byte{0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00}

	// HSU wakeup: the chip needs a long enough preamble after power down.
	wakeupFrame = []byte{0x55, 0x55, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
)

var errIncomplete = errors.New("pn532: incomplete frame")

type frameKind int

const (
	frameData frameKind = iota
	frameACK
	frameNACK
)

type frame struct {
	kind    frameKind
	command byte
	data    []byte
}

// buildFrame encodes a host-to-chip command frame.
func buildFrame(command byte, payload []byte) ([]byte, error) {
	length := 2 + len(payload)
	if length > maxFrameData {
		return nil, ErrFrameTooLarge
	}

	out := make([]byte, 0, length+7)
	out = append(out, 0x00, 0x00, 0xFF, byte(length), ^byte(length)+1, tfiHostToPN532, command)
	out = append(out, payload...)

	sum := byte(tfiHostToPN532) + command
	for _, b := range payload {
		sum += b
	}
	return append(out, ^sum+1, 0x00), nil
}

// parseFrame decodes the first frame found in buf and reports how many bytes
// it consumed, postamble included when present. It returns errIncomplete
// when buf ends before the frame does; garbage in front of a start code is
// skipped. A frame with a bad checksum is consumed and reported.
func parseFrame(buf []byte) (frame, int, error) {
	start := bytes.Index(buf, []byte{0x00, 0xFF})
	if start < 0 {
		return frame{}, 0, errIncomplete
	}
	p := start + 2
	if len(buf) < p+2 {
		return frame{}, 0, errIncomplete
	}

	length, lcs := buf[p], buf[p+1]
	switch {
	case length == 0x00 && lcs == 0xFF:
		return frame{kind: frameACK}, skipPostamble(buf, p+2), nil
	case length == 0xFF && lcs == 0x00:
		return frame{kind: frameNACK}, skipPostamble(buf, p+2), nil
	case length+lcs != 0:
		return frame{}, p, ErrBadLCS
	}

	body := p + 2
	end := body + int(length) + 1 // DCS
	if len(buf) < end {
		return frame{}, 0, errIncomplete
	}

	var sum byte
	for _, b := range buf[body:end] {
		sum += b
	}
	if sum != 0 {
		return frame{}, end, ErrBadDCS
	}
	if length < 2 || buf[body] != tfiPN532ToHost {
		return frame{}, end, ErrBadTFI
	}

	data := make([]byte, int(length)-2)
	copy(data, buf[body+2:end-1])
	return frame{kind: frameData, command: buf[body+1], data: data}, skipPostamble(buf, end), nil
}

// frameSpan returns the length of the frame at the start of buf including
// its preamble, or 0 when buf does not hold a complete frame.
func frameSpan(buf []byte) int {
	_, n, err := parseFrame(buf)
	if errors.Is(err, errIncomplete) {
		return 0
	}
	return n
}

func skipPostamble(buf []byte, i int) int {
	if i < len(buf) && buf[i] == 0x00 {
		return i + 1
	}
	return i
}
