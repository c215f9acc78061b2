// Package pn532 is a driver for the NXP PN532 NFC controller acting as an
// ISO 14443-A initiator, over UART (HSU) or I2C. Transceiver adapts it to
// nfc.Transceiver so payment cards and phones can be read without PC/SC.
package pn532

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gregLibert/tapid/internal/syncutil"
	"github.com/gregLibert/tapid/pkg/nfc"
)

// Command codes (User Manual §7).
const (
	cmdGetFirmwareVersion  = 0x02
	cmdSAMConfiguration    = 0x14
	cmdRFConfiguration     = 0x32
	cmdInDataExchange      = 0x40
	cmdInListPassiveTarget = 0x4A
	cmdInRelease           = 0x52
)

const (
	// statusMI flags a response continued in the next InDataExchange.
	statusMI       = 0x40
	statusCodeMask = 0x3F

	// selResISO14443_4 is the SEL_RES bit announcing ISO 14443-4.
	selResISO14443_4 = 0x20

	// maxExchangeData is what fits one InDataExchange frame next to the
	// TFI, the command code and Tg.
	maxExchangeData = maxFrameData - 3

	// maxChained bounds MI chaining.
	maxChained = 16
)

// DefaultTimeout bounds one command round trip.
const DefaultTimeout = time.Second

// FirmwareVersion is the answer to GetFirmwareVersion.
type FirmwareVersion struct {
	IC       byte
	Version  byte
	Revision byte
	Support  byte
}

func (f FirmwareVersion) String() string {
	return fmt.Sprintf("PN5%02X v%d.%d", f.IC, f.Version, f.Revision)
}

// Target is an ISO 14443-A target found by InListPassiveTarget.
type Target struct {
	Number  byte
	SensRes [2]byte
	SelRes  byte
	UID     []byte
	ATS     []byte
}

// SupportsISO14443_4 reports whether the target speaks ISO-DEP.
func (t *Target) SupportsISO14443_4() bool {
	return t.SelRes&selResISO14443_4 != 0
}

// Device talks to one PN532. Commands are serialized.
type Device struct {
	link    Link
	timeout time.Duration
	retries byte
	logger  nfc.Logger

	mu      syncutil.Mutex
	pending []byte
	chunk   []byte
}

// Option configures a Device.
type Option func(*Device)

// WithTimeout sets the per-command timeout.
func WithTimeout(d time.Duration) Option {
	return func(dev *Device) {
		if d > 0 {
			dev.timeout = d
		}
	}
}

// WithPassiveRetries sets MxRtyPassiveActivation, the number of activation
// attempts per InListPassiveTarget (0xFF retries forever).
func WithPassiveRetries(n byte) Option {
	return func(dev *Device) {
		dev.retries = n
	}
}

// WithLogger logs frame level traffic.
func WithLogger(l nfc.Logger) Option {
	return func(dev *Device) {
		if l != nil {
			dev.logger = l
		}
	}
}

// New returns a Device on link. Call Init before anything else.
func New(link Link, opts ...Option) *Device {
	d := &Device{
		link:    link,
		timeout: DefaultTimeout,
		retries: 0x02,
		logger:  nfc.DiscardLogger,
		chunk:   make([]byte, maxFrameData+8),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init wakes the chip, disables the SAM and bounds passive activation.
func (d *Device) Init(ctx context.Context) error {
	if w, ok := d.link.(waker); ok {
		if err := w.Wake(ctx); err != nil {
			return fmt.Errorf("wakeup: %w", err)
		}
	}

	// Normal mode, 1 s virtual card timeout, IRQ used.
	if _, err := d.command(ctx, cmdSAMConfiguration, []byte{0x01, 0x14, 0x01}); err != nil {
		return fmt.Errorf("SAMConfiguration: %w", err)
	}
	// CfgItem 5: MxRtyATR, MxRtyPSL, MxRtyPassiveActivation.
	if _, err := d.command(ctx, cmdRFConfiguration, []byte{0x05, 0xFF, 0x01, d.retries}); err != nil {
		return fmt.Errorf("RFConfiguration: %w", err)
	}
	return nil
}

// FirmwareVersion queries the chip identity.
func (d *Device) FirmwareVersion(ctx context.Context) (FirmwareVersion, error) {
	data, err := d.command(ctx, cmdGetFirmwareVersion, nil)
	if err != nil {
		return FirmwareVersion{}, err
	}
	if len(data) < 4 {
		return FirmwareVersion{}, fmt.Errorf("GetFirmwareVersion: %w: %d bytes", ErrUnexpected, len(data))
	}
	return FirmwareVersion{IC: data[0], Version: data[1], Revision: data[2], Support: data[3]}, nil
}

// InListPassiveTarget activates at most one 106 kbps type A target. It
// returns ErrNoTarget when the field is empty.
func (d *Device) InListPassiveTarget(ctx context.Context) (*Target, error) {
	data, err := d.command(ctx, cmdInListPassiveTarget, []byte{0x01, 0x00})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || data[0] == 0 {
		return nil, ErrNoTarget
	}
	return parseTarget(data[1:])
}

// Tg SENS_RES(2) SEL_RES NFCIDLength NFCID1 [ATSLength ATS...]
func parseTarget(b []byte) (*Target, error) {
	if len(b) < 5 {
		return nil, fmt.Errorf("InListPassiveTarget: %w: short target data", ErrUnexpected)
	}
	t := &Target{Number: b[0], SensRes: [2]byte{b[1], b[2]}, SelRes: b[3]}

	uidLen := int(b[4])
	if len(b) < 5+uidLen {
		return nil, fmt.Errorf("InListPassiveTarget: %w: UID truncated", ErrUnexpected)
	}
	t.UID = append([]byte(nil), b[5:5+uidLen]...)

	rest := b[5+uidLen:]
	if len(rest) > 0 {
		atsLen := int(rest[0])
		if atsLen > 1 && len(rest) >= atsLen {
			t.ATS = append([]byte(nil), rest[1:atsLen]...)
		}
	}
	return t, nil
}

// InDataExchange sends data to target tg and collects the answer, following
// MI chaining.
func (d *Device) InDataExchange(ctx context.Context, tg byte, data []byte) ([]byte, error) {
	if len(data) > maxExchangeData {
		return nil, fmt.Errorf("InDataExchange: %w: %d bytes", ErrFrameTooLarge, len(data))
	}

	payload := append([]byte{tg}, data...)
	var out []byte

	for i := 0; i < maxChained; i++ {
		resp, err := d.command(ctx, cmdInDataExchange, payload)
		if err != nil {
			return nil, err
		}
		if len(resp) == 0 {
			return nil, fmt.Errorf("InDataExchange: %w: missing status", ErrUnexpected)
		}
		if code := resp[0] & statusCodeMask; code != 0 {
			return nil, &StatusError{Command: cmdInDataExchange, Code: code}
		}

		out = append(out, resp[1:]...)
		if resp[0]&statusMI == 0 {
			return out, nil
		}
		payload = []byte{tg}
	}

	return nil, fmt.Errorf("InDataExchange: %w: more than %d chained frames", ErrUnexpected, maxChained)
}

// InRelease releases target tg, or every target when tg is 0.
func (d *Device) InRelease(ctx context.Context, tg byte) error {
	resp, err := d.command(ctx, cmdInRelease, []byte{tg})
	if err != nil {
		return err
	}
	if len(resp) > 0 && resp[0]&statusCodeMask != 0 {
		return &StatusError{Command: cmdInRelease, Code: resp[0] & statusCodeMask}
	}
	return nil
}

// Close closes the link.
func (d *Device) Close() error {
	return d.link.Close()
}

// command runs one command: frame out, ACK in, response in.
func (d *Device) command(ctx context.Context, cmd byte, payload []byte) ([]byte, error) {
	out, err := buildFrame(cmd, payload)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Leftovers belong to an abandoned command.
	d.pending = d.pending[:0]

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	d.logger.Printf("pn532 -> %X", out)
	if err := d.link.Write(ctx, out); err != nil {
		return nil, err
	}

	ack, err := d.readFrame(ctx)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return nil, fmt.Errorf("command 0x%02X: %w", cmd, ErrNoACK)
		}
		return nil, fmt.Errorf("command 0x%02X: %w", cmd, err)
	}
	switch ack.kind {
	case frameACK:
	case frameNACK:
		return nil, fmt.Errorf("command 0x%02X: %w", cmd, ErrNACK)
	default:
		return nil, fmt.Errorf("command 0x%02X: %w", cmd, ErrNoACK)
	}

	resp, err := d.readFrame(ctx)
	if err != nil {
		return nil, fmt.Errorf("command 0x%02X: %w", cmd, err)
	}
	if resp.kind != frameData || resp.command != cmd+1 {
		return nil, fmt.Errorf("command 0x%02X: %w: answer 0x%02X", cmd, ErrUnexpected, resp.command)
	}
	d.logger.Printf("pn532 <- %02X %X", resp.command, resp.data)
	return resp.data, nil
}

// readFrame returns the next frame, reading from the link as needed. The
// deadline of ctx becomes ErrTimeout; cancellation is returned as is.
func (d *Device) readFrame(ctx context.Context) (frame, error) {
	for {
		if len(d.pending) > 0 {
			f, n, err := parseFrame(d.pending)
			if !errors.Is(err, errIncomplete) {
				d.pending = d.pending[n:]
				return f, err
			}
		}

		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return frame{}, ErrTimeout
			}
			return frame{}, err
		}

		n, err := d.link.Read(ctx, d.chunk)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return frame{}, ErrTimeout
			}
			return frame{}, err
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		d.pending = append(d.pending, d.chunk[:n]...)
	}
}
