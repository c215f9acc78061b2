package pn532

import (
	"context"
	"fmt"
	"io"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// i2cAddr is the 7-bit address of the PN532 (0x48/0x49 on the wire).
	i2cAddr = 0x24

	i2cReady    = 0x01
	i2cMaxClock = 400 * physic.KiloHertz
)

// Txer is the half of periph's conn.Conn the I2C link needs.
type Txer interface {
	Tx(w, r []byte) error
}

// I2CLink drives a PN532 over I2C. Every read from the chip starts with a
// status byte that is 0x01 once a frame is ready.
type I2CLink struct {
	dev    Txer
	closer io.Closer
	name   string
	rbuf   []byte
}

var _ Link = (*I2CLink)(nil)

// OpenI2C opens bus name ("" for the first bus) through periph.io.
func OpenI2C(name string) (*I2CLink, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %q: %w", name, err)
	}
	// Some adapters have a fixed clock.
	_ = bus.SetSpeed(i2cMaxClock)

	return NewI2CLink(&i2c.Dev{Addr: i2cAddr, Bus: bus}, bus, bus.String()), nil
}

// NewI2CLink wraps an addressed device. closer may be nil.
func NewI2CLink(dev Txer, closer io.Closer, name string) *I2CLink {
	return &I2CLink{
		dev:    dev,
		closer: closer,
		name:   name,
		rbuf:   make([]byte, 1+maxFrameData+8),
	}
}

func (l *I2CLink) Write(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := l.dev.Tx(frame, nil); err != nil {
		return fmt.Errorf("I2C write on %s: %w", l.name, err)
	}
	return nil
}

// Read returns one frame at most. A read restarts at the beginning of the
// chip's output, so only the frame itself is handed back.
func (l *I2CLink) Read(ctx context.Context, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	size := min(len(buf), len(l.rbuf)-1) + 1
	r := l.rbuf[:size]
	if err := l.dev.Tx(nil, r); err != nil {
		return 0, fmt.Errorf("I2C read on %s: %w", l.name, err)
	}
	if r[0] != i2cReady {
		return 0, nil
	}

	data := r[1:]
	if n := frameSpan(data); n > 0 {
		data = data[:n]
	}
	return copy(buf, data), nil
}

func (l *I2CLink) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
