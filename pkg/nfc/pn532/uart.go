package pn532

import (
	"context"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// uartReadTimeout is the poll window of a single Read.
const uartReadTimeout = 50 * time.Millisecond

// UARTLink drives a PN532 in HSU mode (115200 8N1).
type UARTLink struct {
	port serial.Port
	name string
}

var _ Link = (*UARTLink)(nil)

// OpenUART opens the serial port name, e.g. /dev/ttyUSB0 or COM3.
func OpenUART(name string) (*UARTLink, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open UART port %s: %w", name, err)
	}

	if err := port.SetReadTimeout(uartReadTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set UART read timeout: %w", err)
	}

	return &UARTLink{port: port, name: name}, nil
}

// NewUARTLink wraps an already opened port.
func NewUARTLink(port serial.Port, name string) *UARTLink {
	return &UARTLink{port: port, name: name}
}

func (u *UARTLink) Write(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := u.port.Write(frame)
	if err != nil {
		return fmt.Errorf("UART write on %s: %w", u.name, err)
	}
	if n < len(frame) {
		return fmt.Errorf("UART write on %s: short write %d/%d", u.name, n, len(frame))
	}
	return nil
}

func (u *UARTLink) Read(ctx context.Context, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := u.port.Read(buf)
	if err != nil {
		return n, fmt.Errorf("UART read on %s: %w", u.name, err)
	}
	return n, nil
}

// Wake sends the HSU wakeup preamble and drops whatever the chip had
// buffered.
func (u *UARTLink) Wake(ctx context.Context) error {
	if err := u.Write(ctx, wakeupFrame); err != nil {
		return err
	}
	time.Sleep(2 * time.Millisecond)
	if err := u.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("UART drain on %s: %w", u.name, err)
	}
	return nil
}

func (u *UARTLink) Close() error {
	if err := u.port.Close(); err != nil {
		return fmt.Errorf("UART close on %s: %w", u.name, err)
	}
	return nil
}

// SerialPorts lists the serial ports present on the host.
func SerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}
