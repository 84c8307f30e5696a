package ebusb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tarm/serial"
)

// DefaultBaud is the line rate used to open the CDC port. The ACM
// firmware ignores it, but the host stack needs one.
const DefaultBaud = 115200

// SerialPort is the CDC fallback transport. It carries the identical
// wire image as the bulk endpoint and is write-only: the firmware's
// per-round feedback bytes are never read.
type SerialPort struct {
	port *serial.Port
	name string
}

// OpenSerial opens the named CDC port. baud <= 0 selects DefaultBaud.
func OpenSerial(name string, baud int) (*SerialPort, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("ebusb: open serial %s: %w", name, err)
	}
	slog.Info("serial port opened", "port", name, "baud", baud)
	return &SerialPort{port: port, name: name}, nil
}

// WriteContext writes one transfer to the port. The serial layer has no
// per-write deadline, so the context is only checked before the write.
func (p *SerialPort) WriteContext(ctx context.Context, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.port.Write(buf)
}

// Close closes the port. Safe to call more than once.
func (p *SerialPort) Close() error {
	if p == nil || p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}
