package ebusb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/gousb"
)

// ErrNotFound is returned by Open when no attached device matches the
// configured vendor/product pair.
var ErrNotFound = errors.New("ebusb: device not found")

// Options selects the device and claim target. Zero values select the
// ElectronBot defaults (1001:8023, interface 0, endpoint 0x01).
type Options struct {
	VendorID    uint16
	ProductID   uint16
	Interface   int
	EndpointOut int // bulk OUT endpoint address; the direction bit is ignored
}

func (o Options) withDefaults() Options {
	if o.VendorID == 0 {
		o.VendorID = DefaultVendorID
	}
	if o.ProductID == 0 {
		o.ProductID = DefaultProductID
	}
	if o.EndpointOut == 0 {
		o.EndpointOut = DefaultEndpointOut
	}
	return o
}

// Device owns one claimed ElectronBot interface and its bulk OUT
// endpoint. It exists between a successful Open and Close.
type Device struct {
	ctx    *gousb.Context
	dev    *gousb.Device
	cfg    *gousb.Config
	intf   *gousb.Interface
	out    *gousb.OutEndpoint
	closed bool
}

// Open initializes a USB context, opens the first attached device
// matching the configured vendor/product pair in host enumeration order,
// detaches any kernel driver occupying the interface, and claims it.
// The returned Device must be Closed.
func Open(opts Options) (*Device, error) {
	opts = opts.withDefaults()
	d := &Device{ctx: gousb.NewContext()}
	if err := d.claim(opts); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Device) claim(opts Options) error {
	vid, pid := gousb.ID(opts.VendorID), gousb.ID(opts.ProductID)
	devs, err := d.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == vid && desc.Product == pid
	})
	// Keep the first match, close the rest.
	for _, dev := range devs {
		if d.dev == nil {
			d.dev = dev
		} else {
			dev.Close()
		}
	}
	if d.dev == nil {
		if err != nil {
			return fmt.Errorf("ebusb: open %s:%s: %w", vid, pid, err)
		}
		return fmt.Errorf("%w (%s:%s)", ErrNotFound, vid, pid)
	}
	slog.Info("device found", "vid", vid.String(), "pid", pid.String())

	// A detach failure is a warning, not fatal: the claim below is
	// authoritative.
	if err := d.dev.SetAutoDetach(true); err != nil {
		slog.Warn("kernel driver detach unavailable", "err", err)
	}

	if d.cfg, err = d.dev.Config(1); err != nil {
		return fmt.Errorf("ebusb: select configuration 1: %w", err)
	}
	if d.intf, err = d.cfg.Interface(opts.Interface, 0); err != nil {
		return fmt.Errorf("ebusb: claim interface %d: %w", opts.Interface, err)
	}
	epNum := opts.EndpointOut & 0x0F
	if d.out, err = d.intf.OutEndpoint(epNum); err != nil {
		return fmt.Errorf("ebusb: endpoint 0x%02X: %w", opts.EndpointOut, err)
	}
	slog.Info("interface claimed",
		"interface", opts.Interface,
		"endpoint", fmt.Sprintf("0x%02X", opts.EndpointOut),
	)
	return nil
}

// WriteContext issues one bulk OUT transfer, making Device a BulkWriter.
func (d *Device) WriteContext(ctx context.Context, buf []byte) (int, error) {
	return d.out.WriteContext(ctx, buf)
}

// Close releases everything acquired by Open in claim-reverse order:
// interface, configuration, device handle, USB context. It is safe on a
// partially opened Device and a no-op after the first call.
func (d *Device) Close() error {
	if d == nil || d.closed {
		return nil
	}
	d.closed = true

	if d.intf != nil {
		d.intf.Close()
		d.intf = nil
	}
	var err error
	if d.cfg != nil {
		if cerr := d.cfg.Close(); cerr != nil {
			err = cerr
		}
		d.cfg = nil
	}
	if d.dev != nil {
		if cerr := d.dev.Close(); cerr != nil && err == nil {
			err = cerr
		}
		d.dev = nil
	}
	if d.ctx != nil {
		if cerr := d.ctx.Close(); cerr != nil && err == nil {
			err = cerr
		}
		d.ctx = nil
	}
	return err
}
