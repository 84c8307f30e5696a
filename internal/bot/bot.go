// Package bot is the high-level driver: it owns the transport and
// streams frames to one ElectronBot.
package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/cenkalti/backoff"

	"github.com/mkaino/ebot/internal/config"
	"github.com/mkaino/ebot/internal/ebusb"
)

// ErrNotConnected is returned when a frame is sent before Connect.
var ErrNotConnected = errors.New("bot: not connected")

// Frame pairs one display image with the joint state sent alongside it.
type Frame struct {
	Pixels []byte
	Joint  ebusb.JointConfig
}

// Bot drives one ElectronBot over the configured transport.
type Bot struct {
	cfg    *config.Config
	closer io.Closer
	sender *ebusb.Sender
}

// New creates an unconnected Bot.
func New(cfg *config.Config) *Bot { return &Bot{cfg: cfg} }

// Connect opens the configured transport (bulk USB, or the CDC serial
// fallback when enabled) and prepares the sender.
func (b *Bot) Connect() error {
	u := b.cfg.USB
	if b.cfg.Serial.Enabled {
		port, err := ebusb.OpenSerial(b.cfg.Serial.Port, b.cfg.Serial.Baud)
		if err != nil {
			return err
		}
		b.closer = port
		b.sender = ebusb.NewSender(port, u.Timeout(), u.InterRoundDelay())
		return nil
	}

	dev, err := ebusb.Open(ebusb.Options{
		VendorID:    u.VendorID,
		ProductID:   u.ProductID,
		Interface:   u.Interface,
		EndpointOut: u.EndpointOut,
	})
	if err != nil {
		return err
	}
	b.closer = dev
	b.sender = ebusb.NewSender(dev, u.Timeout(), u.InterRoundDelay())
	return nil
}

// SendFrame transmits one frame.
func (b *Bot) SendFrame(ctx context.Context, f Frame) error {
	if b.sender == nil {
		return ErrNotConnected
	}
	joint := f.Joint.Bytes()
	return b.sender.SendFrame(ctx, f.Pixels, joint[:])
}

// Stream sends frames from the channel until it closes or the context
// ends. A frame that fails is retried with exponential backoff up to
// the configured budget; a failed frame does not poison the transport.
func (b *Bot) Stream(ctx context.Context, frames <-chan Frame) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			if err := b.sendWithRetry(ctx, f); err != nil {
				return err
			}
		}
	}
}

func (b *Bot) sendWithRetry(ctx context.Context, f Frame) error {
	attempt := 0
	send := func() error {
		err := b.SendFrame(ctx, f)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		attempt++
		slog.Warn("frame send failed, retrying", "attempt", attempt, "err", err)
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), b.cfg.Stream.Retries),
		ctx,
	)
	return backoff.Retry(send, policy)
}

// Disconnect releases the transport. Safe to call more than once.
func (b *Bot) Disconnect() {
	if b.closer == nil {
		return
	}
	if err := b.closer.Close(); err != nil {
		slog.Warn("transport close", "err", err)
	}
	b.closer = nil
	b.sender = nil
}
