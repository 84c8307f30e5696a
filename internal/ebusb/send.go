package ebusb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/gousb"
)

// BulkWriter is the write side of a device transport. *Device satisfies
// it over the claimed bulk OUT endpoint; *SerialPort satisfies it over a
// CDC port.
type BulkWriter interface {
	WriteContext(ctx context.Context, buf []byte) (int, error)
}

// Cause classifies a failed bulk transfer.
type Cause int

const (
	CauseOther Cause = iota
	CauseTimeout
	CausePipe
	CauseIO
	CauseDisconnected
	CauseShortWrite
)

func (c Cause) String() string {
	switch c {
	case CauseTimeout:
		return "timeout"
	case CausePipe:
		return "pipe"
	case CauseIO:
		return "io"
	case CauseDisconnected:
		return "disconnected"
	case CauseShortWrite:
		return "short write"
	}
	return "other"
}

// TransferError reports one failed transfer within a round. Packet is
// the transfer index; the trailer is index PacketsPerRound (84).
type TransferError struct {
	Packet int
	Cause  Cause
	Err    error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transfer %d: %s: %v", e.Packet, e.Cause, e.Err)
	}
	return fmt.Sprintf("transfer %d: %s", e.Packet, e.Cause)
}

func (e *TransferError) Unwrap() error { return e.Err }

// FrameError reports which round aborted a frame.
type FrameError struct {
	Round int
	Err   error
}

func (e *FrameError) Error() string { return fmt.Sprintf("round %d: %v", e.Round, e.Err) }
func (e *FrameError) Unwrap() error { return e.Err }

// classify maps transport errors onto the Cause taxonomy.
func classify(err error) Cause {
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, gousb.TransferTimedOut),
		errors.Is(err, gousb.ErrorTimeout):
		return CauseTimeout
	case errors.Is(err, gousb.TransferStall),
		errors.Is(err, gousb.ErrorPipe):
		return CausePipe
	case errors.Is(err, gousb.TransferNoDevice),
		errors.Is(err, gousb.ErrorNoDevice):
		return CauseDisconnected
	case errors.Is(err, gousb.TransferError),
		errors.Is(err, gousb.ErrorIO):
		return CauseIO
	}
	return CauseOther
}

// Sender drives rounds and frames through a BulkWriter.
type Sender struct {
	w       BulkWriter
	timeout time.Duration // per-transfer bound
	delay   time.Duration // inter-round spacing
}

// NewSender wraps w with the given per-transfer timeout and inter-round
// delay. Non-positive values select the defaults (1s, 1ms).
func NewSender(w BulkWriter, timeout, delay time.Duration) *Sender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if delay <= 0 {
		delay = DefaultInterRoundDelay
	}
	return &Sender{w: w, timeout: timeout, delay: delay}
}

// write issues one bounded bulk transfer. A partial write is a failure.
func (s *Sender) write(ctx context.Context, index int, buf []byte) error {
	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.w.WriteContext(tctx, buf)
	if err != nil {
		return &TransferError{Packet: index, Cause: classify(err), Err: err}
	}
	if n != len(buf) {
		return &TransferError{
			Packet: index,
			Cause:  CauseShortWrite,
			Err:    fmt.Errorf("wrote %d of %d bytes", n, len(buf)),
		}
	}
	return nil
}

// SendRound transmits the 84 data packets in strictly increasing index
// order followed by the trailer. The round aborts on the first failed
// transfer; there is no retry within a round.
func (s *Sender) SendRound(ctx context.Context, r *Round) error {
	for i, p := range r.Packets {
		if err := s.write(ctx, i, p); err != nil {
			return err
		}
	}
	return s.write(ctx, PacketsPerRound, r.Trailer[:])
}

// SendFrame transmits one full frame as four rounds with the inter-round
// spacing the device requires. A failed round aborts the remainder of
// the frame; the transport stays usable for the next frame.
func (s *Sender) SendFrame(ctx context.Context, pixels, joint []byte) error {
	for round := 0; round < RoundCount; round++ {
		r, err := PackRound(pixels, joint, round)
		if err != nil {
			return &FrameError{Round: round, Err: err}
		}
		if err := s.SendRound(ctx, r); err != nil {
			slog.Error("round failed", "round", round, "err", err)
			return &FrameError{Round: round, Err: err}
		}
		slog.Debug("round sent", "round", round, "bytes", r.WireSize())
		time.Sleep(s.delay)
	}
	return nil
}
