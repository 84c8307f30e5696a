package ebusb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/gousb"
)

// mockWriter scripts per-transfer outcomes and records every attempt.
type mockWriter struct {
	writes  [][]byte
	failAt  int // transfer index to fail with failErr; -1 = never
	failErr error
	shortAt int // transfer index to return a one-byte-short write; -1 = never
}

func newMockWriter() *mockWriter {
	return &mockWriter{failAt: -1, shortAt: -1}
}

func (m *mockWriter) WriteContext(_ context.Context, buf []byte) (int, error) {
	i := len(m.writes)
	m.writes = append(m.writes, append([]byte(nil), buf...))
	if i == m.failAt {
		return 0, m.failErr
	}
	if i == m.shortAt {
		return len(buf) - 1, nil
	}
	return len(buf), nil
}

func testSender(w BulkWriter) *Sender {
	return NewSender(w, 100*time.Millisecond, time.Microsecond)
}

func TestSendFrame_TransferCount(t *testing.T) {
	pixels, joint := buildTestFrame()
	w := newMockWriter()

	if err := testSender(w).SendFrame(context.Background(), pixels, joint); err != nil {
		t.Fatalf("SendFrame failed: %v", err)
	}

	if len(w.writes) != 340 {
		t.Fatalf("transfers = %d, want 340", len(w.writes))
	}
	total := 0
	for i, buf := range w.writes {
		total += len(buf)
		want := PacketSize
		if i%(PacketsPerRound+1) == PacketsPerRound {
			want = TrailerSize
		}
		if len(buf) != want {
			t.Fatalf("transfer %d: size = %d, want %d", i, len(buf), want)
		}
	}
	if total != FrameWireSize {
		t.Errorf("frame wire bytes = %d, want %d", total, FrameWireSize)
	}
}

func TestSendRound_OrderAndContent(t *testing.T) {
	pixels, joint := buildTestFrame()
	r, err := PackRound(pixels, joint, 2)
	if err != nil {
		t.Fatalf("PackRound failed: %v", err)
	}

	w := newMockWriter()
	if err := testSender(w).SendRound(context.Background(), r); err != nil {
		t.Fatalf("SendRound failed: %v", err)
	}

	if len(w.writes) != PacketsPerRound+1 {
		t.Fatalf("transfers = %d, want %d", len(w.writes), PacketsPerRound+1)
	}
	start := 2 * BytesPerRound
	for i := 0; i < PacketsPerRound; i++ {
		off := start + i*PacketSize
		if string(w.writes[i]) != string(pixels[off:off+PacketSize]) {
			t.Fatalf("transfer %d out of order or corrupted", i)
		}
	}
	if string(w.writes[PacketsPerRound]) != string(r.Trailer[:]) {
		t.Error("trailer transmitted last does not match packed trailer")
	}
}

// A short write on data packet 42 of round 2 must abort the round and the
// frame with no further transfers attempted.
func TestSendFrame_ShortWrite(t *testing.T) {
	pixels, joint := buildTestFrame()
	w := newMockWriter()
	w.shortAt = 2*(PacketsPerRound+1) + 42

	err := testSender(w).SendFrame(context.Background(), pixels, joint)
	if err == nil {
		t.Fatal("SendFrame succeeded, want failure")
	}

	var fe *FrameError
	if !errors.As(err, &fe) {
		t.Fatalf("error is %T, want *FrameError", err)
	}
	if fe.Round != 2 {
		t.Errorf("FrameError.Round = %d, want 2", fe.Round)
	}
	var te *TransferError
	if !errors.As(err, &te) {
		t.Fatalf("cause is %T, want *TransferError", fe.Err)
	}
	if te.Packet != 42 {
		t.Errorf("TransferError.Packet = %d, want 42", te.Packet)
	}
	if te.Cause != CauseShortWrite {
		t.Errorf("TransferError.Cause = %v, want %v", te.Cause, CauseShortWrite)
	}
	if len(w.writes) != w.shortAt+1 {
		t.Errorf("attempted transfers = %d, want %d (no transfers after the failure)",
			len(w.writes), w.shortAt+1)
	}
}

// A timeout on the trailer of round 0 must surface packet index 84 and
// stop the frame before round 1.
func TestSendFrame_TimeoutOnTrailer(t *testing.T) {
	pixels, joint := buildTestFrame()
	w := newMockWriter()
	w.failAt = PacketsPerRound
	w.failErr = gousb.TransferTimedOut

	err := testSender(w).SendFrame(context.Background(), pixels, joint)
	if err == nil {
		t.Fatal("SendFrame succeeded, want failure")
	}

	var fe *FrameError
	if !errors.As(err, &fe) {
		t.Fatalf("error is %T, want *FrameError", err)
	}
	if fe.Round != 0 {
		t.Errorf("FrameError.Round = %d, want 0", fe.Round)
	}
	var te *TransferError
	if !errors.As(err, &te) {
		t.Fatalf("cause is %T, want *TransferError", fe.Err)
	}
	if te.Packet != PacketsPerRound {
		t.Errorf("TransferError.Packet = %d, want %d", te.Packet, PacketsPerRound)
	}
	if te.Cause != CauseTimeout {
		t.Errorf("TransferError.Cause = %v, want %v", te.Cause, CauseTimeout)
	}
	if len(w.writes) != PacketsPerRound+1 {
		t.Errorf("attempted transfers = %d, want %d", len(w.writes), PacketsPerRound+1)
	}
}

func TestSendFrame_InvalidPixels(t *testing.T) {
	_, joint := buildTestFrame()
	w := newMockWriter()

	err := testSender(w).SendFrame(context.Background(), make([]byte, 100), joint)
	if !errors.Is(err, ErrInvalidPixelBuffer) {
		t.Fatalf("err = %v, want ErrInvalidPixelBuffer", err)
	}
	if len(w.writes) != 0 {
		t.Errorf("attempted transfers = %d, want 0", len(w.writes))
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Cause
	}{
		{"transfer timeout", gousb.TransferTimedOut, CauseTimeout},
		{"libusb timeout", gousb.ErrorTimeout, CauseTimeout},
		{"context deadline", context.DeadlineExceeded, CauseTimeout},
		{"stall", gousb.TransferStall, CausePipe},
		{"libusb pipe", gousb.ErrorPipe, CausePipe},
		{"no device", gousb.TransferNoDevice, CauseDisconnected},
		{"libusb no device", gousb.ErrorNoDevice, CauseDisconnected},
		{"transfer error", gousb.TransferError, CauseIO},
		{"libusb io", gousb.ErrorIO, CauseIO},
		{"unknown", errors.New("boom"), CauseOther},
	}
	for _, tt := range tests {
		if got := classify(tt.err); got != tt.want {
			t.Errorf("%s: classify = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// Close must be a no-op on a nil or never-opened Device and must not
// release twice.
func TestDeviceClose_NilSafe(t *testing.T) {
	var nilDev *Device
	if err := nilDev.Close(); err != nil {
		t.Errorf("nil Device Close: %v", err)
	}

	d := &Device{}
	if err := d.Close(); err != nil {
		t.Errorf("empty Device Close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("double Close: %v", err)
	}
}

func TestSerialPortClose_NilSafe(t *testing.T) {
	var p *SerialPort
	if err := p.Close(); err != nil {
		t.Errorf("nil SerialPort Close: %v", err)
	}
	if err := (&SerialPort{}).Close(); err != nil {
		t.Errorf("empty SerialPort Close: %v", err)
	}
}
