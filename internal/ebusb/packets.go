package ebusb

import (
	"errors"
	"fmt"
)

// Errors returned by PackRound for inputs violating the frame geometry.
var (
	ErrInvalidRound       = errors.New("ebusb: round index out of range")
	ErrInvalidPixelBuffer = errors.New("ebusb: pixel buffer must be 172800 bytes")
	ErrInvalidJointConfig = errors.New("ebusb: joint config must be 32 bytes")
)

// Round is the wire image of one display round: 84 data packets followed
// by the trailer. The data packets alias the caller's pixel buffer; the
// trailer owns its storage.
type Round struct {
	Index   int
	Packets [PacketsPerRound][]byte
	Trailer [TrailerSize]byte
}

// PackRound slices round r out of a full frame. pixels must be the
// complete 172800-byte RGB888 buffer and joint the 32-byte configuration
// word. The round's 43200 bytes become 84 consecutive 512-byte packets
// plus a trailer holding the final 192 pixel bytes and the joint config.
func PackRound(pixels, joint []byte, round int) (*Round, error) {
	if round < 0 || round >= RoundCount {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRound, round)
	}
	if len(pixels) != FrameSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPixelBuffer, len(pixels))
	}
	if len(joint) != JointConfigSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidJointConfig, len(joint))
	}

	r := &Round{Index: round}
	start := round * BytesPerRound
	for i := range r.Packets {
		off := start + i*PacketSize
		r.Packets[i] = pixels[off : off+PacketSize]
	}

	// The wire contract requires the trailer prefilled with 0xFF before
	// the pixel tail and joint bytes overwrite it.
	for i := range r.Trailer {
		r.Trailer[i] = 0xFF
	}
	end := start + BytesPerRound
	copy(r.Trailer[:TailPixels], pixels[end-TailPixels:end])
	copy(r.Trailer[TailPixels:], joint)
	return r, nil
}

// Transfers returns the number of bulk transfers in one round.
func (r *Round) Transfers() int { return PacketsPerRound + 1 }

// WireSize returns the total bytes one round puts on the bus.
func (r *Round) WireSize() int { return RoundWireSize }
