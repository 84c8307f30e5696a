package ebusb

import "time"

// ElectronBot USB identifiers.
const (
	DefaultVendorID  = 0x1001
	DefaultProductID = 0x8023
)

// Claim target defaults. Firmware revisions expose the bulk OUT stream
// either on interface 0 / endpoint 0x01 or interface 1 / endpoint 0x02;
// the configuration selects, these are the common pairing.
const (
	DefaultInterface   = 0
	DefaultEndpointOut = 0x01
)

// Display geometry. The panel is a 240x240 RGB888 LCD refreshed in four
// 60-row rounds.
const (
	Width         = 240
	Height        = 240
	BytesPerPixel = 3

	RowSize   = Width * BytesPerPixel          // 720
	FrameSize = Width * Height * BytesPerPixel // 172800

	RowsPerRound  = 60
	RoundCount    = 4
	BytesPerRound = RowsPerRound * RowSize // 43200
)

// Bulk framing. Each round is 84 full 512-byte packets followed by a
// 224-byte trailer carrying the round's last 192 pixel bytes and the
// 32-byte joint configuration.
const (
	PacketSize      = 512
	PacketsPerRound = 84
	TailPixels      = 192
	JointConfigSize = 32
	TrailerSize     = TailPixels + JointConfigSize // 224

	RoundWireSize = PacketsPerRound*PacketSize + TrailerSize // 43232
	FrameWireSize = RoundCount * RoundWireSize               // 172928
)

// The framing must partition each round and the frame exactly.
const (
	_ uint = BytesPerRound - (PacketsPerRound*PacketSize + TailPixels)
	_ uint = (PacketsPerRound*PacketSize + TailPixels) - BytesPerRound
	_ uint = FrameSize - RoundCount*BytesPerRound
	_ uint = RoundCount*BytesPerRound - FrameSize
)

// Transfer timing defaults. The inter-round delay gives the device
// firmware time to settle its row buffer; keep it unless device-side
// evidence says otherwise.
const (
	DefaultTimeout         = 1000 * time.Millisecond
	DefaultInterRoundDelay = 1000 * time.Microsecond
)
