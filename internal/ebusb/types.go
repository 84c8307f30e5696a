package ebusb

import (
	"encoding/binary"
	"math"
)

// ServoCount is the number of joint actuators addressed by one
// configuration word.
const ServoCount = 6

// JointConfig is the per-frame actuator control word. It is transmitted
// once per round, identically in each of the four trailers of a frame.
type JointConfig struct {
	Enable byte                // 1 = torque on, 0 = powered down
	Angles [ServoCount]float32 // joint angles in degrees
}

// Bytes marshals the config to its 32-byte wire form: the enable flag at
// byte 0, six little-endian float32 angles, and zero padding.
func (j JointConfig) Bytes() [JointConfigSize]byte {
	var b [JointConfigSize]byte
	b[0] = j.Enable
	for i, a := range j.Angles {
		binary.LittleEndian.PutUint32(b[1+i*4:], math.Float32bits(a))
	}
	return b
}
