// Package robot tracks the commanded state of the six ElectronBot
// joints and produces the wire configuration sent with each frame.
package robot

import "github.com/mkaino/ebot/internal/ebusb"

// Servo describes one actuator and its mechanical limits in degrees.
type Servo struct {
	Name string
	Min  float32
	Max  float32
}

// Servos lists the joints in wire order.
var Servos = [ebusb.ServoCount]Servo{
	{Name: "head", Min: -15, Max: 15},
	{Name: "left shoulder", Min: -30, Max: 30},
	{Name: "left arm", Min: -180, Max: 180},
	{Name: "right shoulder", Min: -30, Max: 30},
	{Name: "right arm", Min: -180, Max: 180},
	{Name: "body", Min: -90, Max: 90},
}

// State holds the commanded joint angles. Angles are clamped to each
// servo's limits when set.
type State struct {
	angles  [ebusb.ServoCount]float32
	enabled bool
}

// NewState returns a State with all joints at zero and torque off.
func NewState() *State { return &State{} }

// SetEnabled powers the servos on or off.
func (s *State) SetEnabled(on bool) { s.enabled = on }

// Enabled reports whether servo torque is commanded on.
func (s *State) Enabled() bool { return s.enabled }

// Set clamps angle to the servo's limits and stores it. Out-of-range
// indexes are ignored.
func (s *State) Set(index int, angle float32) {
	if index < 0 || index >= len(s.angles) {
		return
	}
	sv := Servos[index]
	if angle < sv.Min {
		angle = sv.Min
	}
	if angle > sv.Max {
		angle = sv.Max
	}
	s.angles[index] = angle
}

// Angle returns the commanded angle of one servo.
func (s *State) Angle(index int) float32 {
	if index < 0 || index >= len(s.angles) {
		return 0
	}
	return s.angles[index]
}

// Config returns the wire configuration for the current state.
func (s *State) Config() ebusb.JointConfig {
	cfg := ebusb.JointConfig{Angles: s.angles}
	if s.enabled {
		cfg.Enable = 1
	}
	return cfg
}
