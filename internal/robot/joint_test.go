package robot

import (
	"testing"

	"github.com/mkaino/ebot/internal/ebusb"
)

func TestServoLimits(t *testing.T) {
	tests := []struct {
		name     string
		min, max float32
	}{
		{"head", -15, 15},
		{"left shoulder", -30, 30},
		{"left arm", -180, 180},
		{"right shoulder", -30, 30},
		{"right arm", -180, 180},
		{"body", -90, 90},
	}
	for i, tt := range tests {
		sv := Servos[i]
		if sv.Name != tt.name || sv.Min != tt.min || sv.Max != tt.max {
			t.Errorf("servo %d = %+v, want {%s %v %v}", i, sv, tt.name, tt.min, tt.max)
		}
	}
}

func TestStateSet_Clamps(t *testing.T) {
	s := NewState()

	s.Set(0, 90) // head limit is ±15
	if got := s.Angle(0); got != 15 {
		t.Errorf("head angle = %v, want 15 (clamped)", got)
	}
	s.Set(0, -90)
	if got := s.Angle(0); got != -15 {
		t.Errorf("head angle = %v, want -15 (clamped)", got)
	}
	s.Set(2, 170) // left arm allows ±180
	if got := s.Angle(2); got != 170 {
		t.Errorf("left arm angle = %v, want 170", got)
	}

	// Out-of-range indexes are ignored.
	s.Set(-1, 10)
	s.Set(ebusb.ServoCount, 10)
	if got := s.Angle(-1); got != 0 {
		t.Errorf("Angle(-1) = %v, want 0", got)
	}
}

func TestStateConfig(t *testing.T) {
	s := NewState()
	s.Set(5, 45)

	cfg := s.Config()
	if cfg.Enable != 0 {
		t.Errorf("Enable = %d, want 0 before SetEnabled", cfg.Enable)
	}
	if cfg.Angles[5] != 45 {
		t.Errorf("Angles[5] = %v, want 45", cfg.Angles[5])
	}

	s.SetEnabled(true)
	if cfg = s.Config(); cfg.Enable != 1 {
		t.Errorf("Enable = %d, want 1", cfg.Enable)
	}
}
