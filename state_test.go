package detent

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateRunning, "running"},
		{StateStopped, "stopped"},
		{State(999), "unknown"},
	}
	for _, tt := range tests {
		if s := tt.state.String(); s != tt.want {
			t.Errorf("expected %q, got %q", tt.want, s)
		}
	}
}

func TestState_Values(t *testing.T) {
	// Verify iota ordering
	if StateIdle != 0 {
		t.Errorf("expected StateIdle=0, got %d", StateIdle)
	}
	if StateRunning != 1 {
		t.Errorf("expected StateRunning=1, got %d", StateRunning)
	}
	if StateStopped != 2 {
		t.Errorf("expected StateStopped=2, got %d", StateStopped)
	}
}
