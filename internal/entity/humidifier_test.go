package entity

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeDevice records commands in order
type fakeDevice struct {
	calls     []string
	modes     []string
	mistLevel []int
	targets   []int
	failOn    string
}

var errDevice = errors.New("device error")

func (f *fakeDevice) TurnOn(context.Context) error {
	if f.failOn == "TurnOn" {
		return errDevice
	}
	f.calls = append(f.calls, "TurnOn")
	return nil
}

func (f *fakeDevice) TurnOff(context.Context) error {
	f.calls = append(f.calls, "TurnOff")
	return nil
}

func (f *fakeDevice) SetHumidityMode(_ context.Context, mode string) error {
	if f.failOn == "SetHumidityMode" {
		return errDevice
	}
	f.calls = append(f.calls, "SetHumidityMode")
	f.modes = append(f.modes, mode)
	return nil
}

func (f *fakeDevice) SetMistLevel(_ context.Context, level int) error {
	f.calls = append(f.calls, "SetMistLevel")
	f.mistLevel = append(f.mistLevel, level)
	return nil
}

func (f *fakeDevice) SetTargetHumidity(_ context.Context, percent int) error {
	f.calls = append(f.calls, "SetTargetHumidity")
	f.targets = append(f.targets, percent)
	return nil
}

func newTestHumidifier(t *testing.T, model string) (*Humidifier, *fakeDevice, *State) {
	t.Helper()

	sku, ok := Lookup(model)
	if !ok {
		t.Fatalf("no SKU entry for %s", model)
	}

	dev := &fakeDevice{}
	state := NewState()
	state.PowerOn = true
	return NewHumidifier(dev, sku, state), dev, state
}

func TestSetModeAcceptsDeclaredPresetsOnly(t *testing.T) {
	all := []string{ModeAuto, ModeManual, ModeSleep, "bogus", "turbo"}

	for model, sku := range skus {
		for _, mode := range all {
			h, _, state := newTestHumidifier(t, model)

			err := h.SetMode(context.Background(), mode)
			if sku.Supports(mode) {
				if err != nil {
					t.Errorf("%s: SetMode(%q) = %v, want success", model, mode, err)
				}
				if state.Mode != mode {
					t.Errorf("%s: mode = %q after SetMode(%q)", model, state.Mode, mode)
				}
			} else {
				if !errors.Is(err, ErrUnsupportedMode) {
					t.Errorf("%s: SetMode(%q) = %v, want ErrUnsupportedMode", model, mode, err)
				}
			}
		}
	}
}

func TestSetModeRejectionLeavesStateUntouched(t *testing.T) {
	h, dev, state := newTestHumidifier(t, "Classic300S")

	if err := h.SetMode(context.Background(), ModeSleep); err != nil {
		t.Fatalf("SetMode(sleep): %v", err)
	}
	if got, want := dev.modes[len(dev.modes)-1], "sleep"; got != want {
		t.Fatalf("device mode command = %q, want %q", got, want)
	}
	if state.Mode != ModeSleep {
		t.Fatalf("mode = %q, want sleep", state.Mode)
	}

	calls := len(dev.calls)
	err := h.SetMode(context.Background(), "bogus")
	if !errors.Is(err, ErrUnsupportedMode) {
		t.Fatalf("SetMode(bogus) = %v, want ErrUnsupportedMode", err)
	}
	if state.Mode != ModeSleep {
		t.Errorf("mode changed to %q after rejected request", state.Mode)
	}
	if len(dev.calls) != calls {
		t.Errorf("device received %d commands during rejected request", len(dev.calls)-calls)
	}
}

func TestSetModeErrorMessageListsValidOptions(t *testing.T) {
	h, _, _ := newTestHumidifier(t, "Classic300S")

	err := h.SetMode(context.Background(), "bogus")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, preset := range []string{ModeAuto, ModeManual, ModeSleep} {
		if !strings.Contains(err.Error(), preset) {
			t.Errorf("error %q does not mention preset %q", err, preset)
		}
	}
}

func TestSetModeSleepCommandVariesByGeneration(t *testing.T) {
	tests := []struct {
		model    string
		wantMode string
	}{
		{"Classic300S", "sleep"},
		{"Dual200S", "humidity"},
		{"LUH-D301S-WEU", "humidity"},
	}

	for _, tt := range tests {
		h, dev, state := newTestHumidifier(t, tt.model)

		if err := h.SetMode(context.Background(), ModeSleep); err != nil {
			t.Errorf("%s: SetMode(sleep): %v", tt.model, err)
			continue
		}
		if got := dev.modes[0]; got != tt.wantMode {
			t.Errorf("%s: device received mode %q, want %q", tt.model, got, tt.wantMode)
		}
		if state.Mode != ModeSleep {
			t.Errorf("%s: cached mode = %q, want sleep", tt.model, state.Mode)
		}
	}
}

func TestSetModePowersOnWhenOff(t *testing.T) {
	h, dev, state := newTestHumidifier(t, "Classic300S")
	state.PowerOn = false

	if err := h.SetMode(context.Background(), ModeAuto); err != nil {
		t.Fatalf("SetMode: %v", err)
	}

	if len(dev.calls) < 2 || dev.calls[0] != "TurnOn" {
		t.Fatalf("calls = %v, want TurnOn first", dev.calls)
	}
	if !state.PowerOn {
		t.Error("PowerOn not cached after implicit power-on")
	}
}

func TestManualTargetGoesToMistLevel(t *testing.T) {
	h, dev, state := newTestHumidifier(t, "Classic300S")

	if err := h.SetMode(context.Background(), ModeManual); err != nil {
		t.Fatalf("SetMode(manual): %v", err)
	}
	if err := h.SetTargetHumidity(context.Background(), 5); err != nil {
		t.Fatalf("SetTargetHumidity: %v", err)
	}

	if state.LastKnownFanSpeed != 5 {
		t.Errorf("LastKnownFanSpeed = %d, want 5", state.LastKnownFanSpeed)
	}
	if len(dev.mistLevel) != 1 || dev.mistLevel[0] != 5 {
		t.Errorf("mist level commands = %v, want [5]", dev.mistLevel)
	}
	if len(dev.targets) != 0 {
		t.Errorf("humidity commands = %v, want none", dev.targets)
	}
}

func TestAutoTargetGoesToHumiditySetpoint(t *testing.T) {
	h, dev, _ := newTestHumidifier(t, "Classic300S")

	if err := h.SetMode(context.Background(), ModeAuto); err != nil {
		t.Fatalf("SetMode(auto): %v", err)
	}
	if err := h.SetTargetHumidity(context.Background(), 55); err != nil {
		t.Fatalf("SetTargetHumidity: %v", err)
	}

	if len(dev.targets) != 1 || dev.targets[0] != 55 {
		t.Errorf("humidity commands = %v, want [55]", dev.targets)
	}
	if len(dev.mistLevel) != 0 {
		t.Errorf("mist level commands = %v, want none", dev.mistLevel)
	}
}

func TestHumidityRangeFollowsMode(t *testing.T) {
	h, _, _ := newTestHumidifier(t, "Classic300S")

	if err := h.SetMode(context.Background(), ModeAuto); err != nil {
		t.Fatal(err)
	}
	if h.MinHumidity() != 0 || h.MaxHumidity() != 100 {
		t.Errorf("auto range = [%d,%d], want [0,100]", h.MinHumidity(), h.MaxHumidity())
	}

	if err := h.SetMode(context.Background(), ModeManual); err != nil {
		t.Fatal(err)
	}
	if h.MinHumidity() != 0 || h.MaxHumidity() != 9 {
		t.Errorf("manual range = [%d,%d], want [0,9]", h.MinHumidity(), h.MaxHumidity())
	}
}

func TestSetTargetHumidityClampsToModeRange(t *testing.T) {
	h, dev, state := newTestHumidifier(t, "Classic300S")

	if err := h.SetMode(context.Background(), ModeManual); err != nil {
		t.Fatal(err)
	}

	// 50 is fine as a humidity percentage but out of range for the
	// discrete manual levels
	if err := h.SetTargetHumidity(context.Background(), 50); err != nil {
		t.Fatalf("SetTargetHumidity: %v", err)
	}

	if dev.mistLevel[0] != MaxFanSpeed {
		t.Errorf("mist level = %d, want clamped to %d", dev.mistLevel[0], MaxFanSpeed)
	}
	if state.LastKnownFanSpeed != MaxFanSpeed {
		t.Errorf("LastKnownFanSpeed = %d, want %d", state.LastKnownFanSpeed, MaxFanSpeed)
	}
}

func TestNotifyFiresOnSuccessOnly(t *testing.T) {
	h, _, _ := newTestHumidifier(t, "Classic300S")

	var notified int
	h.SetNotify(func() { notified++ })

	if err := h.SetMode(context.Background(), ModeAuto); err != nil {
		t.Fatal(err)
	}
	if notified != 1 {
		t.Errorf("notify count = %d after success, want 1", notified)
	}

	_ = h.SetMode(context.Background(), "bogus")
	if notified != 1 {
		t.Errorf("notify count = %d after rejection, want 1", notified)
	}
}

func TestSetModeSurfacesDeviceErrors(t *testing.T) {
	h, dev, state := newTestHumidifier(t, "Classic300S")
	dev.failOn = "SetHumidityMode"
	state.Mode = ModeAuto

	err := h.SetMode(context.Background(), ModeManual)
	if !errors.Is(err, errDevice) {
		t.Fatalf("SetMode = %v, want device error", err)
	}
	if state.Mode != ModeAuto {
		t.Errorf("mode = %q after failed command, want auto", state.Mode)
	}
}
