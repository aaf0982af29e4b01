package entity

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		model    string
		wantBase string
		wantOK   bool
	}{
		{"Classic300S", "Classic300S", true},
		{"Classic200S", "Classic200S", true},
		{"Dual200S", "Dual200S", true},
		{"LUH-D301S-WEU", "Dual200S", true},
		{"LUH-D301S-WUS", "Dual200S", true},
		{"LV600S", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		sku, ok := Lookup(tt.model)
		if ok != tt.wantOK {
			t.Errorf("Lookup(%q) ok = %v, want %v", tt.model, ok, tt.wantOK)
			continue
		}
		if ok && sku.Base != tt.wantBase {
			t.Errorf("Lookup(%q) base = %q, want %q", tt.model, sku.Base, tt.wantBase)
		}
	}
}

func TestClassic200SHasNoSleepPreset(t *testing.T) {
	sku, _ := Lookup("Classic200S")

	if sku.Supports(ModeSleep) {
		t.Error("Classic200S must not declare the sleep preset")
	}
	if !sku.Supports(ModeAuto) || !sku.Supports(ModeManual) {
		t.Error("Classic200S must declare auto and manual")
	}
}

func TestSensorsFollowSKUSupport(t *testing.T) {
	sku, _ := Lookup("Classic300S")
	state := NewState()

	sensors := SensorsFor(sku, state)
	if len(sensors) != 2 {
		t.Fatalf("sensors = %d, want 2", len(sensors))
	}

	// Both default on: the tank is presumed missing until a poll proves
	// otherwise
	for _, sensor := range sensors {
		if !sensor.IsOn() {
			t.Errorf("%s defaulted off before first poll", sensor.Kind())
		}
	}

	none := SensorsFor(SKU{Base: "NoTank"}, state)
	if len(none) != 0 {
		t.Errorf("sensors for tankless SKU = %d, want 0", len(none))
	}
}
