package entity

import (
	"testing"

	"vesync-bridge/internal/vesync"
)

func TestNewRejectsUnknownModels(t *testing.T) {
	client := vesync.NewClient(vesync.Config{})

	handle := client.Humidifier(vesync.DeviceInfo{
		DeviceName: "Desk Fan",
		DeviceType: "LV600S",
		CID:        "cid-1",
	})

	if _, err := New(handle); err == nil {
		t.Fatal("expected error for unknown device type")
	}
}

func TestNewBuildsCapabilitySet(t *testing.T) {
	client := vesync.NewClient(vesync.Config{})

	handle := client.Humidifier(vesync.DeviceInfo{
		DeviceName: "Bedroom Humidifier",
		DeviceType: "Classic300S",
		CID:        "cid-2",
	})

	ent, err := New(handle)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if ent.ID() != "cid-2" {
		t.Errorf("ID = %q, want cid-2", ent.ID())
	}
	if ent.Name() != "Bedroom Humidifier" {
		t.Errorf("Name = %q", ent.Name())
	}
	if ent.Humidifier == nil {
		t.Fatal("missing humidifier capability")
	}
	if len(ent.Sensors) != 2 {
		t.Errorf("sensors = %d, want 2", len(ent.Sensors))
	}
	if got := ent.Humidifier.Presets(); len(got) != 3 {
		t.Errorf("presets = %v, want 3 entries", got)
	}
}
