package hass

import (
	"encoding/json"
	"testing"
)

func TestConfigTopic(t *testing.T) {
	got := ConfigTopic(DefaultPrefix, "humidifier", "vesync_cid-1")
	want := "homeassistant/humidifier/vesync_cid-1/config"
	if got != want {
		t.Fatalf("ConfigTopic = %q, want %q", got, want)
	}
}

func TestHumidifierConfigFieldNames(t *testing.T) {
	cfg := HumidifierConfig{
		Name:                       "Bedroom",
		UniqueID:                   "vesync_cid-1",
		StateTopic:                 "vesync/cid-1/state",
		CommandTopic:               "vesync/cid-1/set",
		ModeStateTopic:             "vesync/cid-1/mode",
		ModeCommandTopic:           "vesync/cid-1/mode/set",
		TargetHumidityStateTopic:   "vesync/cid-1/target",
		TargetHumidityCommandTopic: "vesync/cid-1/target/set",
		Modes:                      []string{"auto", "manual", "sleep"},
		MinHumidity:                0,
		MaxHumidity:                100,
		Device:                     Device{Identifiers: []string{"vesync_cid-1"}, Name: "Bedroom"},
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Home Assistant matches on these exact key names
	for _, key := range []string{
		"name", "unique_id", "state_topic", "command_topic",
		"mode_state_topic", "mode_command_topic",
		"target_humidity_state_topic", "target_humidity_command_topic",
		"modes", "min_humidity", "max_humidity", "device",
	} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}

	// An empty current humidity topic must not be announced at all
	if _, ok := fields["current_humidity_topic"]; ok {
		t.Error("empty current_humidity_topic serialized")
	}
}

func TestBinarySensorConfigFieldNames(t *testing.T) {
	cfg := BinarySensorConfig{
		Name:        "Bedroom Water Tank Empty",
		UniqueID:    "vesync_cid-1_water_tank_empty",
		DeviceClass: "problem",
		StateTopic:  "vesync/cid-1/water_tank_empty",
		PayloadOn:   "ON",
		PayloadOff:  "OFF",
		Device:      Device{Identifiers: []string{"vesync_cid-1"}},
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{
		"name", "unique_id", "device_class", "state_topic",
		"payload_on", "payload_off", "device",
	} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}
