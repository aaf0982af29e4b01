// Package hass builds the retained MQTT discovery payloads Home
// Assistant expects. See https://www.home-assistant.io/integrations/mqtt
// for the field reference.
package hass

import "fmt"

// DefaultPrefix is the discovery prefix Home Assistant listens on out of
// the box
const DefaultPrefix = "homeassistant"

// Device groups entities under one device in the Home Assistant UI
type Device struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Model        string   `json:"model,omitempty"`
	Manufacturer string   `json:"manufacturer,omitempty"`
}

// HumidifierConfig announces a humidifier entity
type HumidifierConfig struct {
	Name                       string   `json:"name"`
	UniqueID                   string   `json:"unique_id"`
	DeviceClass                string   `json:"device_class,omitempty"`
	StateTopic                 string   `json:"state_topic"`
	CommandTopic               string   `json:"command_topic"`
	ModeStateTopic             string   `json:"mode_state_topic"`
	ModeCommandTopic           string   `json:"mode_command_topic"`
	TargetHumidityStateTopic   string   `json:"target_humidity_state_topic"`
	TargetHumidityCommandTopic string   `json:"target_humidity_command_topic"`
	CurrentHumidityTopic       string   `json:"current_humidity_topic,omitempty"`
	Modes                      []string `json:"modes"`
	MinHumidity                int      `json:"min_humidity"`
	MaxHumidity                int      `json:"max_humidity"`
	Device                     Device   `json:"device"`
}

// BinarySensorConfig announces a binary sensor entity
type BinarySensorConfig struct {
	Name        string `json:"name"`
	UniqueID    string `json:"unique_id"`
	DeviceClass string `json:"device_class,omitempty"`
	StateTopic  string `json:"state_topic"`
	PayloadOn   string `json:"payload_on"`
	PayloadOff  string `json:"payload_off"`
	Device      Device `json:"device"`
}

// ConfigTopic returns the retained config topic for one entity
func ConfigTopic(prefix, component, objectID string) string {
	return fmt.Sprintf("%s/%s/%s/config", prefix, component, objectID)
}
