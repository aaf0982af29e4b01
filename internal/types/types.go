package types

import "time"

// Device represents one bridged VeSync unit
type Device struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Model string `yaml:"model"`
	CID   string `yaml:"cid"`
	UUID  string `yaml:"uuid,omitempty"`
}

// DevicesConfig is the root configuration structure
type DevicesConfig struct {
	Devices   []*Device `yaml:"devices"`
	Generated time.Time `yaml:"generated,omitempty"`
}

// Event represents an event in the system
type Event struct {
	Source    string                 // "discovery", "device", "command"
	Type      string                 // event type
	Device    string                 // device ID (if applicable)
	Attribute string                 // attribute name (if applicable)
	Data      map[string]interface{} // event payload
	Timestamp time.Time
}

// Event sources
const (
	SourceDiscovery = "discovery"
	SourceDevice    = "device"
	SourceCommand   = "command"
)

// Event types
const (
	EventDeviceFound   = "device_found"
	EventDeviceRemoved = "device_removed"
	EventStateChange   = "state_change"
)
