package entity

import "vesync-bridge/internal/vesync"

// State is the per-entity cached view of the device. It is owned by one
// entity instance and mutated only inside that entity's poll and command
// callbacks, so it carries no lock.
type State struct {
	PowerOn           bool
	Mode              string
	LastKnownFanSpeed int
	TankRemoved       bool
	TankEmpty         bool
	Humidity          int
	AutoTarget        int
}

// NewState returns the pre-first-poll view: tank flags read true until a
// snapshot says otherwise, and the fan speed starts at its lowest useful
// level.
func NewState() *State {
	return &State{
		LastKnownFanSpeed: 1,
		TankRemoved:       true,
		TankEmpty:         true,
	}
}

// Apply copies recognized snapshot fields into the cached view. Absent
// fields leave the prior value untouched; a device that stops reporting
// a key is stale, not broken.
func (s *State) Apply(status vesync.Status) {
	if status.Enabled != nil {
		s.PowerOn = *status.Enabled
	}
	if status.Mode != nil {
		s.Mode = *status.Mode
	}
	if status.MistVirtualLevel != nil {
		s.LastKnownFanSpeed = *status.MistVirtualLevel
	}
	if status.WaterTankLifted != nil {
		s.TankRemoved = *status.WaterTankLifted
	}
	if status.WaterLacks != nil {
		s.TankEmpty = *status.WaterLacks
	}
	if status.Humidity != nil {
		s.Humidity = *status.Humidity
	}
	if target := status.AutoTargetHumidity(); target > 0 {
		s.AutoTarget = target
	}
}
