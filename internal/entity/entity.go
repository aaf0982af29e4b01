// Package entity maps polled device snapshots onto a fixed entity model:
// one humidifier capability plus binary sensor views composed over a
// shared per-device state.
package entity

import (
	"fmt"

	"vesync-bridge/internal/vesync"
)

// Entity bundles a device handle with its capability set. One Entity is
// created per discovered device and discarded when the device goes away.
type Entity struct {
	Handle *vesync.Humidifier
	SKU    SKU
	State  *State

	Humidifier *Humidifier
	Sensors    []*BinarySensor
}

// New builds the entity for a discovered handle, rejecting models that
// have no SKU table entry
func New(handle *vesync.Humidifier) (*Entity, error) {
	sku, ok := Lookup(handle.Model())
	if !ok {
		return nil, fmt.Errorf("unknown device type %q", handle.Model())
	}

	state := NewState()
	return &Entity{
		Handle:     handle,
		SKU:        sku,
		State:      state,
		Humidifier: NewHumidifier(handle, sku, state),
		Sensors:    SensorsFor(sku, state),
	}, nil
}

// ID returns the stable entity identifier
func (e *Entity) ID() string {
	return e.Handle.CID()
}

// Name returns the user-assigned device name
func (e *Entity) Name() string {
	return e.Handle.Name()
}

// Refresh folds a poll snapshot into the entity's cached state
func (e *Entity) Refresh(status vesync.Status) {
	e.Humidifier.Refresh(status)
}
