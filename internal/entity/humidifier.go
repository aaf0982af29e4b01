package entity

import (
	"context"
	"errors"
	"fmt"

	"vesync-bridge/internal/vesync"
)

// ErrUnsupportedMode is returned when a requested mode is not in the
// SKU's declared preset list.
var ErrUnsupportedMode = errors.New("unsupported mode")

// Device is the command surface the humidifier capability needs from a
// handle. *vesync.Humidifier satisfies it.
type Device interface {
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
	SetHumidityMode(ctx context.Context, mode string) error
	SetMistLevel(ctx context.Context, level int) error
	SetTargetHumidity(ctx context.Context, percent int) error
}

// Humidifier reconciles user-facing modes and setpoints against the
// device command set.
type Humidifier struct {
	dev    Device
	sku    SKU
	state  *State
	notify func()
}

// NewHumidifier creates the humidifier capability over shared state
func NewHumidifier(dev Device, sku SKU, state *State) *Humidifier {
	return &Humidifier{dev: dev, sku: sku, state: state}
}

// SetNotify registers the state refresh request hook invoked after every
// successful command
func (h *Humidifier) SetNotify(fn func()) {
	h.notify = fn
}

// Presets returns the SKU's declared preset list
func (h *Humidifier) Presets() []string {
	presets := make([]string, len(h.sku.Presets))
	copy(presets, h.sku.Presets)
	return presets
}

// Mode returns the current operating mode
func (h *Humidifier) Mode() string {
	return h.state.Mode
}

// TargetHumidity returns the active setpoint: the mist level in manual
// mode, the device auto target otherwise
func (h *Humidifier) TargetHumidity() int {
	if h.state.Mode == ModeManual {
		return h.state.LastKnownFanSpeed
	}
	return h.state.AutoTarget
}

// MinHumidity returns the setpoint floor for the current mode
func (h *Humidifier) MinHumidity() int {
	if h.state.Mode == ModeManual {
		return MinFanSpeed
	}
	return MinHumidity
}

// MaxHumidity returns the setpoint ceiling for the current mode
func (h *Humidifier) MaxHumidity() int {
	if h.state.Mode == ModeManual {
		return MaxFanSpeed
	}
	return MaxHumidity
}

// SetMode switches the device to the requested preset. Unsupported
// presets are rejected before any device traffic; a powered-off device
// is powered on first.
func (h *Humidifier) SetMode(ctx context.Context, mode string) error {
	if !h.sku.Supports(mode) {
		return fmt.Errorf("%w: %q is not one of the valid preset modes %v", ErrUnsupportedMode, mode, h.sku.Presets)
	}

	if err := h.ensureOn(ctx); err != nil {
		return err
	}

	deviceMode := mode
	if mode == ModeSleep {
		deviceMode = h.sku.SleepModeName
	}
	if err := h.dev.SetHumidityMode(ctx, deviceMode); err != nil {
		return err
	}

	h.state.Mode = mode
	h.requestRefresh()
	return nil
}

// SetTargetHumidity applies a setpoint in the range of the current mode.
// Values outside the range are clamped, never rejected. Manual mode maps
// the value onto the discrete mist level; every other mode forwards it
// as a humidity setpoint.
func (h *Humidifier) SetTargetHumidity(ctx context.Context, value int) error {
	value = clamp(value, h.MinHumidity(), h.MaxHumidity())

	if err := h.ensureOn(ctx); err != nil {
		return err
	}

	if h.state.Mode == ModeManual {
		if err := h.dev.SetMistLevel(ctx, value); err != nil {
			return err
		}
		h.state.LastKnownFanSpeed = value
	} else {
		if err := h.dev.SetTargetHumidity(ctx, value); err != nil {
			return err
		}
		h.state.AutoTarget = value
	}

	h.requestRefresh()
	return nil
}

// SetPower turns the device on or off
func (h *Humidifier) SetPower(ctx context.Context, on bool) error {
	if on {
		if err := h.dev.TurnOn(ctx); err != nil {
			return err
		}
	} else {
		if err := h.dev.TurnOff(ctx); err != nil {
			return err
		}
	}

	h.state.PowerOn = on
	h.requestRefresh()
	return nil
}

// IsOn reports cached device power state
func (h *Humidifier) IsOn() bool {
	return h.state.PowerOn
}

// Refresh folds a poll snapshot into the cached view, translating
// firmware mode names back to presets
func (h *Humidifier) Refresh(status vesync.Status) {
	h.state.Apply(status)
	if h.sku.SleepModeName != "" && h.state.Mode == h.sku.SleepModeName {
		h.state.Mode = ModeSleep
	}
}

func (h *Humidifier) ensureOn(ctx context.Context) error {
	if h.state.PowerOn {
		return nil
	}
	if err := h.dev.TurnOn(ctx); err != nil {
		return err
	}
	h.state.PowerOn = true
	return nil
}

func (h *Humidifier) requestRefresh() {
	if h.notify != nil {
		h.notify()
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
