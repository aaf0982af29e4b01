package vesync

import (
	"context"
	"fmt"
)

// Humidifier is the command handle for one physical unit. All calls go
// through the owning client's session; the handle itself holds no state
// beyond the device record.
type Humidifier struct {
	client *Client
	info   DeviceInfo
}

// CID returns the cloud device ID
func (h *Humidifier) CID() string {
	return h.info.CID
}

// UUID returns the cloud device UUID
func (h *Humidifier) UUID() string {
	return h.info.UUID
}

// Name returns the user-assigned device name
func (h *Humidifier) Name() string {
	return h.info.DeviceName
}

// Model returns the device-type SKU string
func (h *Humidifier) Model() string {
	return h.info.DeviceType
}

// Status polls the device for its latest snapshot
func (h *Humidifier) Status(ctx context.Context) (Status, error) {
	var status Status
	if err := h.client.bypass(ctx, h.info, "getHumidifierStatus", nil, &status); err != nil {
		return Status{}, fmt.Errorf("status %s: %w", h.info.CID, err)
	}
	return status, nil
}

// TurnOn powers the device on
func (h *Humidifier) TurnOn(ctx context.Context) error {
	return h.setSwitch(ctx, true)
}

// TurnOff powers the device off
func (h *Humidifier) TurnOff(ctx context.Context) error {
	return h.setSwitch(ctx, false)
}

func (h *Humidifier) setSwitch(ctx context.Context, enabled bool) error {
	data := map[string]interface{}{"enabled": enabled, "id": 0}
	if err := h.client.bypass(ctx, h.info, "setSwitch", data, nil); err != nil {
		return fmt.Errorf("set switch %s: %w", h.info.CID, err)
	}
	return nil
}

// SetHumidityMode switches the device operating mode by name
func (h *Humidifier) SetHumidityMode(ctx context.Context, mode string) error {
	data := map[string]interface{}{"mode": mode}
	if err := h.client.bypass(ctx, h.info, "setHumidityMode", data, nil); err != nil {
		return fmt.Errorf("set mode %s: %w", h.info.CID, err)
	}
	return nil
}

// SetMistLevel sets the discrete mist output level used in manual mode
func (h *Humidifier) SetMistLevel(ctx context.Context, level int) error {
	data := map[string]interface{}{"level": level, "id": 0, "type": "mist"}
	if err := h.client.bypass(ctx, h.info, "setVirtualLevel", data, nil); err != nil {
		return fmt.Errorf("set mist level %s: %w", h.info.CID, err)
	}
	return nil
}

// SetTargetHumidity sets the humidity setpoint used outside manual mode
func (h *Humidifier) SetTargetHumidity(ctx context.Context, percent int) error {
	data := map[string]interface{}{"target_humidity": percent}
	if err := h.client.bypass(ctx, h.info, "setTargetHumidity", data, nil); err != nil {
		return fmt.Errorf("set target humidity %s: %w", h.info.CID, err)
	}
	return nil
}
