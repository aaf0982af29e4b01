package vesync

import "encoding/json"

// envelope is the outer response shape shared by all cloud endpoints.
// Result is left raw because its shape depends on the request method.
type envelope struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	Result json.RawMessage `json:"result"`
}

// DeviceInfo describes one unit as returned by the device list endpoint.
type DeviceInfo struct {
	DeviceName       string `json:"deviceName"`
	DeviceType       string `json:"deviceType"`
	CID              string `json:"cid"`
	UUID             string `json:"uuid"`
	ConfigModule     string `json:"configModule"`
	ConnectionStatus string `json:"connectionStatus"`
	DeviceStatus     string `json:"deviceStatus"`
}

// Status is a point-in-time snapshot of a humidifier as reported by
// getHumidifierStatus. Fields are pointers because firmware variants omit
// keys they do not track; absent keys must read as "no update", not zero.
type Status struct {
	Enabled          *bool   `json:"enabled"`
	Mode             *string `json:"mode"`
	MistVirtualLevel *int    `json:"mist_virtual_level"`
	MistLevel        *int    `json:"mist_level"`
	Humidity         *int    `json:"humidity"`
	WaterLacks       *bool   `json:"water_lacks"`
	WaterTankLifted  *bool   `json:"water_tank_lifted"`

	Configuration *StatusConfiguration `json:"configuration"`
}

// StatusConfiguration carries the device-side settings block of a snapshot.
type StatusConfiguration struct {
	AutoTargetHumidity *int  `json:"auto_target_humidity"`
	Display            *bool `json:"display"`
	AutomaticStop      *bool `json:"automatic_stop"`
}

// AutoEnabled reports whether the snapshot shows the device running in
// automatic mode.
func (s Status) AutoEnabled() bool {
	return s.Mode != nil && *s.Mode == "auto"
}

// AutoTargetHumidity returns the device-side auto setpoint, or 0 when the
// snapshot does not carry one.
func (s Status) AutoTargetHumidity() int {
	if s.Configuration == nil || s.Configuration.AutoTargetHumidity == nil {
		return 0
	}
	return *s.Configuration.AutoTargetHumidity
}
