package entity

// Operating modes
const (
	ModeAuto   = "auto"
	ModeManual = "manual"
	ModeSleep  = "sleep"
)

// Humidity setpoint bounds in auto and sleep modes
const (
	MinHumidity = 0
	MaxHumidity = 100
)

// Discrete mist level bounds in manual mode
const (
	MinFanSpeed = 0
	MaxFanSpeed = 9
)

// SKU describes one base device generation
type SKU struct {
	Base string
	// Presets the firmware accepts; SetMode rejects anything else
	Presets []string
	// TankSensors marks generations that report tank lifted/empty flags
	TankSensors bool
	// SleepModeName is the mode name the firmware expects for the sleep
	// preset; older generations call the same program "humidity"
	SleepModeName string
}

// Supports reports whether mode is in the SKU's declared preset list
func (s SKU) Supports(mode string) bool {
	for _, p := range s.Presets {
		if p == mode {
			return true
		}
	}
	return false
}

var skus = map[string]SKU{
	"Classic300S": {
		Base:          "Classic300S",
		Presets:       []string{ModeAuto, ModeManual, ModeSleep},
		TankSensors:   true,
		SleepModeName: "sleep",
	},
	"Classic200S": {
		Base:        "Classic200S",
		Presets:     []string{ModeAuto, ModeManual},
		TankSensors: true,
	},
	"Dual200S": {
		Base:          "Dual200S",
		Presets:       []string{ModeAuto, ModeManual, ModeSleep},
		TankSensors:   true,
		SleepModeName: "humidity",
	},
}

// Regional model numbers that resolve to a base device
var skuAliases = map[string]string{
	"LUH-D301S-WEU": "Dual200S",
	"LUH-D301S-WUS": "Dual200S",
	"LUH-D301S-WJP": "Dual200S",
}

// Lookup resolves a device-type SKU string to its base device entry
func Lookup(model string) (SKU, bool) {
	if base, ok := skuAliases[model]; ok {
		model = base
	}
	sku, ok := skus[model]
	return sku, ok
}
