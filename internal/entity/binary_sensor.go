package entity

// BinarySensorKind identifies one binary view over the shared state
type BinarySensorKind string

const (
	SensorTankRemoved BinarySensorKind = "water_tank_removed"
	SensorTankEmpty   BinarySensorKind = "water_tank_empty"
)

var sensorNames = map[BinarySensorKind]string{
	SensorTankRemoved: "Water Tank Removed",
	SensorTankEmpty:   "Water Tank Empty",
}

// BinarySensor exposes one boolean field of the cached state
type BinarySensor struct {
	kind  BinarySensorKind
	state *State
}

// Kind returns the sensor key
func (b *BinarySensor) Kind() BinarySensorKind {
	return b.kind
}

// Name returns the human-readable sensor name
func (b *BinarySensor) Name() string {
	return sensorNames[b.kind]
}

// IsOn returns the sensor value from the cached state
func (b *BinarySensor) IsOn() bool {
	switch b.kind {
	case SensorTankRemoved:
		return b.state.TankRemoved
	case SensorTankEmpty:
		return b.state.TankEmpty
	}
	return false
}

// SensorsFor returns the binary sensors the SKU generation reports
func SensorsFor(sku SKU, state *State) []*BinarySensor {
	if !sku.TankSensors {
		return nil
	}
	return []*BinarySensor{
		{kind: SensorTankRemoved, state: state},
		{kind: SensorTankEmpty, state: state},
	}
}
