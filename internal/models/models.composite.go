// FilePath: internal/models/models.composite.go
package models

// TemperatureValues are the extremes and mean of every recorded temperature.
type TemperatureValues struct {
	MaxTemperature     float64 `json:"max_temperature"`
	MinTemperature     float64 `json:"min_temperature"`
	AverageTemperature float64 `json:"average_temperature"`
}

// TemperatureSummary combines a sensor's descriptive record with its temperature rollup
type TemperatureSummary struct {
	*Sensor
	Values TemperatureValues `json:"values"`
}

// LowBatterySensor combines a sensor's descriptive record with its latest low battery level
type LowBatterySensor struct {
	*Sensor
	BatteryLevel float64 `json:"battery_level"`
}

// NearbySensor is a sensor found by location, with its latest reading when one is cached
type NearbySensor struct {
	*Sensor
	*Reading
}

// SensorList wraps view results the way every aggregate endpoint returns them
type SensorList[T any] struct {
	Sensors []T `json:"sensors"`
}
