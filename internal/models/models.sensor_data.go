// FilePath: internal/models/models.sensor_data.go
package models

import "time"

// LowBatteryThreshold is the battery fraction at or below which a sensor is listed.
const LowBatteryThreshold = 0.2

// Reading is a single timestamped observation. Every metric is nullable.
type Reading struct {
	Temperature  *float64 `json:"temperature"`
	Humidity     *float64 `json:"humidity"`
	Velocity     *float64 `json:"velocity"`
	BatteryLevel *float64 `json:"battery_level"`
	LastSeen     Time     `json:"last_seen"`
}

// CurrentReading is the cached latest reading merged with the sensor identity.
type CurrentReading struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Reading
}

// SensorAggregate is one time bucket of averaged readings.
type SensorAggregate struct {
	SensorID    int64     `json:"sensor_id" db:"sensor_id"`
	Bucket      time.Time `json:"bucket" db:"bucket"`
	Interval    Bucket    `json:"interval" db:"-"`
	Velocity    *float64  `json:"velocity" db:"velocity"`
	Temperature *float64  `json:"temperature" db:"temperature"`
	Humidity    *float64  `json:"humidity" db:"humidity"`
}

// TemperatureStats is the per-sensor temperature rollup kept in the wide-column store.
type TemperatureStats struct {
	SensorID int64
	Min      float64
	Max      float64
	Avg      float64
}

// BatteryFact is one appended battery observation.
type BatteryFact struct {
	SensorID   int64
	Battery    float64
	RecordedAt time.Time
}

// TypeQuantity counts sensors registered under a type.
type TypeQuantity struct {
	Type     string `json:"type"`
	Quantity int64  `json:"quantity"`
}
