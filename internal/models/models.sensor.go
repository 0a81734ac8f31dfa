// FilePath: internal/models/models.sensor.go
package models

import (
	"strings"
	"time"
)

// UnknownSensorType is recorded for sensors created without a type.
const UnknownSensorType = "unknown"

// SensorCreate is the descriptor accepted when registering a sensor.
type SensorCreate struct {
	Name            string  `json:"name"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Type            string  `json:"type"`
	MacAddress      string  `json:"mac_address"`
	Manufacturer    string  `json:"manufacturer"`
	SerieNumber     string  `json:"serie_number"`
	Model           string  `json:"model"`
	FirmwareVersion string  `json:"firmware_version"`
	Description     string  `json:"description"`
}

// Normalize trims the descriptor's name.
func (c *SensorCreate) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
}

// GeoPoint is a GeoJSON point; coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// NewGeoPoint composes a GeoJSON point from latitude and longitude.
func NewGeoPoint(latitude, longitude float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{longitude, latitude}}
}

// SensorRecord is the identity row held by the relational store.
type SensorRecord struct {
	ID       int64     `json:"id" db:"id"`
	Name     string    `json:"name" db:"name"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// Sensor is the full descriptive record held by the document store.
type Sensor struct {
	ID              int64    `json:"id" bson:"id"`
	Name            string   `json:"name" bson:"name"`
	Latitude        float64  `json:"latitude" bson:"latitude"`
	Longitude       float64  `json:"longitude" bson:"longitude"`
	Location        GeoPoint `json:"location" bson:"location"`
	Type            string   `json:"type" bson:"type"`
	MacAddress      string   `json:"mac_address" bson:"mac_address"`
	Manufacturer    string   `json:"manufacturer" bson:"manufacturer"`
	SerieNumber     string   `json:"serie_number" bson:"serie_number"`
	Model           string   `json:"model" bson:"model"`
	FirmwareVersion string   `json:"firmware_version" bson:"firmware_version"`
	Description     string   `json:"description" bson:"description"`
}

// NewSensorDocument builds the document-store record for a freshly assigned id.
func NewSensorDocument(id int64, c SensorCreate) *Sensor {
	return &Sensor{
		ID:              id,
		Name:            c.Name,
		Latitude:        c.Latitude,
		Longitude:       c.Longitude,
		Location:        NewGeoPoint(c.Latitude, c.Longitude),
		Type:            c.Type,
		MacAddress:      c.MacAddress,
		Manufacturer:    c.Manufacturer,
		SerieNumber:     c.SerieNumber,
		Model:           c.Model,
		FirmwareVersion: c.FirmwareVersion,
		Description:     c.Description,
	}
}

// TypeKey returns the type under which the sensor is counted.
func (s *Sensor) TypeKey() string {
	if t := strings.TrimSpace(s.Type); t != "" {
		return t
	}
	return UnknownSensorType
}

// SearchDocument is the text projection pushed to the search index.
type SearchDocument struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// SearchDocument projects the searchable fields of a sensor.
func (s *Sensor) SearchDocument() SearchDocument {
	return SearchDocument{Name: s.Name, Type: s.Type, Description: s.Description}
}
