package weather

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Position is the side of the coast a beach faces.
type Position string

const (
	PositionNorth Position = "N"
	PositionSouth Position = "S"
	PositionEast  Position = "E"
	PositionWest  Position = "W"
)

// Location is a saved beach belonging to a user.
// Lat/Lng/Name/Position must be provided.
type Location struct {
	ID       string   `json:"id"`
	UserID   string   `json:"user"`
	Lat      float64  `json:"lat" validate:"min=-90,max=90"`
	Lng      float64  `json:"lng" validate:"min=-180,max=180"`
	Name     string   `json:"name" validate:"required"`
	Position Position `json:"position" validate:"required,oneof=N S E W"`
}

// Validate checks the fields a forecast needs from a beach.
func (l Location) Validate() error {
	return validate.Struct(l)
}

// RawForecastPoint is one provider sample for a coordinate at a given time.
// Fields holds the provider measurements (waveHeight, windSpeed, ...) keyed by name.
type RawForecastPoint struct {
	Time   string
	Fields map[string]float64
}

// MarshalJSON flattens the measurements next to the time field.
func (p RawForecastPoint) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Fields)+1)
	for k, v := range p.Fields {
		out[k] = v
	}
	out["time"] = p.Time
	return json.Marshal(out)
}

// Field names written by Enrich before the provider fields are overlaid.
const (
	FieldLat      = "lat"
	FieldLng      = "lng"
	FieldName     = "name"
	FieldPosition = "position"
	FieldRating   = "rating"
)

// EnrichedForecastPoint is a RawForecastPoint merged with the identity fields of
// the beach it was fetched for. Fields holds both the location fields and the
// provider measurements, provider values winning on collision.
type EnrichedForecastPoint struct {
	Time   string
	Fields map[string]any
}

// Lat returns the merged "lat" field.
func (p EnrichedForecastPoint) Lat() float64 {
	v, _ := p.Fields[FieldLat].(float64)
	return v
}

// Lng returns the merged "lng" field.
func (p EnrichedForecastPoint) Lng() float64 {
	v, _ := p.Fields[FieldLng].(float64)
	return v
}

// Name returns the merged "name" field, empty if a provider overwrote it with a number.
func (p EnrichedForecastPoint) Name() string {
	v, _ := p.Fields[FieldName].(string)
	return v
}

// Position returns the merged "position" field.
func (p EnrichedForecastPoint) Position() Position {
	v, _ := p.Fields[FieldPosition].(Position)
	return v
}

// MarshalJSON renders the point as one flat object.
func (p EnrichedForecastPoint) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Fields)+1)
	for k, v := range p.Fields {
		out[k] = v
	}
	out["time"] = p.Time
	return json.Marshal(out)
}

// TimeBucket groups every enriched point, across all beaches, sharing one timestamp.
type TimeBucket struct {
	Time     string                  `json:"time"`
	Forecast []EnrichedForecastPoint `json:"forecast"`
}

// Forecast is the aggregated view returned to callers: one bucket per distinct
// timestamp, ordered by first appearance while scanning beaches in input order.
type Forecast []TimeBucket
