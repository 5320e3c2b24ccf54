package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RecordDelimiter separates the fields of a serialized place record.
// Names are not escaped: a name containing it will not survive a round-trip.
const RecordDelimiter = "#"

// Place is a named point the user keeps in their list.
// Two places are the same record when their serialized form is identical.
type Place struct {
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// NewPlace builds a place and validates it.
func NewPlace(name string, longitude, latitude float64) (Place, error) {
	p := Place{Name: name, Longitude: longitude, Latitude: latitude}
	if err := p.Validate(); err != nil {
		return Place{}, err
	}
	return p, nil
}

// Validate checks the name is not blank and both coordinates are finite and in range.
func (p Place) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPlace)
	}
	if !finite(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidPlace, p.Longitude)
	}
	if !finite(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidPlace, p.Latitude)
	}
	return nil
}

// Point returns the coordinates of the place.
func (p Place) Point() GeoPoint {
	return GeoPoint{Lat: p.Latitude, Lon: p.Longitude}
}

// Record serializes the place as name#longitude#latitude.
func (p Place) Record() string {
	return FormatRecord(p.Name, p.Longitude, p.Latitude)
}

// SameRecord reports whether both places serialize to the same text.
func (p Place) SameRecord(other Place) bool {
	return p.Record() == other.Record()
}

// FormatRecord joins the three fields with RecordDelimiter. Coordinates use the
// shortest decimal form that parses back to the same float64.
func FormatRecord(name string, longitude, latitude float64) string {
	return name + RecordDelimiter +
		strconv.FormatFloat(longitude, 'f', -1, 64) + RecordDelimiter +
		strconv.FormatFloat(latitude, 'f', -1, 64)
}

// ParseRecord decodes a name#longitude#latitude record. The name is kept as
// written; surrounding whitespace on the numeric fields is ignored.
func ParseRecord(record string) (Place, error) {
	fields := strings.Split(record, RecordDelimiter)
	if len(fields) != 3 {
		return Place{}, fmt.Errorf("%w: %d fields", ErrMalformedRecord, len(fields))
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return Place{}, fmt.Errorf("%w: longitude: %v", ErrMalformedRecord, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return Place{}, fmt.Errorf("%w: latitude: %v", ErrMalformedRecord, err)
	}
	p := Place{Name: fields[0], Longitude: lon, Latitude: lat}
	if err := p.Validate(); err != nil {
		return Place{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return p, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
