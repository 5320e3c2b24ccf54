package domain

// GeocodeCandidate is one match returned by a geocoding provider. It only
// lives until the user picks one to become a Place.
type GeocodeCandidate struct {
	DisplayName string  `json:"display_name"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
}

// Place converts the candidate into a place named after its display name.
func (c GeocodeCandidate) Place() Place {
	return Place{Name: c.DisplayName, Longitude: c.Longitude, Latitude: c.Latitude}
}

// Record is the string shown to the user when picking a candidate.
func (c GeocodeCandidate) Record() string {
	return FormatRecord(c.DisplayName, c.Longitude, c.Latitude)
}
