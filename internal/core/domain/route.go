package domain

// RouteLeg is the hop between two consecutive places of a route.
type RouteLeg struct {
	From           Place   `json:"from"`
	To             Place   `json:"to"`
	DistanceMeters float64 `json:"distance_meters"`
}

// RouteSummary describes the current visiting order of the place list.
type RouteSummary struct {
	Places      []Place    `json:"places"`
	Legs        []RouteLeg `json:"legs"`
	TotalMeters float64    `json:"total_meters"`
	Closed      bool       `json:"closed"` // last leg returns to the first place
}
