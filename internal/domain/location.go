package domain

import "fmt"

// LocationMatch is one geocoding result: a named place with coordinates and
// administrative metadata. It is an immutable value, replaced wholesale on
// every explicit selection and persisted as JSON.
type LocationMatch struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Admin1    string  `json:"admin1,omitempty"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// Canonical returns the "{name}, {country}" form used as the persisted
// search term after an explicit selection.
func (l LocationMatch) Canonical() string {
	return fmt.Sprintf("%s, %s", l.Name, l.Country)
}

// Equal reports whether two matches identify the same place for cycle
// purposes. ID alone is not enough: a default location carries no
// provider ID.
func (l LocationMatch) Equal(o LocationMatch) bool {
	return l.ID == o.ID && l.Latitude == o.Latitude && l.Longitude == o.Longitude && l.Name == o.Name
}

// DefaultLocation is the compiled-in fallback used whenever no valid
// location has been persisted.
func DefaultLocation() LocationMatch {
	return LocationMatch{
		ID:        2950159,
		Name:      "Berlin",
		Country:   "Germany",
		Latitude:  52.52,
		Longitude: 13.405,
		Timezone:  "Europe/Berlin",
	}
}
