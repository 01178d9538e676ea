package shipments

import "strings"

// DefaultMapBaseURL is the maps page opened for a coordinate pair.
const DefaultMapBaseURL = "https://www.google.com/maps"

// MapLinker builds external map URLs from sheet coordinates.
type MapLinker struct {
	BaseURL string
}

// URL returns "<base>?q=<lat>,<lng>", or "" when a coordinate is missing.
func (m MapLinker) URL(latitude, longitude string) string {
	latitude = strings.TrimSpace(latitude)
	longitude = strings.TrimSpace(longitude)
	if latitude == "" || longitude == "" {
		return ""
	}
	base := m.BaseURL
	if base == "" {
		base = DefaultMapBaseURL
	}
	return base + "?q=" + latitude + "," + longitude
}
