package models

// Fallbacks used when the geo database resolves an IP but the record carries
// no country code or city name.
const (
	DefaultCountryCode = "n/a"
	DefaultCityName    = "unknown"
)

// Location is the resolved geography for one client IP. It is computed on
// demand per event and discarded after aggregation; only the (Country, City)
// pair feeds into the visit counts.
type Location struct {
	IP        string
	Country   string
	City      string
	Latitude  float64
	Longitude float64
}
