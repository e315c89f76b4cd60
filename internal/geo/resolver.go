package geo

import (
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"

	"access-insights/internal/models"
)

// ErrBadAddress marks a lookup input that is not an IP address at all. This
// is a hard fault, not a quiet exclusion: the parser admits any host token,
// so a non-IP here means the deployment wired a hostname-logging source into
// the location pipeline.
var ErrBadAddress = errors.New("not an IP address")

// cityRecord maps the subset of the MaxMind city schema the resolver reads.
type cityRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
}

// database is a point-lookup view over the loaded geo database. found=false
// means the address has no record; err is reserved for real lookup faults.
type database interface {
	lookup(ip net.IP) (record cityRecord, found bool, err error)
}

type maxmindDatabase struct {
	reader *maxminddb.Reader
}

func (d maxmindDatabase) lookup(ip net.IP) (cityRecord, bool, error) {
	var record cityRecord
	_, found, err := d.reader.LookupNetwork(ip, &record)
	if err != nil {
		return cityRecord{}, false, err
	}
	return record, found, nil
}

// Resolver answers point lookups against a geo database loaded once at
// process start. The underlying reader is read-only and safe for concurrent
// use, so one Resolver is shared by all aggregation workers.
type Resolver struct {
	db     database
	reader *maxminddb.Reader
}

// NewResolver opens the MaxMind database at databasePath. A missing or
// unreadable database is a startup failure; every location lookup depends on
// it, so the process must not come up without one.
func NewResolver(databasePath string) (*Resolver, error) {
	reader, err := maxminddb.Open(databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open geo database %q: %w", databasePath, err)
	}
	return &Resolver{db: maxmindDatabase{reader: reader}, reader: reader}, nil
}

func (r *Resolver) Close() error {
	if r.reader == nil {
		return nil
	}
	return r.reader.Close()
}

// Resolve looks up ip and returns one of three outcomes:
//
//	(loc, nil)  — resolved; empty country/city names are substituted with the
//	              fixed defaults, latitude/longitude pass through as stored
//	(nil, nil)  — the address has no record; the caller excludes the event
//	(nil, err)  — a hard fault (malformed IP, database I/O); must fail the batch
func (r *Resolver) Resolve(ip string) (*models.Location, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("%w: %q", ErrBadAddress, ip)
	}

	record, found, err := r.db.lookup(parsed)
	if err != nil {
		return nil, fmt.Errorf("geo lookup failed for %s: %w", ip, err)
	}
	if !found {
		return nil, nil
	}

	location := &models.Location{
		IP:        ip,
		Country:   record.Country.ISOCode,
		City:      record.City.Names["en"],
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}
	if location.Country == "" {
		location.Country = models.DefaultCountryCode
	}
	if location.City == "" {
		location.City = models.DefaultCityName
	}
	return location, nil
}
