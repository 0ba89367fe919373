package session

import (
	"sync"
	"time"
)

// WallClock holds the local calendar fields of an instant in some timezone.
type WallClock struct {
	Year    int
	Month   time.Month
	Day     int
	Hour    int
	Minute  int
	Second  int
	Weekday time.Weekday
}

// Resolver maps an instant to its local wall-clock fields in a named IANA
// timezone. Implementations differ by the timezone database backing them;
// the calculator is written against this contract only so tests can
// substitute fixed offsets.
type Resolver interface {
	Locate(at time.Time, zone string) (WallClock, error)
}

// ZoneResolver resolves timezones through the Go runtime's timezone
// database, caching loaded locations.
type ZoneResolver struct {
	mu   sync.Mutex
	locs map[string]*time.Location
}

// NewZoneResolver creates a ZoneResolver with an empty location cache.
func NewZoneResolver() *ZoneResolver {
	return &ZoneResolver{locs: make(map[string]*time.Location)}
}

// Locate returns the wall-clock fields of at in the given zone.
func (r *ZoneResolver) Locate(at time.Time, zone string) (WallClock, error) {
	loc, err := r.location(zone)
	if err != nil {
		return WallClock{}, err
	}
	return wallClockIn(at, loc), nil
}

func (r *ZoneResolver) location(zone string) (*time.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if loc, ok := r.locs[zone]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	r.locs[zone] = loc
	return loc, nil
}

func wallClockIn(at time.Time, loc *time.Location) WallClock {
	t := at.In(loc)
	return WallClock{
		Year:    t.Year(),
		Month:   t.Month(),
		Day:     t.Day(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
		Weekday: t.Weekday(),
	}
}
