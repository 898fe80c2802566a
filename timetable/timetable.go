package timetable

import "github.com/gotransit/raptor/internal/geo"

/**
 * Timetable is deeply immutable after Build(): multiple concurrent
 * algorithm runs may share one instance read-only (spec.md §5). Stations
 * are still stored by id for the public query API to resolve a station
 * name into its child stops.
 */
type Timetable struct {
	Date       string
	SourcePath string

	stations map[string]*Station
	stops    []*Stop
	stopsByID map[string]*Stop

	routes       []*Route
	stopToRoutes map[StopIndex][]*Route

	transfers         []*Transfer
	transfersFromStop map[StopIndex][]*Transfer
}

func (t *Timetable) Station(id string) (*Station, bool) {
	s, ok := t.stations[id]
	return s, ok
}

func (t *Timetable) Stop(id string) (*Stop, bool) {
	s, ok := t.stopsByID[id]
	return s, ok
}

func (t *Timetable) Stops() []*Stop {
	return t.stops
}

func (t *Timetable) Routes() []*Route {
	return t.routes
}

// RoutesOfStop returns every route serving stop, in the order routes were
// discovered at build time.
func (t *Timetable) RoutesOfStop(stop *Stop) []*Route {
	return t.stopToRoutes[stop.Index]
}

// TransfersWithFrom returns every transfer (walking or vehicle) departing
// stop.
func (t *Timetable) TransfersWithFrom(stop *Stop) []*Transfer {
	return t.transfersFromStop[stop.Index]
}

// DistanceKm is the stop-to-stop great-circle distance via internal/geo.
func (t *Timetable) DistanceKm(a, b *Stop) float64 {
	return geo.DistanceKm(a.Coordinates, b.Coordinates)
}

// Counts summarizes the timetable's size, mirroring pyraptor's
// Timetable.counts() debug helper.
type Counts struct {
	Stations  int
	Stops     int
	Routes    int
	Transfers int
}

func (t *Timetable) Counts() Counts {
	return Counts{
		Stations:  len(t.stations),
		Stops:     len(t.stops),
		Routes:    len(t.routes),
		Transfers: len(t.transfers),
	}
}
