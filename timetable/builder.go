package timetable

import (
	"sort"

	"github.com/gotransit/raptor/internal/geo"
	"go.uber.org/zap"
)

/**
 * Builder accumulates stations, stops, trips and transfers handed over by
 * the GTFS-loading collaborator (out of scope, see spec.md §1/§6) and
 * produces an immutable Timetable via Build(). No algorithm-time mutation
 * happens after Build() returns.
 */
type Builder struct {
	stations  map[string]*Station
	stopOrder []string
	stops     map[string]*Stop
	trips     []*tripInput
	transfers []Transfer

	date       string
	sourcePath string

	log *zap.SugaredLogger
}

type tripInput struct {
	routeName     string
	transportType TransportType
	stopTimes     []TripStopTimeInput
}

// TripStopTimeInput is the raw per-stop row a loader hands the builder; the
// builder resolves stop_id strings to *Stop pointers at Build() time.
type TripStopTimeInput struct {
	StopID              string
	ArrivalSeconds      SecondsPastMidnight
	DepartureSeconds    SecondsPastMidnight
	TravelledDistanceKm float64
}

func NewBuilder(log *zap.SugaredLogger) *Builder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Builder{
		stations: map[string]*Station{},
		stops:    map[string]*Stop{},
		log:      log,
	}
}

func (b *Builder) WithMetadata(date, sourcePath string) *Builder {
	b.date = date
	b.sourcePath = sourcePath
	return b
}

func (b *Builder) AddStation(id, name string) *Builder {
	if _, ok := b.stations[id]; ok {
		return b
	}
	b.stations[id] = &Station{ID: id, Name: name}
	return b
}

// AddStop de-duplicates by id; calling it twice for the same id is a no-op.
func (b *Builder) AddStop(id, stationID, platformCode string, lat, lon float64) *Builder {
	if _, ok := b.stops[id]; ok {
		return b
	}
	station, ok := b.stations[stationID]
	if !ok {
		station = &Station{ID: stationID, Name: stationID}
		b.stations[stationID] = station
	}
	stop := &Stop{
		ID:           id,
		Station:      station,
		PlatformCode: platformCode,
		Coordinates:  geo.Coordinates{Lat: lat, Lon: lon},
	}
	b.stops[id] = stop
	b.stopOrder = append(b.stopOrder, id)
	station.Stops = append(station.Stops, stop)
	return b
}

// SetRenting attaches shared-mobility renting data to an already-added stop.
func (b *Builder) SetRenting(stopID string, data RentingData) *Builder {
	if stop, ok := b.stops[stopID]; ok {
		d := data
		stop.Renting = &d
	}
	return b
}

func (b *Builder) AddTrip(routeName string, transportType TransportType, stopTimes []TripStopTimeInput) *Builder {
	b.trips = append(b.trips, &tripInput{routeName: routeName, transportType: transportType, stopTimes: stopTimes})
	return b
}

// AddWalkingTransfer registers a symmetric pedestrian transfer in both
// directions, matching spec.md §3's "walking transfers are symmetric and
// must be registered in both directions".
func (b *Builder) AddWalkingTransfer(fromID, toID string, transferSeconds int) *Builder {
	b.transfers = append(b.transfers,
		Transfer{TransferTimeSecs: transferSeconds, TransportType: Walk, FromStop: &Stop{ID: fromID}, ToStop: &Stop{ID: toID}},
		Transfer{TransferTimeSecs: transferSeconds, TransportType: Walk, FromStop: &Stop{ID: toID}, ToStop: &Stop{ID: fromID}},
	)
	return b
}

func (b *Builder) resolveStop(placeholder *Stop) (*Stop, error) {
	stop, ok := b.stops[placeholder.ID]
	if !ok {
		return nil, dataErrorf("transfer references unknown stop %q", placeholder.ID)
	}
	return stop, nil
}

// Build validates every accumulated trip and transfer, groups trips into
// routes by identical stop-id sequence, and returns an immutable Timetable.
func (b *Builder) Build() (*Timetable, error) {
	stops := make([]*Stop, len(b.stopOrder))
	for i, id := range b.stopOrder {
		stop := b.stops[id]
		stop.Index = StopIndex(i)
		stops[i] = stop
	}

	routesByKey := map[string]*Route{}
	var routes []*Route
	tripIndex := TripIndex(0)

	for _, ti := range b.trips {
		if len(ti.stopTimes) < 2 {
			return nil, dataErrorf("trip on route %q has fewer than 2 stop-times", ti.routeName)
		}

		stopTimes := make([]TripStopTime, len(ti.stopTimes))
		stopIDs := make([]string, len(ti.stopTimes))
		routeStops := make([]*Stop, len(ti.stopTimes))
		for i, raw := range ti.stopTimes {
			stop, ok := b.stops[raw.StopID]
			if !ok {
				return nil, dataErrorf("trip on route %q references unknown stop %q", ti.routeName, raw.StopID)
			}
			if raw.ArrivalSeconds > raw.DepartureSeconds {
				return nil, dataErrorf("trip on route %q: stop %q has arrival after departure", ti.routeName, raw.StopID)
			}
			if i > 0 && ti.stopTimes[i-1].DepartureSeconds > raw.ArrivalSeconds {
				return nil, dataErrorf("trip on route %q: stop-times are not monotonic at stop %q", ti.routeName, raw.StopID)
			}
			stopTimes[i] = TripStopTime{
				Stop:                stop,
				StopSequence:        i,
				ArrivalSeconds:      raw.ArrivalSeconds,
				DepartureSeconds:    raw.DepartureSeconds,
				TravelledDistanceKm: raw.TravelledDistanceKm,
			}
			stopIDs[i] = raw.StopID
			routeStops[i] = stop
		}

		key := joinIDs(stopIDs)
		route, ok := routesByKey[key]
		if !ok {
			route = &Route{Index: RouteIndex(len(routes)), StopIDs: stopIDs, Stops: routeStops}
			routesByKey[key] = route
			routes = append(routes, route)
		} else if !sameStopIDs(route.StopIDs, stopIDs) {
			return nil, dataErrorf("route %q has inconsistent stop sequences across trips", ti.routeName)
		}

		trip := &Trip{
			Index:     tripIndex,
			Route:     route,
			RouteInfo: RouteInfo{TransportType: ti.transportType, Name: ti.routeName},
			StopTimes: stopTimes,
		}
		tripIndex++
		route.Trips = append(route.Trips, trip)
	}

	for _, route := range routes {
		sort.SliceStable(route.Trips, func(i, j int) bool {
			return route.Trips[i].StopTimes[0].DepartureSeconds < route.Trips[j].StopTimes[0].DepartureSeconds
		})
	}

	stopToRoutes := map[StopIndex][]*Route{}
	for _, route := range routes {
		for _, stop := range route.Stops {
			stopToRoutes[stop.Index] = append(stopToRoutes[stop.Index], route)
		}
	}

	transfersFromStop := map[StopIndex][]*Transfer{}
	transfers := make([]*Transfer, 0, len(b.transfers))
	for i := range b.transfers {
		t := b.transfers[i]
		from, err := b.resolveStop(t.FromStop)
		if err != nil {
			return nil, err
		}
		to, err := b.resolveStop(t.ToStop)
		if err != nil {
			return nil, err
		}
		resolved := &Transfer{FromStop: from, ToStop: to, TransferTimeSecs: t.TransferTimeSecs, TransportType: t.TransportType}
		transfers = append(transfers, resolved)
		transfersFromStop[from.Index] = append(transfersFromStop[from.Index], resolved)
	}

	b.log.Infow("timetable built",
		"stations", len(b.stations), "stops", len(stops), "routes", len(routes),
		"trips", int(tripIndex), "transfers", len(transfers))

	return &Timetable{
		Date:              b.date,
		SourcePath:        b.sourcePath,
		stations:          b.stations,
		stops:             stops,
		stopsByID:         b.stops,
		routes:            routes,
		stopToRoutes:      stopToRoutes,
		transfers:         transfers,
		transfersFromStop: transfersFromStop,
	}, nil
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += id
	}
	return out
}

func sameStopIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
