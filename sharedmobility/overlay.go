package sharedmobility

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gotransit/raptor/timetable"
)

// ErrFeedUnavailable marks a shared-mob feed that could not be reached or
// whose payload was malformed. Non-fatal: Init drops the feed and logs a
// warning, per spec.md §7.
var ErrFeedUnavailable = errors.New("sharedmobility: feed unavailable")

// Config configures one run's shared-mobility overlay.
type Config struct {
	Feeds            []Feed
	PreferredVehicle *timetable.TransportType
	EnableCar        bool
}

// Overlay holds the per-run shared-mobility state: dynamic availability
// pulled from feeds, the set of renting stations visited so far, the
// no_source/no_destination exclusion sets, and the vehicle transfers
// discovered lazily as the search reaches new renting stations.
type Overlay struct {
	cfg Config
	log *zap.SugaredLogger

	renting       map[timetable.StopIndex]*timetable.RentingData
	visited       map[timetable.StopIndex]bool
	visitedStops  []*timetable.Stop
	noSource      map[timetable.StopIndex]bool
	noDestination map[timetable.StopIndex]bool

	vehicleTransfers []*timetable.Transfer
}

func NewOverlay(cfg Config, log *zap.SugaredLogger) *Overlay {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Overlay{
		cfg:           cfg,
		log:           log,
		renting:       map[timetable.StopIndex]*timetable.RentingData{},
		visited:       map[timetable.StopIndex]bool{},
		noSource:      map[timetable.StopIndex]bool{},
		noDestination: map[timetable.StopIndex]bool{},
	}
}

// Init pulls availability from every configured feed and marks every origin
// renting station as already visited, per spec.md §4.5's "Init" step. A
// feed that errors is skipped (logged, not fatal) -- the rest still apply.
func (o *Overlay) Init(ctx context.Context, tt *timetable.Timetable, originStops []*timetable.Stop) {
	for _, feed := range o.cfg.Feeds {
		snapshot, err := feed.Availability(ctx)
		if err != nil {
			o.log.Warnw("shared mobility feed unavailable, excluding from run", "error", errors.Wrap(ErrFeedUnavailable, err.Error()))
			continue
		}
		for stopID, status := range snapshot.Stations {
			stop, ok := tt.Stop(stopID)
			if !ok || !stop.IsRentingStation() {
				continue
			}
			data := &timetable.RentingData{
				SystemID:          snapshot.SystemID,
				VehicleTypes:      stop.Renting.VehicleTypes,
				IsInstalled:       status.IsInstalled,
				IsRenting:         status.IsRenting,
				IsReturning:       status.IsReturning,
				VehiclesAvailable: status.VehiclesAvailable,
				DocksAvailable:    status.DocksAvailable,
				Capacity:          stop.Renting.Capacity,
			}
			o.renting[stop.Index] = data
			if !data.ValidSource() {
				o.noSource[stop.Index] = true
			}
			if !data.ValidDestination() {
				o.noDestination[stop.Index] = true
			}
		}
	}

	for _, stop := range originStops {
		if stop.IsRentingStation() && !o.visited[stop.Index] {
			o.visited[stop.Index] = true
			o.visitedStops = append(o.visitedStops, stop)
		}
	}
}

// RentingData returns the overlay's dynamic view of a renting station,
// falling back to the timetable's static data if no feed refreshed it.
func (o *Overlay) RentingData(stop *timetable.Stop) *timetable.RentingData {
	if d, ok := o.renting[stop.Index]; ok {
		return d
	}
	return stop.Renting
}

func (o *Overlay) IsNoSource(stop *timetable.Stop) bool      { return o.noSource[stop.Index] }
func (o *Overlay) IsNoDestination(stop *timetable.Stop) bool { return o.noDestination[stop.Index] }

// FilterRentingStations keeps only the renting stations among stops --
// step 1 of Phase D ("M = marked renting stations").
func (o *Overlay) FilterRentingStations(stops []*timetable.Stop) []*timetable.Stop {
	out := make([]*timetable.Stop, 0, len(stops))
	for _, s := range stops {
		if s.IsRentingStation() {
			out = append(out, s)
		}
	}
	return out
}

// VisitedStations returns every renting station visited so far. Callers
// must snapshot this before calling NewlyVisited, which mutates the
// visited set in place -- this is how Phase D obtains visited_before for
// vehicle-transfer generation (spec.md §4.5 step 3).
func (o *Overlay) VisitedStations() []*timetable.Stop {
	out := make([]*timetable.Stop, 0, len(o.visitedStops))
	out = append(out, o.visitedStops...)
	return out
}

// NewlyVisited returns N = marked \ visited and folds N into visited --
// step 2 of Phase D.
func (o *Overlay) NewlyVisited(marked []*timetable.Stop) []*timetable.Stop {
	var newStations []*timetable.Stop
	for _, s := range marked {
		if !o.visited[s.Index] {
			newStations = append(newStations, s)
			o.visited[s.Index] = true
			o.visitedStops = append(o.visitedStops, s)
		}
	}
	return newStations
}

// GenerateVehicleTransfers creates a directed VehicleTransfer v -> n for
// every (v in visitedBefore, n in newStations) pair that shares a system id
// and a compatible vehicle type, skipping pairs where v is a no_source or n a
// no_destination station -- step 3 of Phase D. Generated transfers
// are appended to the overlay's run-long vehicleTransfers collection and
// also returned (only the newly created ones, all arriving at a station in
// newStations).
func (o *Overlay) GenerateVehicleTransfers(tt *timetable.Timetable, visitedBefore, newStations []*timetable.Stop) []*timetable.Transfer {
	var generated []*timetable.Transfer
	for _, v := range visitedBefore {
		for _, n := range newStations {
			if v == n {
				continue
			}
			if t := o.addVehicleTransfer(tt, v, n); t != nil {
				generated = append(generated, t)
			}
		}
	}
	return generated
}

func (o *Overlay) addVehicleTransfer(tt *timetable.Timetable, from, to *timetable.Stop) *timetable.Transfer {
	rf := o.RentingData(from)
	rt := o.RentingData(to)
	if rf == nil || rt == nil || rf.SystemID == "" || rf.SystemID != rt.SystemID {
		return nil
	}

	common := intersectTypes(rf.VehicleTypes, rt.VehicleTypes)
	if !o.cfg.EnableCar {
		common = withoutCar(common)
	}
	if len(common) == 0 {
		return nil
	}

	vehicle := fastestType(common)
	if o.cfg.PreferredVehicle != nil && containsType(common, *o.cfg.PreferredVehicle) {
		vehicle = *o.cfg.PreferredVehicle
	}

	if o.IsNoSource(from) || o.IsNoDestination(to) {
		return nil
	}

	distanceKm := tt.DistanceKm(from, to)
	seconds := int(math.Ceil(3600 * distanceKm / vehicle.VehicleSpeedKmh()))
	transfer := &timetable.Transfer{FromStop: from, ToStop: to, TransferTimeSecs: seconds, TransportType: vehicle}
	o.vehicleTransfers = append(o.vehicleTransfers, transfer)
	return transfer
}

// AllVehicleTransfers returns every vehicle transfer discovered so far this
// run, across all Phase D rounds.
func (o *Overlay) AllVehicleTransfers() []*timetable.Transfer {
	out := make([]*timetable.Transfer, len(o.vehicleTransfers))
	copy(out, o.vehicleTransfers)
	return out
}

// VehicleTransfersArrivingAt restricts the overlay's run-long vehicle
// transfer pool to those whose destination is one of stations -- spec.md
// §4.5 step 4's "restrict the transfer pool to vehicle transfers arriving
// at stations in N".
func VehicleTransfersArrivingAt(transfers []*timetable.Transfer, stations []*timetable.Stop) []*timetable.Transfer {
	at := make(map[timetable.StopIndex]bool, len(stations))
	for _, s := range stations {
		at[s.Index] = true
	}
	var out []*timetable.Transfer
	for _, t := range transfers {
		if at[t.ToStop.Index] {
			out = append(out, t)
		}
	}
	return out
}

func intersectTypes(a, b []timetable.TransportType) []timetable.TransportType {
	bset := map[timetable.TransportType]bool{}
	for _, t := range b {
		bset[t] = true
	}
	var out []timetable.TransportType
	for _, t := range a {
		if bset[t] {
			out = append(out, t)
		}
	}
	return out
}

func withoutCar(types []timetable.TransportType) []timetable.TransportType {
	var out []timetable.TransportType
	for _, t := range types {
		if t != timetable.Car {
			out = append(out, t)
		}
	}
	return out
}

func containsType(types []timetable.TransportType, target timetable.TransportType) bool {
	for _, t := range types {
		if t == target {
			return true
		}
	}
	return false
}

// fastestType picks the transport type with the highest constant cruising
// speed -- the Go equivalent of the source's np.argmax over the speed
// table (see REDESIGN FLAGS).
func fastestType(types []timetable.TransportType) timetable.TransportType {
	best := types[0]
	for _, t := range types[1:] {
		if t.VehicleSpeedKmh() > best.VehicleSpeedKmh() {
			best = t
		}
	}
	return best
}
