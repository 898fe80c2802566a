package raptor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gotransit/raptor/criteria"
	"github.com/gotransit/raptor/sharedmobility"
	"github.com/gotransit/raptor/timetable"
)

// Variant selects which round engine a Query runs (spec.md §4.2/§4.5).
type Variant int

const (
	VariantEarliestArrival Variant = iota
	VariantMcRAPTOR
	VariantSharedMobilityMcRAPTOR
)

// SMConfig configures the shared-mobility overlay for a
// VariantSharedMobilityMcRAPTOR query.
type SMConfig struct {
	Feeds            []sharedmobility.Feed
	PreferredVehicle *timetable.TransportType
	EnableCar        bool
}

// Query is the public C8 request shape (spec.md §6, §8). ToStationID is
// optional: nil means "compute journeys to every reachable station".
type Query struct {
	FromStationID string
	ToStationID   *string
	DepartureTime timetable.SecondsPastMidnight
	Rounds        int
	Variant       Variant
	Criteria      []criteria.Weighted
	SharedMobility *SMConfig
	Logger        *zap.SugaredLogger
}

// Run is the sole public C8 entry point: validates q, runs the selected
// round engine to completion (or until ctx is cancelled), reconstructs one
// journey per reachable destination station, and returns them keyed by
// station id. A destination that the search never reaches is simply absent
// from the result map -- never an error (spec.md §7).
func Run(ctx context.Context, tt *timetable.Timetable, q Query) (map[string]*Journey, error) {
	log := q.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	if q.Rounds <= 0 {
		return nil, configErrorf("rounds must be > 0, got %d", q.Rounds)
	}
	if q.DepartureTime < 0 {
		return nil, configErrorf("departure time %d is negative", q.DepartureTime)
	}

	fromStation, ok := tt.Station(q.FromStationID)
	if !ok {
		return nil, configErrorf("unknown origin station %q", q.FromStationID)
	}
	if len(fromStation.Stops) == 0 {
		return nil, configErrorf("origin station %q has no stops", q.FromStationID)
	}

	var destStops []*timetable.Stop
	if q.ToStationID != nil {
		destStation, ok := tt.Station(*q.ToStationID)
		if !ok {
			return nil, configErrorf("unknown destination station %q", *q.ToStationID)
		}
		destStops = destStation.Stops
	} else {
		destStops = tt.Stops()
	}

	start := time.Now()
	log.Infow("raptor query starting",
		"origin", q.FromStationID, "rounds", q.Rounds, "variant", q.Variant)

	var results map[string]*Journey
	var err error
	switch q.Variant {
	case VariantEarliestArrival:
		results, err = runEarliestArrival(ctx, tt, fromStation.Stops, destStops, q)
	case VariantMcRAPTOR:
		results, err = runMcRAPTOR(ctx, tt, fromStation.Stops, destStops, q)
	case VariantSharedMobilityMcRAPTOR:
		results, err = runSharedMobilityMcRAPTOR(ctx, tt, fromStation.Stops, destStops, q)
	default:
		return nil, configErrorf("unknown variant %d", q.Variant)
	}
	if err != nil {
		return nil, err
	}

	log.Infow("raptor query finished",
		"origin", q.FromStationID, "reachable_stations", len(results), "elapsed", time.Since(start))
	return results, nil
}

func runEarliestArrival(ctx context.Context, tt *timetable.Timetable, fromStops, destStops []*timetable.Stop, q Query) (map[string]*Journey, error) {
	engine := NewEarliestArrivalRAPTOR(tt)
	bagRoundStop, err := engine.Run(ctx, fromStops, q.DepartureTime, q.Rounds)
	if err != nil && len(bagRoundStop) == 0 {
		return nil, err
	}
	finalRound := bagRoundStop[len(bagRoundStop)-1]

	byStation := map[string][]Journey{}
	for _, stop := range destStops {
		j, ok := ReconstructSingleCriterion(finalRound, stop)
		if !ok {
			continue
		}
		byStation[stop.Station.ID] = append(byStation[stop.Station.ID], j)
	}
	return pickBestPerStationGroup(byStation), err
}

func runMcRAPTOR(ctx context.Context, tt *timetable.Timetable, fromStops, destStops []*timetable.Stop, q Query) (map[string]*Journey, error) {
	weights := q.Criteria
	if len(weights) == 0 {
		weights = criteria.DefaultWeights()
	}
	engine := NewMcRAPTOR(tt, weights)
	bagRoundStop, err := engine.Run(ctx, fromStops, q.DepartureTime, q.Rounds)
	if err != nil && len(bagRoundStop) == 0 {
		return nil, err
	}
	finalRound := bagRoundStop[len(bagRoundStop)-1]

	originStops := map[timetable.StopIndex]bool{}
	for _, s := range fromStops {
		originStops[s.Index] = true
	}
	journeys := ReconstructMultiCriterion(finalRound, destStops, originStops)
	return pickBestPerStation(journeys), err
}

func runSharedMobilityMcRAPTOR(ctx context.Context, tt *timetable.Timetable, fromStops, destStops []*timetable.Stop, q Query) (map[string]*Journey, error) {
	weights := q.Criteria
	if len(weights) == 0 {
		weights = criteria.DefaultWeights()
	}
	smCfg := sharedmobility.Config{}
	if q.SharedMobility != nil {
		smCfg.Feeds = q.SharedMobility.Feeds
		smCfg.PreferredVehicle = q.SharedMobility.PreferredVehicle
		smCfg.EnableCar = q.SharedMobility.EnableCar
	}
	overlay := sharedmobility.NewOverlay(smCfg, q.Logger)
	engine := NewSharedMobilityMcRAPTOR(tt, weights, overlay)
	bagRoundStop, err := engine.Run(ctx, fromStops, q.DepartureTime, q.Rounds)
	if err != nil && len(bagRoundStop) == 0 {
		return nil, err
	}
	finalRound := bagRoundStop[len(bagRoundStop)-1]

	originStops := map[timetable.StopIndex]bool{}
	for _, s := range fromStops {
		originStops[s.Index] = true
	}
	journeys := ReconstructMultiCriterion(finalRound, destStops, originStops)
	return pickBestPerStation(journeys), err
}

// pickBestPerStation reduces a Pareto-filtered journey set down to one
// winner per destination station, chosen by weighted-sum dominance
// (spec.md §4.3.2) -- the same role Bag.BestLabel plays inside one bag.
func pickBestPerStation(journeys []Journey) map[string]*Journey {
	byStation := map[string][]Journey{}
	for _, j := range journeys {
		if len(j.Legs) == 0 {
			continue
		}
		stationID := j.Legs[len(j.Legs)-1].ToStop.Station.ID
		byStation[stationID] = append(byStation[stationID], j)
	}
	return pickBestPerStationGroup(byStation)
}

func pickBestPerStationGroup(byStation map[string][]Journey) map[string]*Journey {
	out := make(map[string]*Journey, len(byStation))
	for stationID, js := range byStation {
		best := js[0]
		for _, j := range js[1:] {
			if betterJourney(j, best) {
				best = j
			}
		}
		b := best
		out[stationID] = &b
	}
	return out
}

// betterJourney reports whether a strictly beats b under Journey.Dominates;
// when each dominates the other (equal cost), the earlier arrival wins, so
// the pick does not depend on the order the journeys were reconstructed in.
func betterJourney(a, b Journey) bool {
	aDom, bDom := a.Dominates(b), b.Dominates(a)
	if aDom && bDom {
		return a.ArrivalTime() < b.ArrivalTime()
	}
	return aDom && !bDom
}
