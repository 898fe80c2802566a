package raptor

import (
	"context"

	"github.com/gotransit/raptor/criteria"
	"github.com/gotransit/raptor/sharedmobility"
	"github.com/gotransit/raptor/timetable"
)

// SharedMobilityMcRAPTOR extends McRAPTOR with Phase D: on-the-fly
// vehicle-transfer discovery between renting stations (spec.md §4.5).
type SharedMobilityMcRAPTOR struct {
	tt      *timetable.Timetable
	weights []criteria.Weighted
	overlay *sharedmobility.Overlay
}

func NewSharedMobilityMcRAPTOR(tt *timetable.Timetable, weights []criteria.Weighted, overlay *sharedmobility.Overlay) *SharedMobilityMcRAPTOR {
	return &SharedMobilityMcRAPTOR{tt: tt, weights: weights, overlay: overlay}
}

func (e *SharedMobilityMcRAPTOR) Run(ctx context.Context, fromStops []*timetable.Stop, depSecs timetable.SecondsPastMidnight, rounds int) ([][]criteria.Bag, error) {
	mc := NewMcRAPTOR(e.tt, e.weights)
	bagRoundStop, bestLabels, marked := mc.init(fromStops, depSecs, rounds)

	e.overlay.Init(ctx, e.tt, fromStops)

	transferMarked, err := mc.relaxTransfers(bagRoundStop[0], marked, bestLabels)
	if err != nil {
		return nil, err
	}
	marked = unionStopSets(marked, transferMarked)

	for k := 1; k <= rounds; k++ {
		select {
		case <-ctx.Done():
			return bagRoundStop[:k], ctx.Err()
		default:
		}
		if len(marked) == 0 {
			return bagRoundStop[:k], nil
		}

		for i := range bagRoundStop[k] {
			bagRoundStop[k][i] = bagRoundStop[k-1][i].Clone()
		}

		q := accumulateMarkedRoutes(e.tt, marked)
		markedB, err := mc.traverseRoutes(bagRoundStop[k-1], bagRoundStop[k], q, bestLabels)
		if err != nil {
			return nil, err
		}
		markedC, err := mc.relaxTransfers(bagRoundStop[k], markedB, bestLabels)
		if err != nil {
			return nil, err
		}
		markedD, err := e.relaxSharedMobility(bagRoundStop[k], markedC, bestLabels, mc)
		if err != nil {
			return nil, err
		}
		marked = unionStopSets(markedB, markedC, markedD)
	}

	return bagRoundStop, nil
}

// relaxSharedMobility is Phase D (spec.md §4.5), run over the stops marked
// by Phase C only (Open Question resolution, see DESIGN.md).
func (e *SharedMobilityMcRAPTOR) relaxSharedMobility(bag []criteria.Bag, transferMarked stopSet, bestLabels map[timetable.StopIndex]*criteria.MultiCriteriaLabel, mc *McRAPTOR) (stopSet, error) {
	// step 1: M = marked renting stations
	m := e.overlay.FilterRentingStations(transferMarked.slice())
	if len(m) == 0 {
		return stopSet{}, nil
	}

	// step 2: N = M \ visited, folded into visited
	visitedBefore := e.overlay.VisitedStations()
	n := e.overlay.NewlyVisited(m)
	if len(n) == 0 {
		return stopSet{}, nil
	}

	// step 3: generate vehicle transfers visited_before -> N
	e.overlay.GenerateVehicleTransfers(e.tt, visitedBefore, n)

	// step 4: restrict the pool to transfers arriving at stations in N and
	// relax using only those vehicle transfers
	arrivingAtN := sharedmobility.VehicleTransfersArrivingAt(e.overlay.AllVehicleTransfers(), n)
	markedI, err := e.relaxGivenTransfers(bag, arrivingAtN, bestLabels)
	if err != nil {
		return nil, err
	}

	// step 5: propagate back into the public-transit network over ordinary
	// walking transfers
	markedPropagated, err := mc.relaxTransfers(bag, markedI, bestLabels)
	if err != nil {
		return nil, err
	}

	return unionStopSets(markedI, markedPropagated), nil
}

// relaxGivenTransfers is the footpath-transfer relaxation of §4.2 restricted
// to an explicit transfer list rather than the timetable's own transfers --
// used by Phase D step 4 to relax only the newly generated vehicle edges.
func (e *SharedMobilityMcRAPTOR) relaxGivenTransfers(bag []criteria.Bag, transfers []*timetable.Transfer, bestLabels map[timetable.StopIndex]*criteria.MultiCriteriaLabel) (stopSet, error) {
	bySource := map[timetable.StopIndex][]*timetable.Transfer{}
	for _, t := range transfers {
		bySource[t.FromStop.Index] = append(bySource[t.FromStop.Index], t)
	}

	next := stopSet{}
	for idx, trs := range bySource {
		for _, l := range bag[idx].Labels {
			for _, tr := range trs {
				arr := l.EarliestArrivalTime() + timetable.SecondsPastMidnight(tr.TransferTimeSecs)
				transferTrip := timetable.NewTransferTrip(tr.FromStop, tr.ToStop, l.EarliestArrivalTime(), arr, tr.TransportType)
				updated, err := l.Update(criteria.LabelUpdate{
					BoardingStop: tr.FromStop, ArrivalStop: tr.ToStop,
					OldTrip: l.Trip, NewTrip: transferTrip, BestLabels: bestLabels,
				})
				if err != nil {
					return nil, err
				}
				merged, changed := bag[tr.ToStop.Index].Merge(criteria.Bag{Labels: []*criteria.MultiCriteriaLabel{updated}})
				bag[tr.ToStop.Index] = merged
				if changed {
					next.add(tr.ToStop)
					updateBestLabel(bestLabels, tr.ToStop, merged.BestLabel())
				}
			}
		}
	}
	return next, nil
}
