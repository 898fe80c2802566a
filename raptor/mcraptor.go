package raptor

import (
	"context"

	"github.com/gotransit/raptor/criteria"
	"github.com/gotransit/raptor/timetable"
)

// McRAPTOR is the multi-criterion variant: a criteria.Bag per (round,
// stop), merged under componentwise Pareto dominance (spec.md §4.3.1).
type McRAPTOR struct {
	tt      *timetable.Timetable
	weights []criteria.Weighted
}

func NewMcRAPTOR(tt *timetable.Timetable, weights []criteria.Weighted) *McRAPTOR {
	return &McRAPTOR{tt: tt, weights: weights}
}

// Run executes the round loop and returns bag_round_stop as
// [round][stop index]Bag.
func (e *McRAPTOR) Run(ctx context.Context, fromStops []*timetable.Stop, depSecs timetable.SecondsPastMidnight, rounds int) ([][]criteria.Bag, error) {
	bagRoundStop, bestLabels, marked := e.init(fromStops, depSecs, rounds)

	var err error
	transferMarked, err := e.relaxTransfers(bagRoundStop[0], marked, bestLabels)
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
		markedB, err := e.traverseRoutes(bagRoundStop[k-1], bagRoundStop[k], q, bestLabels)
		if err != nil {
			return nil, err
		}
		markedC, err := e.relaxTransfers(bagRoundStop[k], markedB, bestLabels)
		if err != nil {
			return nil, err
		}
		marked = unionStopSets(markedB, markedC)
	}

	return bagRoundStop, nil
}

func (e *McRAPTOR) init(fromStops []*timetable.Stop, depSecs timetable.SecondsPastMidnight, rounds int) ([][]criteria.Bag, map[timetable.StopIndex]*criteria.MultiCriteriaLabel, stopSet) {
	stops := e.tt.Stops()
	bagRoundStop := make([][]criteria.Bag, rounds+1)
	for k := range bagRoundStop {
		bag := make([]criteria.Bag, len(stops))
		for i := range bag {
			bag[i] = criteria.NewBag()
		}
		bagRoundStop[k] = bag
	}

	bestLabels := map[timetable.StopIndex]*criteria.MultiCriteriaLabel{}
	marked := stopSet{}
	for _, stop := range fromStops {
		origin := &criteria.MultiCriteriaLabel{BoardingStop: stop, Criteria: criteria.NewCriteria(e.weights, depSecs)}
		bagRoundStop[0][stop.Index].Add(origin)
		bestLabels[stop.Index] = origin
		marked.add(stop)
	}
	return bagRoundStop, bestLabels, marked
}

// traverseRoutes is Phase B for the multi-criterion variant (spec.md §4.2
// steps 1-3), keeping a running route bag per (route, boarding stop).
func (e *McRAPTOR) traverseRoutes(prevBag, curBag []criteria.Bag, q map[*timetable.Route]*timetable.Stop, bestLabels map[timetable.StopIndex]*criteria.MultiCriteriaLabel) (stopSet, error) {
	marked := stopSet{}
	for route, boardingStop := range q {
		pos := route.StopIndexInRoute(boardingStop)
		routeBag := criteria.NewBag()

		for i := pos; i < len(route.Stops); i++ {
			stop := route.Stops[i]

			advanced := criteria.NewBag()
			for _, l := range routeBag.Labels {
				if l.Trip == nil {
					continue
				}
				if _, ok := l.Trip.StopTime(stop); !ok {
					continue
				}
				updated, err := l.Update(criteria.LabelUpdate{
					BoardingStop: l.BoardingStop, ArrivalStop: stop,
					OldTrip: l.Trip, NewTrip: l.Trip, BestLabels: bestLabels,
				})
				if err != nil {
					return nil, err
				}
				advanced.Add(updated)
			}
			routeBag = advanced

			merged, changed := curBag[stop.Index].Merge(routeBag)
			curBag[stop.Index] = merged
			if changed {
				marked.add(stop)
				updateBestLabel(bestLabels, stop, merged.BestLabel())
			}

			routeBag, _ = routeBag.Merge(prevBag[stop.Index])
			rebounded := criteria.NewBag()
			for _, l := range routeBag.Labels {
				trip := route.EarliestTrip(l.EarliestArrivalTime(), stop)
				if trip == nil {
					continue
				}
				if trip != l.Trip {
					reboarded, err := l.Update(criteria.LabelUpdate{
						BoardingStop: stop, ArrivalStop: stop,
						OldTrip: l.Trip, NewTrip: trip, BestLabels: bestLabels,
					})
					if err != nil {
						return nil, err
					}
					rebounded.Add(reboarded)
				} else {
					rebounded.Add(l)
				}
			}
			routeBag = rebounded
		}
	}
	return marked, nil
}

// relaxTransfers is Phase C: for every marked stop's outgoing transfer and
// every label in its bag, create a candidate TransferTrip label and merge
// it into the destination bag.
func (e *McRAPTOR) relaxTransfers(bag []criteria.Bag, marked stopSet, bestLabels map[timetable.StopIndex]*criteria.MultiCriteriaLabel) (stopSet, error) {
	next := stopSet{}
	for idx, stop := range marked {
		for _, l := range bag[idx].Labels {
			for _, tr := range e.tt.TransfersWithFrom(stop) {
				arr := l.EarliestArrivalTime() + timetable.SecondsPastMidnight(tr.TransferTimeSecs)
				transferTrip := timetable.NewTransferTrip(stop, tr.ToStop, l.EarliestArrivalTime(), arr, tr.TransportType)
				updated, err := l.Update(criteria.LabelUpdate{
					BoardingStop: stop, ArrivalStop: tr.ToStop,
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

func updateBestLabel(bestLabels map[timetable.StopIndex]*criteria.MultiCriteriaLabel, stop *timetable.Stop, candidate *criteria.MultiCriteriaLabel) {
	if candidate == nil {
		return
	}
	if prev, ok := bestLabels[stop.Index]; !ok || candidate.TotalCost() < prev.TotalCost() {
		bestLabels[stop.Index] = candidate
	}
}
