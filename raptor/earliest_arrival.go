package raptor

import (
	"context"

	"github.com/gotransit/raptor/criteria"
	"github.com/gotransit/raptor/timetable"
)

// EarliestArrivalRAPTOR is the single-criterion variant: one Label per
// (round, stop), total-ordered by arrival time (spec.md §4.3's
// single-criterion dominance collapses the Bag to a single winner).
type EarliestArrivalRAPTOR struct {
	tt *timetable.Timetable
}

func NewEarliestArrivalRAPTOR(tt *timetable.Timetable) *EarliestArrivalRAPTOR {
	return &EarliestArrivalRAPTOR{tt: tt}
}

// Run executes the round loop and returns bag_round_stop as
// [round][stop index]Label, truncated at the last completed round if ctx
// is cancelled between rounds (spec.md §5).
func (e *EarliestArrivalRAPTOR) Run(ctx context.Context, fromStops []*timetable.Stop, depSecs timetable.SecondsPastMidnight, rounds int) ([][]criteria.Label, error) {
	tt := e.tt
	stops := tt.Stops()

	bagRoundStop := make([][]criteria.Label, rounds+1)
	for k := range bagRoundStop {
		bag := make([]criteria.Label, len(stops))
		for i := range bag {
			bag[i] = criteria.InfiniteLabel()
		}
		bagRoundStop[k] = bag
	}

	marked := stopSet{}
	for _, stop := range fromStops {
		bagRoundStop[0][stop.Index] = criteria.Label{ArrivalTime: depSecs, BoardingStop: stop}
		marked.add(stop)
	}

	// immediate-transfer relaxation at k=0 (§4.2.2)
	transferMarked := e.relaxTransfers(bagRoundStop[0], marked)
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

		copy(bagRoundStop[k], bagRoundStop[k-1])

		q := accumulateMarkedRoutes(tt, marked)
		markedB := e.traverseRoutes(bagRoundStop[k-1], bagRoundStop[k], q)
		markedC := e.relaxTransfers(bagRoundStop[k], markedB)
		marked = unionStopSets(markedB, markedC)
	}

	return bagRoundStop, nil
}

// traverseRoutes is Phase B for the single-criterion variant: at each
// (route, boarding stop), ride the currently held trip forward, re-boarding
// a better trip at every stop when the previous round's arrival there would
// have caught one earlier.
func (e *EarliestArrivalRAPTOR) traverseRoutes(prevBag, curBag []criteria.Label, q map[*timetable.Route]*timetable.Stop) stopSet {
	marked := stopSet{}
	for route, boardingStop := range q {
		pos := route.StopIndexInRoute(boardingStop)
		var activeTrip *timetable.Trip
		var activeBoardingStop *timetable.Stop

		for i := pos; i < len(route.Stops); i++ {
			stop := route.Stops[i]

			if activeTrip != nil {
				if st, ok := activeTrip.StopTime(stop); ok && st.ArrivalSeconds < curBag[stop.Index].ArrivalTime {
					curBag[stop.Index] = criteria.Label{ArrivalTime: st.ArrivalSeconds, Trip: activeTrip, BoardingStop: activeBoardingStop}
					marked.add(stop)
				}
			}

			boardingThreshold := prevBag[stop.Index].ArrivalTime
			if activeTrip != nil {
				if st, ok := activeTrip.StopTime(stop); ok && st.ArrivalSeconds < boardingThreshold {
					boardingThreshold = st.ArrivalSeconds
				}
			}
			if candidate := route.EarliestTrip(boardingThreshold, stop); candidate != nil && candidate != activeTrip {
				activeTrip = candidate
				activeBoardingStop = stop
			}
		}
	}
	return marked
}

// relaxTransfers is Phase C (and the k=0 immediate-transfer pass): for
// every marked stop's outgoing transfer, improve the destination's label
// via a synthetic TransferTrip.
func (e *EarliestArrivalRAPTOR) relaxTransfers(bag []criteria.Label, marked stopSet) stopSet {
	next := stopSet{}
	for idx, stop := range marked {
		label := bag[idx]
		for _, tr := range e.tt.TransfersWithFrom(stop) {
			arr := label.ArrivalTime + timetable.SecondsPastMidnight(tr.TransferTimeSecs)
			if arr < bag[tr.ToStop.Index].ArrivalTime {
				transferTrip := timetable.NewTransferTrip(stop, tr.ToStop, label.ArrivalTime, arr, tr.TransportType)
				bag[tr.ToStop.Index] = criteria.Label{ArrivalTime: arr, Trip: transferTrip, BoardingStop: stop}
				next.add(tr.ToStop)
			}
		}
	}
	return next
}
