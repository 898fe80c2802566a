package raptor

import (
	"github.com/gotransit/raptor/criteria"
	"github.com/gotransit/raptor/timetable"
)

// Leg is one boarding_stop -> arrival_stop hop of a Journey, carrying the
// trip ridden (or TransferTrip walked/pedalled) and, for multi-criterion
// runs, the label's criteria at the time this leg was reconstructed
// (spec.md §4.6 step 2). Criteria is nil for single-criterion journeys.
type Leg struct {
	FromStop      *timetable.Stop
	ToStop        *timetable.Stop
	Trip          *timetable.Trip
	DepartureTime timetable.SecondsPastMidnight
	ArrivalTime   timetable.SecondsPastMidnight
	Criteria      []criteria.Criterion
}

// IsTransfer reports whether this leg rides a synthetic TransferTrip rather
// than a timetable trip.
func (l Leg) IsTransfer() bool {
	return l.Trip != nil && l.Trip.IsTransfer
}

// Journey is an ordered sequence of Legs from an origin stop to a
// destination stop, produced by reconstruction (spec.md §4.6).
type Journey struct {
	Legs []Leg
}

// NumberOfTrips counts boardings of a real timetable trip, excluding
// transfer legs -- ported from pyraptor's Journey.number_of_trips
// (SPEC_FULL.md §10).
func (j Journey) NumberOfTrips() int {
	n := 0
	for _, leg := range j.Legs {
		if leg.Trip != nil && !leg.Trip.IsTransfer {
			n++
		}
	}
	return n
}

// TravelTime is the elapsed time between the first leg's departure and the
// last leg's arrival, or 0 for an empty journey.
func (j Journey) TravelTime() timetable.SecondsPastMidnight {
	if len(j.Legs) == 0 {
		return 0
	}
	first := j.Legs[0]
	last := j.Legs[len(j.Legs)-1]
	return last.ArrivalTime - first.DepartureTime
}

// DepartureTime returns the first leg's departure time, or 0 for an empty
// journey.
func (j Journey) DepartureTime() timetable.SecondsPastMidnight {
	if len(j.Legs) == 0 {
		return 0
	}
	return j.Legs[0].DepartureTime
}

// ArrivalTime returns the last leg's arrival time, or 0 for an empty
// journey.
func (j Journey) ArrivalTime() timetable.SecondsPastMidnight {
	if len(j.Legs) == 0 {
		return 0
	}
	return j.Legs[len(j.Legs)-1].ArrivalTime
}

// totalCost sums the criterion costs of the final leg's snapshot; callers
// only use this when legs carry criteria (multi-criterion journeys).
func (j Journey) totalCost() float64 {
	if len(j.Legs) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range j.Legs[len(j.Legs)-1].Criteria {
		total += c.Cost()
	}
	return total
}

// Dominates is weighted-sum dominance over whole journeys (spec.md §4.3.2),
// ported from pyraptor's Journey.dominates: for multi-criterion journeys it
// compares total cost off the final leg's criteria snapshot; for
// single-criterion journeys (no criteria carried) it falls back to
// comparing arrival time.
func (j Journey) Dominates(other Journey) bool {
	if len(j.Legs) > 0 && len(j.Legs[len(j.Legs)-1].Criteria) > 0 {
		return j.totalCost() <= other.totalCost()
	}
	return j.ArrivalTime() <= other.ArrivalTime()
}
