package raptor

import (
	"github.com/gotransit/raptor/criteria"
	"github.com/gotransit/raptor/timetable"
)

// legDeparture returns trip's departure at from, or arrival itself for a
// zero-leg/no-trip placeholder.
func legDeparture(trip *timetable.Trip, from *timetable.Stop, arrival timetable.SecondsPastMidnight) timetable.SecondsPastMidnight {
	if trip == nil {
		return arrival
	}
	if st, ok := trip.StopTime(from); ok {
		return st.DepartureSeconds
	}
	return arrival
}

// ReconstructSingleCriterion walks the final round's Label bag back from
// destStop to its origin (spec.md §4.6, single-criterion specialization).
// Because a Label bag holds a single total-ordered winner per stop and
// copy-then-improve propagates every improvement forward, the final round's
// bag alone is sufficient to walk the whole chain.
func ReconstructSingleCriterion(finalRound []criteria.Label, destStop *timetable.Stop) (Journey, bool) {
	cur := finalRound[destStop.Index]
	if cur.ArrivalTime == criteria.InfiniteLabel().ArrivalTime {
		return Journey{}, false
	}

	curStop := destStop
	var legs []Leg
	for cur.Trip != nil {
		boarding := cur.BoardingStop
		leg := Leg{
			FromStop:      boarding,
			ToStop:        curStop,
			Trip:          cur.Trip,
			DepartureTime: legDeparture(cur.Trip, boarding, cur.ArrivalTime),
			ArrivalTime:   cur.ArrivalTime,
		}
		legs = append([]Leg{leg}, legs...)
		if boarding.Index == curStop.Index {
			break
		}
		curStop = boarding
		cur = finalRound[boarding.Index]
	}

	if len(legs) == 0 {
		// origin == destination: no ride, represented as one trip-less leg
		// whose arrival == dep_secs (§8 boundary case)
		legs = []Leg{{FromStop: destStop, ToStop: destStop, DepartureTime: cur.ArrivalTime, ArrivalTime: cur.ArrivalTime}}
	}
	return Journey{Legs: legs}, true
}

// compatibleBefore implements the §4.6 step-3 compatibility predicate: the
// predecessor must carry every criterion of the leg it is being prepended
// to, each with a cost no greater than that leg's.
func compatibleBefore(predecessor, current *criteria.MultiCriteriaLabel) bool {
	for _, c := range current.Criteria {
		pc, ok := findCriterionByName(predecessor, c.Name())
		if !ok {
			return false
		}
		if pc.Cost() > c.Cost() {
			return false
		}
	}
	return true
}

func findCriterionByName(l *criteria.MultiCriteriaLabel, name criteria.Name) (criteria.Criterion, bool) {
	for _, c := range l.Criteria {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// strictProgress is the REDESIGN FLAGS guard: a predecessor must differ
// from the leg it's prepended to by trip or by boarding stop, preventing
// zero-progress prepend loops.
func strictProgress(predecessor *criteria.MultiCriteriaLabel, currentTrip *timetable.Trip, currentBoardingStop *timetable.Stop) bool {
	return predecessor.Trip != currentTrip || predecessor.BoardingStop != currentBoardingStop
}

// ReconstructMultiCriterion produces the validated, Pareto-filtered set of
// Journeys to destStops out of the final round's Bag (spec.md §4.6).
// originStops marks where prepending must stop.
func ReconstructMultiCriterion(finalRound []criteria.Bag, destStops []*timetable.Stop, originStops map[timetable.StopIndex]bool) []Journey {
	type labelAt struct {
		label *criteria.MultiCriteriaLabel
		stop  *timetable.Stop
	}

	var candidates []*criteria.MultiCriteriaLabel
	var withStop []labelAt
	for _, stop := range destStops {
		for _, l := range finalRound[stop.Index].LabelsWithTrip() {
			candidates = append(candidates, l)
			withStop = append(withStop, labelAt{label: l, stop: stop})
		}
		// origin == destination boundary case: a trip-less label at a
		// destination stop that is also an origin still yields a journey.
		if originStops[stop.Index] {
			for _, l := range finalRound[stop.Index].Labels {
				if l.Trip == nil {
					candidates = append(candidates, l)
					withStop = append(withStop, labelAt{label: l, stop: stop})
				}
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	paretoLabels := criteria.ParetoSet(candidates, false)
	survives := make(map[*criteria.MultiCriteriaLabel]bool, len(paretoLabels))
	for _, l := range paretoLabels {
		survives[l] = true
	}

	var journeys []Journey
	for _, la := range withStop {
		if !survives[la.label] {
			continue
		}
		terminal := Leg{
			FromStop:      la.label.BoardingStop,
			ToStop:        la.stop,
			Trip:          la.label.Trip,
			DepartureTime: legDeparture(la.label.Trip, la.label.BoardingStop, la.label.EarliestArrivalTime()),
			ArrivalTime:   la.label.EarliestArrivalTime(),
			Criteria:      la.label.Criteria,
		}
		legs := prependLegs(finalRound, []Leg{terminal}, originStops)
		if !validateJourney(legs) {
			continue
		}
		journeys = append(journeys, stripSameStationLegs(Journey{Legs: legs}))
	}
	return journeys
}

// prependLegs is §4.6 step 3: walk backwards from legs[0], recursing while
// the leading leg has a trip and its boarding stop is not an origin.
func prependLegs(finalRound []criteria.Bag, legs []Leg, originStops map[timetable.StopIndex]bool) []Leg {
	current := legs[0]
	for current.Trip != nil && !originStops[current.FromStop.Index] {
		boardingStop := current.FromStop
		var chosen *criteria.MultiCriteriaLabel
		for _, candidate := range finalRound[boardingStop.Index].Labels {
			if candidate.Trip == nil && !originStops[boardingStop.Index] {
				continue
			}
			if len(current.Criteria) > 0 && !compatibleBefore(candidate, &criteria.MultiCriteriaLabel{Criteria: current.Criteria}) {
				continue
			}
			if !strictProgress(candidate, current.Trip, current.FromStop) {
				continue
			}
			chosen = candidate
			break
		}
		if chosen == nil {
			break
		}
		predecessor := Leg{
			FromStop:      chosen.BoardingStop,
			ToStop:        boardingStop,
			Trip:          chosen.Trip,
			DepartureTime: legDeparture(chosen.Trip, chosen.BoardingStop, chosen.EarliestArrivalTime()),
			ArrivalTime:   chosen.EarliestArrivalTime(),
			Criteria:      chosen.Criteria,
		}
		legs = append([]Leg{predecessor}, legs...)
		current = predecessor
	}
	return legs
}

// validateJourney is §4.6 step 4's chain check: every adjacent pair of legs
// must satisfy leg[i].arrival <= leg[i+1].departure.
func validateJourney(legs []Leg) bool {
	for i := 0; i+1 < len(legs); i++ {
		if legs[i].ArrivalTime > legs[i+1].DepartureTime {
			return false
		}
	}
	return true
}

// stripSameStationLegs removes empty or same-station-transfer legs (§4.6
// step 4).
func stripSameStationLegs(j Journey) Journey {
	var kept []Leg
	for _, leg := range j.Legs {
		if leg.Trip != nil && leg.Trip.IsSameStationTransfer() {
			continue
		}
		if leg.FromStop == leg.ToStop && leg.Trip == nil && len(j.Legs) > 1 {
			continue
		}
		kept = append(kept, leg)
	}
	return Journey{Legs: kept}
}
