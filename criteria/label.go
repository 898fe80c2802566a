package criteria

import (
	"math"

	"github.com/gotransit/raptor/timetable"
)

// Label is the single-criterion label used by earliest-arrival RAPTOR.
// Initial value at non-origin stops is +Inf arrival, no trip.
type Label struct {
	ArrivalTime  timetable.SecondsPastMidnight
	Trip         *timetable.Trip
	BoardingStop *timetable.Stop
}

func InfiniteLabel() Label {
	return Label{ArrivalTime: math.MaxInt64}
}

// IsDominating reports whether l reaches no later than other, per spec.md
// §4.3's single-criterion dominance rule.
func (l Label) IsDominating(other Label) bool {
	return l.ArrivalTime <= other.ArrivalTime
}

// Update advances the label to newTrip's arrival at arrivalStop.
func (l Label) Update(newTrip *timetable.Trip, arrivalStop, boardingStop *timetable.Stop) (Label, error) {
	st, ok := newTrip.StopTime(arrivalStop)
	if !ok {
		return Label{}, errMissingStopTime(arrivalStop)
	}
	return Label{ArrivalTime: st.ArrivalSeconds, Trip: newTrip, BoardingStop: boardingStop}, nil
}

// MultiCriteriaLabel carries one value per active Criterion plus the trip
// and boarding stop it was reached through.
type MultiCriteriaLabel struct {
	Trip         *timetable.Trip
	BoardingStop *timetable.Stop
	Criteria     []Criterion
}

// TotalCost sums every criterion's normalized cost; +Inf if any criterion
// breached its upper bound.
func (l *MultiCriteriaLabel) TotalCost() float64 {
	total := 0.0
	for _, c := range l.Criteria {
		total += c.Cost()
	}
	return total
}

// EarliestArrivalTime reads the ArrivalTimeCriterion out of Criteria.
func (l *MultiCriteriaLabel) EarliestArrivalTime() timetable.SecondsPastMidnight {
	for _, c := range l.Criteria {
		if c.Name() == NameArrivalTime {
			return timetable.SecondsPastMidnight(c.RawValue())
		}
	}
	return math.MaxInt64
}

// IsDominatingWeighted is the weighted-sum dominance relation (spec.md
// §4.3.2): used to pick a bag's best label and to compare final journeys.
func (l *MultiCriteriaLabel) IsDominatingWeighted(other *MultiCriteriaLabel) bool {
	return l.TotalCost() <= other.TotalCost() && l != other
}

// DominatesComponentwise is the componentwise Pareto relation (spec.md
// §4.3.1): used when building bag merges. Criteria are compared pairwise by
// Name on their raw values; a label missing a criterion the other carries
// never dominates on that dimension.
func (l *MultiCriteriaLabel) DominatesComponentwise(other *MultiCriteriaLabel) bool {
	strictlyBetterSomewhere := false
	for _, a := range l.Criteria {
		b, ok := findByName(other, a.Name())
		if !ok {
			continue
		}
		if a.RawValue() > b.RawValue() {
			return false
		}
		if a.RawValue() < b.RawValue() {
			strictlyBetterSomewhere = true
		}
	}
	return strictlyBetterSomewhere
}

// EqualOnCriteria reports whether l and other have identical raw values on
// every criterion -- used by ParetoSet to collapse equal labels when
// keep_equal is off.
func (l *MultiCriteriaLabel) EqualOnCriteria(other *MultiCriteriaLabel) bool {
	if len(l.Criteria) != len(other.Criteria) {
		return false
	}
	for _, a := range l.Criteria {
		b, ok := findByName(other, a.Name())
		if !ok || a.RawValue() != b.RawValue() {
			return false
		}
	}
	return true
}

// Update applies every criterion's own Update rule and, when u.NewTrip /
// u.BoardingStop are non-nil, replaces the label's trip and boarding stop.
func (l *MultiCriteriaLabel) Update(u LabelUpdate) (*MultiCriteriaLabel, error) {
	updated := make([]Criterion, len(l.Criteria))
	for i, c := range l.Criteria {
		nc, err := c.Update(u)
		if err != nil {
			return nil, err
		}
		updated[i] = nc
	}
	trip := l.Trip
	boardingStop := l.BoardingStop
	if u.NewTrip != nil {
		trip = u.NewTrip
	}
	if u.BoardingStop != nil {
		boardingStop = u.BoardingStop
	}
	return &MultiCriteriaLabel{Trip: trip, BoardingStop: boardingStop, Criteria: updated}, nil
}

func findByName(l *MultiCriteriaLabel, name Name) (Criterion, bool) {
	for _, c := range l.Criteria {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

func errMissingStopTime(stop *timetable.Stop) error {
	return &missingStopTimeError{stop: stop}
}

type missingStopTimeError struct {
	stop *timetable.Stop
}

func (e *missingStopTimeError) Error() string {
	return "criteria: trip does not stop at " + e.stop.ID
}
