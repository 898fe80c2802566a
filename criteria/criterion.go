// Package criteria implements the label/criterion/bag machinery shared by
// the three round-engine variants: single-criterion Label, multi-criterion
// Criterion kinds and MultiCriteriaLabel, and the Bag/Pareto-set filter.
package criteria

import (
	"math"

	"github.com/pkg/errors"

	"github.com/gotransit/raptor/timetable"
)

// Name identifies one of the four supported criterion kinds. Kept as a
// closed set of string constants rather than an open interface hierarchy,
// per the REDESIGN FLAGS note on treating criteria as a tagged sum type.
type Name string

const (
	NameArrivalTime Name = "arrival_time"
	NameTransfers   Name = "transfers_count"
	NameDistance    Name = "distance_km"
	NameEmissions   Name = "emissions_g_per_pkm"
)

// ErrMissingCriterion indicates a DistanceCriterion (or EmissionsCriterion)
// update was invoked without a predecessor label carrying the same
// criterion kind in LabelUpdate.BestLabels. Fatal: a construction bug, not
// a data problem (spec.md §7).
var ErrMissingCriterion = errors.New("criteria: missing predecessor criterion in best_labels")

// LabelUpdate threads everything a Criterion.Update call needs explicitly --
// no hidden global best_bag reference, per the REDESIGN FLAGS note.
type LabelUpdate struct {
	BoardingStop *timetable.Stop
	ArrivalStop  *timetable.Stop
	OldTrip      *timetable.Trip
	NewTrip      *timetable.Trip
	BestLabels   map[timetable.StopIndex]*MultiCriteriaLabel
}

func (u LabelUpdate) bestLabelAt(stop *timetable.Stop) (*MultiCriteriaLabel, bool) {
	l, ok := u.BestLabels[stop.Index]
	return l, ok
}

// Criterion is one scored dimension of a MultiCriteriaLabel. Weight and
// UpperBound are configuration; RawValue is state accumulated along the
// journey; Cost is the normalized, possibly-infinite contribution to
// total_cost.
type Criterion interface {
	Name() Name
	Weight() float64
	RawValue() float64
	UpperBound() float64
	Cost() float64
	// Update returns a new Criterion reflecting boarding a (possibly
	// different) trip, per the rules in spec.md §4.2.1.
	Update(u LabelUpdate) (Criterion, error)
}

func cost(weight, raw, upperBound float64) float64 {
	if upperBound <= 0 {
		return weight * raw
	}
	if raw > upperBound {
		return math.Inf(1)
	}
	return weight * raw / upperBound
}

// ArrivalTimeCriterion tracks the stop-time arrival seconds of the trip
// currently boarded.
type ArrivalTimeCriterion struct {
	weight, raw, upperBound float64
}

func NewArrivalTimeCriterion(weight, upperBound float64, initial timetable.SecondsPastMidnight) *ArrivalTimeCriterion {
	return &ArrivalTimeCriterion{weight: weight, upperBound: upperBound, raw: float64(initial)}
}

func (c *ArrivalTimeCriterion) Name() Name          { return NameArrivalTime }
func (c *ArrivalTimeCriterion) Weight() float64      { return c.weight }
func (c *ArrivalTimeCriterion) RawValue() float64    { return c.raw }
func (c *ArrivalTimeCriterion) UpperBound() float64  { return c.upperBound }
func (c *ArrivalTimeCriterion) Cost() float64        { return cost(c.weight, c.raw, c.upperBound) }

func (c *ArrivalTimeCriterion) Update(u LabelUpdate) (Criterion, error) {
	st, ok := u.NewTrip.StopTime(u.ArrivalStop)
	if !ok {
		return nil, errors.Errorf("criteria: new trip does not stop at arrival stop %q", u.ArrivalStop.ID)
	}
	return &ArrivalTimeCriterion{weight: c.weight, upperBound: c.upperBound, raw: float64(st.ArrivalSeconds)}, nil
}

// TransfersCriterion counts boardings, excluding same-station transfers.
type TransfersCriterion struct {
	weight, raw, upperBound float64
}

func NewTransfersCriterion(weight, upperBound float64) *TransfersCriterion {
	return &TransfersCriterion{weight: weight, upperBound: upperBound}
}

func (c *TransfersCriterion) Name() Name         { return NameTransfers }
func (c *TransfersCriterion) Weight() float64     { return c.weight }
func (c *TransfersCriterion) RawValue() float64   { return c.raw }
func (c *TransfersCriterion) UpperBound() float64 { return c.upperBound }
func (c *TransfersCriterion) Cost() float64       { return cost(c.weight, c.raw, c.upperBound) }

func (c *TransfersCriterion) Update(u LabelUpdate) (Criterion, error) {
	raw := c.raw
	addsNewLeg := u.NewTrip != u.OldTrip
	if addsNewLeg && u.NewTrip != nil && u.NewTrip.IsSameStationTransfer() {
		addsNewLeg = false
	}
	if addsNewLeg {
		raw = c.raw + 1
	}
	return &TransfersCriterion{weight: c.weight, upperBound: c.upperBound, raw: raw}, nil
}

// DistanceCriterion tracks cumulative travelled distance in kilometers.
type DistanceCriterion struct {
	weight, raw, upperBound float64
}

func NewDistanceCriterion(weight, upperBound float64) *DistanceCriterion {
	return &DistanceCriterion{weight: weight, upperBound: upperBound}
}

func (c *DistanceCriterion) Name() Name         { return NameDistance }
func (c *DistanceCriterion) Weight() float64     { return c.weight }
func (c *DistanceCriterion) RawValue() float64   { return c.raw }
func (c *DistanceCriterion) UpperBound() float64 { return c.upperBound }
func (c *DistanceCriterion) Cost() float64       { return cost(c.weight, c.raw, c.upperBound) }

func (c *DistanceCriterion) Update(u LabelUpdate) (Criterion, error) {
	prev, ok := u.bestLabelAt(u.BoardingStop)
	if !ok {
		return nil, errors.Wrapf(ErrMissingCriterion, "no best label recorded at boarding stop %q", u.BoardingStop.ID)
	}
	prevDist, ok := findCriterion[*DistanceCriterion](prev, NameDistance)
	if !ok {
		return nil, errors.Wrapf(ErrMissingCriterion, "best label at %q carries no distance criterion", u.BoardingStop.ID)
	}
	sameTripDistance := u.NewTrip.CumulativeDistanceKm(u.ArrivalStop) - u.NewTrip.CumulativeDistanceKm(u.BoardingStop)
	return &DistanceCriterion{weight: c.weight, upperBound: c.upperBound, raw: prevDist.raw + sameTripDistance}, nil
}

// EmissionsCriterion tracks cumulative grams CO2 per passenger-km.
type EmissionsCriterion struct {
	weight, raw, upperBound float64
}

func NewEmissionsCriterion(weight, upperBound float64) *EmissionsCriterion {
	return &EmissionsCriterion{weight: weight, upperBound: upperBound}
}

func (c *EmissionsCriterion) Name() Name         { return NameEmissions }
func (c *EmissionsCriterion) Weight() float64     { return c.weight }
func (c *EmissionsCriterion) RawValue() float64   { return c.raw }
func (c *EmissionsCriterion) UpperBound() float64 { return c.upperBound }
func (c *EmissionsCriterion) Cost() float64       { return cost(c.weight, c.raw, c.upperBound) }

func (c *EmissionsCriterion) Update(u LabelUpdate) (Criterion, error) {
	prev, ok := u.bestLabelAt(u.BoardingStop)
	if !ok {
		return nil, errors.Wrapf(ErrMissingCriterion, "no best label recorded at boarding stop %q", u.BoardingStop.ID)
	}
	prevEm, ok := findCriterion[*EmissionsCriterion](prev, NameEmissions)
	if !ok {
		return nil, errors.Wrapf(ErrMissingCriterion, "best label at %q carries no emissions criterion", u.BoardingStop.ID)
	}
	sameTripDistance := u.NewTrip.CumulativeDistanceKm(u.ArrivalStop) - u.NewTrip.CumulativeDistanceKm(u.BoardingStop)
	factor := u.NewTrip.RouteInfo.TransportType.EmissionFactor()
	return &EmissionsCriterion{weight: c.weight, upperBound: c.upperBound, raw: prevEm.raw + sameTripDistance*factor}, nil
}

func findCriterion[T Criterion](l *MultiCriteriaLabel, name Name) (T, bool) {
	var zero T
	for _, c := range l.Criteria {
		if c.Name() == name {
			if typed, ok := c.(T); ok {
				return typed, true
			}
		}
	}
	return zero, false
}
