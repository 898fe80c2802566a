package criteria

import (
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/gotransit/raptor/timetable"
)

// Weighted is one configured criterion: its weight and the upper bound
// beyond which the criterion's cost becomes +Inf (spec.md §3).
type Weighted struct {
	Name       Name
	Weight     float64
	UpperBound float64
}

// DefaultWeights returns the four criteria, equally weighted with a
// practically unbounded upper bound -- a reasonable instance for tests and
// for callers that have no CriteriaProvider-equivalent config of their own.
func DefaultWeights() []Weighted {
	return []Weighted{
		{Name: NameArrivalTime, Weight: 1.0, UpperBound: math.Inf(1)},
		{Name: NameTransfers, Weight: 1.0, UpperBound: math.Inf(1)},
		{Name: NameDistance, Weight: 1.0, UpperBound: math.Inf(1)},
		{Name: NameEmissions, Weight: 1.0, UpperBound: math.Inf(1)},
	}
}

type weightEntry struct {
	Weight float64 `mapstructure:"weight"`
	Max    float64 `mapstructure:"max"`
}

// LoadWeights reads a YAML (or any viper-supported) config file mapping
// criterion name -> {weight, max} into a []Weighted, the Go equivalent of
// pyraptor's JSON-driven CriteriaProvider (see SPEC_FULL.md §10).
func LoadWeights(path string) ([]Weighted, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "criteria: reading weights config")
	}

	raw := map[string]weightEntry{}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, errors.Wrap(err, "criteria: decoding weights config")
	}

	var weights []Weighted
	for name, entry := range raw {
		weights = append(weights, Weighted{Name: Name(name), Weight: entry.Weight, UpperBound: entry.Max})
	}
	return weights, nil
}

// NewCriteria constructs the Criterion slice for an origin label given the
// configured weights and the run's departure time.
func NewCriteria(weights []Weighted, depSeconds timetable.SecondsPastMidnight) []Criterion {
	criteria := make([]Criterion, 0, len(weights))
	for _, w := range weights {
		switch w.Name {
		case NameArrivalTime:
			criteria = append(criteria, NewArrivalTimeCriterion(w.Weight, w.UpperBound, depSeconds))
		case NameTransfers:
			criteria = append(criteria, NewTransfersCriterion(w.Weight, w.UpperBound))
		case NameDistance:
			criteria = append(criteria, NewDistanceCriterion(w.Weight, w.UpperBound))
		case NameEmissions:
			criteria = append(criteria, NewEmissionsCriterion(w.Weight, w.UpperBound))
		}
	}
	return criteria
}
