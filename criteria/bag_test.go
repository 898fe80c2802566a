package criteria_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gotransit/raptor/criteria"
)

func label(arrival, transfers float64) *criteria.MultiCriteriaLabel {
	return &criteria.MultiCriteriaLabel{
		Criteria: []criteria.Criterion{
			&fakeCriterion{name: criteria.NameArrivalTime, raw: arrival},
			&fakeCriterion{name: criteria.NameTransfers, raw: transfers},
		},
	}
}

// fakeCriterion lets bag tests construct labels with arbitrary raw/cost
// values without going through a full Update chain.
type fakeCriterion struct {
	name criteria.Name
	raw  float64
}

func (f *fakeCriterion) Name() criteria.Name  { return f.name }
func (f *fakeCriterion) Weight() float64       { return 1 }
func (f *fakeCriterion) RawValue() float64     { return f.raw }
func (f *fakeCriterion) UpperBound() float64   { return math.Inf(1) }
func (f *fakeCriterion) Cost() float64         { return f.raw }
func (f *fakeCriterion) Update(criteria.LabelUpdate) (criteria.Criterion, error) {
	return f, nil
}

func TestParetoSetDropsDominated(t *testing.T) {
	l1 := label(100, 0)
	l2 := label(150, 1) // dominated by l1 on both criteria
	set := criteria.ParetoSet([]*criteria.MultiCriteriaLabel{l1, l2}, false)
	require.Len(t, set, 1)
	require.Same(t, l1, set[0])
}

func TestParetoSetKeepsNonDominatedTradeoffs(t *testing.T) {
	fast := label(100, 2)
	fewerTransfers := label(200, 0)
	set := criteria.ParetoSet([]*criteria.MultiCriteriaLabel{fast, fewerTransfers}, false)
	require.Len(t, set, 2)
}

func TestBagMergeReportsUpdated(t *testing.T) {
	bag := criteria.NewBag()
	bag.Add(label(200, 1))

	other := criteria.NewBag()
	other.Add(label(100, 0))

	merged, updated := bag.Merge(other)
	require.True(t, updated)
	require.Len(t, merged.Labels, 1)
}

func TestBagMergeNotUpdatedWhenNoImprovement(t *testing.T) {
	bag := criteria.NewBag()
	bag.Add(label(100, 0))

	other := criteria.NewBag()
	other.Add(label(200, 1))

	merged, updated := bag.Merge(other)
	require.False(t, updated)
	require.Len(t, merged.Labels, 1)
}

func TestBagBestLabelMinimizesTotalCost(t *testing.T) {
	bag := criteria.NewBag()
	bag.Add(label(100, 5))
	bag.Add(label(50, 1))
	best := bag.BestLabel()
	require.Equal(t, 51.0, best.TotalCost())
}
