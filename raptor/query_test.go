package raptor_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotransit/raptor/criteria"
	"github.com/gotransit/raptor/internal/fixture"
	"github.com/gotransit/raptor/raptor"
	"github.com/gotransit/raptor/sharedmobility"
	"github.com/gotransit/raptor/timetable"
)

func strPtr(s string) *string { return &s }

// Scenario 1: direct A->F journey, a single leg on one trip, arrival 08:50,
// transfers=0.
func TestScenario1DirectJourney(t *testing.T) {
	tt, _ := fixture.SixStationLine()

	results, err := raptor.Run(context.Background(), tt, raptor.Query{
		FromStationID: "A",
		ToStationID:   strPtr("F"),
		DepartureTime: 8 * 3600,
		Rounds:        4,
		Variant:       raptor.VariantEarliestArrival,
	})
	require.NoError(t, err)

	journey, ok := results["F"]
	require.True(t, ok, "F must be reachable")
	assert.Equal(t, timetable.SecondsPastMidnight(8*3600+50*60), journey.ArrivalTime())
	assert.Equal(t, 0, transfersUsed(*journey))
	assert.Equal(t, 1, journey.NumberOfTrips())
}

// Scenario 2: the origin is always reachable without boarding anything
// (checked with rounds=1 and no destination, since Run rejects rounds <= 0);
// with rounds=1, F becomes reachable with one boarding.
func TestScenario2RoundsBoundary(t *testing.T) {
	tt, _ := fixture.SixStationLine()

	resultsZero, err := raptor.Run(context.Background(), tt, raptor.Query{
		FromStationID: "A",
		DepartureTime: 8 * 3600,
		Rounds:        1,
		Variant:       raptor.VariantEarliestArrival,
	})
	require.NoError(t, err)
	_, reachableAtZeroBoardings := resultsZero["A"]
	assert.True(t, reachableAtZeroBoardings, "origin is always reachable via a journey with no ride")

	resultsOne, err := raptor.Run(context.Background(), tt, raptor.Query{
		FromStationID: "A",
		ToStationID:   strPtr("F"),
		DepartureTime: 8 * 3600,
		Rounds:        1,
		Variant:       raptor.VariantEarliestArrival,
	})
	require.NoError(t, err)
	_, ok := resultsOne["F"]
	assert.True(t, ok, "F needs exactly one boarding, so rounds=1 reaches it")
}

// Scenario 3: a 120s walking transfer B<->C plus a faster parallel trip
// C->D->E->F departing 08:12 should produce a 2-trip journey including the
// transfer leg.
func TestScenario3TransferAndParallelTrip(t *testing.T) {
	tt, _ := fixture.SixStationLineWithTransferAndParallelTrip()

	results, err := raptor.Run(context.Background(), tt, raptor.Query{
		FromStationID: "A",
		ToStationID:   strPtr("F"),
		DepartureTime: 8 * 3600,
		Rounds:        2,
		Variant:       raptor.VariantEarliestArrival,
	})
	require.NoError(t, err)

	journey, ok := results["F"]
	require.True(t, ok)
	assert.Equal(t, 2, journey.NumberOfTrips())

	foundTransferLeg := false
	for _, leg := range journey.Legs {
		if leg.IsTransfer() && leg.FromStop.ID == "B" && leg.ToStop.ID == "C" {
			foundTransferLeg = true
			assert.Equal(t, timetable.SecondsPastMidnight(120), leg.ArrivalTime-leg.DepartureTime)
		}
	}
	assert.True(t, foundTransferLeg, "expected a B->C transfer leg in the reconstructed journey")
}

// Scenario 4: multi-criterion weights {arrival:1.0, transfers:0.5,
// distance:0.5, emissions:1.0} over a direct high-emissions bus and a
// slower, lower-emissions rail path. The Pareto set must contain both; the
// query's single winner per station must be the one with lowest total cost.
func TestScenario4MultiCriterionParetoTradeoff(t *testing.T) {
	tt, _ := fixture.SixStationBusVsRail()
	weights := []criteria.Weighted{
		{Name: criteria.NameArrivalTime, Weight: 1.0, UpperBound: math.Inf(1)},
		{Name: criteria.NameTransfers, Weight: 0.5, UpperBound: math.Inf(1)},
		{Name: criteria.NameDistance, Weight: 0.5, UpperBound: math.Inf(1)},
		{Name: criteria.NameEmissions, Weight: 1.0, UpperBound: math.Inf(1)},
	}

	fromStation, ok := tt.Station("A")
	require.True(t, ok)
	destStop, ok := tt.Stop("F")
	require.True(t, ok)

	engine := raptor.NewMcRAPTOR(tt, weights)
	bagRoundStop, err := engine.Run(context.Background(), fromStation.Stops, 8*3600, 2)
	require.NoError(t, err)
	finalRound := bagRoundStop[len(bagRoundStop)-1]

	origins := map[timetable.StopIndex]bool{}
	for _, s := range fromStation.Stops {
		origins[s.Index] = true
	}
	journeys := raptor.ReconstructMultiCriterion(finalRound, []*timetable.Stop{destStop}, origins)
	require.Len(t, journeys, 2, "bus and rail should both survive as non-dominated tradeoffs")

	var bus, rail *raptor.Journey
	for i := range journeys {
		j := journeys[i]
		if j.NumberOfTrips() == 1 && j.Legs[0].Trip.RouteInfo.Name == "express-bus" {
			bus = &journeys[i]
		}
		if j.Legs[0].Trip.RouteInfo.Name == "line-1" {
			rail = &journeys[i]
		}
	}
	require.NotNil(t, bus)
	require.NotNil(t, rail)
	assert.True(t, bus.ArrivalTime() < rail.ArrivalTime(), "bus arrives sooner")

	results, err := raptor.Run(context.Background(), tt, raptor.Query{
		FromStationID: "A",
		ToStationID:   strPtr("F"),
		DepartureTime: 8 * 3600,
		Rounds:        2,
		Variant:       raptor.VariantMcRAPTOR,
		Criteria:      weights,
	})
	require.NoError(t, err)
	winner, ok := results["F"]
	require.True(t, ok)

	var busCost, railCost float64
	for _, c := range bus.Legs[len(bus.Legs)-1].Criteria {
		busCost += c.Cost()
	}
	for _, c := range rail.Legs[len(rail.Legs)-1].Criteria {
		railCost += c.Cost()
	}
	var winnerCost float64
	for _, c := range winner.Legs[len(winner.Legs)-1].Criteria {
		winnerCost += c.Cost()
	}
	assert.Equal(t, math.Min(busCost, railCost), winnerCost)
}

// Scenario 5: a bike vehicle transfer R1->R2 shortcuts the transit path; if
// R2 is marked no_destination, the shortcut is suppressed and a transit-only
// journey is returned instead.
func TestScenario5SharedMobilityShortcutAndNoDestinationSuppression(t *testing.T) {
	tt, _ := fixture.SixStationLineWithSharedMobility()

	feed := sharedmobility.NewStaticFeed(sharedmobility.Snapshot{
		SystemID: "citybike",
		Stations: map[string]sharedmobility.StationStatus{
			"R1": {IsInstalled: true, IsRenting: true, IsReturning: true, VehiclesAvailable: 4, DocksAvailable: 4},
			"R2": {IsInstalled: true, IsRenting: true, IsReturning: true, VehiclesAvailable: 2, DocksAvailable: 6},
		},
	})

	results, err := raptor.Run(context.Background(), tt, raptor.Query{
		FromStationID: "A",
		ToStationID:   strPtr("F"),
		DepartureTime: 8 * 3600,
		Rounds:        3,
		Variant:       raptor.VariantSharedMobilityMcRAPTOR,
		SharedMobility: &raptor.SMConfig{Feeds: []sharedmobility.Feed{feed}},
	})
	require.NoError(t, err)
	journey, ok := results["F"]
	require.True(t, ok)

	var sawVehicleTransfer bool
	for _, leg := range journey.Legs {
		if leg.IsTransfer() && leg.Trip.RouteInfo.TransportType == timetable.Bike {
			sawVehicleTransfer = true
		}
	}
	assert.True(t, sawVehicleTransfer, "expected the R1->R2 bike vehicle transfer to shortcut the journey")

	// Now mark R2 as no_destination by zeroing its returnability.
	feedNoDest := sharedmobility.NewStaticFeed(sharedmobility.Snapshot{
		SystemID: "citybike",
		Stations: map[string]sharedmobility.StationStatus{
			"R1": {IsInstalled: true, IsRenting: true, IsReturning: true, VehiclesAvailable: 4, DocksAvailable: 4},
			"R2": {IsInstalled: true, IsRenting: true, IsReturning: false, VehiclesAvailable: 2, DocksAvailable: 6},
		},
	})
	resultsSuppressed, err := raptor.Run(context.Background(), tt, raptor.Query{
		FromStationID: "A",
		ToStationID:   strPtr("F"),
		DepartureTime: 8 * 3600,
		Rounds:        3,
		Variant:       raptor.VariantSharedMobilityMcRAPTOR,
		SharedMobility: &raptor.SMConfig{Feeds: []sharedmobility.Feed{feedNoDest}},
	})
	require.NoError(t, err)
	suppressed, ok := resultsSuppressed["F"]
	require.True(t, ok)
	for _, leg := range suppressed.Legs {
		assert.False(t, leg.IsTransfer() && leg.Trip.RouteInfo.TransportType == timetable.Bike,
			"no_destination must suppress the vehicle-transfer shortcut")
	}
}

func transfersUsed(j raptor.Journey) int {
	n := 0
	for _, leg := range j.Legs {
		if leg.IsTransfer() {
			n++
		}
	}
	return n
}

func TestRunRejectsUnknownOriginStation(t *testing.T) {
	tt, _ := fixture.SixStationLine()
	_, err := raptor.Run(context.Background(), tt, raptor.Query{
		FromStationID: "nonexistent",
		DepartureTime: 8 * 3600,
		Rounds:        1,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, raptor.ErrConfiguration)
}

func TestRunRejectsNonPositiveRounds(t *testing.T) {
	tt, _ := fixture.SixStationLine()
	_, err := raptor.Run(context.Background(), tt, raptor.Query{
		FromStationID: "A",
		DepartureTime: 8 * 3600,
		Rounds:        0,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, raptor.ErrConfiguration)
}

func TestRunIsDeterministicAcrossRepeatedCalls(t *testing.T) {
	tt, _ := fixture.SixStationLine()
	q := raptor.Query{
		FromStationID: "A",
		ToStationID:   strPtr("F"),
		DepartureTime: 8 * 3600,
		Rounds:        4,
		Variant:       raptor.VariantEarliestArrival,
	}

	first, err := raptor.Run(context.Background(), tt, q)
	require.NoError(t, err)
	second, err := raptor.Run(context.Background(), tt, q)
	require.NoError(t, err)

	assert.Equal(t, first["F"].ArrivalTime(), second["F"].ArrivalTime())
	assert.Equal(t, first["F"].NumberOfTrips(), second["F"].NumberOfTrips())
}
