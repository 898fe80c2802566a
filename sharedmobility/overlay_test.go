package sharedmobility_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gotransit/raptor/internal/fixture"
	"github.com/gotransit/raptor/sharedmobility"
	"github.com/gotransit/raptor/timetable"
)

func sharedMobilityFixture() (*timetable.Timetable, fixture.Stations) {
	return fixture.SixStationLineWithSharedMobility()
}

func staticFeed(systemID string, stations map[string]sharedmobility.StationStatus) *sharedmobility.StaticFeed {
	return sharedmobility.NewStaticFeed(sharedmobility.Snapshot{SystemID: systemID, Stations: stations})
}

func TestOverlayInitMarksNoSourceAndNoDestination(t *testing.T) {
	tt, stops := sharedMobilityFixture()

	feed := staticFeed("citybike", map[string]sharedmobility.StationStatus{
		stops["R1"]: {IsInstalled: true, IsRenting: false, IsReturning: true, VehiclesAvailable: 0, DocksAvailable: 8},
		stops["R2"]: {IsInstalled: true, IsRenting: true, IsReturning: true, VehiclesAvailable: 2, DocksAvailable: 6},
	})

	overlay := sharedmobility.NewOverlay(sharedmobility.Config{Feeds: []sharedmobility.Feed{feed}, EnableCar: false}, nil)
	r1, _ := tt.Stop(stops["R1"])
	r2, _ := tt.Stop(stops["R2"])

	overlay.Init(context.Background(), tt, nil)

	require.True(t, overlay.IsNoSource(r1), "R1 has zero vehicles available, cannot be a source")
	require.False(t, overlay.IsNoDestination(r1))
	require.False(t, overlay.IsNoSource(r2))
	require.False(t, overlay.IsNoDestination(r2))
}

func TestOverlayInitDegradesNonFatallyOnFailingFeed(t *testing.T) {
	tt, stops := sharedMobilityFixture()
	failing := &sharedmobility.FailingFeed{Err: assertErr}
	overlay := sharedmobility.NewOverlay(sharedmobility.Config{Feeds: []sharedmobility.Feed{failing}}, nil)

	require.NotPanics(t, func() {
		overlay.Init(context.Background(), tt, nil)
	})

	r1, _ := tt.Stop(stops["R1"])
	// no feed applied, so renting data falls back to the stop's static data
	require.NotNil(t, overlay.RentingData(r1))
}

func TestOverlayFilterRentingStationsAndNewlyVisited(t *testing.T) {
	tt, stops := sharedMobilityFixture()
	overlay := sharedmobility.NewOverlay(sharedmobility.Config{}, nil)
	overlay.Init(context.Background(), tt, nil)

	a, _ := tt.Stop(stops["A"])
	r1, _ := tt.Stop(stops["R1"])
	r2, _ := tt.Stop(stops["R2"])

	marked := overlay.FilterRentingStations([]*timetable.Stop{a, r1, r2})
	require.ElementsMatch(t, []*timetable.Stop{r1, r2}, marked)

	newStations := overlay.NewlyVisited(marked)
	require.ElementsMatch(t, []*timetable.Stop{r1, r2}, newStations)

	// calling again with the same set yields nothing new
	require.Empty(t, overlay.NewlyVisited(marked))
}

func TestOverlayGeneratesVehicleTransferBetweenSameSystemStations(t *testing.T) {
	tt, stops := sharedMobilityFixture()
	overlay := sharedmobility.NewOverlay(sharedmobility.Config{EnableCar: false}, nil)
	overlay.Init(context.Background(), tt, nil)

	r1, _ := tt.Stop(stops["R1"])
	r2, _ := tt.Stop(stops["R2"])

	transfers := overlay.GenerateVehicleTransfers(tt, []*timetable.Stop{r1}, []*timetable.Stop{r2})
	require.Len(t, transfers, 1)
	require.Equal(t, r1, transfers[0].FromStop)
	require.Equal(t, r2, transfers[0].ToStop)
	require.Equal(t, timetable.Bike, transfers[0].TransportType)
	require.Greater(t, transfers[0].TransferTimeSecs, 0)
}

func TestOverlaySkipsVehicleTransferWhenSystemsDiffer(t *testing.T) {
	tt, stops := sharedMobilityFixture()
	overlay := sharedmobility.NewOverlay(sharedmobility.Config{}, nil)
	overlay.Init(context.Background(), tt, nil)

	r1, _ := tt.Stop(stops["R1"])
	r2, _ := tt.Stop(stops["R2"])
	// override R2's renting data via a feed reporting a different system
	feed := staticFeed("other-system", map[string]sharedmobility.StationStatus{
		stops["R2"]: {IsInstalled: true, IsRenting: true, IsReturning: true, VehiclesAvailable: 2, DocksAvailable: 6},
	})
	overlay2 := sharedmobility.NewOverlay(sharedmobility.Config{Feeds: []sharedmobility.Feed{feed}}, nil)
	overlay2.Init(context.Background(), tt, nil)

	transfers := overlay2.GenerateVehicleTransfers(tt, []*timetable.Stop{r1}, []*timetable.Stop{r2})
	require.Empty(t, transfers)
	_ = overlay
}

func TestOverlaySkipsVehicleTransferToNoDestinationStation(t *testing.T) {
	tt, stops := sharedMobilityFixture()
	feed := staticFeed("citybike", map[string]sharedmobility.StationStatus{
		stops["R2"]: {IsInstalled: true, IsRenting: true, IsReturning: false, VehiclesAvailable: 2, DocksAvailable: 6},
	})
	overlay := sharedmobility.NewOverlay(sharedmobility.Config{Feeds: []sharedmobility.Feed{feed}}, nil)
	overlay.Init(context.Background(), tt, nil)

	r1, _ := tt.Stop(stops["R1"])
	r2, _ := tt.Stop(stops["R2"])

	transfers := overlay.GenerateVehicleTransfers(tt, []*timetable.Stop{r1}, []*timetable.Stop{r2})
	require.Empty(t, transfers, "R2 is not a valid destination once is_returning is false")
}

func TestVehicleTransfersArrivingAtFiltersByDestination(t *testing.T) {
	tt, stops := sharedMobilityFixture()
	r1, _ := tt.Stop(stops["R1"])
	r2, _ := tt.Stop(stops["R2"])
	e, _ := tt.Stop(stops["E"])

	all := []*timetable.Transfer{
		{FromStop: r1, ToStop: r2, TransferTimeSecs: 60, TransportType: timetable.Bike},
		{FromStop: r1, ToStop: e, TransferTimeSecs: 60, TransportType: timetable.Walk},
	}
	filtered := sharedmobility.VehicleTransfersArrivingAt(all, []*timetable.Stop{r2})
	require.Len(t, filtered, 1)
	require.Equal(t, r2, filtered[0].ToStop)
}

var assertErr = &feedError{"feed unreachable"}

type feedError struct{ msg string }

func (e *feedError) Error() string { return e.msg }
