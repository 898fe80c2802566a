// Package fixture builds small in-memory timetables for tests across the
// timetable, criteria, sharedmobility and raptor packages, matching the
// six-station A-F scenario suite from spec.md §8.
package fixture

import (
	"github.com/gotransit/raptor/timetable"
)

// Stations is the station-id -> stop-id map returned alongside each fixture
// timetable (one stop per station in every scenario here).
type Stations map[string]string

const hop = 10 * 60 // 10 minutes between consecutive stations

var stationIDs = []string{"A", "B", "C", "D", "E", "F"}

// SixStationLine builds the six-station A->B->C->D->E->F single-line
// timetable used by scenarios 1 and 2: one trip departing A at 08:00:00,
// 10-minute hops, arriving F at 08:50:00.
func SixStationLine() (*timetable.Timetable, Stations) {
	b := timetable.NewBuilder(nil).WithMetadata("20260730", "fixture://six-station-line")
	stops := Stations{}
	for i, id := range stationIDs {
		b.AddStation(id, id)
		b.AddStop(id, id, "1", float64(i)*0.1, 0)
		stops[id] = id
	}

	depart := timetable.SecondsPastMidnight(8 * 3600)
	var stopTimes []timetable.TripStopTimeInput
	for i, id := range stationIDs {
		arr := depart + timetable.SecondsPastMidnight(i*hop)
		dep := arr
		stopTimes = append(stopTimes, timetable.TripStopTimeInput{
			StopID:              id,
			ArrivalSeconds:      arr,
			DepartureSeconds:    dep,
			TravelledDistanceKm: float64(i) * 8,
		})
	}
	b.AddTrip("line-1", timetable.Rail, stopTimes)

	tt, err := b.Build()
	if err != nil {
		panic(err)
	}
	return tt, stops
}

// SixStationLineWithTransferAndParallelTrip builds scenario 3: an added
// 120s walking transfer B<->C, and a second, faster trip C->D->E->F
// departing 08:12:00.
func SixStationLineWithTransferAndParallelTrip() (*timetable.Timetable, Stations) {
	b := timetable.NewBuilder(nil).WithMetadata("20260730", "fixture://six-station-transfer")
	stops := Stations{}
	for i, id := range stationIDs {
		b.AddStation(id, id)
		b.AddStop(id, id, "1", float64(i)*0.1, 0)
		stops[id] = id
	}

	depart := timetable.SecondsPastMidnight(8 * 3600)
	var mainStopTimes []timetable.TripStopTimeInput
	for i, id := range stationIDs {
		arr := depart + timetable.SecondsPastMidnight(i*hop)
		mainStopTimes = append(mainStopTimes, timetable.TripStopTimeInput{
			StopID: id, ArrivalSeconds: arr, DepartureSeconds: arr, TravelledDistanceKm: float64(i) * 8,
		})
	}
	b.AddTrip("line-1", timetable.Rail, mainStopTimes)

	// Faster parallel trip over the C-D-E-F tail, departing 08:12, with
	// 8-minute hops instead of 10.
	fastHop := 8 * 60
	fastDepart := timetable.SecondsPastMidnight(8*3600 + 12*60)
	tail := stationIDs[2:]
	var fastStopTimes []timetable.TripStopTimeInput
	for i, id := range tail {
		arr := fastDepart + timetable.SecondsPastMidnight(i*fastHop)
		fastStopTimes = append(fastStopTimes, timetable.TripStopTimeInput{
			StopID: id, ArrivalSeconds: arr, DepartureSeconds: arr, TravelledDistanceKm: float64(i) * 7,
		})
	}
	b.AddTrip("line-2-fast", timetable.Rail, fastStopTimes)

	b.AddWalkingTransfer("B", "C", 120)

	tt, err := b.Build()
	if err != nil {
		panic(err)
	}
	return tt, stops
}

// SixStationLineWithSharedMobility builds scenario 5: the base line plus two
// renting stations R1 (near B) and R2 (near E), each with a single-stop
// walking transfer from their neighbouring transit stop.
func SixStationLineWithSharedMobility() (*timetable.Timetable, Stations) {
	b := timetable.NewBuilder(nil).WithMetadata("20260730", "fixture://six-station-sm")
	stops := Stations{}
	for i, id := range stationIDs {
		b.AddStation(id, id)
		b.AddStop(id, id, "1", float64(i)*0.1, 0)
		stops[id] = id
	}

	depart := timetable.SecondsPastMidnight(8 * 3600)
	var stopTimes []timetable.TripStopTimeInput
	for i, id := range stationIDs {
		arr := depart + timetable.SecondsPastMidnight(i*hop)
		stopTimes = append(stopTimes, timetable.TripStopTimeInput{
			StopID: id, ArrivalSeconds: arr, DepartureSeconds: arr, TravelledDistanceKm: float64(i) * 8,
		})
	}
	b.AddTrip("line-1", timetable.Rail, stopTimes)

	b.AddStation("R1", "R1")
	b.AddStop("R1", "R1", "1", 0.1, 0.002)
	b.AddStation("R2", "R2")
	b.AddStop("R2", "R2", "1", 0.4, 0.002)
	stops["R1"] = "R1"
	stops["R2"] = "R2"

	b.SetRenting("R1", timetable.RentingData{
		SystemID: "citybike", VehicleTypes: []timetable.TransportType{timetable.Bike},
		IsInstalled: true, IsRenting: true, IsReturning: true,
		VehiclesAvailable: 4, DocksAvailable: 4, Capacity: 8,
	})
	b.SetRenting("R2", timetable.RentingData{
		SystemID: "citybike", VehicleTypes: []timetable.TransportType{timetable.Bike},
		IsInstalled: true, IsRenting: true, IsReturning: true,
		VehiclesAvailable: 2, DocksAvailable: 6, Capacity: 8,
	})

	b.AddWalkingTransfer("B", "R1", 90)
	b.AddWalkingTransfer("E", "R2", 90)

	tt, err := b.Build()
	if err != nil {
		panic(err)
	}
	return tt, stops
}

// SixStationBusVsRail builds scenario 4: a direct express bus A->F arriving
// sooner but with higher per-km emissions, alongside the all-stops rail line
// (SixStationLine's "line-1") that arrives later but pollutes less -- a
// genuine two-way tradeoff between the arrival_time and emissions_g_per_pkm
// criteria that neither journey dominates componentwise.
func SixStationBusVsRail() (*timetable.Timetable, Stations) {
	b := timetable.NewBuilder(nil).WithMetadata("20260730", "fixture://six-station-bus-vs-rail")
	stops := Stations{}
	for i, id := range stationIDs {
		b.AddStation(id, id)
		b.AddStop(id, id, "1", float64(i)*0.1, 0)
		stops[id] = id
	}

	depart := timetable.SecondsPastMidnight(8 * 3600)
	var railStopTimes []timetable.TripStopTimeInput
	for i, id := range stationIDs {
		arr := depart + timetable.SecondsPastMidnight(i*hop)
		railStopTimes = append(railStopTimes, timetable.TripStopTimeInput{
			StopID: id, ArrivalSeconds: arr, DepartureSeconds: arr, TravelledDistanceKm: float64(i) * 8,
		})
	}
	b.AddTrip("line-1", timetable.Rail, railStopTimes)

	busStopTimes := []timetable.TripStopTimeInput{
		{StopID: "A", ArrivalSeconds: depart, DepartureSeconds: depart, TravelledDistanceKm: 0},
		{StopID: "F", ArrivalSeconds: depart + 30*60, DepartureSeconds: depart + 30*60, TravelledDistanceKm: 40},
	}
	b.AddTrip("express-bus", timetable.Bus, busStopTimes)

	tt, err := b.Build()
	if err != nil {
		panic(err)
	}
	return tt, stops
}
