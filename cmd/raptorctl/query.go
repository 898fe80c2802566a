package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/gotransit/raptor/criteria"
	"github.com/gotransit/raptor/internal/fixture"
	"github.com/gotransit/raptor/raptor"
	"github.com/gotransit/raptor/timetable"
)

var (
	fromStation string
	toStation   string
	departAt    string
	rounds      int
	variant     string
	weightsPath string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run one query against the demo timetable and print the resulting journeys",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&fromStation, "from", "f", "", "origin station id (required)")
	queryCmd.Flags().StringVarP(&toStation, "to", "t", "", "destination station id (all reachable stations if omitted)")
	queryCmd.Flags().StringVarP(&departAt, "depart", "d", "08:00:00", "departure time, HH:MM:SS")
	queryCmd.Flags().IntVarP(&rounds, "rounds", "r", 4, "round budget")
	queryCmd.Flags().StringVarP(&variant, "variant", "v", "earliest", "earliest | mc | shared-mobility")
	queryCmd.Flags().StringVarP(&weightsPath, "weights", "w", "", "YAML criteria weights file (mc/shared-mobility only)")
	_ = queryCmd.MarkFlagRequired("from")
}

func runQuery(cmd *cobra.Command, args []string) error {
	depSecs, err := parseHHMMSS(departAt)
	if err != nil {
		return err
	}

	tt, _ := fixture.SixStationLine()
	q := raptor.Query{FromStationID: fromStation, DepartureTime: depSecs, Rounds: rounds}
	if toStation != "" {
		q.ToStationID = &toStation
	}

	switch variant {
	case "earliest":
		q.Variant = raptor.VariantEarliestArrival
	case "mc":
		q.Variant = raptor.VariantMcRAPTOR
		tt, _ = fixture.SixStationBusVsRail()
	case "shared-mobility":
		q.Variant = raptor.VariantSharedMobilityMcRAPTOR
		tt, _ = fixture.SixStationLineWithSharedMobility()
	default:
		return fmt.Errorf("unknown variant %q (want earliest, mc or shared-mobility)", variant)
	}

	if weightsPath != "" {
		w, err := criteria.LoadWeights(weightsPath)
		if err != nil {
			return err
		}
		q.Criteria = w
	}

	results, err := raptor.Run(cmd.Context(), tt, q)
	if err != nil {
		return err
	}
	printResults(results)
	return nil
}

func parseHHMMSS(s string) (timetable.SecondsPastMidnight, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return 0, fmt.Errorf("invalid departure time %q: %w", s, err)
	}
	return timetable.SecondsPastMidnight(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
}

func formatSecs(s timetable.SecondsPastMidnight) string {
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

func printResults(results map[string]*raptor.Journey) {
	stationIDs := make([]string, 0, len(results))
	for id := range results {
		stationIDs = append(stationIDs, id)
	}
	sort.Strings(stationIDs)

	for _, id := range stationIDs {
		j := results[id]
		fmt.Printf("%s: arrive %s, %d trip(s)\n", id, formatSecs(j.ArrivalTime()), j.NumberOfTrips())
		for _, leg := range j.Legs {
			kind := "trip"
			if leg.IsTransfer() {
				kind = "transfer"
			}
			fmt.Printf("  %s -> %s (%s, dep %s, arr %s)\n",
				leg.FromStop.ID, leg.ToStop.ID, kind, formatSecs(leg.DepartureTime), formatSecs(leg.ArrivalTime))
		}
	}
}
