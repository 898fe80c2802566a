package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gotransit/raptor/internal/fixture"
)

var serveDemoCmd = &cobra.Command{
	Use:   "serve-demo",
	Short: "Print the shared-mobility demo timetable's structure for manual inspection",
	RunE:  runServeDemo,
}

func runServeDemo(cmd *cobra.Command, args []string) error {
	tt, _ := fixture.SixStationLineWithSharedMobility()
	counts := tt.Counts()

	fmt.Printf("demo timetable %s (source=%s)\n", tt.Date, tt.SourcePath)
	fmt.Printf("stations=%d stops=%d routes=%d transfers=%d\n",
		counts.Stations, counts.Stops, counts.Routes, counts.Transfers)

	for _, route := range tt.Routes() {
		fmt.Printf("route %v (%d trip(s))\n", route.StopIDs, len(route.Trips))
	}
	return nil
}
