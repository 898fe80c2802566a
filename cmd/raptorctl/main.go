// Command raptorctl is a thin demonstration front-end over the raptor
// module: it builds the six-station timetable from spec.md §8 (for the mc
// variant its bus-vs-rail twin, for the shared-mobility variant its
// shared-mobility-equipped twin), runs one query, and prints the resulting
// journeys. It is explicitly not a GTFS loader or a GBFS poller -- those
// collaborators are reached only through timetable.Builder and
// sharedmobility.Feed, which this command does not implement.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "raptorctl",
	Short:        "Round-based transit routing demo CLI",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(serveDemoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
