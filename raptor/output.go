package raptor

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/gotransit/raptor/timetable"
)

// CriterionOutput is one named criterion cost on a leg. Criteria is encoded
// as a slice sorted by Name rather than a map: gob's map encoding walks
// Go's randomized map iteration order, so two encodes of the identical
// logical data would not serialize to identical bytes (spec.md §6's
// byte-for-byte reproducibility requirement).
type CriterionOutput struct {
	Name string
	Cost float64
}

// LegOutput is a pointer-free snapshot of a Leg, suitable for gob encoding
// without chasing the timetable's Stop<->Station/Trip<->Route cycles.
type LegOutput struct {
	FromStopID    string
	ToStopID      string
	TripName      string
	IsTransfer    bool
	TransportType int
	DepartureTime int64
	ArrivalTime   int64
	Criteria      []CriterionOutput
}

// JourneyOutput is the serializable form of a Journey.
type JourneyOutput struct {
	Legs []LegOutput
}

func newJourneyOutput(j Journey) JourneyOutput {
	out := JourneyOutput{Legs: make([]LegOutput, len(j.Legs))}
	for i, leg := range j.Legs {
		lo := LegOutput{
			DepartureTime: int64(leg.DepartureTime),
			ArrivalTime:   int64(leg.ArrivalTime),
		}
		if leg.FromStop != nil {
			lo.FromStopID = leg.FromStop.ID
		}
		if leg.ToStop != nil {
			lo.ToStopID = leg.ToStop.ID
		}
		if leg.Trip != nil {
			lo.TripName = leg.Trip.RouteInfo.Name
			lo.IsTransfer = leg.Trip.IsTransfer
			lo.TransportType = int(leg.Trip.RouteInfo.TransportType)
		}
		if len(leg.Criteria) > 0 {
			lo.Criteria = make([]CriterionOutput, len(leg.Criteria))
			for i, c := range leg.Criteria {
				lo.Criteria[i] = CriterionOutput{Name: string(c.Name()), Cost: c.Cost()}
			}
			sort.Slice(lo.Criteria, func(i, j int) bool { return lo.Criteria[i].Name < lo.Criteria[j].Name })
		}
		out.Legs[i] = lo
	}
	return out
}

// AlgorithmOutput bundles one query's chosen journey with run metadata,
// serialized as an opaque binary blob named algo-output (spec.md §6).
type AlgorithmOutput struct {
	RequestID       string
	Journey         JourneyOutput
	DepartureTime   int64
	Date            string
	OriginalGTFSDir string
}

// NewAlgorithmOutput snapshots j with a fresh request id.
func NewAlgorithmOutput(j Journey, depSecs timetable.SecondsPastMidnight, date, originalGTFSDir string) AlgorithmOutput {
	return AlgorithmOutput{
		RequestID:       uuid.NewString(),
		Journey:         newJourneyOutput(j),
		DepartureTime:   int64(depSecs),
		Date:            date,
		OriginalGTFSDir: originalGTFSDir,
	}
}

const outputFileName = "algo-output"

// WriteTo gob-encodes o into <dir>/algo-output, creating dir if needed.
func (o AlgorithmOutput) WriteTo(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "raptor: creating output directory")
	}
	f, err := os.Create(filepath.Join(dir, outputFileName))
	if err != nil {
		return errors.Wrap(err, "raptor: creating output file")
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(o); err != nil {
		return errors.Wrap(err, "raptor: encoding algorithm output")
	}
	return nil
}

// ReadAlgorithmOutput decodes <dir>/algo-output, the inverse of WriteTo --
// used by scenario 6's reproducibility tests.
func ReadAlgorithmOutput(dir string) (AlgorithmOutput, error) {
	f, err := os.Open(filepath.Join(dir, outputFileName))
	if err != nil {
		return AlgorithmOutput{}, errors.Wrap(err, "raptor: opening output file")
	}
	defer f.Close()
	var out AlgorithmOutput
	if err := gob.NewDecoder(f).Decode(&out); err != nil {
		return AlgorithmOutput{}, errors.Wrap(err, "raptor: decoding algorithm output")
	}
	return out, nil
}
