package raptor

import "github.com/gotransit/raptor/timetable"

// stopSet is the marked-stop set threaded between phases and rounds. Kept
// as a plain map rather than a bitset -- the teacher's own marked-stop
// bookkeeping (RaptorMarkedStop) is a map too, and the stop counts here
// never approach bitset territory.
type stopSet map[timetable.StopIndex]*timetable.Stop

func newStopSet(stops ...*timetable.Stop) stopSet {
	s := make(stopSet, len(stops))
	for _, stop := range stops {
		s[stop.Index] = stop
	}
	return s
}

func (s stopSet) add(stop *timetable.Stop) {
	s[stop.Index] = stop
}

func (s stopSet) slice() []*timetable.Stop {
	out := make([]*timetable.Stop, 0, len(s))
	for _, stop := range s {
		out = append(out, stop)
	}
	return out
}

func unionStopSets(sets ...stopSet) stopSet {
	out := stopSet{}
	for _, s := range sets {
		for idx, stop := range s {
			out[idx] = stop
		}
	}
	return out
}

// accumulateMarkedRoutes is Phase A (spec.md §4.2): for every marked stop
// and every route serving it, keep only the earliest-in-sequence marked
// stop per route.
func accumulateMarkedRoutes(tt *timetable.Timetable, marked stopSet) map[*timetable.Route]*timetable.Stop {
	q := map[*timetable.Route]*timetable.Stop{}
	for _, stop := range marked {
		for _, route := range tt.RoutesOfStop(stop) {
			pos := route.StopIndexInRoute(stop)
			existing, ok := q[route]
			if !ok || pos < route.StopIndexInRoute(existing) {
				q[route] = stop
			}
		}
	}
	return q
}
