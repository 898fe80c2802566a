package timetable

import "github.com/pkg/errors"

// ErrData wraps a build-time data invariant violation: a trip with fewer
// than 2 stop-times, non-monotonic arrival/departure times, or a route
// whose trips disagree on their stop sequence. Fatal at build time per
// spec.md §7.
var ErrData = errors.New("timetable: data invariant violated")

func dataErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrData, format, args...)
}
