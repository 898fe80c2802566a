// Package raptor implements the round-based engine: the three algorithm
// variants (earliest-arrival RAPTOR, McRAPTOR, McRAPTOR+shared-mobility),
// journey reconstruction, output serialization and the public query API
// (spec.md §4.2-§4.7).
package raptor

import "github.com/pkg/errors"

// ErrConfiguration marks a fatal, caller-supplied problem: an unknown
// station, an invalid departure time, or rounds <= 0 (spec.md §7). Returned
// from Run before any round executes.
var ErrConfiguration = errors.New("raptor: invalid query configuration")

func configErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}
