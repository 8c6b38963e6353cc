// Package reporter implements the Reporter contract named in spec.md §6.
// spec.md treats the Reporter as an external collaborator reached only
// through PushDiff/PushSelfCheckResult; this package supplies the
// collector's own sink, pushing both over the same duplex session the
// RuntimeControlClient maintains (spec.md names one bidirectional channel
// for both directions of traffic).
package reporter

import (
	"time"

	"netconnd/internal/connection"
)

// Reporter is the contract spec.md §6 names.
type Reporter interface {
	PushDiff(added, removed []connection.Connection, wallTime time.Time) error
	PushSelfCheckResult(observed bool, component string) error
}
