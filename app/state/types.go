package state

import "time"

// Record is the dedup ledger: previously processed item identifiers in
// insertion order, plus the last run timestamp. It is read once at the
// start of a run and written once at the end; a run owns it
// exclusively.
type Record struct {
	Seen    []string
	LastRun time.Time
}

// Contains reports whether an identifier is already in the ledger.
func (r Record) Contains(identifier string) bool {
	for _, seen := range r.Seen {
		if seen == identifier {
			return true
		}
	}
	return false
}
