package domain

import "time"

// DueObject is a file object selected for re-verification together with
// the time it was last checked.
type DueObject struct {
	Object      PreservationObject
	LastChecked time.Time
}

// FixityResult is the outcome of checking one object.
type FixityResult struct {
	ObjectID        int64
	ContentLocation string
	Outcome         Outcome
}

// FixityReport summarises a fixity run.
type FixityReport struct {
	StartedAt time.Time
	EndedAt   time.Time
	Cutoff    time.Time
	Results   []FixityResult
}

// Count returns how many results have the given outcome.
func (r *FixityReport) Count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// ObjectRecord is an object together with everything recorded about it.
type ObjectRecord struct {
	Object     PreservationObject
	Events     []Event
	Properties []SignificantProperty
	Related    []PreservationObject
}
