package model

// AllQuarters selects every available quarter.
const AllQuarters = -1

// Query describes what a fetcher should retrieve.
type Query struct {
	Star    StarIdentifier
	Quarter int // AllQuarters or a Kepler quarter 0-17

	// FirstOnly downloads only the first matching product instead of
	// stitching all of them.
	FirstOnly bool
}

// HasQuarter reports whether the query targets a single quarter.
func (q Query) HasQuarter() bool { return q.Quarter != AllQuarters }
