// Package selection holds the page-local state of a cascading city/ward
// selector and the transitions that keep it consistent.
package selection

import "github.com/pthm/shipform/internal/region"

// Banner messages surfaced to the user when reference data is unavailable.
const (
	MsgPrimaryUnavailable   = "Could not load the list of cities. Please reload the page."
	MsgSecondaryUnavailable = "Could not load wards for the selected city. Please try again."
)

// State is a snapshot of a selector.
//
// Every record in SecondaryOptions has ParentCode == PrimaryCode.
type State struct {
	PrimaryOptions   []region.Record
	SecondaryOptions []region.Record
	SecondaryLoading bool

	PrimaryCode   string
	SecondaryCode string

	// Seq is the sequence number of the most recently issued primary change.
	Seq uint64

	// Loaded is set once the primary collection has been requested.
	Loaded bool

	// Err is the banner message, empty when there is nothing to report.
	Err string
}

// PrimaryName returns the display name of the selected primary region.
func (s State) PrimaryName() string {
	return region.NameOf(s.PrimaryOptions, s.PrimaryCode)
}

// SecondaryName returns the display name of the selected secondary region.
func (s State) SecondaryName() string {
	return region.NameOf(s.SecondaryOptions, s.SecondaryCode)
}

// SecondaryDisabled reports whether the secondary selector has nothing to
// offer right now.
func (s State) SecondaryDisabled() bool {
	return s.SecondaryLoading || len(s.SecondaryOptions) == 0
}

func (s State) clone() State {
	s.PrimaryOptions = region.Clone(s.PrimaryOptions)
	s.SecondaryOptions = region.Clone(s.SecondaryOptions)
	return s
}
