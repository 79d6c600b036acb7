package store

import "github.com/zhuiying-client/internal/models"

// TrackerAction is one transition of the tracker store
type TrackerAction interface {
	trackerAction()
}

type (
	// SetList replaces the whole collection
	SetList struct{ List []models.Tracker }
	// AddTracker appends a tracker; ids are not deduplicated
	AddTracker struct{ Tracker models.Tracker }
	// UpdateTracker shallow-merges Patch into the tracker with ID
	UpdateTracker struct {
		ID    string
		Patch models.TrackerPatch
	}
	// RemoveTracker drops the tracker with ID
	RemoveTracker struct{ ID string }
	// BatchRemove drops every tracker in IDs
	BatchRemove struct{ IDs []string }
	// StartTracker marks one tracker active
	StartTracker struct{ ID string }
	// StopTracker marks one tracker stopped
	StopTracker struct{ ID string }
	// BatchStart marks every tracker in IDs active
	BatchStart struct{ IDs []string }
	// BatchStop marks every tracker in IDs stopped
	BatchStop struct{ IDs []string }
	// SetTrackerLoading toggles the loading flag
	SetTrackerLoading struct{ Loading bool }
	// SetTrackerError stores an error message; "" clears it
	SetTrackerError struct{ Error string }
	// ClearTrackers resets the store to its initial state
	ClearTrackers struct{}
)

func (SetList) trackerAction()           {}
func (AddTracker) trackerAction()        {}
func (UpdateTracker) trackerAction()     {}
func (RemoveTracker) trackerAction()     {}
func (BatchRemove) trackerAction()       {}
func (StartTracker) trackerAction()      {}
func (StopTracker) trackerAction()       {}
func (BatchStart) trackerAction()        {}
func (BatchStop) trackerAction()         {}
func (SetTrackerLoading) trackerAction() {}
func (SetTrackerError) trackerAction()   {}
func (ClearTrackers) trackerAction()     {}
