package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/zhuiying-client/internal/models"
	"github.com/zhuiying-client/internal/types"
)

// TrackerState is the full state of the tracker store
type TrackerState struct {
	List    []models.Tracker
	Loading bool
	Error   string
}

// TrackerSnapshot is the persisted part of TrackerState
type TrackerSnapshot struct {
	List []models.Tracker `json:"list"`
}

// Snapshot returns the part of the state that survives restarts
func (s TrackerState) Snapshot() TrackerSnapshot {
	return TrackerSnapshot{List: cloneTrackers(s.List)}
}

func (s TrackerState) clone() TrackerState {
	s.List = cloneTrackers(s.List)
	return s
}

func cloneTrackers(list []models.Tracker) []models.Tracker {
	if list == nil {
		return []models.Tracker{}
	}
	out := make([]models.Tracker, len(list))
	for i, t := range list {
		out[i] = t.Clone()
	}
	return out
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// setStatus returns a new list where trackers matching ids get status and updatedAt=now
func setStatus(list []models.Tracker, ids map[string]struct{}, status types.TrackerStatus, now time.Time) []models.Tracker {
	out := make([]models.Tracker, len(list))
	for i, t := range list {
		if _, ok := ids[t.ID]; ok {
			t.Status = status
			t.UpdatedAt = now
		}
		out[i] = t
	}
	return out
}

func filterOut(list []models.Tracker, ids map[string]struct{}) []models.Tracker {
	out := make([]models.Tracker, 0, len(list))
	for _, t := range list {
		if _, ok := ids[t.ID]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// ReduceTracker applies action to state and returns the new state. It never
// mutates the input. List mutations also clear the stored error.
func ReduceTracker(state TrackerState, action TrackerAction, now time.Time) TrackerState {
	switch a := action.(type) {
	case SetList:
		state.List = cloneTrackers(a.List)
		state.Error = ""
	case AddTracker:
		list := make([]models.Tracker, 0, len(state.List)+1)
		list = append(list, state.List...)
		state.List = append(list, a.Tracker.Clone())
		state.Error = ""
	case UpdateTracker:
		list := make([]models.Tracker, len(state.List))
		for i, t := range state.List {
			if t.ID == a.ID {
				moved := a.Patch.Status != nil && *a.Patch.Status != t.Status
				t = a.Patch.Apply(t)
				if moved && a.Patch.UpdatedAt == nil {
					t.UpdatedAt = now
				}
			}
			list[i] = t
		}
		state.List = list
		state.Error = ""
	case RemoveTracker:
		state.List = filterOut(state.List, idSet([]string{a.ID}))
		state.Error = ""
	case BatchRemove:
		state.List = filterOut(state.List, idSet(a.IDs))
		state.Error = ""
	case StartTracker:
		state.List = setStatus(state.List, idSet([]string{a.ID}), types.StatusActive, now)
		state.Error = ""
	case StopTracker:
		state.List = setStatus(state.List, idSet([]string{a.ID}), types.StatusStopped, now)
		state.Error = ""
	case BatchStart:
		state.List = setStatus(state.List, idSet(a.IDs), types.StatusActive, now)
		state.Error = ""
	case BatchStop:
		state.List = setStatus(state.List, idSet(a.IDs), types.StatusStopped, now)
		state.Error = ""
	case SetTrackerLoading:
		state.Loading = a.Loading
	case SetTrackerError:
		state.Error = a.Error
	case ClearTrackers:
		return TrackerState{List: []models.Tracker{}}
	default:
		panic(fmt.Sprintf("store: unhandled tracker action %T", action))
	}
	return state
}

// TrackerStore is the single source of truth for the tracker collection
type TrackerStore struct {
	opts options

	mu      sync.RWMutex
	state   TrackerState
	version uint64

	subs subscribers[TrackerState]
}

// NewTrackerStore creates an empty tracker store
func NewTrackerStore(opts ...Option) *TrackerStore {
	return &TrackerStore{
		opts:  buildOptions(opts),
		state: TrackerState{List: []models.Tracker{}},
	}
}

// Dispatch applies action and notifies subscribers
func (s *TrackerStore) Dispatch(action TrackerAction) {
	s.mu.Lock()
	s.state = ReduceTracker(s.state, action, s.opts.now().UTC())
	s.version++
	change := Change[TrackerState]{Version: s.version, State: s.state.clone()}
	s.mu.Unlock()

	s.subs.notify(change)
}

// Subscribe registers a listener and returns a function that removes it
func (s *TrackerStore) Subscribe(fn Listener[TrackerState]) (unsubscribe func()) {
	return s.subs.add(fn)
}

// Restore loads a persisted snapshot without notifying subscribers
func (s *TrackerStore) Restore(snap TrackerSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.List = cloneTrackers(snap.List)
}

// State returns a copy of the current state
func (s *TrackerStore) State() TrackerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *TrackerStore) SetList(list []models.Tracker) { s.Dispatch(SetList{List: list}) }
func (s *TrackerStore) AddTracker(t models.Tracker) { s.Dispatch(AddTracker{Tracker: t}) }
func (s *TrackerStore) RemoveTracker(id string) { s.Dispatch(RemoveTracker{ID: id}) }
func (s *TrackerStore) BatchRemove(ids []string) { s.Dispatch(BatchRemove{IDs: ids}) }
func (s *TrackerStore) StartTracker(id string) { s.Dispatch(StartTracker{ID: id}) }
func (s *TrackerStore) StopTracker(id string) { s.Dispatch(StopTracker{ID: id}) }
func (s *TrackerStore) BatchStart(ids []string) { s.Dispatch(BatchStart{IDs: ids}) }
func (s *TrackerStore) BatchStop(ids []string) { s.Dispatch(BatchStop{IDs: ids}) }
func (s *TrackerStore) SetLoading(loading bool) { s.Dispatch(SetTrackerLoading{Loading: loading}) }
func (s *TrackerStore) SetError(msg string) { s.Dispatch(SetTrackerError{Error: msg}) }
func (s *TrackerStore) Clear() { s.Dispatch(ClearTrackers{}) }

// UpdateTracker shallow-merges patch into the tracker with id; unknown ids are ignored
func (s *TrackerStore) UpdateTracker(id string, patch models.TrackerPatch) {
	s.Dispatch(UpdateTracker{ID: id, Patch: patch})
}

func (s *TrackerStore) filter(keep func(models.Tracker) bool) []models.Tracker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Tracker{}
	for _, t := range s.state.List {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// ActiveTrackers returns the trackers currently being polled
func (s *TrackerStore) ActiveTrackers() []models.Tracker {
	return s.filter(func(t models.Tracker) bool { return t.Status == types.StatusActive })
}

// StoppedTrackers returns the paused trackers
func (s *TrackerStore) StoppedTrackers() []models.Tracker {
	return s.filter(func(t models.Tracker) bool { return t.Status == types.StatusStopped })
}

// TrackersByPlatform returns the trackers of one platform
func (s *TrackerStore) TrackersByPlatform(p types.Platform) []models.Tracker {
	return s.filter(func(t models.Tracker) bool { return t.Platform == p })
}

// TrackerByID returns the first tracker with id
func (s *TrackerStore) TrackerByID(id string) (models.Tracker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.state.List {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return models.Tracker{}, false
}

// Stats counts the current list
func (s *TrackerStore) Stats() models.TrackerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := models.TrackerStats{Total: len(s.state.List)}
	for _, t := range s.state.List {
		switch t.Status {
		case types.StatusActive:
			stats.Active++
		case types.StatusStopped:
			stats.Stopped++
		}
	}
	return stats
}
