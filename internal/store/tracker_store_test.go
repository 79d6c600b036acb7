package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhuiying-client/internal/models"
	"github.com/zhuiying-client/internal/types"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func sampleTracker(id string, status types.TrackerStatus) models.Tracker {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return models.Tracker{
		ID:        id,
		Title:     "post " + id,
		URL:       "https://weibo.com/" + id,
		Platform:  types.PlatformWeibo,
		Status:    status,
		Frequency: 30,
		CoinsCost: 10,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestTrackerStore_SetListAndSelectors(t *testing.T) {
	s := NewTrackerStore()
	xhs := sampleTracker("c", types.StatusActive)
	xhs.Platform = types.PlatformXiaohongshu
	s.SetList([]models.Tracker{
		sampleTracker("a", types.StatusActive),
		sampleTracker("b", types.StatusStopped),
		xhs,
	})

	assert.Equal(t, models.TrackerStats{Total: 3, Active: 2, Stopped: 1}, s.Stats())
	assert.Len(t, s.ActiveTrackers(), 2)
	assert.Len(t, s.StoppedTrackers(), 1)
	assert.Len(t, s.TrackersByPlatform(types.PlatformXiaohongshu), 1)

	got, ok := s.TrackerByID("b")
	require.True(t, ok)
	assert.Equal(t, "post b", got.Title)

	_, ok = s.TrackerByID("missing")
	assert.False(t, ok)
}

func TestTrackerStore_StartStopStampsUpdatedAt(t *testing.T) {
	clock := newFakeClock()
	s := NewTrackerStore(WithClock(clock.Now))
	s.SetList([]models.Tracker{
		sampleTracker("a", types.StatusStopped),
		sampleTracker("b", types.StatusStopped),
	})

	s.StartTracker("a")

	a, _ := s.TrackerByID("a")
	b, _ := s.TrackerByID("b")
	assert.Equal(t, types.StatusActive, a.Status)
	assert.Equal(t, clock.now, a.UpdatedAt)
	assert.Equal(t, types.StatusStopped, b.Status)
	assert.Equal(t, sampleTracker("b", types.StatusStopped).UpdatedAt, b.UpdatedAt)

	clock.Advance(time.Minute)
	s.StopTracker("a")
	a, _ = s.TrackerByID("a")
	assert.Equal(t, types.StatusStopped, a.Status)
	assert.Equal(t, clock.now, a.UpdatedAt)
}

func TestTrackerStore_UpdateStatusStampsUpdatedAt(t *testing.T) {
	clock := newFakeClock()
	s := NewTrackerStore(WithClock(clock.Now))
	a := sampleTracker("a", types.StatusActive)
	a.UpdatedAt = clock.now.Add(-time.Hour)
	s.SetList([]models.Tracker{a, sampleTracker("b", types.StatusActive)})

	stopped := types.StatusStopped
	s.UpdateTracker("a", models.TrackerPatch{Status: &stopped})
	got, _ := s.TrackerByID("a")
	assert.Equal(t, types.StatusStopped, got.Status)
	assert.Equal(t, clock.now, got.UpdatedAt)

	// same status or a non-status patch keeps the timestamp
	clock.Advance(time.Minute)
	freq := 60
	s.UpdateTracker("a", models.TrackerPatch{Status: &stopped, Frequency: &freq})
	got, _ = s.TrackerByID("a")
	assert.Equal(t, clock.now.Add(-time.Minute), got.UpdatedAt)
	assert.Equal(t, 60, got.Frequency)

	// a server-provided timestamp wins
	active := types.StatusActive
	server := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	s.UpdateTracker("a", models.TrackerPatch{Status: &active, UpdatedAt: &server})
	got, _ = s.TrackerByID("a")
	assert.Equal(t, types.StatusActive, got.Status)
	assert.Equal(t, server, got.UpdatedAt)
}

func TestTrackerStore_BatchStartMixedList(t *testing.T) {
	s := NewTrackerStore()
	s.SetList([]models.Tracker{
		sampleTracker("a", types.StatusStopped),
		sampleTracker("b", types.StatusStopped),
		sampleTracker("c", types.StatusActive),
		sampleTracker("d", types.StatusStopped),
	})

	s.BatchStart([]string{"a", "b"})

	assert.Equal(t, models.TrackerStats{Total: 4, Active: 3, Stopped: 1}, s.Stats())

	s.BatchStop([]string{"a", "c", "zzz"})
	assert.Equal(t, models.TrackerStats{Total: 4, Active: 1, Stopped: 3}, s.Stats())
}

func TestTrackerStore_UnknownIDIsNoOp(t *testing.T) {
	s := NewTrackerStore()
	s.SetList([]models.Tracker{sampleTracker("a", types.StatusActive)})
	before := s.State().List

	s.RemoveTracker("nope")
	s.StartTracker("nope")
	s.StopTracker("nope")
	title := "changed"
	s.UpdateTracker("nope", models.TrackerPatch{Title: &title})

	assert.Equal(t, before, s.State().List)
}

func TestTrackerStore_UpdateRemoveAndBatchRemove(t *testing.T) {
	s := NewTrackerStore()
	s.SetList([]models.Tracker{
		sampleTracker("a", types.StatusActive),
		sampleTracker("b", types.StatusActive),
		sampleTracker("c", types.StatusActive),
	})

	freq := 60
	s.UpdateTracker("a", models.TrackerPatch{Frequency: &freq})
	a, _ := s.TrackerByID("a")
	assert.Equal(t, 60, a.Frequency)
	assert.Equal(t, "post a", a.Title)

	s.RemoveTracker("b")
	assert.Equal(t, 2, s.Stats().Total)

	s.BatchRemove([]string{"a", "c"})
	assert.Empty(t, s.State().List)
}

func TestTrackerStore_AddDoesNotDeduplicate(t *testing.T) {
	s := NewTrackerStore()
	s.AddTracker(sampleTracker("a", types.StatusActive))
	s.AddTracker(sampleTracker("a", types.StatusActive))
	assert.Equal(t, 2, s.Stats().Total)
}

func TestTrackerStore_ListMutationClearsError(t *testing.T) {
	s := NewTrackerStore()
	s.SetError("boom")
	assert.Equal(t, "boom", s.State().Error)

	s.SetLoading(true)
	assert.Equal(t, "boom", s.State().Error)

	s.AddTracker(sampleTracker("a", types.StatusActive))
	assert.Empty(t, s.State().Error)
	assert.True(t, s.State().Loading)

	s.Clear()
	assert.Equal(t, TrackerState{List: []models.Tracker{}}, s.State())
}

func TestTrackerStore_SubscribersSeeOrderedVersions(t *testing.T) {
	s := NewTrackerStore()
	var versions []uint64
	var totals []int
	unsubscribe := s.Subscribe(func(c Change[TrackerState]) {
		versions = append(versions, c.Version)
		totals = append(totals, len(c.State.List))
	})

	s.AddTracker(sampleTracker("a", types.StatusActive))
	s.AddTracker(sampleTracker("b", types.StatusActive))
	unsubscribe()
	s.AddTracker(sampleTracker("c", types.StatusActive))

	assert.Equal(t, []uint64{1, 2}, versions)
	assert.Equal(t, []int{1, 2}, totals)
}

func TestTrackerStore_StateIsACopy(t *testing.T) {
	s := NewTrackerStore()
	s.AddTracker(sampleTracker("a", types.StatusActive))

	st := s.State()
	st.List[0].Title = "mutated"

	a, _ := s.TrackerByID("a")
	assert.Equal(t, "post a", a.Title)
}

func TestTrackerStore_RestoreDoesNotNotify(t *testing.T) {
	s := NewTrackerStore()
	called := false
	s.Subscribe(func(Change[TrackerState]) { called = true })

	s.Restore(TrackerSnapshot{List: []models.Tracker{sampleTracker("a", types.StatusActive)}})

	assert.False(t, called)
	assert.Equal(t, 1, s.Stats().Total)
}

func TestReduceTracker_DoesNotMutateInput(t *testing.T) {
	in := TrackerState{List: []models.Tracker{sampleTracker("a", types.StatusStopped)}}
	out := ReduceTracker(in, StartTracker{ID: "a"}, time.Now())

	assert.Equal(t, types.StatusStopped, in.List[0].Status)
	assert.Equal(t, types.StatusActive, out.List[0].Status)
}

type unknownTrackerAction struct{}

func (unknownTrackerAction) trackerAction() {}

func TestReduceTracker_PanicsOnUnknownAction(t *testing.T) {
	assert.Panics(t, func() {
		ReduceTracker(TrackerState{}, unknownTrackerAction{}, time.Now())
	})
}
