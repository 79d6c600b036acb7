// Package models provides data models for the tracker client.
package models

import (
	"time"

	"github.com/zhuiying-client/internal/types"
)

// Tracker represents one watched post or share link
type Tracker struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	URL         string              `json:"url"`
	Platform    types.Platform      `json:"platform"`
	Status      types.TrackerStatus `json:"status"`
	Frequency   int                 `json:"frequency"` // minutes between checks
	CoinsCost   int                 `json:"coinsCost"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	LastChecked *time.Time          `json:"lastChecked,omitempty"`
}

// Clone returns a copy that shares no pointers with t
func (t Tracker) Clone() Tracker {
	if t.LastChecked != nil {
		lc := *t.LastChecked
		t.LastChecked = &lc
	}
	return t
}

// IsActive reports whether the tracker is being polled
func (t *Tracker) IsActive() bool {
	return t.Status == types.StatusActive
}

// TrackerPatch holds the fields of a partial tracker update. Nil fields are left untouched.
type TrackerPatch struct {
	Title       *string              `json:"title,omitempty"`
	URL         *string              `json:"url,omitempty"`
	Platform    *types.Platform      `json:"platform,omitempty"`
	Status      *types.TrackerStatus `json:"status,omitempty"`
	Frequency   *int                 `json:"frequency,omitempty"`
	CoinsCost   *int                 `json:"coinsCost,omitempty"`
	CreatedAt   *time.Time           `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time           `json:"updatedAt,omitempty"`
	LastChecked *time.Time           `json:"lastChecked,omitempty"`
}

// Apply merges the patch into t (shallow merge)
func (p TrackerPatch) Apply(t Tracker) Tracker {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.URL != nil {
		t.URL = *p.URL
	}
	if p.Platform != nil {
		t.Platform = *p.Platform
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Frequency != nil {
		t.Frequency = *p.Frequency
	}
	if p.CoinsCost != nil {
		t.CoinsCost = *p.CoinsCost
	}
	if p.CreatedAt != nil {
		t.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		t.UpdatedAt = *p.UpdatedAt
	}
	if p.LastChecked != nil {
		lc := *p.LastChecked
		t.LastChecked = &lc
	}
	return t
}

// PatchFromTracker builds a patch that overwrites every field the server returned.
// The id is never part of a patch.
func PatchFromTracker(t Tracker) TrackerPatch {
	p := TrackerPatch{
		Title:     &t.Title,
		URL:       &t.URL,
		Platform:  &t.Platform,
		Status:    &t.Status,
		Frequency: &t.Frequency,
		CoinsCost: &t.CoinsCost,
		CreatedAt: &t.CreatedAt,
		UpdatedAt: &t.UpdatedAt,
	}
	if t.LastChecked != nil {
		lc := *t.LastChecked
		p.LastChecked = &lc
	}
	return p
}

// TrackerStats summarizes the tracker list
type TrackerStats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Stopped int `json:"stopped"`
}
