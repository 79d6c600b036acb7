package models

import (
	"time"

	"github.com/zhuiying-client/internal/types"
)

// User represents the authenticated profile
type User struct {
	ID             string  `json:"id"`
	Nickname       string  `json:"nickname"`
	Avatar         *string `json:"avatar,omitempty"`
	Coins          int     `json:"coins"`
	TotalTrackers  int     `json:"totalTrackers"`  // server-reported
	ActiveTrackers int     `json:"activeTrackers"` // server-reported
}

// Clone returns a copy that shares no pointers with u
func (u User) Clone() User {
	if u.Avatar != nil {
		a := *u.Avatar
		u.Avatar = &a
	}
	return u
}

// UserPatch holds the fields of a partial profile update
type UserPatch struct {
	Nickname       *string `json:"nickname,omitempty"`
	Avatar         *string `json:"avatar,omitempty"`
	Coins          *int    `json:"coins,omitempty"`
	TotalTrackers  *int    `json:"totalTrackers,omitempty"`
	ActiveTrackers *int    `json:"activeTrackers,omitempty"`
}

// Apply merges the patch into u (shallow merge)
func (p UserPatch) Apply(u User) User {
	if p.Nickname != nil {
		u.Nickname = *p.Nickname
	}
	if p.Avatar != nil {
		a := *p.Avatar
		u.Avatar = &a
	}
	if p.Coins != nil {
		u.Coins = *p.Coins
	}
	if p.TotalTrackers != nil {
		u.TotalTrackers = *p.TotalTrackers
	}
	if p.ActiveTrackers != nil {
		u.ActiveTrackers = *p.ActiveTrackers
	}
	return u
}

// CoinTransaction is an immutable coin ledger entry
type CoinTransaction struct {
	ID        string                `json:"id"`
	Type      types.TransactionType `json:"type"`
	Amount    int                   `json:"amount"`
	Reason    string                `json:"reason"`
	CreatedAt time.Time             `json:"createdAt"`
}

// PushLimit is the server-reported daily notification quota
type PushLimit struct {
	DailyLimit   int       `json:"dailyLimit"`
	CurrentCount int       `json:"currentCount"`
	ResetTime    time.Time `json:"resetTime"`
}

// AdReward describes the rewarded-ad bonus and its cooldown
type AdReward struct {
	Coins             int        `json:"coins"`
	Available         bool       `json:"available"`
	NextAvailableTime *time.Time `json:"nextAvailableTime,omitempty"`
}

// Clone returns a copy that shares no pointers with r
func (r AdReward) Clone() AdReward {
	if r.NextAvailableTime != nil {
		n := *r.NextAvailableTime
		r.NextAvailableTime = &n
	}
	return r
}

// UserStats is the summary shown on the profile page
type UserStats struct {
	Coins          int  `json:"coins"`
	TotalTrackers  int  `json:"totalTrackers"`
	ActiveTrackers int  `json:"activeTrackers"`
	CanWatchAd     bool `json:"canWatchAd"`
}
