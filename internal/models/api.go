package models

import (
	"time"

	"github.com/zhuiying-client/internal/types"
)

// Request and response payloads exchanged with the backend.

// TrackerListResponse is a page of trackers
type TrackerListResponse struct {
	List     []Tracker `json:"list"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

// CreateTrackerRequest creates a tracker from a share link
type CreateTrackerRequest struct {
	URL       string `json:"url"`
	Frequency *int   `json:"frequency,omitempty"`
}

// UpdateTrackerRequest updates a tracker. ID goes in the path, not the body.
type UpdateTrackerRequest struct {
	ID        string               `json:"-"`
	Frequency *int                 `json:"frequency,omitempty"`
	Status    *types.TrackerStatus `json:"status,omitempty"`
}

// IDsRequest is the body of the batch endpoints
type IDsRequest struct {
	IDs []string `json:"ids"`
}

// URLRequest is the body of parse-url
type URLRequest struct {
	URL string `json:"url"`
}

// ParseURLResult describes a parsed share link
type ParseURLResult struct {
	Title    string         `json:"title"`
	Platform types.Platform `json:"platform"`
	Valid    bool           `json:"valid"`
}

// TrackerStatusResult reports the backend's polling state for a tracker
type TrackerStatusResult struct {
	Status      types.TrackerStatus `json:"status"`
	LastChecked time.Time           `json:"lastChecked"`
	NextCheck   time.Time           `json:"nextCheck"`
}

// SuccessResult is returned by endpoints without a richer payload
type SuccessResult struct {
	Success bool `json:"success"`
}

// CoinTransactionPage is a page of the server-side ledger
type CoinTransactionPage struct {
	List     []CoinTransaction `json:"list"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// WatchAdResult is returned after the backend credits an ad view
type WatchAdResult struct {
	Success           bool      `json:"success"`
	Coins             int       `json:"coins"`
	NextAvailableTime time.Time `json:"nextAvailableTime"`
}

// CoinsRequest is the body of spend-coins and earn-coins
type CoinsRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

// SpendCoinsResult is returned by spend-coins
type SpendCoinsResult struct {
	Success        bool   `json:"success"`
	RemainingCoins int    `json:"remainingCoins"`
	TransactionID  string `json:"transactionId"`
}

// EarnCoinsResult is returned by earn-coins
type EarnCoinsResult struct {
	Success       bool   `json:"success"`
	TotalCoins    int    `json:"totalCoins"`
	TransactionID string `json:"transactionId"`
}

// LoginRequest exchanges a WeChat login code for a session
type LoginRequest struct {
	Code string `json:"code"`
}

// LoginResult is the session issued by the backend
type LoginResult struct {
	Token     string `json:"token"`
	UserInfo  User   `json:"userInfo"`
	IsNewUser bool   `json:"isNewUser"`
}

// SubscriptionStatus reports the subscribe-message templates a user accepted
type SubscriptionStatus struct {
	Subscribed  bool     `json:"subscribed"`
	TemplateIDs []string `json:"templateIds"`
}

// SubscriptionRequest records a subscription prompt
type SubscriptionRequest struct {
	TemplateIDs []string `json:"templateIds"`
	Accepted    []string `json:"acceptedTemplateIds,omitempty"` // subset of TemplateIDs the user allowed
}

// SubscriptionResult splits templates by the user's decision
type SubscriptionResult struct {
	Success           bool     `json:"success"`
	AcceptedTemplates []string `json:"acceptedTemplates"`
	RejectedTemplates []string `json:"rejectedTemplates"`
}
