// Package types provides common type definitions for the tracker client.
package types

import "encoding/json"

// Platform identifies the social network a tracked post lives on
type Platform string

const (
	// PlatformWeibo represents Sina Weibo
	PlatformWeibo Platform = "weibo"
	// PlatformXiaohongshu represents Xiaohongshu (RED)
	PlatformXiaohongshu Platform = "xiaohongshu"
)

// Valid reports whether p is a supported platform
func (p Platform) Valid() bool {
	return p == PlatformWeibo || p == PlatformXiaohongshu
}

// TrackerStatus represents whether a tracker is being polled
type TrackerStatus string

const (
	// StatusActive means the backend periodically checks the tracked post
	StatusActive TrackerStatus = "active"
	// StatusStopped means checks are paused
	StatusStopped TrackerStatus = "stopped"
)

// Valid reports whether s is a known tracker status
func (s TrackerStatus) Valid() bool {
	return s == StatusActive || s == StatusStopped
}

// TransactionType is the direction of a coin ledger entry
type TransactionType string

const (
	// TransactionEarn credits coins
	TransactionEarn TransactionType = "earn"
	// TransactionSpend debits coins
	TransactionSpend TransactionType = "spend"
)

// Envelope is the response wrapper every backend endpoint returns
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Success *bool           `json:"success,omitempty"`
}

// OK reports whether the envelope signals success. An explicit success flag
// wins; without one, codes 0 and 200 count as success.
func (e *Envelope) OK() bool {
	if e.Success != nil {
		return *e.Success
	}
	return e.Code == 0 || e.Code == 200
}

// ServiceError represents a structured error reported by the backend
type ServiceError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
