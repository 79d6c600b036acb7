package store

import (
	"time"

	"github.com/zhuiying-client/internal/models"
)

// UserAction is one transition of the user store
type UserAction interface {
	userAction()
}

type (
	// SetUserInfo replaces the profile; nil logs the user out locally
	SetUserInfo struct{ User *models.User }
	// UpdateUserInfo shallow-merges Patch into the profile
	UpdateUserInfo struct{ Patch models.UserPatch }
	// UpdateCoins adds Delta to the balance, clamped at zero
	UpdateCoins struct{ Delta int }
	// AddCoinTransaction prepends a server-supplied ledger entry
	AddCoinTransaction struct{ Transaction models.CoinTransaction }
	// SetPushLimit replaces the push quota
	SetPushLimit struct{ Limit *models.PushLimit }
	// UpdatePushCount overwrites the current push count
	UpdatePushCount struct{ Count int }
	// SetAdReward replaces the ad reward descriptor
	SetAdReward struct{ Reward *models.AdReward }
	// WatchAdForReward credits Coins after a completed ad view
	WatchAdForReward struct {
		Coins             int
		NextAvailableTime *time.Time
	}
	// SpendCoins debits Amount if the balance covers it
	SpendCoins struct {
		Amount int
		Reason string
	}
	// EarnCoins credits Amount
	EarnCoins struct {
		Amount int
		Reason string
	}
	// SetUserLoading toggles the loading flag
	SetUserLoading struct{ Loading bool }
	// SetUserError stores an error message; "" clears it
	SetUserError struct{ Error string }
	// Logout resets the store to its initial state
	Logout struct{}
)

func (SetUserInfo) userAction()        {}
func (UpdateUserInfo) userAction()     {}
func (UpdateCoins) userAction()        {}
func (AddCoinTransaction) userAction() {}
func (SetPushLimit) userAction()       {}
func (UpdatePushCount) userAction()    {}
func (SetAdReward) userAction()        {}
func (WatchAdForReward) userAction()   {}
func (SpendCoins) userAction()         {}
func (EarnCoins) userAction()          {}
func (SetUserLoading) userAction()     {}
func (SetUserError) userAction()       {}
func (Logout) userAction()             {}
