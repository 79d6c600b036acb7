package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/zhuiying-client/internal/models"
	"github.com/zhuiying-client/internal/types"
)

const (
	// MaxLedgerEntries caps the coin ledger; the oldest entries are evicted
	MaxLedgerEntries = 100
	// DefaultRecentTransactions is the page used when no limit is given
	DefaultRecentTransactions = 10
	// AdRewardReason labels ledger entries credited by a rewarded ad
	AdRewardReason = "观看广告奖励"
)

// UserState is the full state of the user store
type UserState struct {
	UserInfo         *models.User
	CoinTransactions []models.CoinTransaction
	PushLimit        *models.PushLimit
	AdReward         *models.AdReward
	Loading          bool
	Error            string
}

// UserSnapshot is the persisted part of UserState
type UserSnapshot struct {
	UserInfo         *models.User             `json:"userInfo"`
	CoinTransactions []models.CoinTransaction `json:"coinTransactions"`
	PushLimit        *models.PushLimit        `json:"pushLimit"`
	AdReward         *models.AdReward         `json:"adReward"`
}

// Snapshot returns the part of the state that survives restarts
func (s UserState) Snapshot() UserSnapshot {
	c := s.clone()
	return UserSnapshot{
		UserInfo:         c.UserInfo,
		CoinTransactions: c.CoinTransactions,
		PushLimit:        c.PushLimit,
		AdReward:         c.AdReward,
	}
}

func (s UserState) clone() UserState {
	if s.UserInfo != nil {
		u := s.UserInfo.Clone()
		s.UserInfo = &u
	}
	if s.PushLimit != nil {
		p := *s.PushLimit
		s.PushLimit = &p
	}
	if s.AdReward != nil {
		r := s.AdReward.Clone()
		s.AdReward = &r
	}
	s.CoinTransactions = cloneLedger(s.CoinTransactions)
	return s
}

func cloneLedger(ledger []models.CoinTransaction) []models.CoinTransaction {
	out := make([]models.CoinTransaction, len(ledger))
	copy(out, ledger)
	return out
}

// prependEntry returns a new ledger with tx first, capped at MaxLedgerEntries
func prependEntry(ledger []models.CoinTransaction, tx models.CoinTransaction) []models.CoinTransaction {
	n := len(ledger) + 1
	if n > MaxLedgerEntries {
		n = MaxLedgerEntries
	}
	out := make([]models.CoinTransaction, 0, n)
	out = append(out, tx)
	return append(out, ledger[:n-1]...)
}

// UserEnv carries the impure inputs of the user reducer
type UserEnv struct {
	Now   time.Time
	NewID func() string
}

func (e UserEnv) entry(kind types.TransactionType, amount int, reason string) models.CoinTransaction {
	return models.CoinTransaction{
		ID:        e.NewID(),
		Type:      kind,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: e.Now,
	}
}

// ReduceUser applies action to state. The bool reports whether the
// transition applied; guard failures return the input state and false.
func ReduceUser(state UserState, action UserAction, env UserEnv) (UserState, bool) {
	switch a := action.(type) {
	case SetUserInfo:
		state.UserInfo = nil
		if a.User != nil {
			u := a.User.Clone()
			state.UserInfo = &u
		}
		state.Error = ""
	case UpdateUserInfo:
		if state.UserInfo == nil {
			return state, false
		}
		u := a.Patch.Apply(state.UserInfo.Clone())
		state.UserInfo = &u
		state.Error = ""
	case UpdateCoins:
		if state.UserInfo == nil {
			return state, false
		}
		u := state.UserInfo.Clone()
		u.Coins = max(0, u.Coins+a.Delta)
		state.UserInfo = &u
		state.Error = ""
	case AddCoinTransaction:
		state.CoinTransactions = prependEntry(state.CoinTransactions, a.Transaction)
		state.Error = ""
	case SetPushLimit:
		state.PushLimit = nil
		if a.Limit != nil {
			p := *a.Limit
			state.PushLimit = &p
		}
		state.Error = ""
	case UpdatePushCount:
		if state.PushLimit == nil {
			return state, false
		}
		p := *state.PushLimit
		p.CurrentCount = a.Count
		state.PushLimit = &p
		state.Error = ""
	case SetAdReward:
		state.AdReward = nil
		if a.Reward != nil {
			r := a.Reward.Clone()
			state.AdReward = &r
		}
		state.Error = ""
	case WatchAdForReward:
		if state.UserInfo == nil || state.AdReward == nil || !state.AdReward.Available || a.Coins < 0 {
			return state, false
		}
		u := state.UserInfo.Clone()
		u.Coins += a.Coins
		state.UserInfo = &u
		if a.Coins > 0 {
			state.CoinTransactions = prependEntry(state.CoinTransactions, env.entry(types.TransactionEarn, a.Coins, AdRewardReason))
		}
		r := state.AdReward.Clone()
		r.Available = false
		r.NextAvailableTime = nil
		if a.NextAvailableTime != nil {
			next := *a.NextAvailableTime
			r.NextAvailableTime = &next
		}
		state.AdReward = &r
		state.Error = ""
	case SpendCoins:
		if state.UserInfo == nil || a.Amount <= 0 || state.UserInfo.Coins < a.Amount {
			return state, false
		}
		u := state.UserInfo.Clone()
		u.Coins -= a.Amount
		state.UserInfo = &u
		state.CoinTransactions = prependEntry(state.CoinTransactions, env.entry(types.TransactionSpend, a.Amount, a.Reason))
		state.Error = ""
	case EarnCoins:
		if state.UserInfo == nil || a.Amount <= 0 {
			return state, false
		}
		u := state.UserInfo.Clone()
		u.Coins += a.Amount
		state.UserInfo = &u
		state.CoinTransactions = prependEntry(state.CoinTransactions, env.entry(types.TransactionEarn, a.Amount, a.Reason))
		state.Error = ""
	case SetUserLoading:
		state.Loading = a.Loading
	case SetUserError:
		state.Error = a.Error
	case Logout:
		return UserState{CoinTransactions: []models.CoinTransaction{}}, true
	default:
		panic(fmt.Sprintf("store: unhandled user action %T", action))
	}
	return state, true
}

// UserStore holds the profile, the coin ledger and the ad reward gate
type UserStore struct {
	opts options

	mu      sync.RWMutex
	state   UserState
	version uint64

	subs subscribers[UserState]
}

// NewUserStore creates a logged-out user store
func NewUserStore(opts ...Option) *UserStore {
	return &UserStore{
		opts:  buildOptions(opts),
		state: UserState{CoinTransactions: []models.CoinTransaction{}},
	}
}

// Dispatch applies action and reports whether it applied. Subscribers are
// only notified for applied transitions.
func (s *UserStore) Dispatch(action UserAction) bool {
	s.mu.Lock()
	next, ok := ReduceUser(s.state, action, UserEnv{Now: s.opts.now().UTC(), NewID: s.opts.newID})
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.state = next
	s.version++
	change := Change[UserState]{Version: s.version, State: s.state.clone()}
	s.mu.Unlock()

	s.subs.notify(change)
	return true
}

// Subscribe registers a listener and returns a function that removes it
func (s *UserStore) Subscribe(fn Listener[UserState]) (unsubscribe func()) {
	return s.subs.add(fn)
}

// Restore loads a persisted snapshot without notifying subscribers
func (s *UserStore) Restore(snap UserSnapshot) {
	restored := UserState{
		UserInfo:         snap.UserInfo,
		CoinTransactions: snap.CoinTransactions,
		PushLimit:        snap.PushLimit,
		AdReward:         snap.AdReward,
	}.clone()
	if len(restored.CoinTransactions) > MaxLedgerEntries {
		restored.CoinTransactions = restored.CoinTransactions[:MaxLedgerEntries]
	}
	if restored.UserInfo != nil && restored.UserInfo.Coins < 0 {
		restored.UserInfo.Coins = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	restored.Loading = s.state.Loading
	s.state = restored
}

// State returns a copy of the current state
func (s *UserStore) State() UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *UserStore) SetUserInfo(u *models.User) { s.Dispatch(SetUserInfo{User: u}) }
func (s *UserStore) UpdateUserInfo(p models.UserPatch) { s.Dispatch(UpdateUserInfo{Patch: p}) }
func (s *UserStore) UpdateCoins(delta int) { s.Dispatch(UpdateCoins{Delta: delta}) }
func (s *UserStore) SetPushLimit(l *models.PushLimit) { s.Dispatch(SetPushLimit{Limit: l}) }
func (s *UserStore) UpdatePushCount(count int) { s.Dispatch(UpdatePushCount{Count: count}) }
func (s *UserStore) SetAdReward(r *models.AdReward) { s.Dispatch(SetAdReward{Reward: r}) }
func (s *UserStore) SetLoading(loading bool) { s.Dispatch(SetUserLoading{Loading: loading}) }
func (s *UserStore) SetError(msg string) { s.Dispatch(SetUserError{Error: msg}) }
func (s *UserStore) Logout() { s.Dispatch(Logout{}) }

// AddCoinTransaction prepends a ledger entry reported by the server
func (s *UserStore) AddCoinTransaction(tx models.CoinTransaction) {
	s.Dispatch(AddCoinTransaction{Transaction: tx})
}

// WatchAdForReward credits an ad reward and starts the cooldown.
// It reports false when no reward is available or nobody is logged in.
func (s *UserStore) WatchAdForReward(coins int, nextAvailable *time.Time) bool {
	return s.Dispatch(WatchAdForReward{Coins: coins, NextAvailableTime: nextAvailable})
}

// SpendCoins debits amount and records it in the ledger. It is the only
// operation that enforces the no-overspend rule; callers must check the result.
func (s *UserStore) SpendCoins(amount int, reason string) bool {
	return s.Dispatch(SpendCoins{Amount: amount, Reason: reason})
}

// EarnCoins credits amount and records it in the ledger
func (s *UserStore) EarnCoins(amount int, reason string) {
	s.Dispatch(EarnCoins{Amount: amount, Reason: reason})
}

// UserCoins returns the balance, 0 when logged out
func (s *UserStore) UserCoins() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.UserInfo == nil {
		return 0
	}
	return s.state.UserInfo.Coins
}

// CanAfford reports whether the balance covers amount
func (s *UserStore) CanAfford(amount int) bool {
	return s.UserCoins() >= amount
}

// RecentTransactions returns up to limit ledger entries, newest first
func (s *UserStore) RecentTransactions(limit int) []models.CoinTransaction {
	if limit <= 0 {
		limit = DefaultRecentTransactions
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := min(limit, len(s.state.CoinTransactions))
	return cloneLedger(s.state.CoinTransactions[:n])
}

// CanWatchAd reports whether an ad reward can be claimed now. A cooling
// reward becomes claimable once the clock passes its next available time.
func (s *UserStore) CanWatchAd() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canWatchAdLocked()
}

func (s *UserStore) canWatchAdLocked() bool {
	r := s.state.AdReward
	switch {
	case r == nil:
		return false
	case r.Available:
		return true
	case r.NextAvailableTime == nil:
		return false
	default:
		return !s.opts.now().Before(*r.NextAvailableTime)
	}
}

// IsLoggedIn reports whether a profile is loaded
func (s *UserStore) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.UserInfo != nil
}

// UserStats summarizes the profile; nil when logged out
func (s *UserStore) UserStats() *models.UserStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.state.UserInfo
	if u == nil {
		return nil
	}
	return &models.UserStats{
		Coins:          u.Coins,
		TotalTrackers:  u.TotalTrackers,
		ActiveTrackers: u.ActiveTrackers,
		CanWatchAd:     s.canWatchAdLocked(),
	}
}
