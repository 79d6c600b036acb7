package api

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhuiying-client/internal/config"
	"github.com/zhuiying-client/internal/models"
	"github.com/zhuiying-client/internal/types"
)

// Ledger reasons recorded by the backend
const (
	reasonCreateTracker = "创建追踪器"
	reasonAdReward      = "观看广告奖励"
	reasonWelcome       = "新用户奖励"
)

// BackendError is a business failure reported inside the envelope
type BackendError struct {
	Status  int // HTTP status of the response
	Code    int // envelope code
	Message string
}

func (e *BackendError) Error() string { return e.Message }

var (
	errUnauthorized      = &BackendError{Status: http.StatusUnauthorized, Code: 401, Message: "请先登录"}
	errTrackerNotFound   = &BackendError{Status: http.StatusOK, Code: 404, Message: "追踪器不存在"}
	errInsufficientCoins = &BackendError{Status: http.StatusOK, Code: 1001, Message: "金币余额不足"}
	errAdCooling         = &BackendError{Status: http.StatusOK, Code: 1002, Message: "广告奖励冷却中"}
	errPushLimitReached  = &BackendError{Status: http.StatusOK, Code: 1003, Message: "今日推送次数已用完"}
	errInvalidURL        = &BackendError{Status: http.StatusOK, Code: 1004, Message: "链接格式不正确或不支持该平台"}
	errInvalidAmount     = &BackendError{Status: http.StatusOK, Code: 400, Message: "金币数量无效"}
	errInvalidFrequency  = &BackendError{Status: http.StatusOK, Code: 400, Message: "追踪频率无效"}
)

var platformHosts = map[string]types.Platform{
	"weibo.com":       types.PlatformWeibo,
	"weibo.cn":        types.PlatformWeibo,
	"m.weibo.cn":      types.PlatformWeibo,
	"xiaohongshu.com": types.PlatformXiaohongshu,
	"xhslink.com":     types.PlatformXiaohongshu,
}

var platformTitles = map[types.Platform]string{
	types.PlatformWeibo:       "微博动态",
	types.PlatformXiaohongshu: "小红书笔记",
}

// BackendConfig holds the rules of the in-memory backend
type BackendConfig struct {
	TrackerCost      int
	DefaultFrequency int
	InitialCoins     int
	AdRewardCoins    int
	AdCooldown       time.Duration
	PushDailyMax     int
	Now              func() time.Time
}

// BackendConfigFromConfig builds backend rules from the application config
func BackendConfigFromConfig(cfg *config.Config) BackendConfig {
	return BackendConfig{
		TrackerCost:      cfg.Economy.TrackerCost,
		DefaultFrequency: cfg.Economy.DefaultFrequency,
		InitialCoins:     cfg.Mock.InitialCoins,
		AdRewardCoins:    cfg.Mock.AdRewardCoins,
		AdCooldown:       cfg.Mock.AdCooldown,
		PushDailyMax:     cfg.Mock.PushDailyMax,
	}
}

type account struct {
	user          models.User
	trackers      []models.Tracker
	ledger        []models.CoinTransaction // newest first
	adNext        *time.Time
	pushCount     int
	pushDay       time.Time
	subscriptions map[string]bool
}

// Backend is an in-memory implementation of the tracker backend
type Backend struct {
	cfg BackendConfig

	mu       sync.Mutex
	sessions map[string]string // token -> user id
	codes    map[string]string // login code -> user id
	accounts map[string]*account
}

// NewBackend creates an empty backend
func NewBackend(cfg BackendConfig) *Backend {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DefaultFrequency <= 0 {
		cfg.DefaultFrequency = 30
	}
	return &Backend{
		cfg:      cfg,
		sessions: map[string]string{},
		codes:    map[string]string{},
		accounts: map[string]*account{},
	}
}

func (b *Backend) now() time.Time {
	return b.cfg.Now().UTC()
}

// Login returns a session for code; unknown codes create a new user
func (b *Backend) Login(code string) (*models.LoginResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &BackendError{Status: http.StatusOK, Code: 400, Message: "登录凭证无效"}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	isNew := false
	id, ok := b.codes[code]
	if !ok {
		isNew = true
		id = uuid.NewString()
		b.codes[code] = id
		acc := &account{
			user: models.User{
				ID:       id,
				Nickname: "追影用户",
				Coins:    b.cfg.InitialCoins,
			},
			subscriptions: map[string]bool{},
		}
		if b.cfg.InitialCoins > 0 {
			acc.ledger = append(acc.ledger, b.entry(types.TransactionEarn, b.cfg.InitialCoins, reasonWelcome))
		}
		b.accounts[id] = acc
	}

	token := uuid.NewString()
	b.sessions[token] = id
	return &models.LoginResult{Token: token, UserInfo: b.profile(b.accounts[id]), IsNewUser: isNew}, nil
}

// Logout ends a session
func (b *Backend) Logout(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, token)
}

// Authenticate resolves a token to a user id
func (b *Backend) Authenticate(token string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.sessions[token]
	if !ok {
		return "", errUnauthorized
	}
	return id, nil
}

// withAccount runs fn under the backend lock
func (b *Backend) withAccount(userID string, fn func(acc *account) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[userID]
	if !ok {
		return errUnauthorized
	}
	return fn(acc)
}

func (b *Backend) entry(kind types.TransactionType, amount int, reason string) models.CoinTransaction {
	return models.CoinTransaction{
		ID:        uuid.NewString(),
		Type:      kind,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: b.now(),
	}
}

func (acc *account) record(tx models.CoinTransaction) {
	acc.ledger = append([]models.CoinTransaction{tx}, acc.ledger...)
}

func (b *Backend) profile(acc *account) models.User {
	u := acc.user.Clone()
	u.TotalTrackers = len(acc.trackers)
	u.ActiveTrackers = 0
	for _, t := range acc.trackers {
		if t.IsActive() {
			u.ActiveTrackers++
		}
	}
	return u
}

func (acc *account) find(id string) int {
	for i, t := range acc.trackers {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// ParseURL recognizes a share link by host
func (b *Backend) ParseURL(link string) models.ParseURLResult {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return models.ParseURLResult{Valid: false}
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	platform, ok := platformHosts[host]
	if !ok {
		return models.ParseURLResult{Valid: false}
	}
	title := platformTitles[platform]
	if p := strings.Trim(u.Path, "/"); p != "" {
		title += " " + p
	}
	return models.ParseURLResult{Title: title, Platform: platform, Valid: true}
}

// ListTrackers returns one page of the user's trackers, newest first
func (b *Backend) ListTrackers(userID string, page, pageSize int) (*models.TrackerListResponse, error) {
	var out *models.TrackerListResponse
	err := b.withAccount(userID, func(acc *account) error {
		sorted := make([]models.Tracker, len(acc.trackers))
		copy(sorted, acc.trackers)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
		out = &models.TrackerListResponse{
			List:     paginate(sorted, page, pageSize),
			Total:    len(sorted),
			Page:     page,
			PageSize: pageSize,
		}
		return nil
	})
	return out, err
}

func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// GetTracker returns one tracker
func (b *Backend) GetTracker(userID, id string) (*models.Tracker, error) {
	var out models.Tracker
	err := b.withAccount(userID, func(acc *account) error {
		i := acc.find(id)
		if i < 0 {
			return errTrackerNotFound
		}
		out = acc.trackers[i].Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTracker charges the tracker cost and creates an active tracker
func (b *Backend) CreateTracker(userID string, req models.CreateTrackerRequest) (*models.Tracker, error) {
	parsed := b.ParseURL(req.URL)
	if !parsed.Valid {
		return nil, errInvalidURL
	}
	freq := b.cfg.DefaultFrequency
	if req.Frequency != nil {
		if *req.Frequency <= 0 {
			return nil, errInvalidFrequency
		}
		freq = *req.Frequency
	}

	var out models.Tracker
	err := b.withAccount(userID, func(acc *account) error {
		if acc.user.Coins < b.cfg.TrackerCost {
			return errInsufficientCoins
		}
		now := b.now()
		if b.cfg.TrackerCost > 0 {
			acc.user.Coins -= b.cfg.TrackerCost
			acc.record(b.entry(types.TransactionSpend, b.cfg.TrackerCost, reasonCreateTracker))
		}
		out = models.Tracker{
			ID:        uuid.NewString(),
			Title:     parsed.Title,
			URL:       req.URL,
			Platform:  parsed.Platform,
			Status:    types.StatusActive,
			Frequency: freq,
			CoinsCost: b.cfg.TrackerCost,
			CreatedAt: now,
			UpdatedAt: now,
		}
		acc.trackers = append(acc.trackers, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTracker changes frequency and status
func (b *Backend) UpdateTracker(userID string, req models.UpdateTrackerRequest) (*models.Tracker, error) {
	if req.Frequency != nil && *req.Frequency <= 0 {
		return nil, errInvalidFrequency
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, &BackendError{Status: http.StatusOK, Code: 400, Message: "追踪状态无效"}
	}

	var out models.Tracker
	err := b.withAccount(userID, func(acc *account) error {
		i := acc.find(req.ID)
		if i < 0 {
			return errTrackerNotFound
		}
		t := &acc.trackers[i]
		if req.Frequency != nil {
			t.Frequency = *req.Frequency
		}
		if req.Status != nil {
			t.Status = *req.Status
		}
		t.UpdatedAt = b.now()
		out = t.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTrackers removes trackers; unknown ids are ignored
func (b *Backend) DeleteTrackers(userID string, ids []string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	return b.withAccount(userID, func(acc *account) error {
		kept := acc.trackers[:0]
		for _, t := range acc.trackers {
			if !drop[t.ID] {
				kept = append(kept, t)
			}
		}
		acc.trackers = kept
		return nil
	})
}

// DeleteTracker removes one tracker
func (b *Backend) DeleteTracker(userID, id string) error {
	if _, err := b.GetTracker(userID, id); err != nil {
		return err
	}
	return b.DeleteTrackers(userID, []string{id})
}

// SetStatus changes the status of one tracker
func (b *Backend) SetStatus(userID, id string, status types.TrackerStatus) (*models.Tracker, error) {
	var out models.Tracker
	err := b.withAccount(userID, func(acc *account) error {
		i := acc.find(id)
		if i < 0 {
			return errTrackerNotFound
		}
		acc.trackers[i].Status = status
		acc.trackers[i].UpdatedAt = b.now()
		out = acc.trackers[i].Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetStatuses changes the status of several trackers; unknown ids are ignored
func (b *Backend) SetStatuses(userID string, ids []string, status types.TrackerStatus) error {
	return b.withAccount(userID, func(acc *account) error {
		now := b.now()
		for _, id := range ids {
			if i := acc.find(id); i >= 0 {
				acc.trackers[i].Status = status
				acc.trackers[i].UpdatedAt = now
			}
		}
		return nil
	})
}

// TrackerStatus reports when a tracker was last and will next be checked
func (b *Backend) TrackerStatus(userID, id string) (*models.TrackerStatusResult, error) {
	t, err := b.GetTracker(userID, id)
	if err != nil {
		return nil, err
	}
	last := t.CreatedAt
	if t.LastChecked != nil {
		last = *t.LastChecked
	}
	return &models.TrackerStatusResult{
		Status:      t.Status,
		LastChecked: last,
		NextCheck:   last.Add(time.Duration(t.Frequency) * time.Minute),
	}, nil
}

// UserInfo returns the profile with server-side tracker counters
func (b *Backend) UserInfo(userID string) (*models.User, error) {
	var out models.User
	err := b.withAccount(userID, func(acc *account) error {
		out = b.profile(acc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser changes nickname and avatar; balances are never client writable
func (b *Backend) UpdateUser(userID string, patch models.UserPatch) (*models.User, error) {
	var out models.User
	err := b.withAccount(userID, func(acc *account) error {
		acc.user = models.UserPatch{Nickname: patch.Nickname, Avatar: patch.Avatar}.Apply(acc.user)
		out = b.profile(acc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CoinTransactions returns one page of the ledger, newest first
func (b *Backend) CoinTransactions(userID string, page, pageSize int) (*models.CoinTransactionPage, error) {
	var out *models.CoinTransactionPage
	err := b.withAccount(userID, func(acc *account) error {
		out = &models.CoinTransactionPage{
			List:     paginate(acc.ledger, page, pageSize),
			Total:    len(acc.ledger),
			Page:     page,
			PageSize: pageSize,
		}
		return nil
	})
	return out, err
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (b *Backend) rollPushDay(acc *account) {
	today := startOfDay(b.now())
	if !acc.pushDay.Equal(today) {
		acc.pushDay = today
		acc.pushCount = 0
	}
}

// PushLimit returns today's notification quota
func (b *Backend) PushLimit(userID string) (*models.PushLimit, error) {
	var out models.PushLimit
	err := b.withAccount(userID, func(acc *account) error {
		b.rollPushDay(acc)
		out = models.PushLimit{
			DailyLimit:   b.cfg.PushDailyMax,
			CurrentCount: acc.pushCount,
			ResetTime:    acc.pushDay.AddDate(0, 0, 1),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordPush counts one delivered notification against the daily quota
func (b *Backend) RecordPush(userID string) error {
	return b.withAccount(userID, func(acc *account) error {
		b.rollPushDay(acc)
		if acc.pushCount >= b.cfg.PushDailyMax {
			return errPushLimitReached
		}
		acc.pushCount++
		return nil
	})
}

func (b *Backend) adReward(acc *account) models.AdReward {
	r := models.AdReward{Coins: b.cfg.AdRewardCoins, Available: true}
	if acc.adNext != nil && b.now().Before(*acc.adNext) {
		next := *acc.adNext
		r.Available = false
		r.NextAvailableTime = &next
	}
	return r
}

// AdReward returns the reward descriptor
func (b *Backend) AdReward(userID string) (*models.AdReward, error) {
	var out models.AdReward
	err := b.withAccount(userID, func(acc *account) error {
		out = b.adReward(acc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// WatchAd credits the ad reward and starts the cooldown
func (b *Backend) WatchAd(userID string) (*models.WatchAdResult, error) {
	var out models.WatchAdResult
	err := b.withAccount(userID, func(acc *account) error {
		if !b.adReward(acc).Available {
			return errAdCooling
		}
		next := b.now().Add(b.cfg.AdCooldown)
		acc.adNext = &next
		acc.user.Coins += b.cfg.AdRewardCoins
		acc.record(b.entry(types.TransactionEarn, b.cfg.AdRewardCoins, reasonAdReward))
		out = models.WatchAdResult{Success: true, Coins: b.cfg.AdRewardCoins, NextAvailableTime: next}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SpendCoins debits coins
func (b *Backend) SpendCoins(userID string, req models.CoinsRequest) (*models.SpendCoinsResult, error) {
	if req.Amount <= 0 {
		return nil, errInvalidAmount
	}
	var out models.SpendCoinsResult
	err := b.withAccount(userID, func(acc *account) error {
		if acc.user.Coins < req.Amount {
			return errInsufficientCoins
		}
		acc.user.Coins -= req.Amount
		tx := b.entry(types.TransactionSpend, req.Amount, req.Reason)
		acc.record(tx)
		out = models.SpendCoinsResult{Success: true, RemainingCoins: acc.user.Coins, TransactionID: tx.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EarnCoins credits coins
func (b *Backend) EarnCoins(userID string, req models.CoinsRequest) (*models.EarnCoinsResult, error) {
	if req.Amount <= 0 {
		return nil, errInvalidAmount
	}
	var out models.EarnCoinsResult
	err := b.withAccount(userID, func(acc *account) error {
		acc.user.Coins += req.Amount
		tx := b.entry(types.TransactionEarn, req.Amount, req.Reason)
		acc.record(tx)
		out = models.EarnCoinsResult{Success: true, TotalCoins: acc.user.Coins, TransactionID: tx.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SubscriptionStatus lists the accepted subscribe-message templates
func (b *Backend) SubscriptionStatus(userID string) (*models.SubscriptionStatus, error) {
	var out models.SubscriptionStatus
	err := b.withAccount(userID, func(acc *account) error {
		ids := make([]string, 0, len(acc.subscriptions))
		for id := range acc.subscriptions {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out = models.SubscriptionStatus{Subscribed: len(ids) > 0, TemplateIDs: ids}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestSubscription records the user's answer to a template prompt. Only
// prompted templates listed as accepted are subscribed; the rest are rejected.
func (b *Backend) RequestSubscription(userID string, templateIDs, acceptedIDs []string) (*models.SubscriptionResult, error) {
	allowed := make(map[string]bool, len(acceptedIDs))
	for _, id := range acceptedIDs {
		allowed[strings.TrimSpace(id)] = true
	}
	var out models.SubscriptionResult
	err := b.withAccount(userID, func(acc *account) error {
		accepted := []string{}
		rejected := []string{}
		for _, id := range templateIDs {
			id = strings.TrimSpace(id)
			switch {
			case id == "":
			case allowed[id]:
				acc.subscriptions[id] = true
				accepted = append(accepted, id)
			default:
				rejected = append(rejected, id)
			}
		}
		out = models.SubscriptionResult{Success: len(accepted) > 0, AcceptedTemplates: accepted, RejectedTemplates: rejected}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
