package service

import (
	"context"
	"net/http"

	"github.com/zhuiying-client/internal/models"
	"github.com/zhuiying-client/internal/transport"
)

// UserService wraps the /user and /auth endpoints
type UserService struct {
	doer transport.Doer
}

// NewUserService creates a new user service
func NewUserService(doer transport.Doer) *UserService {
	return &UserService{doer: doer}
}

func (s *UserService) get(ctx context.Context, path string, out interface{}) error {
	return s.doer.Do(ctx, transport.Request{Method: http.MethodGet, Path: path}, out)
}

func (s *UserService) post(ctx context.Context, path string, body, out interface{}) error {
	return s.doer.Do(ctx, transport.Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Info returns the logged-in profile
func (s *UserService) Info(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := s.get(ctx, "/user/info", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update changes profile fields
func (s *UserService) Update(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	var out models.User
	if err := s.post(ctx, "/user/update", patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CoinTransactions returns one page of the server-side ledger
func (s *UserService) CoinTransactions(ctx context.Context, page, pageSize int) (*models.CoinTransactionPage, error) {
	var out models.CoinTransactionPage
	err := s.doer.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/user/coin-transactions",
		Query:  pageQuery(page, pageSize),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PushLimit returns the daily notification quota
func (s *UserService) PushLimit(ctx context.Context) (*models.PushLimit, error) {
	var out models.PushLimit
	if err := s.get(ctx, "/user/push-limit", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdReward returns the current ad reward descriptor
func (s *UserService) AdReward(ctx context.Context) (*models.AdReward, error) {
	var out models.AdReward
	if err := s.get(ctx, "/user/ad-reward", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WatchAd reports a completed ad view and returns the credited reward
func (s *UserService) WatchAd(ctx context.Context) (*models.WatchAdResult, error) {
	var out models.WatchAdResult
	if err := s.post(ctx, "/user/watch-ad", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SpendCoins debits coins on the server
func (s *UserService) SpendCoins(ctx context.Context, amount int, reason string) (*models.SpendCoinsResult, error) {
	var out models.SpendCoinsResult
	if err := s.post(ctx, "/user/spend-coins", models.CoinsRequest{Amount: amount, Reason: reason}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EarnCoins credits coins on the server
func (s *UserService) EarnCoins(ctx context.Context, amount int, reason string) (*models.EarnCoinsResult, error) {
	var out models.EarnCoinsResult
	if err := s.post(ctx, "/user/earn-coins", models.CoinsRequest{Amount: amount, Reason: reason}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges a WeChat login code for a session
func (s *UserService) Login(ctx context.Context, code string) (*models.LoginResult, error) {
	var out models.LoginResult
	if err := s.post(ctx, "/auth/login", models.LoginRequest{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the session on the server
func (s *UserService) Logout(ctx context.Context) (bool, error) {
	var out models.SuccessResult
	if err := s.post(ctx, "/auth/logout", nil, &out); err != nil {
		return false, err
	}
	return out.Success, nil
}

// SubscriptionStatus reports which subscribe-message templates were accepted
func (s *UserService) SubscriptionStatus(ctx context.Context) (*models.SubscriptionStatus, error) {
	var out models.SubscriptionStatus
	if err := s.get(ctx, "/user/subscription-status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestSubscription records the templates the user was prompted for and
// the ones they accepted
func (s *UserService) RequestSubscription(ctx context.Context, templateIDs, accepted []string) (*models.SubscriptionResult, error) {
	var out models.SubscriptionResult
	req := models.SubscriptionRequest{TemplateIDs: templateIDs, Accepted: accepted}
	if err := s.post(ctx, "/user/request-subscription", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
