package api

import (
	"net/http"

	"github.com/zhuiying-client/internal/models"
)

// handleLogin handles POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondInvalidBody(w)
		return
	}
	out, err := s.backend.Login(req.Code)
	if err != nil {
		respondError(w, err)
		return
	}
	s.logger.WithFields(map[string]interface{}{
		"user_id": out.UserInfo.ID,
		"new":     out.IsNewUser,
	}).Info("user logged in")
	respondOK(w, out)
}

// handleLogout handles POST /api/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.backend.Logout(tokenFrom(r.Context()))
	respondOK(w, models.SuccessResult{Success: true})
}

func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	out, err := s.backend.UserInfo(userIDFrom(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

// handleUpdateUser handles POST /api/user/update
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if err := parseJSONBody(r, &patch); err != nil {
		respondInvalidBody(w)
		return
	}
	out, err := s.backend.UpdateUser(userIDFrom(r.Context()), patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

// handleCoinTransactions handles GET /api/user/coin-transactions
func (s *Server) handleCoinTransactions(w http.ResponseWriter, r *http.Request) {
	page, size := pagingParams(r)
	out, err := s.backend.CoinTransactions(userIDFrom(r.Context()), page, size)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

func (s *Server) handlePushLimit(w http.ResponseWriter, r *http.Request) {
	out, err := s.backend.PushLimit(userIDFrom(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

func (s *Server) handleAdReward(w http.ResponseWriter, r *http.Request) {
	out, err := s.backend.AdReward(userIDFrom(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

// handleWatchAd handles POST /api/user/watch-ad
func (s *Server) handleWatchAd(w http.ResponseWriter, r *http.Request) {
	out, err := s.backend.WatchAd(userIDFrom(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

// handleSpendCoins handles POST /api/user/spend-coins
func (s *Server) handleSpendCoins(w http.ResponseWriter, r *http.Request) {
	var req models.CoinsRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondInvalidBody(w)
		return
	}
	out, err := s.backend.SpendCoins(userIDFrom(r.Context()), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

// handleEarnCoins handles POST /api/user/earn-coins
func (s *Server) handleEarnCoins(w http.ResponseWriter, r *http.Request) {
	var req models.CoinsRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondInvalidBody(w)
		return
	}
	out, err := s.backend.EarnCoins(userIDFrom(r.Context()), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

func (s *Server) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	out, err := s.backend.SubscriptionStatus(userIDFrom(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

// handleRequestSubscription handles POST /api/user/request-subscription
func (s *Server) handleRequestSubscription(w http.ResponseWriter, r *http.Request) {
	var req models.SubscriptionRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondInvalidBody(w)
		return
	}
	out, err := s.backend.RequestSubscription(userIDFrom(r.Context()), req.TemplateIDs, req.Accepted)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}
