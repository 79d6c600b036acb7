package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhuiying-client/internal/models"
	"github.com/zhuiying-client/internal/transport"
	"github.com/zhuiying-client/internal/types"
)

// recordingDoer captures the request and answers with a canned data payload
type recordingDoer struct {
	requests []transport.Request
	data     string
	err      error
}

func (d *recordingDoer) Do(_ context.Context, req transport.Request, out interface{}) error {
	d.requests = append(d.requests, req)
	if d.err != nil {
		return d.err
	}
	if out == nil || d.data == "" {
		return nil
	}
	return json.Unmarshal([]byte(d.data), out)
}

func (d *recordingDoer) last() transport.Request {
	return d.requests[len(d.requests)-1]
}

func TestTrackerService_Endpoints(t *testing.T) {
	ctx := context.Background()
	freq := 60
	stopped := types.StatusStopped

	tests := []struct {
		name   string
		data   string
		call   func(s *TrackerService) error
		method string
		path   string
		body   interface{}
	}{
		{
			name:   "detail",
			data:   `{"id":"t1"}`,
			call:   func(s *TrackerService) error { _, err := s.Detail(ctx, "t1"); return err },
			method: http.MethodGet,
			path:   "/tracker/t1",
		},
		{
			name: "create",
			data: `{"id":"t1"}`,
			call: func(s *TrackerService) error {
				_, err := s.Create(ctx, models.CreateTrackerRequest{URL: "https://weibo.com/1"})
				return err
			},
			method: http.MethodPost,
			path:   "/tracker",
			body:   models.CreateTrackerRequest{URL: "https://weibo.com/1"},
		},
		{
			name: "update",
			data: `{"id":"t1"}`,
			call: func(s *TrackerService) error {
				_, err := s.Update(ctx, models.UpdateTrackerRequest{ID: "t1", Frequency: &freq, Status: &stopped})
				return err
			},
			method: http.MethodPut,
			path:   "/tracker/t1",
			body:   models.UpdateTrackerRequest{ID: "t1", Frequency: &freq, Status: &stopped},
		},
		{
			name:   "delete",
			data:   `{"success":true}`,
			call:   func(s *TrackerService) error { _, err := s.Delete(ctx, "t1"); return err },
			method: http.MethodDelete,
			path:   "/tracker/t1",
		},
		{
			name:   "batch delete",
			data:   `{"success":true}`,
			call:   func(s *TrackerService) error { _, err := s.BatchDelete(ctx, []string{"a", "b"}); return err },
			method: http.MethodPost,
			path:   "/tracker/batch-delete",
			body:   models.IDsRequest{IDs: []string{"a", "b"}},
		},
		{
			name:   "start",
			data:   `{"id":"t1","status":"active"}`,
			call:   func(s *TrackerService) error { _, err := s.Start(ctx, "t1"); return err },
			method: http.MethodPost,
			path:   "/tracker/t1/start",
		},
		{
			name:   "stop",
			data:   `{"id":"t1","status":"stopped"}`,
			call:   func(s *TrackerService) error { _, err := s.Stop(ctx, "t1"); return err },
			method: http.MethodPost,
			path:   "/tracker/t1/stop",
		},
		{
			name:   "batch start",
			data:   `{"success":true}`,
			call:   func(s *TrackerService) error { _, err := s.BatchStart(ctx, []string{"a"}); return err },
			method: http.MethodPost,
			path:   "/tracker/batch-start",
			body:   models.IDsRequest{IDs: []string{"a"}},
		},
		{
			name:   "batch stop",
			data:   `{"success":true}`,
			call:   func(s *TrackerService) error { _, err := s.BatchStop(ctx, []string{"a"}); return err },
			method: http.MethodPost,
			path:   "/tracker/batch-stop",
			body:   models.IDsRequest{IDs: []string{"a"}},
		},
		{
			name:   "parse url",
			data:   `{"title":"t","platform":"weibo","valid":true}`,
			call:   func(s *TrackerService) error { _, err := s.ParseURL(ctx, "https://weibo.com/1"); return err },
			method: http.MethodPost,
			path:   "/tracker/parse-url",
			body:   models.URLRequest{URL: "https://weibo.com/1"},
		},
		{
			name:   "status",
			data:   `{"status":"active","lastChecked":"2024-01-01T00:00:00Z","nextCheck":"2024-01-01T00:30:00Z"}`,
			call:   func(s *TrackerService) error { _, err := s.Status(ctx, "t1"); return err },
			method: http.MethodGet,
			path:   "/tracker/t1/status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &recordingDoer{data: tt.data}
			require.NoError(t, tt.call(NewTrackerService(doer)))
			req := doer.last()
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
			assert.Equal(t, tt.body, req.Body)
		})
	}
}

func TestTrackerService_ListDefaultsPaging(t *testing.T) {
	doer := &recordingDoer{data: `{"list":[{"id":"a"}],"total":1,"page":1,"pageSize":20}`}
	s := NewTrackerService(doer)

	page, err := s.List(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, "a", page.List[0].ID)
	assert.Equal(t, "1", doer.last().Query.Get("page"))
	assert.Equal(t, "20", doer.last().Query.Get("pageSize"))
}

func TestTrackerService_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	s := NewTrackerService(&recordingDoer{err: boom})

	_, err := s.List(context.Background(), 1, 20)
	assert.ErrorIs(t, err, boom)
	ok, err := s.Delete(context.Background(), "t1")
	assert.ErrorIs(t, err, boom)
	assert.False(t, ok)
}

func TestTrackerService_UpdateBodyOmitsID(t *testing.T) {
	freq := 15
	b, err := json.Marshal(models.UpdateTrackerRequest{ID: "t1", Frequency: &freq})
	require.NoError(t, err)
	assert.JSONEq(t, `{"frequency":15}`, string(b))
}

func TestUserService_Endpoints(t *testing.T) {
	ctx := context.Background()
	nick := "new"

	tests := []struct {
		name   string
		data   string
		call   func(s *UserService) error
		method string
		path   string
		body   interface{}
	}{
		{"info", `{"id":"u1"}`, func(s *UserService) error { _, err := s.Info(ctx); return err }, http.MethodGet, "/user/info", nil},
		{"update", `{"id":"u1"}`, func(s *UserService) error {
			_, err := s.Update(ctx, models.UserPatch{Nickname: &nick})
			return err
		}, http.MethodPost, "/user/update", models.UserPatch{Nickname: &nick}},
		{"push limit", `{"dailyLimit":10}`, func(s *UserService) error { _, err := s.PushLimit(ctx); return err }, http.MethodGet, "/user/push-limit", nil},
		{"ad reward", `{"coins":10,"available":true}`, func(s *UserService) error { _, err := s.AdReward(ctx); return err }, http.MethodGet, "/user/ad-reward", nil},
		{"watch ad", `{"success":true,"coins":10,"nextAvailableTime":"2024-01-01T00:30:00Z"}`, func(s *UserService) error { _, err := s.WatchAd(ctx); return err }, http.MethodPost, "/user/watch-ad", nil},
		{"spend", `{"success":true}`, func(s *UserService) error { _, err := s.SpendCoins(ctx, 10, "r"); return err }, http.MethodPost, "/user/spend-coins", models.CoinsRequest{Amount: 10, Reason: "r"}},
		{"earn", `{"success":true}`, func(s *UserService) error { _, err := s.EarnCoins(ctx, 5, "r"); return err }, http.MethodPost, "/user/earn-coins", models.CoinsRequest{Amount: 5, Reason: "r"}},
		{"login", `{"token":"t","userInfo":{"id":"u1"},"isNewUser":true}`, func(s *UserService) error { _, err := s.Login(ctx, "code"); return err }, http.MethodPost, "/auth/login", models.LoginRequest{Code: "code"}},
		{"logout", `{"success":true}`, func(s *UserService) error { _, err := s.Logout(ctx); return err }, http.MethodPost, "/auth/logout", nil},
		{"subscription status", `{"subscribed":false}`, func(s *UserService) error { _, err := s.SubscriptionStatus(ctx); return err }, http.MethodGet, "/user/subscription-status", nil},
		{"request subscription", `{"success":true}`, func(s *UserService) error {
			_, err := s.RequestSubscription(ctx, []string{"tpl", "tpl-2"}, []string{"tpl"})
			return err
		}, http.MethodPost, "/user/request-subscription", models.SubscriptionRequest{TemplateIDs: []string{"tpl", "tpl-2"}, Accepted: []string{"tpl"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &recordingDoer{data: tt.data}
			require.NoError(t, tt.call(NewUserService(doer)))
			req := doer.last()
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
			assert.Equal(t, tt.body, req.Body)
		})
	}
}

func TestUserService_CoinTransactionsPaging(t *testing.T) {
	doer := &recordingDoer{data: `{"list":[{"id":"tx1","type":"earn","amount":5}],"total":1,"page":2,"pageSize":5}`}
	s := NewUserService(doer)

	page, err := s.CoinTransactions(context.Background(), 2, 5)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, types.TransactionEarn, page.List[0].Type)
	assert.Equal(t, "/user/coin-transactions", doer.last().Path)
	assert.Equal(t, "2", doer.last().Query.Get("page"))
	assert.Equal(t, "5", doer.last().Query.Get("pageSize"))
}

func TestUserService_LoginDecodesSession(t *testing.T) {
	doer := &recordingDoer{data: `{"token":"abc","userInfo":{"id":"u1","nickname":"n","coins":100},"isNewUser":true}`}
	res, err := NewUserService(doer).Login(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "abc", res.Token)
	assert.True(t, res.IsNewUser)
	assert.Equal(t, 100, res.UserInfo.Coins)
}
