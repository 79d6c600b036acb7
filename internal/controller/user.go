package controller

import (
	"context"
	"errors"

	apperrors "github.com/zhuiying-client/internal/errors"
	"github.com/zhuiying-client/internal/locale"
	"github.com/zhuiying-client/internal/logging"
	"github.com/zhuiying-client/internal/models"
	"github.com/zhuiying-client/internal/store"
)

// UserController drives login, profile, coins, ads and subscriptions
type UserController struct {
	api      UserAPI
	users    *store.UserStore
	trackers *store.TrackerStore
	tokens   TokenKeeper
	codes    CodeProvider
	ads      AdPlayer
	adUnitID string
	prompter SubscribePrompter
	notifier Notifier
	logger   *logging.Logger
	pageSize int
}

// UserDeps are the collaborators of a UserController
type UserDeps struct {
	API            UserAPI
	Users          *store.UserStore
	Trackers       *store.TrackerStore // cleared on logout, may be nil
	Tokens         TokenKeeper
	Codes          CodeProvider
	Ads            AdPlayer
	AdUnitID       string
	Prompter       SubscribePrompter
	Notifier       Notifier
	Logger         *logging.Logger
	LedgerPageSize int
}

// NewUserController creates a user controller
func NewUserController(deps UserDeps) *UserController {
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Ads == nil {
		deps.Ads = SimulatedAdPlayer{}
	}
	if deps.Prompter == nil {
		deps.Prompter = AcceptAll{}
	}
	if deps.LedgerPageSize <= 0 {
		deps.LedgerPageSize = store.MaxLedgerEntries
	}
	return &UserController{
		api:      deps.API,
		users:    deps.Users,
		trackers: deps.Trackers,
		tokens:   deps.Tokens,
		codes:    deps.Codes,
		ads:      deps.Ads,
		adUnitID: deps.AdUnitID,
		prompter: deps.Prompter,
		notifier: deps.Notifier,
		logger:   deps.Logger.WithComponent("user-controller"),
		pageSize: deps.LedgerPageSize,
	}
}

func (c *UserController) begin() func() {
	c.users.SetLoading(true)
	c.users.SetError("")
	return func() { c.users.SetLoading(false) }
}

func (c *UserController) fail(op string, err error, fallback string) error {
	return fail(c.logger, c.users, c.notifier, op, err, fallback, true)
}

// record sets the error flag without a toast
func (c *UserController) record(op string, err error, fallback string) error {
	return fail(c.logger, c.users, c.notifier, op, err, fallback, false)
}

// Init loads the profile when a session token survived a restart but the
// store holds no user.
func (c *UserController) Init(ctx context.Context) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("failed to read session token")
		return nil
	}
	if token == "" || c.users.IsLoggedIn() {
		return nil
	}
	return c.LoadUserInfo(ctx)
}

// Login exchanges a platform login code for a session
func (c *UserController) Login(ctx context.Context) (*models.LoginResult, error) {
	defer c.begin()()

	code, err := c.codes.LoginCode(ctx)
	if err != nil {
		return nil, c.fail("login", err, "登录失败")
	}
	res, err := c.api.Login(ctx, code)
	if err != nil {
		return nil, c.fail("login", err, "登录失败")
	}
	if err := c.tokens.SetToken(ctx, res.Token); err != nil {
		return nil, c.fail("login", apperrors.NewStorageError("set_token", err), "登录失败")
	}
	user := res.UserInfo
	c.users.SetUserInfo(&user)

	if res.IsNewUser {
		c.notifier.Toast(IconSuccess, locale.T("欢迎使用追影小程序", nil))
	} else {
		c.notifier.Toast(IconSuccess, locale.T("登录成功", nil))
	}
	return res, nil
}

// Logout ends the session. Local state is cleared even when the backend call
// fails; that failure is returned after the cleanup.
func (c *UserController) Logout(ctx context.Context) error {
	defer c.begin()()

	_, err := c.api.Logout(ctx)
	if cerr := c.tokens.ClearToken(ctx); cerr != nil {
		c.logger.WithError(cerr).Warn("failed to clear session token")
	}
	c.users.Logout()
	if c.trackers != nil {
		c.trackers.Clear()
	}
	if err != nil {
		c.logger.WithError(err).Warn("logout request failed")
		return err
	}
	c.notifier.Toast(IconSuccess, locale.T("已退出登录", nil))
	return nil
}

// LoadUserInfo refreshes the profile. An expired session triggers a new login.
func (c *UserController) LoadUserInfo(ctx context.Context) error {
	done := c.begin()

	user, err := c.api.Info(ctx)
	if err != nil {
		c.record("load_user_info", err, "加载用户信息失败")
		done()
		if apperrors.IsUnauthorized(err) {
			_, lerr := c.Login(ctx)
			return lerr
		}
		return err
	}
	c.users.SetUserInfo(user)
	done()
	return nil
}

// UpdateUser changes profile fields
func (c *UserController) UpdateUser(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	defer c.begin()()

	user, err := c.api.Update(ctx, patch)
	if err != nil {
		return nil, c.fail("update_user", err, "更新用户信息失败")
	}
	c.users.SetUserInfo(user)
	c.notifier.Toast(IconSuccess, locale.T("更新成功", nil))
	return user, nil
}

// LoadCoinTransactions merges the server ledger into the store. Entries whose
// id is already present are skipped; the rest keep the server's newest-first
// order at the head of the ledger.
func (c *UserController) LoadCoinTransactions(ctx context.Context) error {
	page, err := c.api.CoinTransactions(ctx, 1, c.pageSize)
	if err != nil {
		return c.record("load_coin_transactions", err, "加载交易记录失败")
	}

	known := make(map[string]bool)
	for _, tx := range c.users.State().CoinTransactions {
		known[tx.ID] = true
	}
	// prepend oldest first so the newest ends up on top
	for i := len(page.List) - 1; i >= 0; i-- {
		tx := page.List[i]
		if known[tx.ID] {
			continue
		}
		c.users.AddCoinTransaction(tx)
	}
	return nil
}

// LoadPushLimit refreshes the notification quota
func (c *UserController) LoadPushLimit(ctx context.Context) error {
	limit, err := c.api.PushLimit(ctx)
	if err != nil {
		return c.record("load_push_limit", err, "加载推送限制信息失败")
	}
	c.users.SetPushLimit(limit)
	return nil
}

// LoadAdReward refreshes the ad reward descriptor
func (c *UserController) LoadAdReward(ctx context.Context) error {
	reward, err := c.api.AdReward(ctx)
	if err != nil {
		return c.record("load_ad_reward", err, "加载广告奖励信息失败")
	}
	c.users.SetAdReward(reward)
	return nil
}

// WatchAd plays a rewarded ad and claims the reward once it was watched to
// the end. The credited coins are added locally and the reward starts
// cooling down.
func (c *UserController) WatchAd(ctx context.Context) (*models.WatchAdResult, error) {
	defer c.begin()()

	ended, err := c.ads.Play(ctx, c.adUnitID)
	switch {
	case errors.Is(err, ErrAdShow):
		return nil, c.fail("watch_ad", apperrors.NewAdUnavailableError(locale.T("广告显示失败", nil), err), "观看广告失败")
	case err != nil:
		return nil, c.fail("watch_ad", apperrors.NewAdUnavailableError(locale.T("广告加载失败", nil), err), "观看广告失败")
	case !ended:
		return nil, c.fail("watch_ad", apperrors.NewAdUnavailableError(locale.T("请观看完整广告", nil), nil), "观看广告失败")
	}

	res, err := c.api.WatchAd(ctx)
	if err != nil {
		return nil, c.fail("watch_ad", err, "观看广告失败")
	}
	if res.Success {
		next := res.NextAvailableTime
		c.users.EarnCoins(res.Coins, locale.T(store.AdRewardReason, nil))
		c.users.SetAdReward(&models.AdReward{Coins: res.Coins, Available: false, NextAvailableTime: &next})
		c.notifier.Toast(IconSuccess, locale.T("获得{coins}金币", map[string]interface{}{"coins": res.Coins}))
	}
	return res, nil
}

// CheckSubscription reports which message templates the user accepted
func (c *UserController) CheckSubscription(ctx context.Context) (*models.SubscriptionStatus, error) {
	status, err := c.api.SubscriptionStatus(ctx)
	if err != nil {
		return nil, c.record("check_subscription", err, "检查订阅状态失败")
	}
	return status, nil
}

// RequestSubscription prompts the user for the templates and records the
// request with the backend. Success means at least one template was accepted.
func (c *UserController) RequestSubscription(ctx context.Context, templateIDs []string) (*models.SubscriptionResult, error) {
	defer c.begin()()

	decisions, err := c.prompter.Prompt(ctx, templateIDs)
	if err != nil {
		return nil, c.fail("request_subscription", err, "申请订阅权限失败")
	}

	accepted := []string{}
	rejected := []string{}
	for _, id := range templateIDs {
		if decisions[id] == DecisionAccept {
			accepted = append(accepted, id)
		} else {
			rejected = append(rejected, id)
		}
	}

	if _, err := c.api.RequestSubscription(ctx, templateIDs, accepted); err != nil {
		return nil, c.fail("request_subscription", err, "申请订阅权限失败")
	}

	if len(accepted) > 0 {
		c.notifier.Toast(IconSuccess, locale.T("订阅成功", nil))
	} else {
		c.notifier.Toast(IconNone, locale.T("需要订阅消息才能及时接收通知", nil))
	}
	return &models.SubscriptionResult{
		Success:           len(accepted) > 0,
		AcceptedTemplates: accepted,
		RejectedTemplates: rejected,
	}, nil
}

// Stats returns the user counters, nil when logged out
func (c *UserController) Stats() *models.UserStats {
	return c.users.UserStats()
}
