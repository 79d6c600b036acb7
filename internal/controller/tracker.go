package controller

import (
	"context"

	apperrors "github.com/zhuiying-client/internal/errors"
	"github.com/zhuiying-client/internal/locale"
	"github.com/zhuiying-client/internal/logging"
	"github.com/zhuiying-client/internal/models"
	"github.com/zhuiying-client/internal/store"
)

// DefaultTrackerCost is the coin price of a new tracker
const DefaultTrackerCost = 10

const listPageSize = 50

// TrackerController drives the tracker pages
type TrackerController struct {
	api      TrackerAPI
	trackers *store.TrackerStore
	users    *store.UserStore
	notifier Notifier
	logger   *logging.Logger
	cost     int
}

// TrackerDeps are the collaborators of a TrackerController
type TrackerDeps struct {
	API         TrackerAPI
	Trackers    *store.TrackerStore
	Users       *store.UserStore
	Notifier    Notifier
	Logger      *logging.Logger
	TrackerCost int // coins spent locally before creating; 0 means DefaultTrackerCost
}

// NewTrackerController creates a tracker controller
func NewTrackerController(deps TrackerDeps) *TrackerController {
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.TrackerCost <= 0 {
		deps.TrackerCost = DefaultTrackerCost
	}
	return &TrackerController{
		api:      deps.API,
		trackers: deps.Trackers,
		users:    deps.Users,
		notifier: deps.Notifier,
		logger:   deps.Logger.WithComponent("tracker-controller"),
		cost:     deps.TrackerCost,
	}
}

// begin sets the loading flag and clears the error; the returned func clears loading
func (c *TrackerController) begin() func() {
	c.trackers.SetLoading(true)
	c.trackers.SetError("")
	return func() { c.trackers.SetLoading(false) }
}

func (c *TrackerController) fail(op string, err error, fallback string) error {
	return fail(c.logger, c.trackers, c.notifier, op, err, fallback, true)
}

func (c *TrackerController) succeed(msg string) {
	c.notifier.Toast(IconSuccess, locale.T(msg, nil))
}

// LoadTrackers replaces the list with every tracker the backend has
func (c *TrackerController) LoadTrackers(ctx context.Context) error {
	defer c.begin()()

	var all []models.Tracker
	for page := 1; ; page++ {
		resp, err := c.api.List(ctx, page, listPageSize)
		if err != nil {
			return fail(c.logger, c.trackers, c.notifier, "load_trackers", err, "加载追踪器列表失败", false)
		}
		all = append(all, resp.List...)
		if len(resp.List) == 0 || len(all) >= resp.Total {
			break
		}
	}
	c.trackers.SetList(all)
	return nil
}

// AddTracker spends the tracker cost locally, then creates the tracker. The
// coins are not refunded when creation fails.
func (c *TrackerController) AddTracker(ctx context.Context, req models.CreateTrackerRequest) (*models.Tracker, error) {
	defer c.begin()()

	balance := c.users.UserCoins()
	if !c.users.SpendCoins(c.cost, locale.T("创建追踪器", nil)) {
		err := apperrors.NewInsufficientCoinsError(locale.T("金币余额不足", nil), c.cost, balance)
		return nil, c.fail("add_tracker", err, "创建追踪器失败")
	}

	tracker, err := c.api.Create(ctx, req)
	if err != nil {
		return nil, c.fail("add_tracker", err, "创建追踪器失败")
	}
	c.trackers.AddTracker(*tracker)
	c.succeed("追踪器创建成功")
	return tracker, nil
}

// UpdateTracker sends the changed fields and merges the server's copy
func (c *TrackerController) UpdateTracker(ctx context.Context, req models.UpdateTrackerRequest) (*models.Tracker, error) {
	defer c.begin()()

	tracker, err := c.api.Update(ctx, req)
	if err != nil {
		return nil, c.fail("update_tracker", err, "更新追踪器失败")
	}
	c.trackers.UpdateTracker(req.ID, models.PatchFromTracker(*tracker))
	c.succeed("更新成功")
	return tracker, nil
}

// RemoveTracker deletes one tracker
func (c *TrackerController) RemoveTracker(ctx context.Context, id string) error {
	defer c.begin()()

	if _, err := c.api.Delete(ctx, id); err != nil {
		return c.fail("remove_tracker", err, "删除追踪器失败")
	}
	c.trackers.RemoveTracker(id)
	c.succeed("删除成功")
	return nil
}

// BatchRemove deletes several trackers
func (c *TrackerController) BatchRemove(ctx context.Context, ids []string) error {
	defer c.begin()()

	if _, err := c.api.BatchDelete(ctx, ids); err != nil {
		return c.fail("batch_remove", err, "批量删除失败")
	}
	c.trackers.BatchRemove(ids)
	c.succeed("批量删除成功")
	return nil
}

// StartTracking resumes one tracker
func (c *TrackerController) StartTracking(ctx context.Context, id string) error {
	defer c.begin()()

	if _, err := c.api.Start(ctx, id); err != nil {
		return c.fail("start_tracking", err, "启动追踪失败")
	}
	c.trackers.StartTracker(id)
	c.succeed("追踪已启动")
	return nil
}

// StopTracking pauses one tracker
func (c *TrackerController) StopTracking(ctx context.Context, id string) error {
	defer c.begin()()

	if _, err := c.api.Stop(ctx, id); err != nil {
		return c.fail("stop_tracking", err, "停止追踪失败")
	}
	c.trackers.StopTracker(id)
	c.succeed("追踪已停止")
	return nil
}

// BatchStart resumes several trackers
func (c *TrackerController) BatchStart(ctx context.Context, ids []string) error {
	defer c.begin()()

	if _, err := c.api.BatchStart(ctx, ids); err != nil {
		return c.fail("batch_start", err, "批量启动失败")
	}
	c.trackers.BatchStart(ids)
	c.succeed("批量启动成功")
	return nil
}

// BatchStop pauses several trackers
func (c *TrackerController) BatchStop(ctx context.Context, ids []string) error {
	defer c.begin()()

	if _, err := c.api.BatchStop(ctx, ids); err != nil {
		return c.fail("batch_stop", err, "批量停止失败")
	}
	c.trackers.BatchStop(ids)
	c.succeed("批量停止成功")
	return nil
}

// ParseURL checks a share link before a tracker is created from it
func (c *TrackerController) ParseURL(ctx context.Context, link string) (*models.ParseURLResult, error) {
	defer c.begin()()

	res, err := c.api.ParseURL(ctx, link)
	if err != nil {
		return nil, c.fail("parse_url", err, "解析链接失败")
	}
	if !res.Valid {
		err := apperrors.NewValidationError(locale.T("链接格式不正确或不支持该平台", nil))
		return nil, c.fail("parse_url", err, "解析链接失败")
	}
	return res, nil
}

// RefreshStatus fetches the polling state of a tracker and copies status and
// last check time into the store.
func (c *TrackerController) RefreshStatus(ctx context.Context, id string) (*models.TrackerStatusResult, error) {
	res, err := c.api.Status(ctx, id)
	if err != nil {
		return nil, fail(c.logger, c.trackers, c.notifier, "refresh_status", err, "获取追踪状态失败", false)
	}
	last := res.LastChecked
	c.trackers.UpdateTracker(id, models.TrackerPatch{Status: &res.Status, LastChecked: &last})
	return res, nil
}

// Stats returns the tracker counters of the store
func (c *TrackerController) Stats() models.TrackerStats {
	return c.trackers.Stats()
}
