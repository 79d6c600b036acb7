// Package service maps each backend endpoint to one Go method. Methods hold
// no business logic and never retry; both belong to other layers.
package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zhuiying-client/internal/models"
	"github.com/zhuiying-client/internal/transport"
)

// Default paging used by the list endpoints
const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// TrackerService wraps the /tracker endpoints
type TrackerService struct {
	doer transport.Doer
}

// NewTrackerService creates a new tracker service
func NewTrackerService(doer transport.Doer) *TrackerService {
	return &TrackerService{doer: doer}
}

func pageQuery(page, pageSize int) url.Values {
	if page <= 0 {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return url.Values{
		"page":     {strconv.Itoa(page)},
		"pageSize": {strconv.Itoa(pageSize)},
	}
}

func trackerPath(id, suffix string) string {
	return "/tracker/" + url.PathEscape(id) + suffix
}

// List returns one page of trackers
func (s *TrackerService) List(ctx context.Context, page, pageSize int) (*models.TrackerListResponse, error) {
	var out models.TrackerListResponse
	err := s.doer.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/tracker/list",
		Query:  pageQuery(page, pageSize),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Detail returns one tracker
func (s *TrackerService) Detail(ctx context.Context, id string) (*models.Tracker, error) {
	var out models.Tracker
	if err := s.doer.Do(ctx, transport.Request{Method: http.MethodGet, Path: trackerPath(id, "")}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create creates a tracker from a share link
func (s *TrackerService) Create(ctx context.Context, req models.CreateTrackerRequest) (*models.Tracker, error) {
	var out models.Tracker
	if err := s.doer.Do(ctx, transport.Request{Method: http.MethodPost, Path: "/tracker", Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update sends the changed fields of a tracker
func (s *TrackerService) Update(ctx context.Context, req models.UpdateTrackerRequest) (*models.Tracker, error) {
	var out models.Tracker
	if err := s.doer.Do(ctx, transport.Request{Method: http.MethodPut, Path: trackerPath(req.ID, ""), Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a tracker
func (s *TrackerService) Delete(ctx context.Context, id string) (bool, error) {
	return s.success(ctx, transport.Request{Method: http.MethodDelete, Path: trackerPath(id, "")})
}

// BatchDelete removes several trackers
func (s *TrackerService) BatchDelete(ctx context.Context, ids []string) (bool, error) {
	return s.batch(ctx, "/tracker/batch-delete", ids)
}

// Start resumes polling of a tracker
func (s *TrackerService) Start(ctx context.Context, id string) (*models.Tracker, error) {
	return s.transition(ctx, id, "/start")
}

// Stop pauses polling of a tracker
func (s *TrackerService) Stop(ctx context.Context, id string) (*models.Tracker, error) {
	return s.transition(ctx, id, "/stop")
}

// BatchStart resumes several trackers
func (s *TrackerService) BatchStart(ctx context.Context, ids []string) (bool, error) {
	return s.batch(ctx, "/tracker/batch-start", ids)
}

// BatchStop pauses several trackers
func (s *TrackerService) BatchStop(ctx context.Context, ids []string) (bool, error) {
	return s.batch(ctx, "/tracker/batch-stop", ids)
}

// ParseURL asks the backend to recognize a share link
func (s *TrackerService) ParseURL(ctx context.Context, link string) (*models.ParseURLResult, error) {
	var out models.ParseURLResult
	err := s.doer.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/tracker/parse-url",
		Body:   models.URLRequest{URL: link},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Status returns the backend's polling state for a tracker
func (s *TrackerService) Status(ctx context.Context, id string) (*models.TrackerStatusResult, error) {
	var out models.TrackerStatusResult
	if err := s.doer.Do(ctx, transport.Request{Method: http.MethodGet, Path: trackerPath(id, "/status")}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TrackerService) transition(ctx context.Context, id, suffix string) (*models.Tracker, error) {
	var out models.Tracker
	if err := s.doer.Do(ctx, transport.Request{Method: http.MethodPost, Path: trackerPath(id, suffix)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TrackerService) batch(ctx context.Context, path string, ids []string) (bool, error) {
	return s.success(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   models.IDsRequest{IDs: ids},
	})
}

func (s *TrackerService) success(ctx context.Context, req transport.Request) (bool, error) {
	var out models.SuccessResult
	if err := s.doer.Do(ctx, req, &out); err != nil {
		return false, err
	}
	return out.Success, nil
}
