// Package controller sequences the user-facing operations: call the backend,
// then on success mutate the stores. Controllers own the loading and error
// flags of the stores and report outcomes through a Notifier.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	apperrors "github.com/zhuiying-client/internal/errors"
	"github.com/zhuiying-client/internal/locale"
	"github.com/zhuiying-client/internal/logging"
	"github.com/zhuiying-client/internal/models"
)

// ToastIcon is the style of a toast
type ToastIcon string

const (
	// IconSuccess marks a completed operation
	IconSuccess ToastIcon = "success"
	// IconNone marks a failure or a neutral notice
	IconNone ToastIcon = "none"
)

// Notifier shows short messages to the user
type Notifier interface {
	Toast(icon ToastIcon, message string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(icon ToastIcon, message string)

// Toast calls f
func (f NotifierFunc) Toast(icon ToastIcon, message string) { f(icon, message) }

type nopNotifier struct{}

func (nopNotifier) Toast(ToastIcon, string) {}

// WriterNotifier prints toasts as lines
type WriterNotifier struct {
	mu sync.Mutex
	W  io.Writer
}

// Toast writes the message with a marker for its icon
func (n *WriterNotifier) Toast(icon ToastIcon, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	mark := "✓"
	if icon != IconSuccess {
		mark = "!"
	}
	fmt.Fprintf(n.W, "%s %s\n", mark, message)
}

// CodeProvider obtains a one-time login code from the platform
type CodeProvider interface {
	LoginCode(ctx context.Context) (string, error)
}

// StaticCode always returns the same login code
type StaticCode string

// LoginCode returns c
func (c StaticCode) LoginCode(context.Context) (string, error) {
	if c == "" {
		return "", errors.New("empty login code")
	}
	return string(c), nil
}

// Errors an AdPlayer reports for ads that never played
var (
	ErrAdLoad = errors.New("rewarded ad failed to load")
	ErrAdShow = errors.New("rewarded ad failed to show")
)

// AdPlayer plays a rewarded video ad. It reports whether the user watched it
// to the end; ErrAdLoad and ErrAdShow distinguish the failure modes.
type AdPlayer interface {
	Play(ctx context.Context, adUnitID string) (ended bool, err error)
}

// SimulatedAdPlayer waits for Length and reports a completed view
type SimulatedAdPlayer struct {
	Length time.Duration
}

// Play blocks for the ad length or until ctx is done
func (p SimulatedAdPlayer) Play(ctx context.Context, _ string) (bool, error) {
	if p.Length <= 0 {
		return true, nil
	}
	t := time.NewTimer(p.Length)
	defer t.Stop()
	select {
	case <-t.C:
		return true, nil
	case <-ctx.Done():
		return false, nil
	}
}

// SubscribeDecision is the user's answer for one message template
type SubscribeDecision string

const (
	// DecisionAccept means notifications for the template are allowed
	DecisionAccept SubscribeDecision = "accept"
	// DecisionReject means the user declined
	DecisionReject SubscribeDecision = "reject"
)

// SubscribePrompter asks the user to allow subscribe messages
type SubscribePrompter interface {
	Prompt(ctx context.Context, templateIDs []string) (map[string]SubscribeDecision, error)
}

// AcceptAll answers every prompt with accept
type AcceptAll struct{}

// Prompt accepts every template
func (AcceptAll) Prompt(_ context.Context, templateIDs []string) (map[string]SubscribeDecision, error) {
	out := make(map[string]SubscribeDecision, len(templateIDs))
	for _, id := range templateIDs {
		out[id] = DecisionAccept
	}
	return out, nil
}

// TokenKeeper persists the session token
type TokenKeeper interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// TrackerAPI is the tracker part of the service layer
type TrackerAPI interface {
	List(ctx context.Context, page, pageSize int) (*models.TrackerListResponse, error)
	Create(ctx context.Context, req models.CreateTrackerRequest) (*models.Tracker, error)
	Update(ctx context.Context, req models.UpdateTrackerRequest) (*models.Tracker, error)
	Delete(ctx context.Context, id string) (bool, error)
	BatchDelete(ctx context.Context, ids []string) (bool, error)
	Start(ctx context.Context, id string) (*models.Tracker, error)
	Stop(ctx context.Context, id string) (*models.Tracker, error)
	BatchStart(ctx context.Context, ids []string) (bool, error)
	BatchStop(ctx context.Context, ids []string) (bool, error)
	ParseURL(ctx context.Context, link string) (*models.ParseURLResult, error)
	Status(ctx context.Context, id string) (*models.TrackerStatusResult, error)
}

// UserAPI is the user and auth part of the service layer
type UserAPI interface {
	Info(ctx context.Context) (*models.User, error)
	Update(ctx context.Context, patch models.UserPatch) (*models.User, error)
	CoinTransactions(ctx context.Context, page, pageSize int) (*models.CoinTransactionPage, error)
	PushLimit(ctx context.Context) (*models.PushLimit, error)
	AdReward(ctx context.Context) (*models.AdReward, error)
	WatchAd(ctx context.Context) (*models.WatchAdResult, error)
	Login(ctx context.Context, code string) (*models.LoginResult, error)
	Logout(ctx context.Context) (bool, error)
	SubscriptionStatus(ctx context.Context) (*models.SubscriptionStatus, error)
	RequestSubscription(ctx context.Context, templateIDs, accepted []string) (*models.SubscriptionResult, error)
}

// errorSink is the error flag of a store
type errorSink interface {
	SetError(msg string)
}

// failureMessage returns the text shown for err, falling back to the
// operation's generic failure text.
func failureMessage(err error, fallback string) string {
	msg := apperrors.UserMessage(err)
	if msg == "" {
		msg = fallback
	}
	return locale.T(msg, nil)
}

// fail records err in the store, toasts it when notify is set and returns it
func fail(logger *logging.Logger, sink errorSink, n Notifier, op string, err error, fallback string, notify bool) error {
	msg := failureMessage(err, locale.T(fallback, nil))
	logger.WithError(err).WithField("op", op).Warn("operation failed")
	sink.SetError(msg)
	if notify {
		n.Toast(IconNone, msg)
	}
	return err
}
