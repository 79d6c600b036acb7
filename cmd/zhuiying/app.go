package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/zhuiying-client/internal/api"
	"github.com/zhuiying-client/internal/config"
	"github.com/zhuiying-client/internal/controller"
	"github.com/zhuiying-client/internal/logging"
	"github.com/zhuiying-client/internal/service"
	"github.com/zhuiying-client/internal/storage"
	"github.com/zhuiying-client/internal/store"
	"github.com/zhuiying-client/internal/transport"
)

// app holds everything one CLI session needs
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	out       io.Writer
	kv        storage.KeyValueStore
	persister *storage.Persister
	tokens    *storage.TokenStore
	client    *transport.Client
	trackers  *store.TrackerStore
	users     *store.UserStore
	tc        *controller.TrackerController
	uc        *controller.UserController
	mock      *api.Server
}

func newApp(ctx context.Context, cfg *config.Config, logger *logging.Logger, out io.Writer, loginCode string) (*app, error) {
	kv, err := storage.Open(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		out:      out,
		kv:       kv,
		tokens:   storage.NewTokenStore(kv),
		trackers: store.NewTrackerStore(),
		users:    store.NewUserStore(),
	}

	a.persister = storage.NewPersister(kv, logger)
	if err := a.persister.Restore(ctx, a.trackers, a.users); err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to restore state: %w", err)
	}
	a.persister.Attach(a.trackers, a.users)

	opts := transport.OptionsFromConfig(cfg, logger)
	if cfg.API.UseMock {
		baseURL, err := a.startMock()
		if err != nil {
			a.Close()
			return nil, err
		}
		opts.BaseURL = baseURL
	}
	a.client = transport.NewClient(opts, a.tokens)

	notifier := &controller.WriterNotifier{W: out}
	a.tc = controller.NewTrackerController(controller.TrackerDeps{
		API:         service.NewTrackerService(a.client),
		Trackers:    a.trackers,
		Users:       a.users,
		Notifier:    notifier,
		Logger:      logger,
		TrackerCost: cfg.Economy.TrackerCost,
	})
	a.uc = controller.NewUserController(controller.UserDeps{
		API:      service.NewUserService(a.client),
		Users:    a.users,
		Trackers: a.trackers,
		Tokens:   a.tokens,
		Codes:    controller.StaticCode(loginCode),
		Ads:      controller.SimulatedAdPlayer{Length: cfg.Ads.WatchLength},
		AdUnitID: cfg.Ads.AdUnitID,
		Prompter: controller.AcceptAll{},
		Notifier: notifier,
		Logger:   logger,
	})
	return a, nil
}

// startMock serves an in-process mock backend on a loopback port
func (a *app) startMock() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to listen for mock backend: %w", err)
	}
	serverCfg := api.ServerConfigFromConfig(&a.cfg.Mock)
	a.mock = api.NewServer(serverCfg, api.NewBackend(api.BackendConfigFromConfig(a.cfg)), a.logger)
	go func() {
		if err := a.mock.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.WithError(err).Error("mock backend stopped")
		}
	}()
	return "http://" + ln.Addr().String() + "/api", nil
}

// Close stops persistence and releases the storage backend
func (a *app) Close() {
	a.persister.Detach()
	if a.mock != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.mock.Shutdown(ctx); err != nil {
			a.logger.WithError(err).Warn("failed to stop mock backend")
		}
	}
	if err := a.kv.Close(); err != nil {
		a.logger.WithError(err).Warn("failed to close storage")
	}
}

func defaultLoginCode() string {
	if code := os.Getenv("ZHUIYING_LOGIN_CODE"); code != "" {
		return code
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return "cli-" + host
}
