package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhuiying-client/internal/config"
	"github.com/zhuiying-client/internal/logging"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	t.Setenv("API_USE_MOCK", "true")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("MOCK_LATENCY", "0s")
	t.Setenv("MOCK_RPS", "0")
	t.Setenv("AD_WATCH_LENGTH", "0s")
	t.Setenv("APP_LANGUAGE", "zh_CN")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	out := &bytes.Buffer{}
	a, err := newApp(context.Background(), cfg, logging.NewNopLogger(), out, "test-code")
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, out
}

func TestDispatch_UnknownCommand(t *testing.T) {
	a, _ := newTestApp(t)
	err := dispatch(context.Background(), a, []string{"nope"})
	assert.Error(t, err)
}

func TestDispatch_NoArgsPrintsUsage(t *testing.T) {
	a, out := newTestApp(t)
	require.NoError(t, dispatch(context.Background(), a, nil))
	assert.Contains(t, out.String(), "usage: zhuiying")
	assert.Contains(t, out.String(), "batch-delete")
}

func TestShell_AddListCoins(t *testing.T) {
	a, out := newTestApp(t)
	script := strings.Join([]string{
		"add https://weibo.com/123",
		"list",
		"coins",
		"exit",
	}, "\n")

	require.NoError(t, shell(context.Background(), a, strings.NewReader(script)))

	text := out.String()
	assert.Contains(t, text, "欢迎使用追影小程序")
	assert.Contains(t, text, "1 total, 1 active, 0 stopped")
	assert.Contains(t, text, "balance: 90")
	assert.Equal(t, 90, a.users.UserCoins())
}

func TestShell_ReportsErrorsAndContinues(t *testing.T) {
	a, out := newTestApp(t)
	script := "add https://example.com/x\nfrequencies\n"

	require.NoError(t, shell(context.Background(), a, strings.NewReader(script)))

	text := out.String()
	assert.Contains(t, text, "error:")
	assert.Contains(t, text, "30分钟")
	assert.Len(t, a.trackers.State().List, 0)
}

func TestWatchAd_CreditsCoins(t *testing.T) {
	a, out := newTestApp(t)
	require.NoError(t, dispatch(context.Background(), a, []string{"watch-ad"}))
	assert.Equal(t, 110, a.users.UserCoins())
	assert.Contains(t, out.String(), "+10")

	err := dispatch(context.Background(), a, []string{"watch-ad"})
	assert.Error(t, err)
}

func TestBatchCommandsRequireIDs(t *testing.T) {
	a, _ := newTestApp(t)
	for _, name := range []string{"batch-start", "batch-stop", "batch-delete"} {
		assert.Error(t, dispatch(context.Background(), a, []string{name}), name)
	}
	assert.Error(t, dispatch(context.Background(), a, []string{"start"}))
}
