package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/construcosta/commission-engine/checklist"
	"github.com/construcosta/commission-engine/commission"
	"github.com/construcosta/commission-engine/factory"
	"github.com/construcosta/commission-engine/report"
	"github.com/construcosta/commission-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// Monday of ISO week 11, 2025.
var week11Monday = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testEnv struct {
	store   *sqlite.Store
	clock   *testClock
	handler *Handler
	router  http.Handler
}

func testSettings() commission.Settings {
	return commission.Settings{
		CutoverDate: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		Thresholds:  commission.Thresholds{T1: 2, T2: 5},
		Rates:       commission.DefaultRateTable(),
		Location:    time.UTC,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnvWith(t *testing.T, now time.Time, settingsStore SettingsStore, opts RouterOptions) *testEnv {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := &testClock{now: now}
	commissions, err := commission.NewService(testSettings(), commission.Deps{
		Employees:     store,
		Deliveries:    store,
		Occurrences:   store,
		Checklists:    store,
		Commissions:   store,
		Notifications: store,
	}, clock.Now)
	require.NoError(t, err)

	checklists := checklist.NewService(store, store, checklist.DefaultTemplate(),
		checklist.Options{
			Location:        time.UTC,
			CurrentLocation: func() *time.Location { return commissions.Settings().Location },
		}, clock.Now)

	if settingsStore == nil {
		settingsStore = store
	}
	h := NewHandler(Deps{
		Store:       store,
		Settings:    settingsStore,
		Commissions: commissions,
		Checklists:  checklists,
		Reports:     report.NewService(store, commissions, clock.Now),
		Factory:     factory.NewSettingsFactory(time.UTC),
		Log:         quietLogger(),
		Clock:       clock.Now,
	})

	router, err := NewRouter(h, opts)
	require.NoError(t, err)

	return &testEnv{store: store, clock: clock, handler: h, router: router}
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	return newTestEnvWith(t, now, nil, RouterOptions{})
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

// fullAnswers answers every template item "OK".
func fullAnswers() map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, c := range checklist.DefaultTemplate().Categories {
		out[c.Name] = make(map[string]string, len(c.Items))
		for _, item := range c.Items {
			out[c.Name][item] = "OK"
		}
	}
	return out
}
