package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/construcosta/commission-engine/core"
)

func newTestScheduler(t *testing.T, env *testEnv) *ReminderScheduler {
	t.Helper()
	rs := NewReminderScheduler(env.store, env.handler.Checklists, quietLogger())
	rs.Clock = env.clock.Now
	return rs
}

func reminders(t *testing.T, env *testEnv, id core.EmployeeID) []core.Notification {
	t.Helper()
	all, err := env.store.ListNotifications(context.Background(), id)
	require.NoError(t, err)

	var out []core.Notification
	for _, n := range all {
		if n.Type == core.NotificationChecklistReminder {
			out = append(out, n)
		}
	}
	return out
}

func TestReminderScheduler_OncePerWeekOnAssignedDay(t *testing.T) {
	// GIVEN: The demo fleet on Monday
	env := newTestEnv(t, week11Monday)
	ctx := context.Background()
	require.NoError(t, LoadScenario(ctx, env.store, "demo-fleet"))
	rs := newTestScheduler(t, env)

	// WHEN: The scheduler runs
	sent, err := rs.RunOnce(ctx)
	require.NoError(t, err)

	// THEN: Only the Monday driver is reminded
	assert.Equal(t, 1, sent)
	davi := reminders(t, env, "davi")
	require.Len(t, davi, 1)
	assert.Equal(t, "checklist:davi:2025-03-10", davi[0].DedupKey)
	assert.Contains(t, davi[0].Message, "2025-03-10")
	assert.Empty(t, reminders(t, env, "ivaney"))
	assert.Empty(t, reminders(t, env, "joao"))

	// WHEN: It runs again the same day
	sent, err = rs.RunOnce(ctx)
	require.NoError(t, err)

	// THEN: Nothing new
	assert.Equal(t, 0, sent)
	assert.Len(t, reminders(t, env, "davi"), 1)

	// WHEN: Tuesday comes
	env.clock.Set(week11Monday.AddDate(0, 0, 1))
	sent, err = rs.RunOnce(ctx)
	require.NoError(t, err)

	// THEN: Ivaney is reminded
	assert.Equal(t, 1, sent)
	assert.Len(t, reminders(t, env, "ivaney"), 1)
}

func TestReminderScheduler_CompletedWeekIsNotReminded(t *testing.T) {
	// GIVEN: Davi completes the checklist on his day, before the run
	env := newTestEnv(t, week11Monday)
	ctx := context.Background()
	require.NoError(t, LoadScenario(ctx, env.store, "demo-fleet"))
	_, err := env.handler.Checklists.Submit(ctx, "davi", fullAnswers())
	require.NoError(t, err)

	// WHEN: The scheduler runs
	sent, err := newTestScheduler(t, env).RunOnce(ctx)
	require.NoError(t, err)

	// THEN: No reminder
	assert.Equal(t, 0, sent)
	assert.Empty(t, reminders(t, env, "davi"))

	// WHEN: The following Monday starts a new week
	env.clock.Set(week11Monday.AddDate(0, 0, 7))
	sent, err = newTestScheduler(t, env).RunOnce(ctx)
	require.NoError(t, err)

	// THEN: Davi is reminded for the new week
	assert.Equal(t, 1, sent)
	davi := reminders(t, env, "davi")
	require.Len(t, davi, 1)
	assert.Equal(t, "checklist:davi:2025-03-17", davi[0].DedupKey)
}

func TestReminderScheduler_StartStop(t *testing.T) {
	env := newTestEnv(t, week11Monday)
	require.NoError(t, LoadScenario(context.Background(), env.store, "demo-fleet"))

	// Disabled: Start is a no-op and Stop is safe.
	disabled := newTestScheduler(t, env)
	disabled.Enabled = false
	disabled.Start()
	disabled.Stop()
	assert.Empty(t, reminders(t, env, "davi"))

	// Enabled: the first tick runs on start.
	rs := newTestScheduler(t, env)
	rs.CheckInterval = time.Hour
	rs.Start()
	rs.Stop()
	assert.Len(t, reminders(t, env, "davi"), 1)
}
