package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/construcosta/commission-engine/commission"
	"github.com/construcosta/commission-engine/core"
	"github.com/construcosta/commission-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func weekdayPtr(d time.Weekday) *time.Weekday {
	return &d
}

var monday = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestStore_Employees(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, core.Employee{ID: "davi", Name: "Davi", Role: core.RoleDriver, AssignedDay: weekdayPtr(time.Monday)}))
	require.NoError(t, store.SaveEmployee(ctx, core.Employee{ID: "joao", Name: "João", Role: core.RoleHelper}))

	got, err := store.GetEmployee(ctx, "davi")
	require.NoError(t, err)
	assert.Equal(t, "Davi", got.Name)
	assert.Equal(t, core.RoleDriver, got.Role)
	require.NotNil(t, got.AssignedDay)
	assert.Equal(t, time.Monday, *got.AssignedDay)
	assert.True(t, got.IsGated())

	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, core.EmployeeID("davi"), all[0].ID)
	assert.Nil(t, all[1].AssignedDay)

	_, err = store.GetEmployee(ctx, "ghost")
	assert.ErrorIs(t, err, core.ErrEmployeeNotFound)
}

func TestStore_AssignedDayWriteOnce(t *testing.T) {
	// GIVEN: A driver registered without a day
	// WHEN: A day is assigned, then changed
	// THEN: The first assignment sticks, the change is rejected

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, core.Employee{ID: "ivaney", Name: "Ivaney", Role: core.RoleDriver}))
	require.NoError(t, store.SaveEmployee(ctx, core.Employee{ID: "ivaney", Name: "Ivaney", Role: core.RoleDriver, AssignedDay: weekdayPtr(time.Tuesday)}))

	err := store.SaveEmployee(ctx, core.Employee{ID: "ivaney", Name: "Ivaney", Role: core.RoleDriver, AssignedDay: weekdayPtr(time.Friday)})
	assert.ErrorIs(t, err, core.ErrAssignedDayImmutable)

	// Renaming without a day keeps Tuesday
	require.NoError(t, store.SaveEmployee(ctx, core.Employee{ID: "ivaney", Name: "Ivaney S."}))

	got, err := store.GetEmployee(ctx, "ivaney")
	require.NoError(t, err)
	assert.Equal(t, "Ivaney S.", got.Name)
	assert.Equal(t, core.RoleDriver, got.Role)
	assert.Equal(t, time.Tuesday, *got.AssignedDay)
}

// =============================================================================
// DELIVERIES & OCCURRENCES
// =============================================================================

func TestStore_DeliveriesInRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	add := func(id string, emp core.EmployeeID, value string, at time.Time) {
		require.NoError(t, store.AppendDelivery(ctx, core.Delivery{
			ID: core.DeliveryID(id), EmployeeID: emp, TruckCode: core.TruckGKY,
			Value: decimal.RequireFromString(value), DeliveredAt: at,
		}))
	}
	add("d1", "davi", "100.10", time.Date(2025, time.February, 28, 23, 59, 59, 0, time.UTC))
	add("d2", "davi", "200.20", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	add("d3", "davi", "300.30", time.Date(2025, time.March, 31, 23, 0, 0, 0, time.UTC))
	add("d4", "davi", "400.40", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))
	add("d5", "ivaney", "500.50", time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC))

	march := core.NewPeriod(2025, time.March)
	got, err := store.DeliveriesInRange(ctx, "davi", march.Start(time.UTC), march.Next(time.UTC))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, core.DeliveryID("d2"), got[0].ID)
	assert.Equal(t, core.DeliveryID("d3"), got[1].ID)
	assert.True(t, decimal.RequireFromString("300.30").Equal(got[1].Value))
	assert.Equal(t, core.TruckGKY, got[1].TruckCode)
}

func TestStore_DeliveriesInRange_OffsetBounds(t *testing.T) {
	// Range bounds in a non-UTC location compare correctly with UTC storage
	store := newTestStore(t)
	ctx := context.Background()
	brt := time.FixedZone("BRT", -3*60*60)

	// 02:00 UTC on March 1st is still February at UTC-3
	require.NoError(t, store.AppendDelivery(ctx, core.Delivery{
		ID: "d1", EmployeeID: "davi", TruckCode: core.TruckBKO,
		Value: decimal.NewFromInt(10), DeliveredAt: time.Date(2025, time.March, 1, 2, 0, 0, 0, time.UTC),
	}))

	march := core.NewPeriod(2025, time.March)
	got, err := store.DeliveriesInRange(ctx, "davi", march.Start(brt), march.Next(brt))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_AppendOnlyDuplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	d := core.Delivery{ID: "d1", EmployeeID: "davi", TruckCode: core.TruckBKO, Value: decimal.NewFromInt(1), DeliveredAt: monday}
	require.NoError(t, store.AppendDelivery(ctx, d))
	assert.ErrorIs(t, store.AppendDelivery(ctx, d), core.ErrDuplicateRecord)

	o := core.Occurrence{ID: "o1", EmployeeID: "davi", Type: core.OccurrenceDamage, Description: "porta amassada", OccurredAt: monday}
	require.NoError(t, store.AppendOccurrence(ctx, o))
	assert.ErrorIs(t, store.AppendOccurrence(ctx, o), core.ErrDuplicateRecord)

	got, err := store.OccurrencesInRange(ctx, "davi", monday, monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "porta amassada", got[0].Description)
	assert.Equal(t, core.TruckCode(""), got[0].TruckCode)
}

// =============================================================================
// CHECKLIST
// =============================================================================

func TestStore_ChecklistLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Nothing yet
	sub, err := store.GetSubmission(ctx, "davi", monday)
	require.NoError(t, err)
	assert.Nil(t, sub)

	// Fetch-or-create is idempotent
	created, err := store.FetchOrCreateSubmission(ctx, "davi", monday)
	require.NoError(t, err)
	assert.False(t, created.Completed)
	assert.Empty(t, created.Items)
	assert.True(t, created.WeekStart.Equal(monday))

	again, err := store.FetchOrCreateSubmission(ctx, "davi", monday)
	require.NoError(t, err)
	assert.True(t, again.WeekStart.Equal(created.WeekStart))

	// In-progress answers
	items := core.ChecklistItems{"Motor": {"verificar óleo do motor": "OK"}}
	require.NoError(t, store.SaveAnswers(ctx, "davi", monday, items))

	sub, err = store.GetSubmission(ctx, "davi", monday)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "OK", sub.Items["Motor"]["verificar óleo do motor"])

	// Complete
	at := monday.Add(9 * time.Hour)
	done, err := store.CompleteSubmission(ctx, "davi", monday, items, at)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.SubmittedAt)
	assert.True(t, done.SubmittedAt.Equal(at))

	// Frozen after completion
	_, err = store.CompleteSubmission(ctx, "davi", monday, core.ChecklistItems{}, at.Add(time.Hour))
	assert.ErrorIs(t, err, core.ErrAlreadySubmitted)
	assert.ErrorIs(t, store.SaveAnswers(ctx, "davi", monday, core.ChecklistItems{}), core.ErrAlreadySubmitted)

	sub, err = store.GetSubmission(ctx, "davi", monday)
	require.NoError(t, err)
	assert.Equal(t, "OK", sub.Items["Motor"]["verificar óleo do motor"], "answers unchanged")

	// Next week is separate
	next, err := store.GetSubmission(ctx, "davi", monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestStore_CorruptWeekStartIsAnError(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "commission.db")
	store, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.FetchOrCreateSubmission(ctx, "davi", monday)
	require.NoError(t, err)

	// GIVEN: A row whose week_start no longer parses
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.ExecContext(ctx, "UPDATE checklist_submissions SET week_start = 'not-a-time' WHERE employee_id = 'davi'")
	require.NoError(t, err)

	// THEN: Reading it fails instead of returning a zero week
	sub, err := store.GetSubmission(ctx, "davi", monday)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "week_start")
	assert.Nil(t, sub)
}

func TestStore_ConcurrentCompleteExactlyOneWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.CompleteSubmission(ctx, "davi", monday, core.ChecklistItems{}, monday.Add(time.Duration(i)*time.Minute))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, core.ErrAlreadySubmitted)
		}
	}
	assert.Equal(t, 1, wins)
}

// =============================================================================
// COMMISSIONS, NOTIFICATIONS, SETTINGS
// =============================================================================

func TestStore_Commissions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	march := core.NewPeriod(2025, time.March)

	rec := commission.Record{
		ID: "c1",
		Result: commission.CommissionResult{
			EmployeeID: "davi",
			Period:     march,
			TotalValue: decimal.RequireFromString("10000.00"),
			Tier:       commission.TierLow,
			Percentage: decimal.RequireFromString("0.01"),
			Amount:     decimal.RequireFromString("100.00"),
			Model:      commission.ModelNew,
			ByTruck: []commission.TruckTotal{
				{TruckCode: core.TruckBKO, Count: 2, Value: decimal.RequireFromString("10000.00")},
			},
		},
		PostedAt: monday,
	}
	require.NoError(t, store.SaveCommission(ctx, rec))

	dup := rec
	dup.ID = "c2"
	assert.ErrorIs(t, store.SaveCommission(ctx, dup), core.ErrDuplicateRecord)

	got, err := store.ListCommissions(ctx, commission.Filter{Period: &march})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
	assert.True(t, decimal.RequireFromString("100").Equal(got[0].Result.Amount))
	assert.Equal(t, commission.TierLow, got[0].Result.Tier)
	require.Len(t, got[0].Result.ByTruck, 1)
	assert.Equal(t, 2, got[0].Result.ByTruck[0].Count)

	none, err := store.ListCommissions(ctx, commission.Filter{EmployeeID: "ivaney"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Notifications(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n := core.Notification{
		ID: "n1", EmployeeID: "davi", Type: core.NotificationChecklistReminder,
		Title: "Checklist", Message: "Hoje é seu dia", DedupKey: "reminder:davi:2025-03-10",
		CreatedAt: monday,
	}
	require.NoError(t, store.AddNotification(ctx, n))

	n2 := n
	n2.ID = "n2"
	assert.ErrorIs(t, store.AddNotification(ctx, n2), core.ErrDuplicateRecord)

	require.NoError(t, store.MarkNotificationRead(ctx, "davi", "n1"))
	assert.ErrorIs(t, store.MarkNotificationRead(ctx, "ivaney", "n1"), sqlite.ErrNotFound)

	got, err := store.ListNotifications(ctx, "davi")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Read)
	assert.Equal(t, core.NotificationChecklistReminder, got[0].Type)
}

func TestStore_SettingsVersions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	latest, err := store.LatestSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	v1, err := store.SaveSettings(ctx, `{"cutover_date":"2025-03-01"}`)
	require.NoError(t, err)
	v2, err := store.SaveSettings(ctx, `{"cutover_date":"2025-04-01"}`)
	require.NoError(t, err)
	assert.Greater(t, v2, v1)

	latest, err = store.LatestSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, v2, latest.Version)
	assert.Contains(t, latest.ConfigJSON, "2025-04-01")
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, core.Employee{ID: "davi", Name: "Davi", Role: core.RoleDriver}))
	require.NoError(t, store.Reset(ctx))

	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
