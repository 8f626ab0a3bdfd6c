// Package store provides in-memory implementations of the core collaborators.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/construcosta/commission-engine/commission"
	"github.com/construcosta/commission-engine/core"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu            sync.RWMutex
	employees     map[core.EmployeeID]core.Employee
	deliveries    map[core.EmployeeID][]core.Delivery
	occurrences   map[core.EmployeeID][]core.Occurrence
	submissions   map[weekKey]core.ChecklistSubmission
	notifications map[core.EmployeeID][]core.Notification
	commissions   []commission.Record
	seen          map[string]bool // record IDs and notification dedup keys
	now           func() time.Time
}

type weekKey struct {
	EmployeeID core.EmployeeID
	WeekStart  string
}

func keyFor(employeeID core.EmployeeID, weekStart time.Time) weekKey {
	return weekKey{EmployeeID: employeeID, WeekStart: weekStart.Format("2006-01-02")}
}

func NewMemory() *Memory {
	return &Memory{
		employees:     make(map[core.EmployeeID]core.Employee),
		deliveries:    make(map[core.EmployeeID][]core.Delivery),
		occurrences:   make(map[core.EmployeeID][]core.Occurrence),
		submissions:   make(map[weekKey]core.ChecklistSubmission),
		notifications: make(map[core.EmployeeID][]core.Notification),
		seen:          make(map[string]bool),
		now:           time.Now,
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) GetEmployee(_ context.Context, id core.EmployeeID) (core.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return core.Employee{}, core.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]core.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]core.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// SaveEmployee inserts a new employee or renames an existing one.
func (m *Memory) SaveEmployee(_ context.Context, e core.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.employees[e.ID]
	if !ok {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = m.now()
		}
		m.employees[e.ID] = e
		return nil
	}

	if existing.AssignedDay != nil && e.AssignedDay != nil && *e.AssignedDay != *existing.AssignedDay {
		return core.ErrAssignedDayImmutable
	}
	existing.Name = e.Name
	if existing.AssignedDay == nil && e.AssignedDay != nil {
		day := *e.AssignedDay
		existing.AssignedDay = &day
	}
	m.employees[e.ID] = existing
	return nil
}

// =============================================================================
// FEEDS (append-only)
// =============================================================================

// AppendDelivery adds a delivery, keeping each employee's slice time-ordered.
func (m *Memory) AppendDelivery(_ context.Context, d core.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seen["delivery:"+string(d.ID)] {
		return core.ErrDuplicateRecord
	}
	ds := m.deliveries[d.EmployeeID]

	// Binary search for insertion point
	i := sort.Search(len(ds), func(i int) bool {
		return ds[i].DeliveredAt.After(d.DeliveredAt)
	})
	ds = append(ds, core.Delivery{})
	copy(ds[i+1:], ds[i:])
	ds[i] = d
	m.deliveries[d.EmployeeID] = ds

	m.seen["delivery:"+string(d.ID)] = true
	return nil
}

func (m *Memory) AppendOccurrence(_ context.Context, o core.Occurrence) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seen["occurrence:"+string(o.ID)] {
		return core.ErrDuplicateRecord
	}
	occs := m.occurrences[o.EmployeeID]
	i := sort.Search(len(occs), func(i int) bool {
		return occs[i].OccurredAt.After(o.OccurredAt)
	})
	occs = append(occs, core.Occurrence{})
	copy(occs[i+1:], occs[i:])
	occs[i] = o
	m.occurrences[o.EmployeeID] = occs

	m.seen["occurrence:"+string(o.ID)] = true
	return nil
}

func (m *Memory) DeliveriesInRange(_ context.Context, employeeID core.EmployeeID, from, to time.Time) ([]core.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []core.Delivery
	for _, d := range m.deliveries[employeeID] {
		if !d.DeliveredAt.Before(from) && d.DeliveredAt.Before(to) {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *Memory) OccurrencesInRange(_ context.Context, employeeID core.EmployeeID, from, to time.Time) ([]core.Occurrence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []core.Occurrence
	for _, o := range m.occurrences[employeeID] {
		if !o.OccurredAt.Before(from) && o.OccurredAt.Before(to) {
			result = append(result, o)
		}
	}
	return result, nil
}

// =============================================================================
// CHECKLIST
// =============================================================================

func (m *Memory) FetchOrCreateSubmission(_ context.Context, employeeID core.EmployeeID, weekStart time.Time) (core.ChecklistSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := keyFor(employeeID, weekStart)
	if s, ok := m.submissions[k]; ok {
		return cloneSubmission(s), nil
	}
	now := m.now()
	s := core.ChecklistSubmission{
		EmployeeID: employeeID,
		WeekStart:  weekStart,
		Items:      core.ChecklistItems{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.submissions[k] = s
	return cloneSubmission(s), nil
}

func (m *Memory) GetSubmission(_ context.Context, employeeID core.EmployeeID, weekStart time.Time) (*core.ChecklistSubmission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.submissions[keyFor(employeeID, weekStart)]
	if !ok {
		return nil, nil
	}
	c := cloneSubmission(s)
	return &c, nil
}

func (m *Memory) SaveAnswers(_ context.Context, employeeID core.EmployeeID, weekStart time.Time, items core.ChecklistItems) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := keyFor(employeeID, weekStart)
	s, ok := m.submissions[k]
	if !ok {
		s = core.ChecklistSubmission{EmployeeID: employeeID, WeekStart: weekStart, CreatedAt: m.now()}
	}
	if s.Completed {
		return core.ErrAlreadySubmitted
	}
	s.Items = items.Clone()
	s.UpdatedAt = m.now()
	m.submissions[k] = s
	return nil
}

// CompleteSubmission flips Completed under the write lock, so exactly one
// concurrent submit wins.
func (m *Memory) CompleteSubmission(_ context.Context, employeeID core.EmployeeID, weekStart time.Time, items core.ChecklistItems, at time.Time) (core.ChecklistSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := keyFor(employeeID, weekStart)
	s, ok := m.submissions[k]
	if !ok {
		s = core.ChecklistSubmission{EmployeeID: employeeID, WeekStart: weekStart, CreatedAt: at}
	}
	if s.Completed {
		return core.ChecklistSubmission{}, core.ErrAlreadySubmitted
	}
	submittedAt := at
	s.Items = items.Clone()
	s.Completed = true
	s.SubmittedAt = &submittedAt
	s.UpdatedAt = at
	m.submissions[k] = s
	return cloneSubmission(s), nil
}

func cloneSubmission(s core.ChecklistSubmission) core.ChecklistSubmission {
	s.Items = s.Items.Clone()
	if s.SubmittedAt != nil {
		at := *s.SubmittedAt
		s.SubmittedAt = &at
	}
	return s
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func (m *Memory) AddNotification(_ context.Context, n core.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n.DedupKey != "" {
		if m.seen["notification:"+n.DedupKey] {
			return core.ErrDuplicateRecord
		}
		m.seen["notification:"+n.DedupKey] = true
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = m.now()
	}
	m.notifications[n.EmployeeID] = append(m.notifications[n.EmployeeID], n)
	return nil
}

func (m *Memory) ListNotifications(_ context.Context, employeeID core.EmployeeID) ([]core.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]core.Notification, len(m.notifications[employeeID]))
	copy(result, m.notifications[employeeID])
	return result, nil
}

// =============================================================================
// COMMISSIONS
// =============================================================================

func (m *Memory) SaveCommission(_ context.Context, r commission.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "commission:" + string(r.Result.EmployeeID) + ":" + r.Result.Period.String()
	if m.seen[key] {
		return core.ErrDuplicateRecord
	}
	m.seen[key] = true
	m.commissions = append(m.commissions, r)
	return nil
}

func (m *Memory) ListCommissions(_ context.Context, f commission.Filter) ([]commission.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []commission.Record
	for _, r := range m.commissions {
		if f.Matches(r) {
			result = append(result, r)
		}
	}
	return result, nil
}

// Compile-time interface checks
var (
	_ core.EmployeeStore     = (*Memory)(nil)
	_ core.DeliveryFeed      = (*Memory)(nil)
	_ core.OccurrenceFeed    = (*Memory)(nil)
	_ core.RecordLog         = (*Memory)(nil)
	_ core.ChecklistStore    = (*Memory)(nil)
	_ core.NotificationStore = (*Memory)(nil)
	_ commission.Store       = (*Memory)(nil)
)
