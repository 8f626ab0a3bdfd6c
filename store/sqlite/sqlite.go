/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements every persistence interface the commission engine consumes
  using SQLite. The engine never sees SQL: services load records through
  the core interfaces and hand plain values to the pure core.

INTERFACES IMPLEMENTED:
  core.EmployeeStore:     Employees (assigned day write-once)
  core.DeliveryFeed:      Deliveries by employee and range
  core.OccurrenceFeed:    Occurrences by employee and range
  core.RecordLog:         Append deliveries and occurrences
  core.ChecklistStore:    Weekly submissions
  core.NotificationStore: Employee notifications
  commission.Store:       Posted commissions

APPEND-ONLY ENFORCEMENT:
  - No UPDATE or DELETE statements on deliveries and occurrences
  - Posted commissions are unique per (employee, period)

SUBMIT ATOMICITY:
  CompleteSubmission is a single conditional UPDATE
  (... WHERE completed = 0). The first writer flips the flag; every later
  attempt affects zero rows and gets core.ErrAlreadySubmitted.

KEY TABLES:
  employees:             Drivers and helpers
  deliveries:            Immutable delivery log
  occurrences:           Immutable incident log
  checklist_submissions: One row per (employee, week)
  commissions:           Posted results
  notifications:         Per-employee inbox
  settings:              Versioned commission settings (JSON)

TIMES:
  Instants are stored as RFC3339 in UTC so string comparison orders them.
  Week starts keep their offset and are keyed by calendar date.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, WAL journal for readers.

USAGE:
  store, err := sqlite.New("./data/commission.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - core/store.go: Interface definitions
  - core/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/construcosta/commission-engine/commission"
	"github.com/construcosta/commission-engine/core"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		assigned_day TEXT,
		created_at TEXT NOT NULL
	);

	-- Deliveries (append-only)
	CREATE TABLE IF NOT EXISTS deliveries (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		truck_code TEXT NOT NULL,
		value TEXT NOT NULL,
		delivered_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Hot path: aggregation by employee and month
	CREATE INDEX IF NOT EXISTS idx_deliveries_employee_date
		ON deliveries(employee_id, delivered_at);

	-- Occurrences (append-only)
	CREATE TABLE IF NOT EXISTS occurrences (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		truck_code TEXT,
		occurred_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_occurrences_employee_date
		ON occurrences(employee_id, occurred_at);

	CREATE TABLE IF NOT EXISTS checklist_submissions (
		employee_id TEXT NOT NULL,
		week_key TEXT NOT NULL,
		week_start TEXT NOT NULL,
		items_json TEXT NOT NULL DEFAULT '{}',
		completed INTEGER NOT NULL DEFAULT 0,
		submitted_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, week_key)
	);

	CREATE TABLE IF NOT EXISTS commissions (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		period TEXT NOT NULL,
		model TEXT NOT NULL,
		tier TEXT,
		amount TEXT NOT NULL,
		result_json TEXT NOT NULL,
		posted_at TEXT NOT NULL,
		UNIQUE (employee_id, period)
	);

	CREATE INDEX IF NOT EXISTS idx_commissions_period
		ON commissions(period);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		dedup_key TEXT UNIQUE,
		read INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_employee
		ON notifications(employee_id, created_at DESC);

	-- Commission settings, one row per version
	CREATE TABLE IF NOT EXISTS settings (
		version INTEGER PRIMARY KEY AUTOINCREMENT,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE (core.EmployeeStore)
// =============================================================================

// SaveEmployee inserts a new employee or renames an existing one. The role
// never changes. A nil AssignedDay keeps the stored one; a different day is
// rejected once one is set.
func (s *Store) SaveEmployee(ctx context.Context, emp core.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existingDay sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT assigned_day FROM employees WHERE id = ?", emp.ID).Scan(&existingDay)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		createdAt := emp.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO employees (id, name, role, assigned_day, created_at) VALUES (?, ?, ?, ?, ?)",
			emp.ID, emp.Name, emp.Role, nullString(emp.AssignedDayName()), formatTime(createdAt),
		)
	case err != nil:
		return err
	default:
		if existingDay.Valid && emp.AssignedDay != nil && existingDay.String != emp.AssignedDayName() {
			return core.ErrAssignedDayImmutable
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE employees SET name = ?, assigned_day = COALESCE(assigned_day, ?) WHERE id = ?",
			emp.Name, nullString(emp.AssignedDayName()), emp.ID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return tx.Commit()
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id core.EmployeeID) (core.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, role, assigned_day, created_at FROM employees WHERE id = ?", id)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Employee{}, core.ErrEmployeeNotFound
	}
	return emp, err
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, role, assigned_day, created_at FROM employees ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []core.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (core.Employee, error) {
	var emp core.Employee
	var day sql.NullString
	var createdAt string
	if err := row.Scan(&emp.ID, &emp.Name, &emp.Role, &day, &createdAt); err != nil {
		return core.Employee{}, err
	}
	if day.Valid {
		wd, err := core.ParseOptionalWeekday(day.String)
		if err != nil {
			return core.Employee{}, fmt.Errorf("employee %s: %w", emp.ID, err)
		}
		emp.AssignedDay = wd
	}
	emp.CreatedAt = parseTime(createdAt)
	return emp, nil
}

// =============================================================================
// RECORD LOG (core.RecordLog, core.DeliveryFeed, core.OccurrenceFeed)
// =============================================================================

// AppendDelivery adds a delivery. Deliveries are never updated.
func (s *Store) AppendDelivery(ctx context.Context, d core.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deliveries (id, employee_id, truck_code, value, delivered_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.EmployeeID, d.TruckCode, d.Value.String(),
		formatTime(d.DeliveredAt), formatTime(createdAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return core.ErrDuplicateRecord
		}
		return fmt.Errorf("failed to append delivery: %w", err)
	}
	return nil
}

// AppendOccurrence adds an occurrence. Occurrences are never updated.
func (s *Store) AppendOccurrence(ctx context.Context, o core.Occurrence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO occurrences (id, employee_id, type, description, truck_code, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.EmployeeID, o.Type, o.Description, nullString(string(o.TruckCode)),
		formatTime(o.OccurredAt), formatTime(createdAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return core.ErrDuplicateRecord
		}
		return fmt.Errorf("failed to append occurrence: %w", err)
	}
	return nil
}

// DeliveriesInRange returns deliveries in [from, to), oldest first.
func (s *Store) DeliveriesInRange(ctx context.Context, employeeID core.EmployeeID, from, to time.Time) ([]core.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, truck_code, value, delivered_at, created_at
		FROM deliveries
		WHERE employee_id = ? AND delivered_at >= ? AND delivered_at < ?
		ORDER BY delivered_at, id`,
		employeeID, formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []core.Delivery
	for rows.Next() {
		var d core.Delivery
		var value, deliveredAt, createdAt string
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.TruckCode, &value, &deliveredAt, &createdAt); err != nil {
			return nil, err
		}
		d.Value, err = decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("delivery %s: invalid value %q: %w", d.ID, value, err)
		}
		d.DeliveredAt = parseTime(deliveredAt)
		d.CreatedAt = parseTime(createdAt)
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// OccurrencesInRange returns occurrences in [from, to), oldest first.
func (s *Store) OccurrencesInRange(ctx context.Context, employeeID core.EmployeeID, from, to time.Time) ([]core.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, type, description, truck_code, occurred_at, created_at
		FROM occurrences
		WHERE employee_id = ? AND occurred_at >= ? AND occurred_at < ?
		ORDER BY occurred_at, id`,
		employeeID, formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var occurrences []core.Occurrence
	for rows.Next() {
		var o core.Occurrence
		var truck sql.NullString
		var occurredAt, createdAt string
		if err := rows.Scan(&o.ID, &o.EmployeeID, &o.Type, &o.Description, &truck, &occurredAt, &createdAt); err != nil {
			return nil, err
		}
		o.TruckCode = core.TruckCode(truck.String)
		o.OccurredAt = parseTime(occurredAt)
		o.CreatedAt = parseTime(createdAt)
		occurrences = append(occurrences, o)
	}
	return occurrences, rows.Err()
}

// =============================================================================
// CHECKLIST STORE (core.ChecklistStore)
// =============================================================================

const submissionColumns = "employee_id, week_start, items_json, completed, submitted_at, created_at, updated_at"

// FetchOrCreateSubmission returns the week's submission, inserting an empty
// one on first request.
func (s *Store) FetchOrCreateSubmission(ctx context.Context, employeeID core.EmployeeID, weekStart time.Time) (core.ChecklistSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := formatTime(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO checklist_submissions (employee_id, week_key, week_start, items_json, completed, created_at, updated_at)
		VALUES (?, ?, ?, '{}', 0, ?, ?)`,
		employeeID, weekKey(weekStart), weekStart.Format(time.RFC3339), now, now,
	)
	if err != nil {
		return core.ChecklistSubmission{}, fmt.Errorf("failed to create submission: %w", err)
	}

	sub, err := s.getSubmission(ctx, employeeID, weekStart)
	if err != nil {
		return core.ChecklistSubmission{}, err
	}
	return *sub, nil
}

// GetSubmission returns nil when the week has no submission.
func (s *Store) GetSubmission(ctx context.Context, employeeID core.EmployeeID, weekStart time.Time) (*core.ChecklistSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, err := s.getSubmission(ctx, employeeID, weekStart)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

func (s *Store) getSubmission(ctx context.Context, employeeID core.EmployeeID, weekStart time.Time) (*core.ChecklistSubmission, error) {
	var sub core.ChecklistSubmission
	var weekStartStr, itemsJSON, createdAt, updatedAt string
	var submittedAt sql.NullString
	var completed int

	err := s.db.QueryRowContext(ctx,
		"SELECT "+submissionColumns+" FROM checklist_submissions WHERE employee_id = ? AND week_key = ?",
		employeeID, weekKey(weekStart),
	).Scan(&sub.EmployeeID, &weekStartStr, &itemsJSON, &completed, &submittedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(itemsJSON), &sub.Items); err != nil {
		return nil, fmt.Errorf("submission %s/%s: %w", employeeID, weekKey(weekStart), err)
	}
	if sub.Items == nil {
		sub.Items = core.ChecklistItems{}
	}
	sub.WeekStart, err = time.Parse(time.RFC3339, weekStartStr)
	if err != nil {
		return nil, fmt.Errorf("submission %s/%s: week_start: %w", employeeID, weekKey(weekStart), err)
	}
	sub.Completed = completed == 1
	if submittedAt.Valid {
		t := parseTime(submittedAt.String)
		sub.SubmittedAt = &t
	}
	sub.CreatedAt = parseTime(createdAt)
	sub.UpdatedAt = parseTime(updatedAt)
	return &sub, nil
}

// SaveAnswers replaces the in-progress answers of the week.
func (s *Store) SaveAnswers(ctx context.Context, employeeID core.EmployeeID, weekStart time.Time, items core.ChecklistItems) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return err
	}
	now := formatTime(time.Now())

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checklist_submissions (employee_id, week_key, week_start, items_json, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(employee_id, week_key) DO UPDATE SET
			items_json = excluded.items_json,
			updated_at = excluded.updated_at
		WHERE checklist_submissions.completed = 0`,
		employeeID, weekKey(weekStart), weekStart.Format(time.RFC3339), string(itemsJSON), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save answers: %w", err)
	}

	// The upsert is a no-op on a completed row; report it.
	var completed int
	if err := s.db.QueryRowContext(ctx,
		"SELECT completed FROM checklist_submissions WHERE employee_id = ? AND week_key = ?",
		employeeID, weekKey(weekStart),
	).Scan(&completed); err != nil {
		return err
	}
	if completed == 1 {
		return core.ErrAlreadySubmitted
	}
	return nil
}

// CompleteSubmission flips the week to completed with a conditional UPDATE.
// Exactly one caller wins; the rest get core.ErrAlreadySubmitted.
func (s *Store) CompleteSubmission(ctx context.Context, employeeID core.EmployeeID, weekStart time.Time, items core.ChecklistItems, at time.Time) (core.ChecklistSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return core.ChecklistSubmission{}, err
	}
	atStr := formatTime(at)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.ChecklistSubmission{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO checklist_submissions (employee_id, week_key, week_start, items_json, completed, created_at, updated_at)
		VALUES (?, ?, ?, '{}', 0, ?, ?)`,
		employeeID, weekKey(weekStart), weekStart.Format(time.RFC3339), atStr, atStr,
	); err != nil {
		return core.ChecklistSubmission{}, fmt.Errorf("failed to create submission: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE checklist_submissions
		SET items_json = ?, completed = 1, submitted_at = ?, updated_at = ?
		WHERE employee_id = ? AND week_key = ? AND completed = 0`,
		string(itemsJSON), atStr, atStr, employeeID, weekKey(weekStart),
	)
	if err != nil {
		return core.ChecklistSubmission{}, fmt.Errorf("failed to complete submission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.ChecklistSubmission{}, err
	}
	if n == 0 {
		return core.ChecklistSubmission{}, core.ErrAlreadySubmitted
	}
	if err := tx.Commit(); err != nil {
		return core.ChecklistSubmission{}, err
	}

	sub, err := s.getSubmission(ctx, employeeID, weekStart)
	if err != nil {
		return core.ChecklistSubmission{}, err
	}
	return *sub, nil
}

// =============================================================================
// COMMISSION STORE (commission.Store)
// =============================================================================

// SaveCommission stores a posted result. One per (employee, period).
func (s *Store) SaveCommission(ctx context.Context, r commission.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resultJSON, err := json.Marshal(r.Result)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO commissions (id, employee_id, period, model, tier, amount, result_json, posted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Result.EmployeeID, r.Result.Period.String(), r.Result.Model,
		nullString(string(r.Result.Tier)), r.Result.Amount.StringFixed(2),
		string(resultJSON), formatTime(r.PostedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return core.ErrDuplicateRecord
		}
		return fmt.Errorf("failed to save commission: %w", err)
	}
	return nil
}

// ListCommissions returns posted commissions, newest period first.
func (s *Store) ListCommissions(ctx context.Context, f commission.Filter) ([]commission.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, result_json, posted_at FROM commissions WHERE 1 = 1"
	var args []any
	if f.EmployeeID != "" {
		query += " AND employee_id = ?"
		args = append(args, f.EmployeeID)
	}
	if f.Period != nil {
		query += " AND period = ?"
		args = append(args, f.Period.String())
	}
	query += " ORDER BY period DESC, employee_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []commission.Record
	for rows.Next() {
		var r commission.Record
		var resultJSON, postedAt string
		if err := rows.Scan(&r.ID, &resultJSON, &postedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(resultJSON), &r.Result); err != nil {
			return nil, fmt.Errorf("commission %s: %w", r.ID, err)
		}
		r.PostedAt = parseTime(postedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// NOTIFICATION STORE (core.NotificationStore)
// =============================================================================

// AddNotification stores a notification. A repeated DedupKey is rejected.
func (s *Store) AddNotification(ctx context.Context, n core.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, employee_id, type, title, message, dedup_key, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.EmployeeID, n.Type, n.Title, n.Message, nullString(n.DedupKey),
		boolToInt(n.Read), formatTime(createdAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return core.ErrDuplicateRecord
		}
		return fmt.Errorf("failed to add notification: %w", err)
	}
	return nil
}

// ListNotifications returns an employee's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, employeeID core.EmployeeID) ([]core.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, type, title, message, dedup_key, read, created_at
		FROM notifications WHERE employee_id = ?
		ORDER BY created_at DESC, id`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []core.Notification
	for rows.Next() {
		var n core.Notification
		var dedup sql.NullString
		var read int
		var createdAt string
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.Type, &n.Title, &n.Message, &dedup, &read, &createdAt); err != nil {
			return nil, err
		}
		n.DedupKey = dedup.String
		n.Read = read == 1
		n.CreatedAt = parseTime(createdAt)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flags one notification of an employee as read.
func (s *Store) MarkNotificationRead(ctx context.Context, employeeID core.EmployeeID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ? AND employee_id = ?", id, employeeID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// ErrNotFound is returned for missing rows outside the core vocabulary.
var ErrNotFound = errors.New("not found")

// =============================================================================
// SETTINGS (versioned JSON)
// =============================================================================

// SettingsRecord is one stored version of the commission settings.
type SettingsRecord struct {
	Version    int
	ConfigJSON string
	CreatedAt  time.Time
}

// SaveSettings appends a new settings version and returns its number.
func (s *Store) SaveSettings(ctx context.Context, configJSON string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO settings (config_json, created_at) VALUES (?, ?)",
		configJSON, formatTime(time.Now()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save settings: %w", err)
	}
	id, err := res.LastInsertId()
	return int(id), err
}

// LatestSettings returns the newest settings version, or nil if none.
func (s *Store) LatestSettings(ctx context.Context) (*SettingsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r SettingsRecord
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT version, config_json, created_at FROM settings ORDER BY version DESC LIMIT 1",
	).Scan(&r.Version, &r.ConfigJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset deletes all data. Used by demo scenarios only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"notifications", "commissions", "checklist_submissions", "occurrences", "deliveries", "employees"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// Compile-time interface checks
var (
	_ core.EmployeeStore     = (*Store)(nil)
	_ core.DeliveryFeed      = (*Store)(nil)
	_ core.OccurrenceFeed    = (*Store)(nil)
	_ core.RecordLog         = (*Store)(nil)
	_ core.ChecklistStore    = (*Store)(nil)
	_ core.NotificationStore = (*Store)(nil)
	_ commission.Store       = (*Store)(nil)
)

// Helper functions

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func weekKey(weekStart time.Time) string {
	return weekStart.Format("2006-01-02")
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY constraint failed"))
}
