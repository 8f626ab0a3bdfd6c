/*
handlers.go - HTTP API handlers for the commission engine

PURPOSE:
  Exposes the commission engine via REST API. Handles HTTP request/response,
  JSON serialization, validation, and delegates to the commission and
  checklist services.

ENDPOINTS:
  Employees:
    GET    /api/employees                          List all employees
    POST   /api/employees                          Create (or rename) employee
    GET    /api/employees/{id}                     Get employee
    GET    /api/employees/{id}/dashboard           Gated commission view
    GET    /api/employees/{id}/deliveries          Deliveries in a period
    GET    /api/employees/{id}/occurrences         Occurrences in a period
    GET    /api/employees/{id}/notifications       Notifications
    POST   /api/employees/{id}/notifications/{nid}/read

  Checklist (drivers with an assigned day only, 403 otherwise):
    GET    /api/employees/{id}/checklist/template
    GET    /api/employees/{id}/checklist/current   Fetch or create this week
    PUT    /api/employees/{id}/checklist/answers   Save in-progress answers
    POST   /api/employees/{id}/checklist/submit    Complete the week

  Records (admin):
    POST   /api/deliveries
    POST   /api/occurrences

  Commissions (admin, ungated):
    GET    /api/commissions/preview                ?employee_id=&period=
    POST   /api/commissions/post                   Persist and notify
    GET    /api/commissions                        Posted history
    GET    /api/commissions/statistics             ?period=
    GET    /api/reports/monthly                    JSON report
    GET    /api/reports/monthly.xlsx               Workbook export

  Settings:
    GET    /api/settings
    PUT    /api/settings                           New version, applied live

PERIODS:
  `period` query parameters are YYYY-MM. When omitted the current month in
  the business timezone is used.

ERROR HANDLING:
  Errors are returned as JSON with an HTTP status derived from the error:
  - 400: Validation errors, invalid period, incomplete checklist
  - 403: Checklist not required for this employee, outside window
  - 404: Employee or notification not found
  - 409: Already submitted, duplicate posting, assigned day change
  - 422: Stored records disagree with settings (unknown truck code)
  - 500: Internal errors (logged)

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/construcosta/commission-engine/checklist"
	"github.com/construcosta/commission-engine/commission"
	"github.com/construcosta/commission-engine/core"
	"github.com/construcosta/commission-engine/factory"
	"github.com/construcosta/commission-engine/report"
	"github.com/construcosta/commission-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence the handlers read and write directly.
// *sqlite.Store implements it.
type Store interface {
	core.EmployeeStore
	core.RecordLog
	core.DeliveryFeed
	core.OccurrenceFeed
	core.NotificationStore
	MarkNotificationRead(ctx context.Context, employeeID core.EmployeeID, id string) error
	Reset(ctx context.Context) error
}

// SettingsStore keeps the versioned settings documents.
type SettingsStore interface {
	SaveSettings(ctx context.Context, configJSON string) (int, error)
	LatestSettings(ctx context.Context) (*sqlite.SettingsRecord, error)
}

// Deps are the Handler's collaborators.
type Deps struct {
	Store       Store
	Settings    SettingsStore
	Commissions *commission.Service
	Checklists  *checklist.Service
	Reports     *report.Service
	Factory     *factory.SettingsFactory
	Log         *slog.Logger
	Clock       func() time.Time
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       Store
	Settings    SettingsStore
	Commissions *commission.Service
	Checklists  *checklist.Service
	Reports     *report.Service
	Factory     *factory.SettingsFactory
	Log         *slog.Logger
	Clock       func() time.Time

	validate *validator.Validate

	// settingsMu serializes settings writes so the stored version and the
	// live engine change together.
	settingsMu sync.Mutex

	// Track currently loaded scenario
	scenarioMu      sync.Mutex
	currentScenario string
}

// NewHandler creates a handler. Nil Log and Clock default to slog.Default
// and time.Now.
func NewHandler(d Deps) *Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Factory == nil {
		d.Factory = factory.NewSettingsFactory(nil)
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		Store:       d.Store,
		Settings:    d.Settings,
		Commissions: d.Commissions,
		Checklists:  d.Checklists,
		Reports:     d.Reports,
		Factory:     d.Factory,
		Log:         d.Log,
		Clock:       d.Clock,
		validate:    v,
	}
}

func (h *Handler) location() *time.Location {
	return h.Commissions.Settings().Location
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	const op = "api.ListEmployees"

	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, r, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	const op = "api.GetEmployee"

	emp, err := h.Store.GetEmployee(r.Context(), employeeParam(r))
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEmployeeDTO(emp))
}

// CreateEmployee creates an employee, or renames an existing one. An
// assigned day can be added later but never changed.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	const op = "api.CreateEmployee"

	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	day, err := core.ParseOptionalWeekday(req.AssignedDay)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid assigned_day", err)
		return
	}
	role := core.Role(req.Role)
	if day != nil && role != core.RoleDriver {
		writeError(w, r, http.StatusBadRequest, "Only drivers have an assigned day", nil)
		return
	}

	ctx := r.Context()
	emp := core.Employee{
		ID:          core.EmployeeID(req.ID),
		Name:        req.Name,
		Role:        role,
		AssignedDay: day,
		CreatedAt:   h.Clock(),
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	saved, err := h.Store.GetEmployee(ctx, emp.ID)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toEmployeeDTO(saved))
}

// =============================================================================
// DASHBOARD
// =============================================================================

// GetDashboard returns the employee's commission for a period, withheld
// while this week's checklist is pending.
// GET /api/employees/{id}/dashboard?period=YYYY-MM
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.GetDashboard"
	ctx := r.Context()

	period, err := h.periodParam(r)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	id := employeeParam(r)
	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	outcome, err := h.Commissions.ForEmployee(ctx, id, period)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	dto := DashboardDTO{
		Employee:          toEmployeeDTO(emp),
		Period:            period.String(),
		ChecklistRequired: emp.IsGated(),
	}

	switch o := outcome.(type) {
	case commission.Disclosed:
		result := o.Result
		dto.Status = StatusDisclosed
		dto.Commission = &result
		dto.ChecklistCompleted = emp.IsGated()
	case commission.GateBlocked:
		dto.Status = StatusPending
		dto.PromptToday = o.PromptToday
		dto.WeekStart = o.WeekStart.Format(dateLayout)
	}

	writeJSON(w, r, http.StatusOK, dto)
}

// =============================================================================
// DELIVERIES & OCCURRENCES
// =============================================================================

// CreateDelivery registers a delivery.
// POST /api/deliveries
func (h *Handler) CreateDelivery(w http.ResponseWriter, r *http.Request) {
	const op = "api.CreateDelivery"
	ctx := r.Context()

	var req CreateDeliveryRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Value.IsNegative() {
		writeError(w, r, http.StatusBadRequest, "value must not be negative", nil)
		return
	}
	if req.DeliveredAt.IsZero() {
		writeError(w, r, http.StatusBadRequest, "delivered_at is required", nil)
		return
	}
	code := core.TruckCode(req.TruckCode)
	if _, ok := h.Commissions.Settings().Rates.Rate(code); !ok {
		writeError(w, r, http.StatusBadRequest, "Unknown truck code", fmt.Errorf("%w: %s", core.ErrUnknownTruckCode, code))
		return
	}
	if _, err := h.Store.GetEmployee(ctx, core.EmployeeID(req.EmployeeID)); err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	d := core.Delivery{
		ID:          core.DeliveryID(req.ID),
		EmployeeID:  core.EmployeeID(req.EmployeeID),
		TruckCode:   code,
		Value:       req.Value,
		DeliveredAt: req.DeliveredAt,
		CreatedAt:   h.Clock(),
	}
	if d.ID == "" {
		d.ID = core.DeliveryID(uuid.NewString())
	}
	if err := h.Store.AppendDelivery(ctx, d); err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toDeliveryDTO(d))
}

// CreateOccurrence registers an incident.
// POST /api/occurrences
func (h *Handler) CreateOccurrence(w http.ResponseWriter, r *http.Request) {
	const op = "api.CreateOccurrence"
	ctx := r.Context()

	var req CreateOccurrenceRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.OccurredAt.IsZero() {
		writeError(w, r, http.StatusBadRequest, "occurred_at is required", nil)
		return
	}
	if _, err := h.Store.GetEmployee(ctx, core.EmployeeID(req.EmployeeID)); err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	o := core.Occurrence{
		ID:          core.OccurrenceID(req.ID),
		EmployeeID:  core.EmployeeID(req.EmployeeID),
		Type:        core.OccurrenceType(req.Type),
		Description: req.Description,
		TruckCode:   core.TruckCode(req.TruckCode),
		OccurredAt:  req.OccurredAt,
		CreatedAt:   h.Clock(),
	}
	if o.ID == "" {
		o.ID = core.OccurrenceID(uuid.NewString())
	}
	if err := h.Store.AppendOccurrence(ctx, o); err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toOccurrenceDTO(o))
}

// ListDeliveries returns an employee's deliveries in a period.
// GET /api/employees/{id}/deliveries?period=YYYY-MM
func (h *Handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	const op = "api.ListDeliveries"
	ctx := r.Context()

	id, period, ok := h.employeePeriod(w, r, op)
	if !ok {
		return
	}
	loc := h.location()
	deliveries, err := h.Store.DeliveriesInRange(ctx, id, period.Start(loc), period.Next(loc))
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	dtos := make([]DeliveryDTO, len(deliveries))
	for i, d := range deliveries {
		dtos[i] = toDeliveryDTO(d)
	}
	writeJSON(w, r, http.StatusOK, dtos)
}

// ListOccurrences returns an employee's occurrences in a period.
// GET /api/employees/{id}/occurrences?period=YYYY-MM
func (h *Handler) ListOccurrences(w http.ResponseWriter, r *http.Request) {
	const op = "api.ListOccurrences"
	ctx := r.Context()

	id, period, ok := h.employeePeriod(w, r, op)
	if !ok {
		return
	}
	loc := h.location()
	occurrences, err := h.Store.OccurrencesInRange(ctx, id, period.Start(loc), period.Next(loc))
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	dtos := make([]OccurrenceDTO, len(occurrences))
	for i, o := range occurrences {
		dtos[i] = toOccurrenceDTO(o)
	}
	writeJSON(w, r, http.StatusOK, dtos)
}

// =============================================================================
// CHECKLIST
// =============================================================================

// GetChecklistTemplate returns the inspection template.
func (h *Handler) GetChecklistTemplate(w http.ResponseWriter, r *http.Request) {
	const op = "api.GetChecklistTemplate"

	emp, err := h.Store.GetEmployee(r.Context(), employeeParam(r))
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	if !emp.IsGated() {
		h.writeDomainError(w, r, op, core.ErrChecklistNotRequired)
		return
	}
	writeJSON(w, r, http.StatusOK, h.Checklists.Template())
}

// GetCurrentChecklist returns this week's checklist, creating it on first
// request.
func (h *Handler) GetCurrentChecklist(w http.ResponseWriter, r *http.Request) {
	const op = "api.GetCurrentChecklist"

	view, err := h.Checklists.Current(r.Context(), employeeParam(r))
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toChecklistDTO(view.Employee, view.Submission, view.Gate.PromptToday))
}

// SaveChecklistAnswers stores in-progress answers.
func (h *Handler) SaveChecklistAnswers(w http.ResponseWriter, r *http.Request) {
	const op = "api.SaveChecklistAnswers"
	ctx := r.Context()

	var req ChecklistAnswersRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := employeeParam(r)
	if _, err := h.Checklists.SaveAnswers(ctx, id, req.Items); err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	view, err := h.Checklists.Current(ctx, id)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toChecklistDTO(view.Employee, view.Submission, view.Gate.PromptToday))
}

// SubmitChecklist completes this week's checklist.
func (h *Handler) SubmitChecklist(w http.ResponseWriter, r *http.Request) {
	const op = "api.SubmitChecklist"
	ctx := r.Context()

	var req ChecklistAnswersRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := employeeParam(r)
	sub, err := h.Checklists.Submit(ctx, id, req.Items)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	h.Log.Info("checklist submitted",
		slog.String("op", op),
		slog.String("employee_id", string(id)),
		slog.String("week_start", sub.WeekStart.Format(dateLayout)))

	writeJSON(w, r, http.StatusOK, toChecklistDTO(emp, sub, false))
}

// =============================================================================
// COMMISSIONS
// =============================================================================

// PreviewCommission computes ungated figures without storing them.
// GET /api/commissions/preview?employee_id=&period=
func (h *Handler) PreviewCommission(w http.ResponseWriter, r *http.Request) {
	const op = "api.PreviewCommission"

	id := core.EmployeeID(r.URL.Query().Get("employee_id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "employee_id is required", nil)
		return
	}
	period, err := h.periodParam(r)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	result, err := h.Commissions.Preview(r.Context(), id, period)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// PostCommission persists a period's commission and notifies the employee.
// POST /api/commissions/post
func (h *Handler) PostCommission(w http.ResponseWriter, r *http.Request) {
	const op = "api.PostCommission"

	var req PostCommissionRequest
	if !h.decode(w, r, &req) {
		return
	}
	period, err := core.ParsePeriod(req.Period)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	rec, err := h.Commissions.Post(r.Context(), core.EmployeeID(req.EmployeeID), period)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	h.Log.Info("commission posted",
		slog.String("op", op),
		slog.String("employee_id", req.EmployeeID),
		slog.String("period", period.String()),
		slog.String("amount", rec.Result.Amount.StringFixed(2)))

	writeJSON(w, r, http.StatusCreated, toCommissionRecordDTO(rec))
}

// ListCommissions returns posted commissions.
// GET /api/commissions?employee_id=&period=
func (h *Handler) ListCommissions(w http.ResponseWriter, r *http.Request) {
	const op = "api.ListCommissions"

	f := commission.Filter{EmployeeID: core.EmployeeID(r.URL.Query().Get("employee_id"))}
	if s := r.URL.Query().Get("period"); s != "" {
		period, err := core.ParsePeriod(s)
		if err != nil {
			h.writeDomainError(w, r, op, err)
			return
		}
		f.Period = &period
	}

	records, err := h.Commissions.History(r.Context(), f)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	dtos := make([]CommissionRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toCommissionRecordDTO(rec)
	}
	writeJSON(w, r, http.StatusOK, dtos)
}

// GetStatistics summarizes posted commissions for a period.
// GET /api/commissions/statistics?period=
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	const op = "api.GetStatistics"

	period, err := h.periodParam(r)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	summary, err := h.Commissions.Statistics(r.Context(), period)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"period":  period.String(),
		"summary": summary,
	})
}

// =============================================================================
// REPORTS
// =============================================================================

// GetMonthlyReport returns every employee's figures for a period.
// GET /api/reports/monthly?period=
func (h *Handler) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.GetMonthlyReport"

	rep, ok := h.monthlyReport(w, r, op)
	if !ok {
		return
	}

	dto := MonthlyReportDTO{
		Period:      rep.Period.String(),
		GeneratedAt: rep.GeneratedAt.Format(time.RFC3339),
		Rows:        make([]ReportRowDTO, len(rep.Rows)),
		Summary:     rep.Summary,
	}
	for i, row := range rep.Rows {
		dto.Rows[i] = ReportRowDTO{
			Employee:   toEmployeeDTO(row.Employee),
			Commission: row.Result,
			Error:      row.Error,
		}
	}
	writeJSON(w, r, http.StatusOK, dto)
}

// ExportMonthlyReport streams the monthly report as an .xlsx workbook.
// GET /api/reports/monthly.xlsx?period=
func (h *Handler) ExportMonthlyReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.ExportMonthlyReport"

	rep, ok := h.monthlyReport(w, r, op)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="comissoes-%s.xlsx"`, rep.Period))
	if err := report.WriteExcel(w, rep); err != nil {
		// Headers are gone; all we can do is log.
		h.Log.Error("write workbook", slog.String("op", op), slog.String("error", err.Error()))
	}
}

func (h *Handler) monthlyReport(w http.ResponseWriter, r *http.Request, op string) (report.Report, bool) {
	period, err := h.periodParam(r)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return report.Report{}, false
	}
	rep, err := h.Reports.Monthly(r.Context(), period)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return report.Report{}, false
	}
	return rep, true
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings returns the settings in effect.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	const op = "api.GetSettings"

	version := 0
	rec, err := h.Settings.LatestSettings(r.Context())
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	if rec != nil {
		version = rec.Version
	}
	writeJSON(w, r, http.StatusOK, SettingsResponse{
		Version:  version,
		Settings: h.Factory.ToJSON(h.Commissions.Settings()),
	})
}

// UpdateSettings stores a new settings version and applies it. Posted
// commissions are not recomputed.
// PUT /api/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	const op = "api.UpdateSettings"

	var req factory.SettingsJSON
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	settings, err := h.Factory.FromJSON(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid settings", err)
		return
	}
	doc, err := h.Factory.Marshal(settings)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}

	h.settingsMu.Lock()
	defer h.settingsMu.Unlock()

	version, err := h.Settings.SaveSettings(r.Context(), doc)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	if err := h.Commissions.UpdateSettings(settings); err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	h.Log.Info("settings updated", slog.String("op", op), slog.Int("version", version))

	writeJSON(w, r, http.StatusOK, SettingsResponse{
		Version:  version,
		Settings: h.Factory.ToJSON(settings),
	})
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// ListNotifications returns an employee's notifications, newest first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	const op = "api.ListNotifications"

	notifications, err := h.Store.ListNotifications(r.Context(), employeeParam(r))
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	dtos := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = toNotificationDTO(n)
	}
	writeJSON(w, r, http.StatusOK, dtos)
}

// MarkNotificationRead flags one notification as read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	const op = "api.MarkNotificationRead"

	if err := h.Store.MarkNotificationRead(r.Context(), employeeParam(r), chi.URLParam(r, "nid")); err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, r, status, resp)
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case core.IsNotFound(err), errors.Is(err, sqlite.ErrNotFound):
		return http.StatusNotFound
	case core.IsForbidden(err):
		return http.StatusForbidden
	case core.IsConflict(err):
		return http.StatusConflict
	case core.IsClientError(err):
		return http.StatusBadRequest
	case core.IsIntegrityError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var incomplete *core.IncompleteChecklistError
	if errors.As(err, &incomplete) {
		writeJSON(w, r, http.StatusBadRequest, IncompleteChecklistResponse{
			Error:   err.Error(),
			Missing: incomplete.Missing,
		})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Log.Error("request failed", slog.String("op", op), slog.String("error", err.Error()))
		writeError(w, r, status, "Internal error", nil)
		return
	}
	writeError(w, r, status, http.StatusText(status), err)
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, r, http.StatusBadRequest, "Validation failed", err)
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, e := range verrs {
			fields[e.Field()] = e.Tag()
		}
		writeJSON(w, r, http.StatusBadRequest, ValidationErrorResponse{Error: "Validation failed", Fields: fields})
		return false
	}
	return true
}

func employeeParam(r *http.Request) core.EmployeeID {
	return core.EmployeeID(chi.URLParam(r, "id"))
}

// periodParam reads ?period=YYYY-MM, defaulting to the current month.
func (h *Handler) periodParam(r *http.Request) (core.Period, error) {
	s := r.URL.Query().Get("period")
	if s == "" {
		return core.PeriodOf(h.Clock(), h.location()), nil
	}
	return core.ParsePeriod(s)
}

func (h *Handler) employeePeriod(w http.ResponseWriter, r *http.Request, op string) (core.EmployeeID, core.Period, bool) {
	period, err := h.periodParam(r)
	if err != nil {
		h.writeDomainError(w, r, op, err)
		return "", core.Period{}, false
	}
	id := employeeParam(r)
	if _, err := h.Store.GetEmployee(r.Context(), id); err != nil {
		h.writeDomainError(w, r, op, err)
		return "", core.Period{}, false
	}
	return id, period, true
}
