/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model (core, commission, checklist) from the external API
  contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employees:     EmployeeDTO, CreateEmployeeRequest
  Records:       DeliveryDTO, CreateDeliveryRequest, OccurrenceDTO, CreateOccurrenceRequest
  Checklist:     ChecklistDTO, ChecklistAnswersRequest
  Dashboard:     DashboardDTO
  Commissions:   PostCommissionRequest, CommissionRecordDTO
  Settings:      SettingsResponse
  Notifications: NotificationDTO
  Scenarios:     ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Request structs carry `validate` tags checked with go-playground/validator
  before the handler touches the domain. Rules the tags cannot express
  (known truck codes, non-negative decimals) are checked in handlers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/settings.go: SettingsJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/construcosta/commission-engine/commission"
	"github.com/construcosta/commission-engine/core"
	"github.com/construcosta/commission-engine/factory"
)

const dateLayout = "2006-01-02"

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	AssignedDay string `json:"assigned_day,omitempty"`
	Gated       bool   `json:"checklist_required"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest creates an employee or renames an existing one.
// AssignedDay is an English weekday name and can be set only once.
type CreateEmployeeRequest struct {
	ID          string `json:"id" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,max=120"`
	Role        string `json:"role" validate:"required,oneof=driver helper"`
	AssignedDay string `json:"assigned_day,omitempty"`
}

func toEmployeeDTO(e core.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:          string(e.ID),
		Name:        e.Name,
		Role:        string(e.Role),
		AssignedDay: e.AssignedDayName(),
		Gated:       e.IsGated(),
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// DELIVERIES & OCCURRENCES
// =============================================================================

type DeliveryDTO struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	TruckCode   string          `json:"truck_code"`
	Value       decimal.Decimal `json:"value"`
	DeliveredAt string          `json:"delivered_at"`
}

// CreateDeliveryRequest registers a delivery. ID is generated when empty.
type CreateDeliveryRequest struct {
	ID          string          `json:"id,omitempty" validate:"omitempty,max=64"`
	EmployeeID  string          `json:"employee_id" validate:"required"`
	TruckCode   string          `json:"truck_code" validate:"required,len=3,uppercase"`
	Value       decimal.Decimal `json:"value"`
	DeliveredAt time.Time       `json:"delivered_at"`
}

type OccurrenceDTO struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	TruckCode   string `json:"truck_code,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}

type CreateOccurrenceRequest struct {
	ID          string    `json:"id,omitempty" validate:"omitempty,max=64"`
	EmployeeID  string    `json:"employee_id" validate:"required"`
	Type        string    `json:"type" validate:"required,oneof=delay damage accident missing_goods other"`
	Description string    `json:"description,omitempty" validate:"max=500"`
	TruckCode   string    `json:"truck_code,omitempty" validate:"omitempty,len=3,uppercase"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func toDeliveryDTO(d core.Delivery) DeliveryDTO {
	return DeliveryDTO{
		ID:          string(d.ID),
		EmployeeID:  string(d.EmployeeID),
		TruckCode:   string(d.TruckCode),
		Value:       d.Value,
		DeliveredAt: d.DeliveredAt.Format(time.RFC3339),
	}
}

func toOccurrenceDTO(o core.Occurrence) OccurrenceDTO {
	return OccurrenceDTO{
		ID:          string(o.ID),
		EmployeeID:  string(o.EmployeeID),
		Type:        string(o.Type),
		Description: o.Description,
		TruckCode:   string(o.TruckCode),
		OccurredAt:  o.OccurredAt.Format(time.RFC3339),
	}
}

// =============================================================================
// CHECKLIST
// =============================================================================

// ChecklistDTO is the current week's checklist.
type ChecklistDTO struct {
	UserID      string              `json:"user_id"`
	UserName    string              `json:"user_name"`
	AssignedDay string              `json:"assigned_day"`
	WeekStart   string              `json:"week_start"`
	Completed   bool                `json:"completed"`
	SubmittedAt string              `json:"submitted_at,omitempty"`
	PromptToday bool                `json:"prompt_today"`
	Items       core.ChecklistItems `json:"items"`
}

// ChecklistAnswersRequest carries answers as category -> item -> answer.
type ChecklistAnswersRequest struct {
	Items core.ChecklistItems `json:"items" validate:"required"`
}

// IncompleteChecklistResponse lists what a rejected submit left blank.
type IncompleteChecklistResponse struct {
	Error   string                  `json:"error"`
	Missing []core.ChecklistItemRef `json:"missing"`
}

func toChecklistDTO(emp core.Employee, sub core.ChecklistSubmission, promptToday bool) ChecklistDTO {
	dto := ChecklistDTO{
		UserID:      string(emp.ID),
		UserName:    emp.Name,
		AssignedDay: emp.AssignedDayName(),
		WeekStart:   sub.WeekStart.Format(dateLayout),
		Completed:   sub.Completed,
		PromptToday: promptToday,
		Items:       sub.Items,
	}
	if dto.Items == nil {
		dto.Items = core.ChecklistItems{}
	}
	if sub.SubmittedAt != nil {
		dto.SubmittedAt = sub.SubmittedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Dashboard statuses.
const (
	StatusDisclosed = "disclosed"
	StatusPending   = "pending"
)

// DashboardDTO is what an employee sees for a period. Commission is nil
// while the week's checklist is pending.
type DashboardDTO struct {
	Employee           EmployeeDTO                  `json:"employee"`
	Period             string                       `json:"period"`
	Status             string                       `json:"status"`
	ChecklistRequired  bool                         `json:"checklist_required"`
	ChecklistCompleted bool                         `json:"checklist_completed"`
	PromptToday        bool                         `json:"prompt_today"`
	WeekStart          string                       `json:"week_start,omitempty"`
	Commission         *commission.CommissionResult `json:"commission,omitempty"`
}

// =============================================================================
// COMMISSIONS
// =============================================================================

type PostCommissionRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Period     string `json:"period" validate:"required,datetime=2006-01"`
}

type CommissionRecordDTO struct {
	ID       string                      `json:"id"`
	Result   commission.CommissionResult `json:"result"`
	PostedAt string                      `json:"posted_at"`
}

func toCommissionRecordDTO(r commission.Record) CommissionRecordDTO {
	return CommissionRecordDTO{
		ID:       r.ID,
		Result:   r.Result,
		PostedAt: r.PostedAt.Format(time.RFC3339),
	}
}

// MonthlyReportDTO is the JSON form of the monthly report.
type MonthlyReportDTO struct {
	Period      string             `json:"period"`
	GeneratedAt string             `json:"generated_at"`
	Rows        []ReportRowDTO     `json:"rows"`
	Summary     commission.Summary `json:"summary"`
}

type ReportRowDTO struct {
	Employee   EmployeeDTO                  `json:"employee"`
	Commission *commission.CommissionResult `json:"commission,omitempty"`
	Error      string                       `json:"error,omitempty"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsResponse is the settings in effect and their stored version.
type SettingsResponse struct {
	Version  int                  `json:"version"`
	Settings factory.SettingsJSON `json:"settings"`
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

type NotificationDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

func toNotificationDTO(n core.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ValidationErrorResponse maps each invalid field to the rule it broke.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}
