/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates employees, deliveries
	and occurrences around the 2025-03-01 model cutover.

AVAILABLE SCENARIOS:

	demo-fleet:      Four drivers (Monday..Thursday) and a helper, February
	                 under the legacy model and March under the value model
	tier-boundaries: Four drivers with the same March value and 0/2/4/5
	                 occurrences, one per tier boundary
	legacy-month:    February only, per-truck rates (BKO + GKY = 11.00)

HOW SCENARIOS WORK:
 1. Reset database (clear all data, settings are kept)
 2. Create employees
 3. Append deliveries and occurrences

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "demo-fleet"}

USAGE VIA CLI:

	commctl scenario demo-fleet

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - cmd/commctl: scenario command
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/construcosta/commission-engine/core"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioStore is what a scenario loader writes to.
type ScenarioStore interface {
	core.EmployeeStore
	core.RecordLog
	Reset(ctx context.Context) error
}

var scenarios = []ScenarioDTO{
	{
		ID:          "demo-fleet",
		Name:        "Demo Fleet",
		Description: "Four drivers with checklist days and a helper, across the legacy/value cutover",
	},
	{
		ID:          "tier-boundaries",
		Name:        "Tier Boundaries",
		Description: "Same March value, 0/2/4/5 occurrences: low, medium, medium, high",
	},
	{
		ID:          "legacy-month",
		Name:        "Legacy Month",
		Description: "February deliveries paid per truck rate",
	},
}

var scenarioLoaders = map[string]func(context.Context, *seeder) error{
	"demo-fleet":      loadDemoFleetScenario,
	"tier-boundaries": loadTierBoundariesScenario,
	"legacy-month":    loadLegacyMonthScenario,
}

// Scenarios lists the available scenarios.
func Scenarios() []ScenarioDTO {
	return append([]ScenarioDTO(nil), scenarios...)
}

// LoadScenario resets the store and loads the scenario with the given ID.
func LoadScenario(ctx context.Context, store ScenarioStore, id string) error {
	load, ok := scenarioLoaders[id]
	if !ok {
		return fmt.Errorf("unknown scenario %q", id)
	}
	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := load(ctx, &seeder{store: store}); err != nil {
		return fmt.Errorf("scenario %s: %w", id, err)
	}
	return nil
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, Scenarios())
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	current := h.currentScenario
	h.scenarioMu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, r, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, r, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	const op = "api.LoadScenario"

	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, ok := scenarioLoaders[req.ScenarioID]; !ok {
		writeError(w, r, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}

	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	if err := LoadScenario(r.Context(), h.Store, req.ScenarioID); err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	h.currentScenario = req.ScenarioID

	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":   "ok",
		"scenario": req.ScenarioID,
	})
}

// ResetDatabase clears all data except settings.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	const op = "api.ResetDatabase"

	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.writeDomainError(w, r, op, err)
		return
	}
	h.currentScenario = ""

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func loadDemoFleetScenario(ctx context.Context, s *seeder) error {
	s.driver(ctx, "davi", "Davi", time.Monday)
	s.driver(ctx, "ivaney", "Ivaney", time.Tuesday)
	s.driver(ctx, "claudio", "Claudio", time.Wednesday)
	s.driver(ctx, "valdiney", "Valdiney", time.Thursday)
	s.helper(ctx, "joao", "João")

	// February: legacy model, per-truck rates
	s.delivery(ctx, "davi", core.TruckBKO, "3000.00", feb(3))
	s.delivery(ctx, "davi", core.TruckGKY, "4500.00", feb(10))
	s.delivery(ctx, "davi", core.TruckAUA, "8000.00", feb(17))
	s.delivery(ctx, "ivaney", core.TruckPYW, "2500.00", feb(4))
	s.delivery(ctx, "ivaney", core.TruckNYC, "2700.00", feb(11))
	s.delivery(ctx, "claudio", core.TruckGSD, "5000.00", feb(5))
	s.delivery(ctx, "valdiney", core.TruckBKO, "1500.00", feb(6))
	s.delivery(ctx, "valdiney", core.TruckBKO, "1800.00", feb(13))
	s.delivery(ctx, "joao", core.TruckAUA, "6000.00", feb(7))
	s.occurrence(ctx, "claudio", core.OccurrenceDelay, "Entrega atrasada", feb(19))

	// March: value model, tiers by occurrence count
	s.delivery(ctx, "davi", core.TruckBKO, "6000.00", mar(3))
	s.delivery(ctx, "davi", core.TruckGKY, "4000.00", mar(10))

	s.delivery(ctx, "ivaney", core.TruckAUA, "12000.00", mar(4))
	s.delivery(ctx, "ivaney", core.TruckPYW, "3000.00", mar(11))
	s.occurrence(ctx, "ivaney", core.OccurrenceDelay, "Cliente ausente", mar(4))
	s.occurrence(ctx, "ivaney", core.OccurrenceDamage, "Caixa amassada", mar(11))

	s.delivery(ctx, "claudio", core.TruckGSD, "9000.00", mar(5))
	s.delivery(ctx, "claudio", core.TruckNYC, "1000.00", mar(12))
	for i, d := range []int{5, 6, 12, 13, 19} {
		s.occurrence(ctx, "claudio", core.OccurrenceDelay, fmt.Sprintf("Atraso %d", i+1), mar(d))
	}

	s.delivery(ctx, "valdiney", core.TruckBKO, "2500.00", mar(6))
	s.delivery(ctx, "valdiney", core.TruckGKY, "5500.00", mar(13))
	s.occurrence(ctx, "valdiney", core.OccurrenceMissingGoods, "Volume faltando", mar(13))

	s.delivery(ctx, "joao", core.TruckAUA, "7000.00", mar(7))

	return s.err
}

func loadTierBoundariesScenario(ctx context.Context, s *seeder) error {
	drivers := []struct {
		id          core.EmployeeID
		name        string
		day         time.Weekday
		occurrences int
	}{
		{"ana", "Ana", time.Monday, 0},
		{"bruno", "Bruno", time.Tuesday, 2},
		{"carla", "Carla", time.Wednesday, 4},
		{"diego", "Diego", time.Thursday, 5},
	}
	for _, d := range drivers {
		s.driver(ctx, d.id, d.name, d.day)
		s.delivery(ctx, d.id, core.TruckAUA, "10000.00", mar(3))
		for i := 0; i < d.occurrences; i++ {
			s.occurrence(ctx, d.id, core.OccurrenceOther, "Ocorrência de teste", mar(4+i))
		}
	}
	return s.err
}

func loadLegacyMonthScenario(ctx context.Context, s *seeder) error {
	s.driver(ctx, "davi", "Davi", time.Monday)
	s.helper(ctx, "joao", "João")

	s.delivery(ctx, "davi", core.TruckBKO, "4200.00", feb(3))
	s.delivery(ctx, "davi", core.TruckGKY, "3900.00", feb(4))
	s.delivery(ctx, "joao", core.TruckAUA, "5000.00", feb(5))
	s.delivery(ctx, "joao", core.TruckAUA, "5100.00", feb(12))
	return s.err
}

// =============================================================================
// SEEDER
// =============================================================================

// seeder writes scenario records and keeps the first error, so loaders read
// as a flat list of facts.
type seeder struct {
	store ScenarioStore
	seq   int
	err   error
}

func (s *seeder) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%03d", prefix, s.seq)
}

func (s *seeder) driver(ctx context.Context, id core.EmployeeID, name string, day time.Weekday) {
	if s.err != nil {
		return
	}
	s.err = s.store.SaveEmployee(ctx, core.Employee{ID: id, Name: name, Role: core.RoleDriver, AssignedDay: &day})
}

func (s *seeder) helper(ctx context.Context, id core.EmployeeID, name string) {
	if s.err != nil {
		return
	}
	s.err = s.store.SaveEmployee(ctx, core.Employee{ID: id, Name: name, Role: core.RoleHelper})
}

func (s *seeder) delivery(ctx context.Context, emp core.EmployeeID, truck core.TruckCode, value string, at time.Time) {
	if s.err != nil {
		return
	}
	v, err := decimal.NewFromString(value)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.store.AppendDelivery(ctx, core.Delivery{
		ID:          core.DeliveryID(s.nextID("dlv")),
		EmployeeID:  emp,
		TruckCode:   truck,
		Value:       v,
		DeliveredAt: at,
		CreatedAt:   at,
	})
}

func (s *seeder) occurrence(ctx context.Context, emp core.EmployeeID, typ core.OccurrenceType, description string, at time.Time) {
	if s.err != nil {
		return
	}
	s.err = s.store.AppendOccurrence(ctx, core.Occurrence{
		ID:          core.OccurrenceID(s.nextID("occ")),
		EmployeeID:  emp,
		Type:        typ,
		Description: description,
		OccurredAt:  at,
		CreatedAt:   at,
	})
}

// Scenario timestamps are mid-afternoon UTC so they fall on the same
// calendar day in any Americas business timezone.
func feb(day int) time.Time { return time.Date(2025, time.February, day, 15, 0, 0, 0, time.UTC) }
func mar(day int) time.Time { return time.Date(2025, time.March, day, 15, 0, 0, 0, time.UTC) }
