/*
Package checklist implements the weekly vehicle inspection that gates a
driver's commission figures.

PURPOSE:
  A driver with an assigned weekday must complete one inspection checklist
  per ISO week. Until the current week's checklist is completed, commission
  figures are computed but withheld (see commission/engine.go).

KEY CONCEPTS:
  - Template: Fixed categories, each with a list of items to answer
  - Submission: One per (driver, week), edited in progress, completed once
  - Gate: IsVisible / ShouldPromptToday, pure functions of (employee,
    submission, now)

WEEK IDENTITY:
  Weeks start on Monday (ISO). A submission from last week never satisfies
  this week's gate.

SEE ALSO:
  - gate.go: Disclosure rule
  - service.go: Fetch-or-create, save answers, submit
  - core/store.go: ChecklistStore
*/
package checklist

import (
	"strings"

	"github.com/construcosta/commission-engine/core"
)

// =============================================================================
// TEMPLATE
// =============================================================================

// Category is one section of the inspection.
type Category struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// Template is the ordered list of categories a driver answers each week.
type Template struct {
	Categories []Category `json:"categories"`
}

// DefaultTemplate is the fleet inspection used by every driver.
func DefaultTemplate() Template {
	return Template{Categories: []Category{
		{Name: "Motor", Items: []string{
			"verificar óleo do motor",
			"verificar água do radiador",
			"verificar vazamentos",
			"verificar correias",
		}},
		{Name: "Freio", Items: []string{
			"verificar fluido de freio",
			"testar freio de serviço",
			"testar freio de estacionamento",
		}},
		{Name: "Direção", Items: []string{
			"verificar folga do volante",
			"verificar fluido da direção hidráulica",
		}},
		{Name: "Elétrico", Items: []string{
			"verificar faróis",
			"verificar lanternas e setas",
			"verificar luz de freio",
			"verificar bateria",
			"verificar buzina",
		}},
		{Name: "Pneus", Items: []string{
			"verificar calibragem",
			"verificar desgaste",
			"verificar estepe",
		}},
		{Name: "Placas", Items: []string{
			"verificar placa dianteira",
			"verificar placa traseira",
		}},
		{Name: "Obrigatório", Items: []string{
			"extintor de incêndio",
			"triângulo de sinalização",
			"macaco e chave de roda",
			"documentos do veículo",
		}},
		{Name: "Habitáculo", Items: []string{
			"verificar cintos de segurança",
			"verificar retrovisores",
			"verificar limpadores de para-brisa",
			"verificar limpeza da cabine",
		}},
	}}
}

// AsMap returns category -> items, the shape clients render.
func (t Template) AsMap() map[string][]string {
	out := make(map[string][]string, len(t.Categories))
	for _, c := range t.Categories {
		out[c.Name] = append([]string(nil), c.Items...)
	}
	return out
}

// Blank returns an answer set with every item present and empty.
func (t Template) Blank() core.ChecklistItems {
	items := make(core.ChecklistItems, len(t.Categories))
	for _, c := range t.Categories {
		answers := make(map[string]string, len(c.Items))
		for _, item := range c.Items {
			answers[item] = ""
		}
		items[c.Name] = answers
	}
	return items
}

// Missing lists template items that are absent or blank in answers, in
// template order.
func (t Template) Missing(answers core.ChecklistItems) []core.ChecklistItemRef {
	var missing []core.ChecklistItemRef
	for _, c := range t.Categories {
		for _, item := range c.Items {
			if strings.TrimSpace(answers[c.Name][item]) == "" {
				missing = append(missing, core.ChecklistItemRef{Category: c.Name, Item: item})
			}
		}
	}
	return missing
}

// Validate returns an IncompleteChecklistError when any item is blank.
func (t Template) Validate(answers core.ChecklistItems) error {
	if missing := t.Missing(answers); len(missing) > 0 {
		return &core.IncompleteChecklistError{Missing: missing}
	}
	return nil
}
