/*
Package report builds the monthly commission report for all employees.

PURPOSE:
  Admin-facing month close: one row per employee with the ungated figures,
  plus a summary. Rendered as JSON by the API or as an .xlsx workbook.

CONCURRENCY:
  Employees are computed in parallel (errgroup, bounded). Rows are written
  into a pre-sized slice by index, so the output order is the employee
  list order regardless of scheduling.

DATA ERRORS:
  An employee whose records disagree with the configuration (unknown truck
  code, negative value) gets a row with Error set instead of failing the
  whole report. Any other error aborts.
*/
package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/construcosta/commission-engine/commission"
	"github.com/construcosta/commission-engine/core"
)

// DefaultConcurrency bounds parallel computations.
const DefaultConcurrency = 4

// EmployeeLister lists the employees to report on.
type EmployeeLister interface {
	ListEmployees(ctx context.Context) ([]core.Employee, error)
}

// Previewer computes ungated figures. *commission.Service implements it.
type Previewer interface {
	Preview(ctx context.Context, employeeID core.EmployeeID, period core.Period) (commission.CommissionResult, error)
}

// Row is one employee's line.
type Row struct {
	Employee core.Employee
	Result   *commission.CommissionResult
	Error    string
}

type Report struct {
	Period      core.Period
	GeneratedAt time.Time
	Rows        []Row
	Summary     commission.Summary
}

type Service struct {
	employees   EmployeeLister
	commissions Previewer
	concurrency int
	now         func() time.Time
}

func NewService(employees EmployeeLister, commissions Previewer, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		employees:   employees,
		commissions: commissions,
		concurrency: DefaultConcurrency,
		now:         now,
	}
}

// Monthly computes every employee's figures for period.
func (s *Service) Monthly(ctx context.Context, period core.Period) (Report, error) {
	if err := period.Validate(); err != nil {
		return Report{}, err
	}

	employees, err := s.employees.ListEmployees(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list employees: %w", err)
	}

	rows := make([]Row, len(employees))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, emp := range employees {
		i, emp := i, emp
		g.Go(func() error {
			result, err := s.commissions.Preview(gCtx, emp.ID, period)
			switch {
			case err == nil:
				rows[i] = Row{Employee: emp, Result: &result}
			case core.IsIntegrityError(err):
				rows[i] = Row{Employee: emp, Error: err.Error()}
			default:
				return fmt.Errorf("employee %s: %w", emp.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	results := make([]commission.CommissionResult, 0, len(rows))
	for _, r := range rows {
		if r.Result != nil {
			results = append(results, *r.Result)
		}
	}

	return Report{
		Period:      period,
		GeneratedAt: s.now(),
		Rows:        rows,
		Summary:     commission.Summarize(results),
	}, nil
}
