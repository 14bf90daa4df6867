package report

import (
	"sort"
	"time"

	"github.com/andy/billing/internal/domain"
	"github.com/shopspring/decimal"
)

// MonthRow aggregates one calendar month.
type MonthRow struct {
	Month       int             `json:"month"`
	MonthName   string          `json:"month_name"`
	TotalHours  decimal.Decimal `json:"total_hours"`
	TotalIncome decimal.Decimal `json:"total_income"`
	TaskCount   int             `json:"task_count"`
}

// MonthlyReport is the month-by-month breakdown of a year.
type MonthlyReport struct {
	Year           int             `json:"year"`
	Months         []MonthRow      `json:"months"`
	TotalHours     decimal.Decimal `json:"total_hours"`
	TotalIncome    decimal.Decimal `json:"total_income"`
	AvailableYears []int           `json:"available_years"`
}

// MonthlyBreakdown groups the tasks dated in year by month. Only months with
// at least one task appear, in calendar order. Income is native.
func MonthlyBreakdown(year int, tasks []*domain.WorkTask) []MonthRow {
	byMonth := make(map[time.Month]*MonthRow)

	for _, t := range tasks {
		if t.TaskDate.Year() != year {
			continue
		}
		m := t.TaskDate.Month()
		row, ok := byMonth[m]
		if !ok {
			row = &MonthRow{
				Month:       int(m),
				MonthName:   m.String(),
				TotalHours:  decimal.Zero,
				TotalIncome: decimal.Zero,
			}
			byMonth[m] = row
		}
		row.TotalHours = row.TotalHours.Add(t.HoursWorked)
		row.TotalIncome = row.TotalIncome.Add(t.TotalAmount())
		row.TaskCount++
	}

	rows := make([]MonthRow, 0, len(byMonth))
	for _, row := range byMonth {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Month < rows[j].Month
	})
	return rows
}

// Monthly builds the full yearly report.
func Monthly(year int, tasks []*domain.WorkTask, availableYears []int) MonthlyReport {
	r := MonthlyReport{
		Year:           year,
		Months:         MonthlyBreakdown(year, tasks),
		TotalHours:     decimal.Zero,
		TotalIncome:    decimal.Zero,
		AvailableYears: availableYears,
	}
	for _, m := range r.Months {
		r.TotalHours = r.TotalHours.Add(m.TotalHours)
		r.TotalIncome = r.TotalIncome.Add(m.TotalIncome)
	}
	if r.AvailableYears == nil {
		r.AvailableYears = []int{}
	}
	return r
}
