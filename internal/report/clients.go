package report

import (
	"sort"

	"github.com/andy/billing/internal/domain"
	"github.com/shopspring/decimal"
)

// ClientRow aggregates one client's tasks.
type ClientRow struct {
	ClientID       int64           `json:"client_id"`
	Name           string          `json:"name"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
	Currency       string          `json:"currency"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
	TotalHours     decimal.Decimal `json:"total_hours"`
	NativeIncome   decimal.Decimal `json:"native_income"`
	BaseIncome     decimal.Decimal `json:"base_income"`
	TaskCount      int             `json:"task_count"`
}

// ClientSummary is the per-client report with grand totals.
type ClientSummary struct {
	Rows              []ClientRow     `json:"rows"`
	TotalHours        decimal.Decimal `json:"total_hours"`
	TotalNativeIncome decimal.Decimal `json:"total_native_income"`
	TotalBaseIncome   decimal.Decimal `json:"total_base_income"`
	TotalTasks        int             `json:"total_tasks"`
}

// GroupByClient builds one row per distinct client in encounter order.
// Income uses each task's joined client rate.
func GroupByClient(tasks []*domain.WorkTask) []ClientRow {
	index := make(map[int64]int)
	rows := make([]ClientRow, 0)

	for _, t := range tasks {
		i, ok := index[t.ClientID]
		if !ok {
			i = len(rows)
			index[t.ClientID] = i
			rows = append(rows, newClientRow(t))
		}
		row := &rows[i]
		row.TotalHours = row.TotalHours.Add(t.HoursWorked)
		row.NativeIncome = row.NativeIncome.Add(t.TotalAmount())
		row.TaskCount++
	}

	for i := range rows {
		rows[i].BaseIncome = baseIncome(rows[i])
	}
	return rows
}

// ClientReport groups tasks by client, sorts rows by native income
// (highest first, ties in encounter order) and totals them.
func ClientReport(tasks []*domain.WorkTask) ClientSummary {
	rows := GroupByClient(tasks)
	sortByNativeIncome(rows)

	s := ClientSummary{
		Rows:              rows,
		TotalHours:        decimal.Zero,
		TotalNativeIncome: decimal.Zero,
		TotalBaseIncome:   decimal.Zero,
	}
	for _, r := range rows {
		s.TotalHours = s.TotalHours.Add(r.TotalHours)
		s.TotalNativeIncome = s.TotalNativeIncome.Add(r.NativeIncome)
		s.TotalBaseIncome = s.TotalBaseIncome.Add(r.BaseIncome)
		s.TotalTasks += r.TaskCount
	}
	return s
}

// TopClients returns the n clients with the highest native income.
func TopClients(tasks []*domain.WorkTask, n int) []ClientRow {
	rows := GroupByClient(tasks)
	sortByNativeIncome(rows)
	if n >= 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

func sortByNativeIncome(rows []ClientRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].NativeIncome.GreaterThan(rows[j].NativeIncome)
	})
}

func newClientRow(t *domain.WorkTask) ClientRow {
	row := ClientRow{
		ClientID:       t.ClientID,
		Currency:       domain.DefaultCurrency,
		HourlyRate:     decimal.Zero,
		ConversionRate: decimal.NewFromInt(1),
		TotalHours:     decimal.Zero,
		NativeIncome:   decimal.Zero,
	}
	if c := t.Client; c != nil {
		row.Name = c.Name
		row.Email = c.Email
		row.Phone = c.Phone
		row.HourlyRate = c.HourlyRate
		row.Currency = c.Currency
		row.ConversionRate = c.ConversionRate
	}
	return row
}

func baseIncome(r ClientRow) decimal.Decimal {
	c := domain.Client{Currency: r.Currency, ConversionRate: r.ConversionRate}
	return c.BaseIncome(r.NativeIncome)
}
