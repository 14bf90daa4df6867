package report

import (
	"sort"
	"time"

	"github.com/andy/billing/internal/domain"
	"github.com/shopspring/decimal"
)

// Default dashboard list sizes.
const (
	DefaultTopClients  = 5
	DefaultRecentTasks = 10
)

// RecentTask is a dashboard line for one task.
type RecentTask struct {
	TaskID      int64           `json:"task_id"`
	ClientName  string          `json:"client_name"`
	Description string          `json:"description"`
	TaskDate    time.Time       `json:"task_date"`
	HoursWorked decimal.Decimal `json:"hours_worked"`
	Amount      decimal.Decimal `json:"amount"`
}

// Dashboard summarises every client and task in the store.
type Dashboard struct {
	TotalClients      int             `json:"total_clients"`
	ActiveClients     int             `json:"active_clients"`
	TotalTasks        int             `json:"total_tasks"`
	TotalHours        decimal.Decimal `json:"total_hours"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageHourlyRate decimal.Decimal `json:"average_hourly_rate"`
	TopClients        []ClientRow     `json:"top_clients"`
	RecentTasks       []RecentTask    `json:"recent_tasks"`
}

// BuildDashboard aggregates all clients and tasks. Revenue is native income;
// the average hourly rate is taken over all clients, active or not.
func BuildDashboard(clients []*domain.Client, tasks []*domain.WorkTask, topN, recentN int) Dashboard {
	d := Dashboard{
		TotalClients:      len(clients),
		TotalTasks:        len(tasks),
		TotalHours:        decimal.Zero,
		TotalRevenue:      decimal.Zero,
		AverageHourlyRate: decimal.Zero,
		TopClients:        TopClients(tasks, topN),
		RecentTasks:       RecentTasks(tasks, recentN),
	}

	rateSum := decimal.Zero
	for _, c := range clients {
		if c.IsActive {
			d.ActiveClients++
		}
		rateSum = rateSum.Add(c.HourlyRate)
	}
	if len(clients) > 0 {
		d.AverageHourlyRate = rateSum.Div(decimal.NewFromInt(int64(len(clients)))).Round(2)
	}

	for _, t := range tasks {
		d.TotalHours = d.TotalHours.Add(t.HoursWorked)
		d.TotalRevenue = d.TotalRevenue.Add(t.TotalAmount())
	}
	return d
}

// RecentTasks returns up to n tasks, newest task date first and, within a
// day, most recently created first.
func RecentTasks(tasks []*domain.WorkTask, n int) []RecentTask {
	sorted := make([]*domain.WorkTask, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.TaskDate.Equal(b.TaskDate) {
			return a.TaskDate.After(b.TaskDate)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make([]RecentTask, 0, len(sorted))
	for _, t := range sorted {
		name := "Unknown"
		if t.Client != nil {
			name = t.Client.Name
		}
		out = append(out, RecentTask{
			TaskID:      t.ID,
			ClientName:  name,
			Description: t.Description,
			TaskDate:    t.TaskDate,
			HoursWorked: t.HoursWorked,
			Amount:      t.TotalAmount(),
		})
	}
	return out
}
