package report

import (
	"sort"

	"github.com/andy/billing/internal/domain"
	"github.com/shopspring/decimal"
)

// ClientDetail lists one client's tasks with totals at the client's current rate.
type ClientDetail struct {
	Client      *domain.Client     `json:"client"`
	Tasks       []*domain.WorkTask `json:"tasks"`
	TotalHours  decimal.Decimal    `json:"total_hours"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
}

// Detail builds the per-task report for client. Tasks belonging to other
// clients are dropped; the rest are ordered by task date, newest first.
// A client without tasks yields zero totals.
func Detail(client *domain.Client, tasks []*domain.WorkTask) ClientDetail {
	own := make([]*domain.WorkTask, 0, len(tasks))
	for _, t := range tasks {
		if t.ClientID != client.ID {
			continue
		}
		tc := *t
		tc.Client = client
		own = append(own, &tc)
	}
	sort.SliceStable(own, func(i, j int) bool {
		return own[i].TaskDate.After(own[j].TaskDate)
	})

	d := ClientDetail{
		Client:      client,
		Tasks:       own,
		TotalHours:  decimal.Zero,
		TotalAmount: decimal.Zero,
	}
	for _, t := range own {
		d.TotalHours = d.TotalHours.Add(t.HoursWorked)
		d.TotalAmount = d.TotalAmount.Add(t.TotalAmount())
	}
	return d
}
