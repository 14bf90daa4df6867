package report

import (
	"time"

	"github.com/andy/billing/internal/domain"
)

// ResolveFilter fills in the default reporting window. When the filter has
// neither a date boundary nor a year, it selects the current calendar month
// from its first day through now. Otherwise the filter is returned unchanged
// and domain.TaskFilter.Window decides which of range or year/month applies.
func ResolveFilter(f domain.TaskFilter, now time.Time) domain.TaskFilter {
	if f.HasRange() || f.Year > 0 {
		return f
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := now
	f.Start = &start
	f.End = &end
	return f
}

// FilterTasks keeps the tasks that match f, preserving order.
func FilterTasks(tasks []*domain.WorkTask, f domain.TaskFilter) []*domain.WorkTask {
	out := make([]*domain.WorkTask, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
