package domain

import "time"

// TaskFilter selects tasks by client and date. A zero ClientID selects every
// client. Bounds are inclusive and compared at date granularity.
type TaskFilter struct {
	ClientID int64
	Start    *time.Time
	End      *time.Time
	Year     int
	Month    int
}

// HasRange reports whether either boundary of an explicit date range is set.
func (f TaskFilter) HasRange() bool {
	return f.Start != nil || f.End != nil
}

// Window returns the inclusive date bounds selected by the filter.
//
// An explicit range always wins: when either boundary is set, Year and Month
// are ignored. Otherwise Year+Month select one calendar month and Year alone
// selects the whole year. A nil bound is open.
func (f TaskFilter) Window() (start, end *time.Time) {
	if f.HasRange() {
		if f.Start != nil {
			s := DateOf(*f.Start)
			start = &s
		}
		if f.End != nil {
			e := DateOf(*f.End)
			end = &e
		}
		return start, end
	}
	if f.Year <= 0 {
		return nil, nil
	}
	if f.Month >= 1 && f.Month <= 12 {
		s := time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
		e := s.AddDate(0, 1, -1)
		return &s, &e
	}
	s := time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	e := time.Date(f.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return &s, &e
}

// Matches reports whether t passes the filter
func (f TaskFilter) Matches(t *WorkTask) bool {
	if f.ClientID > 0 && t.ClientID != f.ClientID {
		return false
	}
	start, end := f.Window()
	d := DateOf(t.TaskDate)
	if start != nil && d.Before(*start) {
		return false
	}
	if end != nil && d.After(*end) {
		return false
	}
	return true
}
