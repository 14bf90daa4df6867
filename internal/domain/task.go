package domain

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of a task date.
const DateLayout = "2006-01-02"

var (
	minHoursWorked = decimal.RequireFromString("0.25")
	maxHoursWorked = decimal.NewFromInt(24)
)

// WorkTask is a unit of billable work logged against a client on a date.
type WorkTask struct {
	ID          int64
	ClientID    int64
	TaskDate    time.Time // date only, midnight UTC
	TaskLink    string
	Description string
	HoursWorked decimal.Decimal
	CreatedAt   time.Time

	// Client is populated by joined reads.
	Client *Client
}

// NewWorkTask creates a task dated on the calendar day of date
func NewWorkTask(clientID int64, date time.Time, description string, hours decimal.Decimal) *WorkTask {
	return &WorkTask{
		ClientID:    clientID,
		TaskDate:    DateOf(date),
		Description: strings.TrimSpace(description),
		HoursWorked: hours,
		CreatedAt:   time.Now(),
	}
}

// TotalAmount is hours worked times the owning client's current hourly rate.
// It is zero when the client was not loaded.
func (t *WorkTask) TotalAmount() decimal.Decimal {
	if t.Client == nil {
		return decimal.Zero
	}
	return t.HoursWorked.Mul(t.Client.HourlyRate)
}

// Validate returns a *ValidationError listing every invalid field
func (t *WorkTask) Validate() error {
	v := &validator{}

	v.check(t.ClientID > 0, "client_id", "client is required")
	v.check(!t.TaskDate.IsZero(), "task_date", "task date is required")

	desc := strings.TrimSpace(t.Description)
	v.check(desc != "", "description", "description is required")
	v.check(utf8.RuneCountInString(desc) <= 1000, "description", "description cannot exceed 1000 characters")

	if t.TaskLink != "" {
		v.check(utf8.RuneCountInString(t.TaskLink) <= 500, "task_link", "task link cannot exceed 500 characters")
		v.check(isWebURL(t.TaskLink), "task_link", "invalid URL format")
	}

	v.check(t.HoursWorked.GreaterThanOrEqual(minHoursWorked) && t.HoursWorked.LessThanOrEqual(maxHoursWorked),
		"hours_worked", "hours must be between 0.25 and 24")

	return v.err()
}

func isWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// DateOf truncates t to its calendar day in UTC, keeping the wall-clock date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
