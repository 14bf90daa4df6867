package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/andy/billing/internal/domain"
	"github.com/andy/billing/internal/report"
	"github.com/shopspring/decimal"
)

type clientResponse struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
	Description    string          `json:"description"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Currency       string          `json:"currency"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}

func newClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ID:             c.ID,
		Name:           c.Name,
		HourlyRate:     c.HourlyRate,
		Description:    c.Description,
		Email:          c.Email,
		Phone:          c.Phone,
		Currency:       c.Currency,
		ConversionRate: c.ConversionRate,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
	}
}

type taskResponse struct {
	ID          int64           `json:"id"`
	ClientID    int64           `json:"client_id"`
	ClientName  string          `json:"client_name"`
	TaskDate    string          `json:"task_date"`
	TaskLink    string          `json:"task_link"`
	Description string          `json:"description"`
	HoursWorked decimal.Decimal `json:"hours_worked"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newTaskResponse(t *domain.WorkTask) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		ClientID:    t.ClientID,
		TaskDate:    t.TaskDate.Format(domain.DateLayout),
		TaskLink:    t.TaskLink,
		Description: t.Description,
		HoursWorked: t.HoursWorked,
		Amount:      t.TotalAmount(),
		CreatedAt:   t.CreatedAt,
	}
	if t.Client != nil {
		resp.ClientName = t.Client.Name
	}
	return resp
}

func newTaskResponses(tasks []*domain.WorkTask) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskResponse(t))
	}
	return out
}

type clientDetailResponse struct {
	Client      clientResponse  `json:"client"`
	Tasks       []taskResponse  `json:"tasks"`
	TotalHours  decimal.Decimal `json:"total_hours"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func newClientDetailResponse(d *report.ClientDetail) clientDetailResponse {
	return clientDetailResponse{
		Client:      newClientResponse(d.Client),
		Tasks:       newTaskResponses(d.Tasks),
		TotalHours:  d.TotalHours,
		TotalAmount: d.TotalAmount,
	}
}

// clientRequest is the body of client create and update calls.
type clientRequest struct {
	Name           string           `json:"name"`
	HourlyRate     decimal.Decimal  `json:"hourly_rate"`
	Description    string           `json:"description"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone"`
	Currency       string           `json:"currency"`
	ConversionRate *decimal.Decimal `json:"conversion_rate"`
	IsActive       *bool            `json:"is_active"`
}

// Bind satisfies render.Binder.
func (req *clientRequest) Bind(r *http.Request) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	return nil
}

// apply copies the request onto c. Omitted optional fields keep c's values.
func (req *clientRequest) apply(c *domain.Client) {
	c.Name = req.Name
	c.HourlyRate = req.HourlyRate
	c.Description = req.Description
	c.Email = req.Email
	c.Phone = req.Phone
	if req.Currency != "" {
		c.Currency = req.Currency
	}
	if req.ConversionRate != nil {
		c.ConversionRate = *req.ConversionRate
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
}

// taskRequest is the body of task create and update calls.
type taskRequest struct {
	ClientID    int64           `json:"client_id"`
	TaskDate    string          `json:"task_date"`
	TaskLink    string          `json:"task_link"`
	Description string          `json:"description"`
	HoursWorked decimal.Decimal `json:"hours_worked"`

	date time.Time
}

// Bind satisfies render.Binder. An unparseable date is reported as a field
// failure so it surfaces with the rest of the validation errors.
func (req *taskRequest) Bind(r *http.Request) error {
	req.TaskLink = strings.TrimSpace(req.TaskLink)
	if strings.TrimSpace(req.TaskDate) == "" {
		return nil
	}
	d, err := domain.ParseDate(req.TaskDate)
	if err != nil {
		return &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "task_date", Message: "task date must be YYYY-MM-DD"},
		}}
	}
	req.date = d
	return nil
}

func (req *taskRequest) apply(t *domain.WorkTask) {
	t.ClientID = req.ClientID
	t.TaskDate = req.date
	t.TaskLink = req.TaskLink
	t.Description = strings.TrimSpace(req.Description)
	t.HoursWorked = req.HoursWorked
}

// bindError keeps validation failures and reports anything else as a
// malformed body.
func bindError(err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return badRequest("invalid request body: " + err.Error())
}
