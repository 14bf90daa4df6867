package report

import (
	"testing"
	"time"

	"github.com/andy/billing/internal/domain"
	"github.com/shopspring/decimal"
)

func d(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func client(id int64, name, rate, currency, conv string) *domain.Client {
	return &domain.Client{
		ID:             id,
		Name:           name,
		HourlyRate:     dec(rate),
		Currency:       currency,
		ConversionRate: dec(conv),
		IsActive:       true,
	}
}

func task(id int64, c *domain.Client, day, hours string) *domain.WorkTask {
	return &domain.WorkTask{
		ID:          id,
		ClientID:    c.ID,
		Client:      c,
		TaskDate:    d(day),
		Description: "task",
		HoursWorked: dec(hours),
		CreatedAt:   d(day).Add(time.Duration(id) * time.Minute),
	}
}

// exampleTasks is ClientA (INR, 50/h) with 4h and 2h, ClientB (USD, 100/h, x83) with 8h.
func exampleTasks() (*domain.Client, *domain.Client, []*domain.WorkTask) {
	a := client(1, "ClientA", "50", "INR", "1")
	b := client(2, "ClientB", "100", "USD", "83")
	return a, b, []*domain.WorkTask{
		task(1, a, "2024-01-05", "4"),
		task(2, a, "2024-01-20", "2"),
		task(3, b, "2024-01-10", "8"),
	}
}

func TestClientReport_Example(t *testing.T) {
	_, _, tasks := exampleTasks()
	s := ClientReport(tasks)

	if len(s.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(s.Rows))
	}

	// ClientB has the higher native income and sorts first.
	b, a := s.Rows[0], s.Rows[1]
	if b.Name != "ClientB" || a.Name != "ClientA" {
		t.Fatalf("unexpected order: %s, %s", s.Rows[0].Name, s.Rows[1].Name)
	}
	if !a.TotalHours.Equal(dec("6")) || !a.NativeIncome.Equal(dec("300")) || !a.BaseIncome.Equal(dec("300")) || a.TaskCount != 2 {
		t.Fatalf("ClientA row wrong: %+v", a)
	}
	if !b.TotalHours.Equal(dec("8")) || !b.NativeIncome.Equal(dec("800")) || !b.BaseIncome.Equal(dec("66400")) || b.TaskCount != 1 {
		t.Fatalf("ClientB row wrong: %+v", b)
	}
	if !s.TotalHours.Equal(dec("14")) {
		t.Fatalf("expected 14 total hours, got %s", s.TotalHours)
	}
	if !s.TotalBaseIncome.Equal(dec("66700")) {
		t.Fatalf("expected 66700 base income, got %s", s.TotalBaseIncome)
	}
	if s.TotalTasks != 3 {
		t.Fatalf("expected 3 tasks, got %d", s.TotalTasks)
	}
}

func TestClientReport_TotalsMatchInput(t *testing.T) {
	a := client(1, "A", "10", "INR", "1")
	b := client(2, "B", "20", "EUR", "90")
	c := client(3, "C", "30", "USD", "2")
	tasks := []*domain.WorkTask{
		task(1, a, "2024-03-01", "1.25"),
		task(2, b, "2024-03-02", "2.5"),
		task(3, c, "2024-03-03", "0.25"),
		task(4, a, "2024-03-04", "7"),
		task(5, c, "2024-03-05", "3.75"),
	}

	s := ClientReport(tasks)
	raw := decimal.Zero
	for _, tk := range tasks {
		raw = raw.Add(tk.HoursWorked)
	}
	rows := decimal.Zero
	for _, r := range s.Rows {
		rows = rows.Add(r.TotalHours)
	}
	if !s.TotalHours.Equal(raw) || !rows.Equal(raw) {
		t.Fatalf("hours mismatch: total %s rows %s raw %s", s.TotalHours, rows, raw)
	}

	for _, r := range s.Rows {
		want := r.NativeIncome
		if r.Currency == "USD" {
			want = r.NativeIncome.Mul(r.ConversionRate)
		}
		if !r.BaseIncome.Equal(want) {
			t.Errorf("%s: base income %s, want %s", r.Name, r.BaseIncome, want)
		}
	}
}

func TestClientReport_StableTies(t *testing.T) {
	x := client(7, "X", "10", "INR", "1")
	y := client(3, "Y", "10", "INR", "1")
	tasks := []*domain.WorkTask{
		task(1, x, "2024-01-01", "2"),
		task(2, y, "2024-01-01", "2"),
	}
	s := ClientReport(tasks)
	if s.Rows[0].Name != "X" || s.Rows[1].Name != "Y" {
		t.Fatalf("expected encounter order on ties, got %s, %s", s.Rows[0].Name, s.Rows[1].Name)
	}
}

func TestClientReport_Empty(t *testing.T) {
	s := ClientReport(nil)
	if len(s.Rows) != 0 || !s.TotalHours.IsZero() || !s.TotalBaseIncome.IsZero() {
		t.Fatalf("expected zero-valued summary, got %+v", s)
	}
}

func TestClientReport_ZeroRateClientStillListed(t *testing.T) {
	free := client(1, "Pro bono", "0", "INR", "1")
	s := ClientReport([]*domain.WorkTask{task(1, free, "2024-01-01", "3")})
	if len(s.Rows) != 1 || !s.Rows[0].NativeIncome.IsZero() || !s.Rows[0].TotalHours.Equal(dec("3")) {
		t.Fatalf("expected a zero-income row with hours, got %+v", s.Rows)
	}
}

func TestResolveFilter_Precedence(t *testing.T) {
	now := time.Date(2024, 5, 17, 14, 30, 0, 0, time.UTC)
	start := d("2024-01-01")

	tests := []struct {
		name      string
		in        domain.TaskFilter
		wantStart string
		wantEnd   string
	}{
		{"default current month", domain.TaskFilter{}, "2024-05-01", "2024-05-17"},
		{"client only still defaults", domain.TaskFilter{ClientID: 4}, "2024-05-01", "2024-05-17"},
		{"year and month", domain.TaskFilter{Year: 2023, Month: 11}, "2023-11-01", "2023-11-30"},
		{"range wins over year and month", domain.TaskFilter{Start: &start, Year: 2023, Month: 11}, "2024-01-01", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e := ResolveFilter(tt.in, now).Window()
			if got := fmtDate(s); got != tt.wantStart {
				t.Errorf("start: got %s, want %s", got, tt.wantStart)
			}
			if got := fmtDate(e); got != tt.wantEnd {
				t.Errorf("end: got %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(domain.DateLayout)
}

func TestFilterTasks_RangeAndMonth(t *testing.T) {
	a, _, tasks := exampleTasks()
	start, end := d("2024-01-06"), d("2024-01-20")

	inRange := FilterTasks(tasks, domain.TaskFilter{Start: &start, End: &end})
	if len(inRange) != 2 {
		t.Fatalf("expected 2 tasks in range, got %d", len(inRange))
	}
	for _, tk := range inRange {
		if tk.TaskDate.Before(start) || tk.TaskDate.After(end) {
			t.Fatalf("task %d outside range", tk.ID)
		}
	}

	byClient := FilterTasks(tasks, domain.TaskFilter{ClientID: a.ID, Year: 2024, Month: 1})
	if len(byClient) != 2 {
		t.Fatalf("expected 2 ClientA tasks in January, got %d", len(byClient))
	}

	if got := FilterTasks(tasks, domain.TaskFilter{Year: 2024, Month: 2}); len(got) != 0 {
		t.Fatalf("expected no February tasks, got %d", len(got))
	}
}

func TestMonthlyBreakdown(t *testing.T) {
	a := client(1, "A", "50", "INR", "1")
	tasks := []*domain.WorkTask{
		task(1, a, "2024-11-02", "1"),
		task(2, a, "2024-03-15", "2"),
		task(3, a, "2024-03-20", "3"),
		task(4, a, "2023-03-20", "9"),
		task(5, a, "2024-01-01", "0.5"),
	}

	rows := MonthlyBreakdown(2024, tasks)
	if len(rows) != 3 {
		t.Fatalf("expected 3 months, got %d", len(rows))
	}
	wantMonths := []int{1, 3, 11}
	wantNames := []string{"January", "March", "November"}
	for i, r := range rows {
		if r.Month != wantMonths[i] || r.MonthName != wantNames[i] {
			t.Errorf("row %d: got %d %s", i, r.Month, r.MonthName)
		}
	}
	march := rows[1]
	if !march.TotalHours.Equal(dec("5")) || !march.TotalIncome.Equal(dec("250")) || march.TaskCount != 2 {
		t.Fatalf("march row wrong: %+v", march)
	}

	rep := Monthly(2024, tasks, []int{2024, 2023})
	if !rep.TotalHours.Equal(dec("6.5")) || len(rep.AvailableYears) != 2 {
		t.Fatalf("unexpected yearly report: %+v", rep)
	}
}

func TestDetail(t *testing.T) {
	a, _, tasks := exampleTasks()
	det := Detail(a, tasks)

	if len(det.Tasks) != 2 {
		t.Fatalf("expected 2 tasks for ClientA, got %d", len(det.Tasks))
	}
	if !det.Tasks[0].TaskDate.Equal(d("2024-01-20")) {
		t.Fatalf("expected newest task first, got %v", det.Tasks[0].TaskDate)
	}
	if !det.TotalHours.Equal(dec("6")) || !det.TotalAmount.Equal(dec("300")) {
		t.Fatalf("unexpected totals: %s h, %s", det.TotalHours, det.TotalAmount)
	}
}

func TestDetail_NoTasks(t *testing.T) {
	det := Detail(client(9, "Idle", "40", "INR", "1"), nil)
	if len(det.Tasks) != 0 || !det.TotalHours.IsZero() || !det.TotalAmount.IsZero() {
		t.Fatalf("expected empty detail with zero totals, got %+v", det)
	}
}

func TestBuildDashboard(t *testing.T) {
	a, b, tasks := exampleTasks()
	inactive := client(3, "Dormant", "30", "INR", "1")
	inactive.IsActive = false

	more := make([]*domain.Client, 0, 6)
	for i := int64(10); i < 15; i++ {
		c := client(i, "Extra", "10", "INR", "1")
		more = append(more, c)
		tasks = append(tasks, task(i, c, "2023-06-01", "1"))
	}

	clients := append([]*domain.Client{a, b, inactive}, more...)
	dash := BuildDashboard(clients, tasks, DefaultTopClients, DefaultRecentTasks)

	if dash.TotalClients != 8 || dash.ActiveClients != 7 || dash.TotalTasks != 8 {
		t.Fatalf("unexpected counts: %+v", dash)
	}
	if !dash.TotalHours.Equal(dec("19")) {
		t.Fatalf("expected 19 hours, got %s", dash.TotalHours)
	}
	if !dash.TotalRevenue.Equal(dec("1150")) {
		t.Fatalf("expected native revenue 1150, got %s", dash.TotalRevenue)
	}
	// (50 + 100 + 30 + 5*10) / 8
	if !dash.AverageHourlyRate.Equal(dec("28.75")) {
		t.Fatalf("expected average rate 28.75, got %s", dash.AverageHourlyRate)
	}
	if len(dash.TopClients) != 5 || dash.TopClients[0].Name != "ClientB" {
		t.Fatalf("expected top 5 led by ClientB, got %+v", dash.TopClients)
	}
	if len(dash.RecentTasks) != 8 || dash.RecentTasks[0].TaskID != 2 {
		t.Fatalf("expected newest task first, got %+v", dash.RecentTasks)
	}
}

func TestRecentTasks_TieBreaksOnCreatedAt(t *testing.T) {
	a := client(1, "A", "10", "INR", "1")
	early := task(1, a, "2024-02-01", "1")
	late := task(2, a, "2024-02-01", "1")
	late.CreatedAt = early.CreatedAt.Add(time.Hour)

	got := RecentTasks([]*domain.WorkTask{early, late}, 1)
	if len(got) != 1 || got[0].TaskID != 2 {
		t.Fatalf("expected most recently created task, got %+v", got)
	}
}

func TestBuildDashboard_Empty(t *testing.T) {
	dash := BuildDashboard(nil, nil, DefaultTopClients, DefaultRecentTasks)
	if dash.TotalClients != 0 || !dash.AverageHourlyRate.IsZero() || len(dash.TopClients) != 0 {
		t.Fatalf("expected empty dashboard, got %+v", dash)
	}
}
