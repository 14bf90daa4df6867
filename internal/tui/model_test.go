package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/andy/billing/internal/app"
	"github.com/andy/billing/internal/clock"
	"github.com/andy/billing/internal/db"
	"github.com/andy/billing/internal/domain"
	"github.com/andy/billing/internal/export"
	"github.com/andy/billing/internal/repository"
	"github.com/andy/billing/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	database, err := db.OpenMemory(context.Background())
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	clk := clock.Fixed(now)
	clients := repository.NewClientRepo(database)
	tasks := repository.NewTaskRepo(database)
	return &app.App{
		DB:            database,
		Clock:         clk,
		ClientRepo:    clients,
		TaskRepo:      tasks,
		ReportService: service.NewReportService(clients, tasks, clk, 0, 0),
		ExportService: service.NewExportService(clients, tasks, clk),
	}
}

func seedClient(t *testing.T, a *app.App, name, rate string) *domain.Client {
	t.Helper()
	c := domain.NewClient(name, decimal.RequireFromString(rate))
	if err := a.ClientRepo.Create(context.Background(), c); err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}

func seedTask(t *testing.T, a *app.App, clientID int64, date, desc, hours string) {
	t.Helper()
	d, err := domain.ParseDate(date)
	if err != nil {
		t.Fatal(err)
	}
	task := domain.NewWorkTask(clientID, d, desc, decimal.RequireFromString(hours))
	if err := a.TaskRepo.Create(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// settle runs cmd once and feeds its message back into m.
func settle(m tea.Model, cmd tea.Cmd) tea.Model {
	if cmd == nil {
		return m
	}
	m, _ = m.Update(cmd())
	return m
}

func TestScreenNavigation(t *testing.T) {
	a := newTestApp(t)
	seedClient(t, a, "Acme Corp", "75")

	var m tea.Model = New(a)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	tests := []struct {
		key  string
		want Screen
	}{
		{"t", ScreenTasks},
		{"c", ScreenClients},
		{"r", ScreenReports},
		{"o", ScreenDashboard},
	}
	for _, tt := range tests {
		m, _ = m.Update(keyPress(tt.key))
		got := m.(Model).currentScreen
		if got != tt.want {
			t.Errorf("after %q: screen = %s, want %s", tt.key, got, tt.want)
		}
	}

	if !strings.Contains(m.View(), "billing - Dashboard") {
		t.Errorf("header missing from view")
	}
}

func TestFirstRunOpensClientForm(t *testing.T) {
	a := newTestApp(t)

	root := New(a)
	m, cmd := root.Update(root.checkFirstRun()())
	if cmd == nil {
		t.Fatal("expected commands to load clients and open the form")
	}
	if got := m.(Model).currentScreen; got != ScreenClients {
		t.Fatalf("screen = %s, want Clients", got)
	}

	// The form request arrives before the client list has loaded
	m, _ = m.Update(OpenNewClientFormMsg{})
	clients := m.(Model).screens[ScreenClients].(*ClientsModel)
	if !clients.autoNewClient {
		t.Errorf("new client form was not queued")
	}

	clients = settle(clients, clients.Init()).(*ClientsModel)
	if clients.mode != clientModeNew {
		t.Errorf("mode = %d, want new client form", clients.mode)
	}
	if !strings.Contains(clients.View(), "Welcome to billing!") {
		t.Errorf("welcome text missing:\n%s", clients.View())
	}
}

func TestNavigationSuppressedWhileTyping(t *testing.T) {
	a := newTestApp(t)
	seedClient(t, a, "Acme Corp", "75")

	var m tea.Model = New(a)
	m, _ = m.Update(keyPress("c"))
	root := m.(Model)
	clients := settle(root.screens[ScreenClients], root.screens[ScreenClients].Init()).(*ClientsModel)
	root.screens[ScreenClients] = clients

	m, _ = root.Update(keyPress("n"))
	m, _ = m.Update(keyPress("t"))
	if got := m.(Model).currentScreen; got != ScreenClients {
		t.Errorf("typing 't' in a form switched to %s", got)
	}
}

func TestDashboardView(t *testing.T) {
	a := newTestApp(t)
	c := seedClient(t, a, "Acme Corp", "75")
	seedTask(t, a, c.ID, "2024-03-10", "API integration", "2")

	m := NewDashboardModel(a)
	m = settle(m, m.Init())

	view := m.View()
	for _, want := range []string{"1 (1 active)", "$150.00", "Acme Corp", "API integration"} {
		if !strings.Contains(view, want) {
			t.Errorf("dashboard view missing %q:\n%s", want, view)
		}
	}
}

func TestTasksScreenListsCurrentMonth(t *testing.T) {
	a := newTestApp(t)
	c := seedClient(t, a, "Acme Corp", "100")
	seedTask(t, a, c.ID, "2024-03-02", "March work", "1.5")
	seedTask(t, a, c.ID, "2024-02-20", "February work", "3")

	m := NewTasksModel(a)
	m = settle(m, m.Init())

	view := m.View()
	if !strings.Contains(view, "March work") || strings.Contains(view, "February work") {
		t.Fatalf("expected only March tasks:\n%s", view)
	}
	if !strings.Contains(view, "$150.00") {
		t.Errorf("total missing:\n%s", view)
	}

	var cmd tea.Cmd
	m, cmd = m.Update(keyPress("h"))
	m = settle(m, cmd)
	if !strings.Contains(m.View(), "February work") {
		t.Errorf("previous month not shown:\n%s", m.View())
	}

	// Cannot move past the current month
	tm := m.(*TasksModel)
	tm.month = monthStart(now)
	if cmd := tm.shift(1); cmd != nil {
		t.Errorf("shift past current month should be ignored")
	}
}

func TestTaskFormRejectsBadInput(t *testing.T) {
	a := newTestApp(t)
	c := seedClient(t, a, "Acme Corp", "100")

	m := NewTasksModel(a).(*TasksModel)
	m.initForm(c, nil)
	m.fields[taskFieldDate].SetValue("15/03/2024")
	m.fields[taskFieldHours].SetValue("lots")

	msg := m.saveTask()().(taskSavedMsg)
	var verr *domain.ValidationError
	if !errors.As(msg.err, &verr) {
		t.Fatalf("expected validation error, got %v", msg.err)
	}
	if !verr.Has("task_date") || !verr.Has("hours_worked") {
		t.Errorf("fields = %+v", verr.Fields)
	}

	m.fields[taskFieldDate].SetValue("2024-03-15")
	m.fields[taskFieldHours].SetValue("30")
	m.fields[taskFieldDescription].SetValue("Too long a day")
	msg = m.saveTask()().(taskSavedMsg)
	if !errors.As(msg.err, &verr) || !verr.Has("hours_worked") {
		t.Errorf("expected hours_worked range error, got %v", msg.err)
	}
}

func TestClientFormCreatesClient(t *testing.T) {
	a := newTestApp(t)

	m := NewClientsModel(a).(*ClientsModel)
	m.initForm(nil)
	m.fields[fieldName].SetValue("Globex")
	m.fields[fieldRate].SetValue("120")
	m.fields[fieldCurrency].SetValue("usd")
	m.fields[fieldConversion].SetValue("83.25")

	msg := m.saveClient()().(clientSavedMsg)
	if msg.err != nil {
		t.Fatalf("save: %v", msg.err)
	}

	got, err := a.ClientRepo.GetByName(context.Background(), "Globex")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got.Currency != domain.CurrencyUSD || !got.ConversionRate.Equal(decimal.RequireFromString("83.25")) {
		t.Errorf("got currency %s rate %s", got.Currency, got.ConversionRate)
	}
}

func TestReportsView(t *testing.T) {
	a := newTestApp(t)
	c := seedClient(t, a, "Acme Corp", "50")
	seedTask(t, a, c.ID, "2024-03-05", "Work", "4")
	seedTask(t, a, c.ID, "2024-01-05", "Old work", "2")

	m := NewReportsModel(a)
	m = settle(m, m.Init())

	view := m.View()
	for _, want := range []string{"March 2024", "Acme Corp", "Monthly 2024", "January", "$300.00"} {
		if !strings.Contains(view, want) {
			t.Errorf("reports view missing %q:\n%s", want, view)
		}
	}

	var cmd tea.Cmd
	m, cmd = m.Update(keyPress("["))
	m = settle(m, cmd)
	if got := m.(*ReportsModel).month; !got.Equal(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("month after [ = %s", got)
	}
}

func TestDashboardEnterOpensReports(t *testing.T) {
	a := newTestApp(t)
	seedClient(t, a, "Acme Corp", "75")

	var m tea.Model = New(a)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command from enter")
	}
	msg := cmd()
	if sw, ok := msg.(SwitchScreenMsg); !ok || sw.Screen != ScreenReports {
		t.Fatalf("expected switch to reports, got %#v", msg)
	}
	m, _ = m.Update(msg)
	if got := m.(Model).currentScreen; got != ScreenReports {
		t.Fatalf("screen = %s, want Reports", got)
	}
}

type failingExports struct {
	service.ExportService
}

func (failingExports) Summary(ctx context.Context, f export.Format, clientID int64, start, end *time.Time) (*export.File, error) {
	return nil, domain.ErrStoreUnavailable
}

func TestReportsExportFailureShowsError(t *testing.T) {
	a := newTestApp(t)
	a.ExportService = failingExports{}

	var m tea.Model = New(a)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(keyPress("r"))

	reports := NewReportsModel(a).(*ReportsModel)
	msg := reports.exportMonth(export.FormatPDF)()
	errMsg, ok := msg.(ErrorMsg)
	if !ok || !errors.Is(errMsg.Err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrorMsg, got %#v", msg)
	}

	m, _ = m.Update(msg)
	if !strings.Contains(m.View(), "Error: failed to export report") {
		t.Errorf("expected export error in view:\n%s", m.View())
	}
}

func TestMoveCursor(t *testing.T) {
	tests := []struct {
		cursor, offset, delta, n, visible int
		wantCursor, wantOffset            int
	}{
		{0, 0, -1, 5, 3, 0, 0},
		{2, 0, 1, 5, 3, 3, 1},
		{4, 2, 1, 5, 3, 4, 2},
		{1, 1, -1, 5, 3, 0, 0},
		{0, 0, 1, 0, 3, 0, 0},
	}
	for _, tt := range tests {
		c, o := moveCursor(tt.cursor, tt.offset, tt.delta, tt.n, tt.visible)
		if c != tt.wantCursor || o != tt.wantOffset {
			t.Errorf("moveCursor(%d,%d,%d,%d,%d) = %d,%d, want %d,%d",
				tt.cursor, tt.offset, tt.delta, tt.n, tt.visible, c, o, tt.wantCursor, tt.wantOffset)
		}
	}
}

func TestBar(t *testing.T) {
	d := decimal.NewFromInt
	if got := bar(d(50), d(100), 20); len([]rune(got)) != 10 {
		t.Errorf("half bar = %q", got)
	}
	if got := bar(d(1), d(1000), 20); len([]rune(got)) != 1 {
		t.Errorf("tiny values still get one cell, got %q", got)
	}
	if got := bar(d(0), d(100), 20); got != "" {
		t.Errorf("zero value = %q", got)
	}
}
