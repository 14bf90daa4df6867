package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/billing/internal/app"
	"github.com/andy/billing/internal/format"
	"github.com/andy/billing/internal/report"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// DashboardModel represents the dashboard home screen
type DashboardModel struct {
	app *app.App

	dashboard *report.Dashboard

	loading bool
	err     error
}

type dashboardDataMsg struct {
	dashboard *report.Dashboard
	err       error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(a *app.App) tea.Model {
	return &DashboardModel{
		app:     a,
		loading: true,
	}
}

func (m *DashboardModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *DashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		d, err := m.app.ReportService.Dashboard(context.Background())
		return dashboardDataMsg{dashboard: d, err: err}
	}
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.dashboard = msg.dashboard
		}
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.Select) {
			return m, func() tea.Msg { return SwitchScreenMsg{Screen: ScreenReports} }
		}
	}

	return m, nil
}

func (m *DashboardModel) View() string {
	if m.loading {
		return "Loading dashboard..."
	}

	if m.err != nil {
		return errorText(m.err)
	}

	d := m.dashboard
	var s strings.Builder

	fmt.Fprintf(&s, "  Clients:  %-14s  Revenue:       %s\n",
		fmt.Sprintf("%d (%d active)", d.TotalClients, d.ActiveClients),
		moneyStyle.Render(format.Money(d.TotalRevenue)),
	)
	fmt.Fprintf(&s, "  Tasks:    %-14d  Hours:         %s\n", d.TotalTasks, format.Hours(d.TotalHours))
	fmt.Fprintf(&s, "  %-24s  Average rate:  %s/hr\n", "", format.Money(d.AverageHourlyRate))

	s.WriteString("\n" + m.renderTopClients())
	s.WriteString("\n" + m.renderRecentTasks())
	s.WriteString("\n" + helpStyle.Render("  enter: this month's report"))

	return s.String()
}

func (m *DashboardModel) renderTopClients() string {
	header := sectionStyle.Render("  Top Clients") + "\n"
	if len(m.dashboard.TopClients) == 0 {
		return header + subtitleStyle.Render("  No billed work yet") + "\n"
	}

	top := m.dashboard.TopClients[0].NativeIncome
	var s strings.Builder
	s.WriteString(header)
	for _, r := range m.dashboard.TopClients {
		fmt.Fprintf(&s, "  %-22s %s %8s  %s\n",
			format.Truncate(r.Name, 22),
			barStyle.Render(fmt.Sprintf("%-20s", bar(r.NativeIncome, top, 20))),
			format.Hours(r.TotalHours),
			format.Money(r.NativeIncome),
		)
	}
	return s.String()
}

func (m *DashboardModel) renderRecentTasks() string {
	header := sectionStyle.Render("  Recent Tasks") + "\n"
	if len(m.dashboard.RecentTasks) == 0 {
		return header + subtitleStyle.Render("  No tasks yet") + "\n"
	}

	var s strings.Builder
	s.WriteString(header)
	for _, t := range m.dashboard.RecentTasks {
		fmt.Fprintf(&s, "  %-7s %-20s %8s  %s\n",
			t.TaskDate.Format("Jan 2"),
			format.Truncate(t.ClientName, 20),
			format.Hours(t.HoursWorked),
			format.Truncate(t.Description, 30),
		)
	}
	return s.String()
}
