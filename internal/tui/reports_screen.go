package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/andy/billing/internal/app"
	"github.com/andy/billing/internal/domain"
	"github.com/andy/billing/internal/export"
	"github.com/andy/billing/internal/format"
	"github.com/andy/billing/internal/report"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ReportsModel shows the per-client summary of one month next to the
// month-by-month breakdown of its year.
type ReportsModel struct {
	app   *app.App
	month time.Time // first day of the selected month

	summary *report.ClientSummary
	monthly *report.MonthlyReport

	loading   bool
	err       error
	statusMsg string
}

type reportsDataMsg struct {
	summary *report.ClientSummary
	monthly *report.MonthlyReport
	err     error
}

type reportExportedMsg struct {
	path string
}

// NewReportsModel creates a new reports screen model
func NewReportsModel(a *app.App) tea.Model {
	return &ReportsModel{
		app:     a,
		month:   monthStart(a.Clock.Now()),
		loading: true,
	}
}

func (m *ReportsModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *ReportsModel) filter() domain.TaskFilter {
	return domain.TaskFilter{Year: m.month.Year(), Month: int(m.month.Month())}
}

func (m *ReportsModel) loadData() tea.Cmd {
	filter := m.filter()
	return func() tea.Msg {
		ctx := context.Background()

		summary, err := m.app.ReportService.ClientReport(ctx, filter)
		if err != nil {
			return reportsDataMsg{err: err}
		}

		monthly, err := m.app.ReportService.MonthlyBreakdown(ctx, filter.Year)
		if err != nil {
			return reportsDataMsg{err: err}
		}

		return reportsDataMsg{summary: summary, monthly: monthly}
	}
}

// exportMonth writes the selected month's summary into the working directory.
func (m *ReportsModel) exportMonth(f export.Format) tea.Cmd {
	start, end := m.filter().Window()
	return func() tea.Msg {
		file, err := m.app.ExportService.Summary(context.Background(), f, 0, start, end)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to export report: %w", err)}
		}
		if err := os.WriteFile(file.Name, file.Data, 0o644); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to write %s: %w", file.Name, err)}
		}
		return reportExportedMsg{path: file.Name}
	}
}

// shift moves the selected month, refusing to go past the current month.
func (m *ReportsModel) shift(months int) tea.Cmd {
	next := m.month.AddDate(0, months, 0)
	if next.After(monthStart(m.app.Clock.Now())) {
		return nil
	}
	m.month = next
	m.loading = true
	return m.loadData()
}

func (m *ReportsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case reportsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.summary = msg.summary
			m.monthly = msg.monthly
		}
		return m, nil

	case reportExportedMsg:
		m.statusMsg = "Exported " + msg.path
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		m.statusMsg = ""

		switch {
		case key.Matches(msg, DefaultKeyMap.Left):
			return m, m.shift(-1)
		case key.Matches(msg, DefaultKeyMap.Right):
			return m, m.shift(1)
		case key.Matches(msg, DefaultKeyMap.PrevYear):
			return m, m.shift(-12)
		case key.Matches(msg, DefaultKeyMap.NextYear):
			return m, m.shift(12)
		case msg.String() == "e":
			return m, m.exportMonth(export.FormatXLSX)
		case msg.String() == "p":
			return m, m.exportMonth(export.FormatPDF)
		}
	}

	return m, nil
}

func (m *ReportsModel) View() string {
	title := titleStyle.Render("Reports")
	if m.loading {
		return title + "\n\n  Loading..."
	}

	if m.err != nil {
		return title + "\n\n" + errorText(m.err)
	}

	var s strings.Builder
	s.WriteString(title + "\n")
	fmt.Fprintf(&s, "  %s\n", m.month.Format("January 2006"))
	if m.statusMsg != "" {
		s.WriteString(statusStyle.Render("  "+m.statusMsg) + "\n")
	}
	s.WriteString("\n")

	s.WriteString(m.renderSummary())
	s.WriteString("\n")
	s.WriteString(m.renderMonthly())

	s.WriteString("\n" + helpStyle.Render("  h/l: prev/next month  [/]: prev/next year  e: export xlsx  p: export pdf"))

	return s.String()
}

func (m *ReportsModel) renderSummary() string {
	var s strings.Builder
	s.WriteString(sectionStyle.Render("  By Client") + "\n")

	if len(m.summary.Rows) == 0 {
		s.WriteString(subtitleStyle.Render("    No tasks this month") + "\n")
		return s.String()
	}

	s.WriteString(subtitleStyle.Render(fmt.Sprintf("    %-22s %4s %10s %6s %14s %14s",
		"Client", "Cur", "Rate", "Tasks", "Income", "Base")) + "\n")
	for _, r := range m.summary.Rows {
		fmt.Fprintf(&s, "    %-22s %4s %10s %6d %14s %14s\n",
			format.Truncate(r.Name, 22),
			r.Currency,
			format.Number(r.HourlyRate),
			r.TaskCount,
			format.Number(r.NativeIncome),
			format.Number(r.BaseIncome),
		)
	}
	s.WriteString(totalStyle.Render(fmt.Sprintf("    %-22s %4s %10s %6d %14s %14s",
		"Total "+format.Hours(m.summary.TotalHours), "", "",
		m.summary.TotalTasks,
		format.Number(m.summary.TotalNativeIncome),
		format.Number(m.summary.TotalBaseIncome),
	)) + "\n")
	return s.String()
}

func (m *ReportsModel) renderMonthly() string {
	var s strings.Builder
	s.WriteString(sectionStyle.Render(fmt.Sprintf("  Monthly %d", m.monthly.Year)) + "\n")

	if len(m.monthly.Months) == 0 {
		s.WriteString(subtitleStyle.Render("    No tasks this year") + "\n")
		return s.String()
	}

	top := m.monthly.Months[0].TotalIncome
	for _, row := range m.monthly.Months {
		if row.TotalIncome.GreaterThan(top) {
			top = row.TotalIncome
		}
	}

	for _, row := range m.monthly.Months {
		line := fmt.Sprintf("    %-10s %s %8s  %s",
			row.MonthName,
			barStyle.Render(fmt.Sprintf("%-25s", bar(row.TotalIncome, top, 25))),
			format.Hours(row.TotalHours),
			format.Money(row.TotalIncome),
		)
		if row.Month == int(m.month.Month()) {
			line = activeStyle.Render(line)
		}
		s.WriteString(line + "\n")
	}
	fmt.Fprintf(&s, "    %-10s %-25s %8s  %s\n", "Total", "",
		format.Hours(m.monthly.TotalHours), moneyStyle.Render(format.Money(m.monthly.TotalIncome)))
	return s.String()
}
