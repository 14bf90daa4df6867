package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/billing/internal/app"
	"github.com/andy/billing/internal/domain"
	"github.com/andy/billing/internal/format"
	"github.com/andy/billing/internal/report"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

// clientMode represents the current screen mode
type clientMode int

const (
	clientModeList clientMode = iota
	clientModeNew
	clientModeEdit
	clientModeConfirmDelete
)

// form field indices
const (
	fieldName = iota
	fieldRate
	fieldCurrency
	fieldConversion
	fieldEmail
	fieldPhone
	fieldDescription
	fieldCount
)

var clientFieldLabels = []string{
	"Name:", "Hourly rate:", "Currency (INR, USD, EUR, GBP):", "Conversion rate to base:",
	"Email:", "Phone:", "Description:",
}

// ClientsModel displays a navigable list of clients with create/edit forms
type ClientsModel struct {
	app          *app.App
	clients      []*domain.Client
	cursor       int
	activeOnly   bool
	monthlyStats map[int64]report.ClientRow
	loading      bool
	err          error
	statusMsg    string

	// Form state
	mode          clientMode
	fields        []textinput.Model
	fieldFocus    int
	editing       *domain.Client // nil for a new client
	autoNewClient bool           // open new client form after data loads
}

type clientsDataMsg struct {
	clients      []*domain.Client
	monthlyStats map[int64]report.ClientRow
	err          error
}

type clientSavedMsg struct {
	name string
	err  error
}

type clientDeletedMsg struct {
	name string
	err  error
}

// NewClientsModel creates a new clients screen model
func NewClientsModel(a *app.App) tea.Model {
	return &ClientsModel{
		app:          a,
		monthlyStats: make(map[int64]report.ClientRow),
		loading:      true,
	}
}

// IsCapturingInput returns true when the form or delete confirmation is active
func (m *ClientsModel) IsCapturingInput() bool {
	return m.mode != clientModeList
}

func (m *ClientsModel) Init() tea.Cmd {
	return m.loadClients()
}

func (m *ClientsModel) loadClients() tea.Cmd {
	activeOnly := m.activeOnly
	return func() tea.Msg {
		ctx := context.Background()

		clients, err := m.app.ClientRepo.List(ctx, activeOnly)
		if err != nil {
			return clientsDataMsg{err: err}
		}

		// This month's hours and income per client
		summary, err := m.app.ReportService.ClientReport(ctx, domain.TaskFilter{})
		if err != nil {
			return clientsDataMsg{err: err}
		}
		stats := make(map[int64]report.ClientRow, len(summary.Rows))
		for _, row := range summary.Rows {
			stats[row.ClientID] = row
		}

		return clientsDataMsg{
			clients:      clients,
			monthlyStats: stats,
		}
	}
}

func (m *ClientsModel) initForm(editing *domain.Client) {
	m.fields = make([]textinput.Model, fieldCount)
	m.fields[fieldName] = newInput("Client name", 100, 40)
	m.fields[fieldRate] = newInput("75.00", 10, 15)
	m.fields[fieldCurrency] = newInput(domain.DefaultCurrency, 3, 6)
	m.fields[fieldConversion] = newInput("1", 10, 15)
	m.fields[fieldEmail] = newInput("email@example.com", 100, 40)
	m.fields[fieldPhone] = newInput("+1 555 0100", 20, 20)
	m.fields[fieldDescription] = newInput("Optional notes", 500, 50)

	m.editing = editing
	if editing != nil {
		m.fields[fieldName].SetValue(editing.Name)
		m.fields[fieldRate].SetValue(editing.HourlyRate.StringFixed(2))
		m.fields[fieldCurrency].SetValue(editing.Currency)
		m.fields[fieldConversion].SetValue(editing.ConversionRate.String())
		m.fields[fieldEmail].SetValue(editing.Email)
		m.fields[fieldPhone].SetValue(editing.Phone)
		m.fields[fieldDescription].SetValue(editing.Description)
	}

	m.fieldFocus = fieldName
	m.fields[fieldName].Focus()
}

// formClient builds the client described by the form. Validation happens in
// the repository so the form reports the same field errors as every other surface.
func (m *ClientsModel) formClient() (*domain.Client, error) {
	value := func(i int) string { return strings.TrimSpace(m.fields[i].Value()) }

	rate, err := decimal.NewFromString(value(fieldRate))
	if err != nil {
		return nil, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "hourly_rate", Message: "must be a number"},
		}}
	}

	conversion := decimal.NewFromInt(1)
	if v := value(fieldConversion); v != "" {
		if conversion, err = decimal.NewFromString(v); err != nil {
			return nil, &domain.ValidationError{Fields: []domain.FieldError{
				{Field: "conversion_rate", Message: "must be a number"},
			}}
		}
	}

	client := domain.NewClient(value(fieldName), rate)
	client.CreatedAt = m.app.Clock.Now()
	if m.editing != nil {
		copied := *m.editing
		client = &copied
		client.Name = value(fieldName)
		client.HourlyRate = rate
	}
	client.Currency = strings.ToUpper(value(fieldCurrency))
	if client.Currency == "" {
		client.Currency = domain.DefaultCurrency
	}
	client.ConversionRate = conversion
	client.Email = value(fieldEmail)
	client.Phone = value(fieldPhone)
	client.Description = value(fieldDescription)
	return client, nil
}

func (m *ClientsModel) saveClient() tea.Cmd {
	client, err := m.formClient()
	editing := m.editing != nil
	return func() tea.Msg {
		if err != nil {
			return clientSavedMsg{err: err}
		}

		ctx := context.Background()
		if editing {
			err = m.app.ClientRepo.Update(ctx, client)
		} else {
			err = m.app.ClientRepo.Create(ctx, client)
		}
		return clientSavedMsg{name: client.Name, err: err}
	}
}

func (m *ClientsModel) toggleActive() tea.Cmd {
	copied := *m.clients[m.cursor]
	copied.IsActive = !copied.IsActive
	return func() tea.Msg {
		err := m.app.ClientRepo.Update(context.Background(), &copied)
		return clientSavedMsg{name: copied.Name, err: err}
	}
}

func (m *ClientsModel) deleteClient() tea.Cmd {
	client := m.clients[m.cursor]
	return func() tea.Msg {
		err := m.app.ClientRepo.Delete(context.Background(), client.ID)
		return clientDeletedMsg{name: client.Name, err: err}
	}
}

func (m *ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle OpenNewClientFormMsg at the top so it works regardless of mode
	if _, ok := msg.(OpenNewClientFormMsg); ok {
		if m.loading {
			// Data hasn't loaded yet; set flag to auto-open form when it does
			m.autoNewClient = true
			return m, nil
		}
		m.mode = clientModeNew
		m.initForm(nil)
		return m, m.fields[fieldName].Focus()
	}

	switch m.mode {
	case clientModeNew, clientModeEdit:
		return m.updateForm(msg)
	case clientModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadClients()

	case clientsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.clients = msg.clients
			m.monthlyStats = msg.monthlyStats
			if m.cursor >= len(m.clients) {
				m.cursor = max(0, len(m.clients)-1)
			}
		}
		// Auto-open new client form on first run
		if m.autoNewClient {
			m.autoNewClient = false
			m.mode = clientModeNew
			m.initForm(nil)
			return m, m.fields[fieldName].Focus()
		}
		return m, nil

	case clientSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Saved: %s", msg.name)
		m.loading = true
		return m, m.loadClients()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		m.statusMsg = ""
		m.err = nil
		hasSelection := len(m.clients) > 0 && m.cursor < len(m.clients)

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			m.cursor, _ = moveCursor(m.cursor, 0, -1, len(m.clients), 0)
		case key.Matches(msg, DefaultKeyMap.Down):
			m.cursor, _ = moveCursor(m.cursor, 0, 1, len(m.clients), 0)
		case key.Matches(msg, DefaultKeyMap.New):
			m.mode = clientModeNew
			m.initForm(nil)
			return m, m.fields[fieldName].Focus()
		case key.Matches(msg, DefaultKeyMap.Select):
			if hasSelection {
				m.mode = clientModeEdit
				m.initForm(m.clients[m.cursor])
				return m, m.fields[fieldName].Focus()
			}
		case key.Matches(msg, DefaultKeyMap.Delete):
			if hasSelection {
				m.mode = clientModeConfirmDelete
			}
		case msg.String() == "a":
			if hasSelection {
				return m, m.toggleActive()
			}
		case msg.String() == "i":
			m.activeOnly = !m.activeOnly
			m.cursor = 0
			m.loading = true
			return m, m.loadClients()
		}
	}

	return m, nil
}

func (m *ClientsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = clientModeList
		m.err = nil
		m.statusMsg = fmt.Sprintf("Saved: %s", msg.name)
		m.loading = true
		return m, m.loadClients()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Back):
			m.mode = clientModeList
			m.err = nil
			return m, nil

		case key.Matches(msg, DefaultKeyMap.NextField):
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % fieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case key.Matches(msg, DefaultKeyMap.PrevField):
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + fieldCount) % fieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case key.Matches(msg, DefaultKeyMap.Select):
			if m.fieldFocus == fieldCount-1 {
				return m, m.saveClient()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case key.Matches(msg, DefaultKeyMap.Save):
			return m, m.saveClient()
		}
	}

	// Update the focused text input
	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *ClientsModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientDeletedMsg:
		m.mode = clientModeList
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Deleted: %s", msg.name)
		m.loading = true
		return m, m.loadClients()

	case tea.KeyMsg:
		if msg.String() == "y" {
			return m, m.deleteClient()
		}
		// Any other key cancels
		m.mode = clientModeList
	}
	return m, nil
}

func (m *ClientsModel) View() string {
	switch m.mode {
	case clientModeNew, clientModeEdit:
		return m.viewForm()
	case clientModeConfirmDelete:
		return m.viewConfirmDelete()
	}
	return m.viewList()
}

func (m *ClientsModel) viewForm() string {
	var s strings.Builder

	switch {
	case m.mode == clientModeEdit:
		s.WriteString(titleStyle.Render("Edit Client") + "\n\n")
	case len(m.clients) == 0:
		s.WriteString(titleStyle.Render("Welcome to billing!") + "\n")
		s.WriteString(subtitleStyle.Render("  Add your first client to start logging work.") + "\n\n")
	default:
		s.WriteString(titleStyle.Render("New Client") + "\n\n")
	}

	s.WriteString(renderForm(clientFieldLabels, m.fields, m.fieldFocus))

	if m.err != nil {
		s.WriteString(errorText(m.err) + "\n\n")
	}

	s.WriteString(helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel"))
	return s.String()
}

func (m *ClientsModel) viewConfirmDelete() string {
	client := m.clients[m.cursor]
	var s strings.Builder
	s.WriteString(titleStyle.Render("Delete Client") + "\n\n")
	fmt.Fprintf(&s, "  %s  %s/hr\n\n", client.Name, format.Money(client.HourlyRate))
	s.WriteString(warningStyle.Render("  Delete this client and all of its tasks? (y/n)") + "\n")
	return s.String()
}

func (m *ClientsModel) viewList() string {
	if m.loading {
		return "Loading clients..."
	}

	var s strings.Builder

	header := "Clients"
	if m.activeOnly {
		header += subtitleStyle.Render("  (active only)")
	}
	s.WriteString(titleStyle.Render(header) + "\n\n")

	if m.statusMsg != "" {
		s.WriteString(statusStyle.Render("  "+m.statusMsg) + "\n\n")
	}
	if m.err != nil {
		s.WriteString(errorText(m.err) + "\n\n")
	}

	if len(m.clients) == 0 {
		s.WriteString(subtitleStyle.Render("  No clients yet. Press 'n' to add one.") + "\n")
		return s.String()
	}

	for i, client := range m.clients {
		s.WriteString(m.renderClient(i, client) + "\n")
	}

	s.WriteString("\n" + helpStyle.Render("  j/k: navigate  n: new  enter: edit  a: activate/deactivate  x: delete  i: toggle inactive"))
	return s.String()
}

func (m *ClientsModel) renderClient(index int, client *domain.Client) string {
	selected := index == m.cursor

	name := client.Name
	if !client.IsActive {
		name += " (inactive)"
	}

	rate := fmt.Sprintf("%s/hr %s", format.Money(client.HourlyRate), client.Currency)
	if client.Currency == domain.CurrencyUSD {
		rate += fmt.Sprintf(" (x%s)", client.ConversionRate)
	}

	stats := m.monthlyStats[client.ID]
	monthly := fmt.Sprintf("This month: %s  %s", format.Hours(stats.TotalHours), format.Money(stats.NativeIncome))

	contact := client.Email
	if client.Phone != "" {
		if contact != "" {
			contact += "  "
		}
		contact += client.Phone
	}
	if contact == "" && client.Description != "" {
		contact = format.Truncate(client.Description, 40)
	}

	indicator := "  "
	if selected {
		indicator = "> "
	}

	nameStyle := sectionStyle.UnsetBold()
	detailStyle := subtitleStyle
	if !client.IsActive {
		nameStyle = mutedStyle
		detailStyle = mutedStyle
	}
	if selected {
		nameStyle = nameStyle.Bold(true).Foreground(primaryColor)
	}

	result := nameStyle.Render(indicator+name) + "\n" +
		detailStyle.Render(fmt.Sprintf("    Rate: %s  |  %s", rate, monthly))
	if contact != "" {
		result += "\n" + detailStyle.Render("    "+contact)
	}
	return result
}
