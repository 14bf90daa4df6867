package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/billing/internal/app"
	"github.com/andy/billing/internal/domain"
	"github.com/andy/billing/internal/format"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

type taskMode int

const (
	taskModeList          taskMode = iota
	taskModePickClient             // cursor-based client selection
	taskModeForm                   // text input form for task details
	taskModeConfirmDelete          // y/n confirmation before delete
)

// task form field indices (after client is selected)
const (
	taskFieldDate = iota
	taskFieldHours
	taskFieldDescription
	taskFieldLink
	taskFieldCount
)

var taskFieldLabels = []string{"Date (YYYY-MM-DD):", "Hours worked:", "Description:", "Link:"}

// TasksModel lists the tasks of one month with create/edit/delete
type TasksModel struct {
	app        *app.App
	month      time.Time // first day of the listed month
	tasks      []*domain.WorkTask
	cursor     int
	offset     int
	maxVisible int
	loading    bool
	err        error
	statusMsg  string

	// Form state
	mode         taskMode
	fields       []textinput.Model
	fieldFocus   int
	formClients  []*domain.Client
	formClient   *domain.Client
	clientCursor int
	editing      *domain.WorkTask // nil for a new task
}

type tasksDataMsg struct {
	tasks []*domain.WorkTask
	err   error
}

type taskClientsMsg struct {
	clients []*domain.Client
	err     error
}

type taskSavedMsg struct {
	err error
}

type taskDeletedMsg struct {
	err error
}

// IsCapturingInput returns true when the picker, form or delete confirmation is active
func (m *TasksModel) IsCapturingInput() bool {
	return m.mode != taskModeList
}

// NewTasksModel creates a new tasks screen model
func NewTasksModel(a *app.App) tea.Model {
	return &TasksModel{
		app:        a,
		month:      monthStart(a.Clock.Now()),
		maxVisible: 15,
		loading:    true,
	}
}

func (m *TasksModel) Init() tea.Cmd {
	return m.loadTasks()
}

func (m *TasksModel) loadTasks() tea.Cmd {
	filter := domain.TaskFilter{Year: m.month.Year(), Month: int(m.month.Month())}
	return func() tea.Msg {
		tasks, err := m.app.TaskRepo.List(context.Background(), filter)
		return tasksDataMsg{tasks: tasks, err: err}
	}
}

func (m *TasksModel) loadFormClients() tea.Cmd {
	return func() tea.Msg {
		clients, err := m.app.ClientRepo.List(context.Background(), true)
		return taskClientsMsg{clients: clients, err: err}
	}
}

func (m *TasksModel) initForm(client *domain.Client, editing *domain.WorkTask) {
	m.formClient = client
	m.editing = editing

	m.fields = make([]textinput.Model, taskFieldCount)
	m.fields[taskFieldDate] = newInput(domain.DateLayout, 10, 15)
	m.fields[taskFieldHours] = newInput("1.5", 5, 10)
	m.fields[taskFieldDescription] = newInput("What did you work on?", 1000, 50)
	m.fields[taskFieldLink] = newInput("https://", 500, 50)

	if editing != nil {
		m.fields[taskFieldDate].SetValue(editing.TaskDate.Format(domain.DateLayout))
		m.fields[taskFieldHours].SetValue(editing.HoursWorked.String())
		m.fields[taskFieldDescription].SetValue(editing.Description)
		m.fields[taskFieldLink].SetValue(editing.TaskLink)
	} else {
		m.fields[taskFieldDate].SetValue(m.app.Clock.Now().Format(domain.DateLayout))
	}

	m.mode = taskModeForm
	m.fieldFocus = taskFieldDate
	m.fields[taskFieldDate].Focus()
}

// formTask builds the task described by the form
func (m *TasksModel) formTask() (*domain.WorkTask, error) {
	value := func(i int) string { return strings.TrimSpace(m.fields[i].Value()) }

	var verr domain.ValidationError
	date, err := domain.ParseDate(value(taskFieldDate))
	if err != nil {
		verr.Fields = append(verr.Fields, domain.FieldError{Field: "task_date", Message: "must be a date in YYYY-MM-DD format"})
	}
	hours, err := decimal.NewFromString(value(taskFieldHours))
	if err != nil {
		verr.Fields = append(verr.Fields, domain.FieldError{Field: "hours_worked", Message: "must be a number"})
	}
	if len(verr.Fields) > 0 {
		return nil, &verr
	}

	task := domain.NewWorkTask(m.formClient.ID, date, value(taskFieldDescription), hours)
	task.CreatedAt = m.app.Clock.Now()
	if m.editing != nil {
		task.ID = m.editing.ID
		task.CreatedAt = m.editing.CreatedAt
	}
	task.TaskLink = value(taskFieldLink)
	return task, nil
}

func (m *TasksModel) saveTask() tea.Cmd {
	task, err := m.formTask()
	editing := m.editing != nil
	return func() tea.Msg {
		if err != nil {
			return taskSavedMsg{err: err}
		}
		ctx := context.Background()
		if editing {
			return taskSavedMsg{err: m.app.TaskRepo.Update(ctx, task)}
		}
		return taskSavedMsg{err: m.app.TaskRepo.Create(ctx, task)}
	}
}

func (m *TasksModel) deleteTask(id int64) tea.Cmd {
	return func() tea.Msg {
		return taskDeletedMsg{err: m.app.TaskRepo.Delete(context.Background(), id)}
	}
}

// shift moves the listed month, refusing to go past the current month.
func (m *TasksModel) shift(months int) tea.Cmd {
	next := m.month.AddDate(0, months, 0)
	if next.After(monthStart(m.app.Clock.Now())) {
		return nil
	}
	m.month = next
	m.cursor, m.offset = 0, 0
	m.loading = true
	return m.loadTasks()
}

func (m *TasksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle client loading result; arrives while still in list mode
	if msg, ok := msg.(taskClientsMsg); ok {
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if len(msg.clients) == 0 {
			m.err = fmt.Errorf("no active clients, add a client first")
			return m, nil
		}
		m.formClients = msg.clients
		m.clientCursor = 0
		// Skip picker if only one client
		if len(msg.clients) == 1 {
			m.initForm(msg.clients[0], nil)
			return m, textinput.Blink
		}
		m.mode = taskModePickClient
		return m, nil
	}

	switch m.mode {
	case taskModePickClient:
		return m.updatePickClient(msg)
	case taskModeForm:
		return m.updateForm(msg)
	case taskModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadTasks()

	case tasksDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.tasks = msg.tasks
			if m.cursor >= len(m.tasks) {
				m.cursor, m.offset = moveCursor(len(m.tasks)-1, m.offset, 0, len(m.tasks), m.maxVisible)
			}
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		m.statusMsg = ""
		m.err = nil
		hasSelection := len(m.tasks) > 0 && m.cursor < len(m.tasks)

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			m.cursor, m.offset = moveCursor(m.cursor, m.offset, -1, len(m.tasks), m.maxVisible)
		case key.Matches(msg, DefaultKeyMap.Down):
			m.cursor, m.offset = moveCursor(m.cursor, m.offset, 1, len(m.tasks), m.maxVisible)
		case key.Matches(msg, DefaultKeyMap.Left):
			return m, m.shift(-1)
		case key.Matches(msg, DefaultKeyMap.Right):
			return m, m.shift(1)
		case key.Matches(msg, DefaultKeyMap.New):
			m.loading = true
			return m, m.loadFormClients()
		case key.Matches(msg, DefaultKeyMap.Select):
			if hasSelection {
				task := m.tasks[m.cursor]
				client := task.Client
				if client == nil {
					client = &domain.Client{ID: task.ClientID}
				}
				m.initForm(client, task)
				return m, textinput.Blink
			}
		case key.Matches(msg, DefaultKeyMap.Delete):
			if hasSelection {
				m.mode = taskModeConfirmDelete
			}
		}
	}

	return m, nil
}

func (m *TasksModel) updatePickClient(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, DefaultKeyMap.Back):
			m.mode = taskModeList
			m.formClients = nil
		case key.Matches(msg, DefaultKeyMap.Up):
			m.clientCursor, _ = moveCursor(m.clientCursor, 0, -1, len(m.formClients), 0)
		case key.Matches(msg, DefaultKeyMap.Down):
			m.clientCursor, _ = moveCursor(m.clientCursor, 0, 1, len(m.formClients), 0)
		case key.Matches(msg, DefaultKeyMap.Select):
			m.initForm(m.formClients[m.clientCursor], nil)
			return m, textinput.Blink
		}
	}
	return m, nil
}

func (m *TasksModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = taskModeList
		m.err = nil
		m.statusMsg = "Task saved"
		m.loading = true
		return m, m.loadTasks()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Back):
			m.err = nil
			m.mode = taskModeList
			// Go back to client picker when creating with several clients
			if m.editing == nil && len(m.formClients) > 1 {
				m.mode = taskModePickClient
			}
			return m, nil

		case key.Matches(msg, DefaultKeyMap.NextField):
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % taskFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case key.Matches(msg, DefaultKeyMap.PrevField):
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + taskFieldCount) % taskFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case key.Matches(msg, DefaultKeyMap.Select):
			if m.fieldFocus == taskFieldCount-1 {
				return m, m.saveTask()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case key.Matches(msg, DefaultKeyMap.Save):
			return m, m.saveTask()
		}
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *TasksModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDeletedMsg:
		m.mode = taskModeList
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = "Task deleted"
		m.loading = true
		return m, m.loadTasks()

	case tea.KeyMsg:
		if msg.String() == "y" {
			return m, m.deleteTask(m.tasks[m.cursor].ID)
		}
		// Any other key cancels
		m.mode = taskModeList
	}
	return m, nil
}

func (m *TasksModel) View() string {
	if m.loading {
		return "Loading tasks..."
	}

	switch m.mode {
	case taskModePickClient:
		return m.viewPickClient()
	case taskModeForm:
		return m.viewForm()
	case taskModeConfirmDelete:
		return m.viewConfirmDelete()
	default:
		return m.viewList()
	}
}

func (m *TasksModel) viewList() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Tasks") + subtitleStyle.Render("  "+m.month.Format("January 2006")) + "\n")

	if m.statusMsg != "" {
		s.WriteString(statusStyle.Render("  "+m.statusMsg) + "\n")
	}
	if m.err != nil {
		s.WriteString(errorText(m.err) + "\n")
	}

	if len(m.tasks) == 0 {
		s.WriteString("\n" + subtitleStyle.Render("  No tasks this month. Press 'n' to add one.") + "\n")
		s.WriteString("\n" + helpStyle.Render("  h/l: prev/next month  n: new task"))
		return s.String()
	}

	totalHours, totalAmount := m.totals()
	s.WriteString(subtitleStyle.Render(fmt.Sprintf(
		"  %d tasks  |  %s total  |  %s",
		len(m.tasks), format.Hours(totalHours), format.Money(totalAmount),
	)) + "\n\n")

	s.WriteString(subtitleStyle.Render(fmt.Sprintf(
		"  %-7s  %-20s  %8s  %12s  %s",
		"Date", "Client", "Hours", "Amount", "Description",
	)) + "\n")

	end := min(m.offset+m.maxVisible, len(m.tasks))
	for i := m.offset; i < end; i++ {
		s.WriteString(m.renderTask(m.tasks[i], i == m.cursor) + "\n")
	}

	if m.offset > 0 {
		s.WriteString(subtitleStyle.Render("  ... more above") + "\n")
	}
	if end < len(m.tasks) {
		s.WriteString(subtitleStyle.Render("  ... more below") + "\n")
	}

	s.WriteString("\n" + totalStyle.Render(fmt.Sprintf("  %-7s  %-20s  %8s  %12s",
		"Total", "", format.Hours(totalHours), format.Money(totalAmount))) + "\n")

	s.WriteString("\n" + helpStyle.Render("  j/k: navigate  h/l: prev/next month  n: new  enter: edit  x: delete"))
	return s.String()
}

func (m *TasksModel) viewPickClient() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("New Task - Select Client") + "\n\n")

	for i, client := range m.formClients {
		line := fmt.Sprintf("%-25s  %s/hr", client.Name, format.Money(client.HourlyRate))
		if i == m.clientCursor {
			s.WriteString(activeStyle.Foreground(primaryColor).Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}

	s.WriteString("\n" + helpStyle.Render("  j/k: navigate  enter: select  esc: cancel"))
	return s.String()
}

func (m *TasksModel) viewForm() string {
	var s strings.Builder

	action := "New Task"
	if m.editing != nil {
		action = "Edit Task"
	}
	clientName := ""
	if m.formClient != nil {
		clientName = m.formClient.Name
	}
	s.WriteString(titleStyle.Render(fmt.Sprintf("%s - %s", action, clientName)) + "\n\n")

	s.WriteString(renderForm(taskFieldLabels, m.fields, m.fieldFocus))

	if m.err != nil {
		s.WriteString(errorText(m.err) + "\n\n")
	}

	s.WriteString(helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: back"))
	return s.String()
}

func (m *TasksModel) viewConfirmDelete() string {
	task := m.tasks[m.cursor]
	var s strings.Builder
	s.WriteString(titleStyle.Render("Delete Task") + "\n\n")
	fmt.Fprintf(&s, "  %s  %s  %s  %s\n\n",
		task.TaskDate.Format("Jan 2"),
		m.clientName(task),
		format.Hours(task.HoursWorked),
		format.Truncate(task.Description, 40),
	)
	s.WriteString(warningStyle.Render("  Delete this task? (y/n)") + "\n")
	return s.String()
}

func (m *TasksModel) renderTask(task *domain.WorkTask, selected bool) string {
	line := fmt.Sprintf("%-7s  %-20s  %8s  %12s  %s",
		task.TaskDate.Format("Jan 2"),
		format.Truncate(m.clientName(task), 20),
		format.Hours(task.HoursWorked),
		format.Money(task.TotalAmount()),
		format.Truncate(task.Description, 35),
	)
	if selected {
		return "  " + selectedStyle.Render(line)
	}
	return "  " + line
}

func (m *TasksModel) clientName(task *domain.WorkTask) string {
	if task.Client != nil {
		return task.Client.Name
	}
	return fmt.Sprintf("Client #%d", task.ClientID)
}

func (m *TasksModel) totals() (decimal.Decimal, decimal.Decimal) {
	hours, amount := decimal.Zero, decimal.Zero
	for _, task := range m.tasks {
		hours = hours.Add(task.HoursWorked)
		amount = amount.Add(task.TotalAmount())
	}
	return hours, amount
}
