package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pdxmph/softphone-sync/internal/db"
	"github.com/pdxmph/softphone-sync/internal/host"
	"github.com/pdxmph/softphone-sync/internal/transcript"
)

// Model is the agent desktop: it drives the host runtime and shows what the
// CRM integration did in response
type Model struct {
	runtime   *host.Runtime
	db        *db.DB
	fullWidth int

	tasks    []host.Task
	selected int
	width    int
	height   int

	messageMode  bool
	messageInput textinput.Model
	authorIdx    int

	status string
	err    error
}

// Authors lists who a typed chat message can come from
var Authors = []string{"Customer", "Agent"}

const refreshInterval = 500 * time.Millisecond

type tickMsg time.Time

// Styles
var (
	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// Options describe the desktop's CRM connection for display
type Options struct {
	Origin    string
	Connected bool
	FullWidth int
}

// New creates a new agent desktop model
func New(runtime *host.Runtime, database *db.DB, opts Options) *Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Width = 50
	ti.CharLimit = 500
	ti.Prompt = "> "
	ti.PromptStyle = labelStyle

	status := "Not embedded in the CRM: panel sync and transcript export are off"
	if opts.Connected {
		status = "Connected to CRM telephony API at " + opts.Origin
	}

	return &Model{
		runtime:      runtime,
		db:           database,
		fullWidth:    opts.FullWidth,
		tasks:        runtime.State().Tasks(),
		messageInput: ti,
		status:       status,
	}
}

// Init starts the refresh ticker
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.reload()
		return m, tick()

	case tea.KeyMsg:
		if m.messageMode {
			return m.updateMessageMode(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "j", "down":
			if m.selected < len(m.tasks)-1 {
				m.selected++
			}
		case "k", "up":
			if m.selected > 0 {
				m.selected--
			}
		case "n":
			t := m.runtime.AddTask(host.ChannelChat)
			m.reload()
			m.selected = len(m.tasks) - 1
			m.setStatus(fmt.Sprintf("New chat task %s", t.SID), nil)
		case "v":
			t := m.runtime.AddTask(host.ChannelVoice)
			m.reload()
			m.selected = len(m.tasks) - 1
			m.setStatus(fmt.Sprintf("New voice task %s", t.SID), nil)
		case "a":
			m.onSelected("Accepted", m.runtime.AcceptTask)
		case "w":
			m.onSelected("Wrapping up", m.runtime.WrapupTask)
		case "c":
			m.onSelected("Completed", m.runtime.CompleteTask)
		case "x":
			m.onSelected("Removed", m.runtime.RemoveTask)
			m.selected = m.ensureValidSelection()
		case "m":
			if t, ok := m.selectedTask(); ok && t.IsChat() {
				m.messageMode = true
				m.messageInput.Focus()
				return m, textinput.Blink
			}
			m.setStatus("Messages can only be added to chat tasks", nil)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateMessageMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.messageMode = false
		m.messageInput.Reset()
		m.messageInput.Blur()
		return m, nil
	case "tab":
		m.authorIdx = (m.authorIdx + 1) % len(Authors)
		return m, nil
	case "enter":
		body := strings.TrimSpace(m.messageInput.Value())
		if t, ok := m.selectedTask(); ok && body != "" {
			err := m.runtime.AppendMessage(t.Attributes.ChannelSID, Authors[m.authorIdx], body)
			m.setStatus("Message sent", err)
		}
		m.messageMode = false
		m.messageInput.Reset()
		m.messageInput.Blur()
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.messageInput, cmd = m.messageInput.Update(msg)
	return m, cmd
}

func (m *Model) onSelected(verb string, action func(string) error) {
	t, ok := m.selectedTask()
	if !ok {
		m.setStatus("No task selected", nil)
		return
	}
	err := action(t.SID)
	m.reload()
	m.setStatus(fmt.Sprintf("%s %s", verb, t.SID), err)
}

func (m *Model) setStatus(status string, err error) {
	if err != nil {
		m.status = ""
		m.err = err
		return
	}
	m.status = status
	m.err = nil
}

func (m *Model) reload() {
	m.tasks = m.runtime.State().Tasks()
	m.selected = m.ensureValidSelection()
}

func (m Model) selectedTask() (host.Task, bool) {
	if len(m.tasks) == 0 || m.selected >= len(m.tasks) {
		return host.Task{}, false
	}
	return m.tasks[m.selected], true
}

// ensureValidSelection keeps the selection inside the task list
func (m Model) ensureValidSelection() int {
	if len(m.tasks) == 0 {
		return 0
	}
	if m.selected >= len(m.tasks) {
		return len(m.tasks) - 1
	}
	return m.selected
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	listWidth := m.width / 3
	detailWidth := m.width - listWidth - 4
	paneHeight := m.height - 4

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(listWidth).Height(paneHeight).Render(m.renderList(listWidth)),
		borderStyle.Width(detailWidth).Height(paneHeight).Render(m.renderDetail(detailWidth)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderStatus(), m.renderHelp())
}

// renderList renders the worker's tasks
func (m Model) renderList(width int) string {
	lines := []string{
		fmt.Sprintf("Tasks (%d)", len(m.tasks)),
		strings.Repeat("─", max(width-2, 0)),
	}
	for i, t := range m.tasks {
		line := fmt.Sprintf("%-5s %-10s %s", t.TaskChannelUniqueName, t.Status, shortSID(t.SID))
		if i == m.selected {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(m.tasks) == 0 {
		lines = append(lines, labelStyle.Render("No tasks. Press n or v."))
	}
	return strings.Join(lines, "\n")
}

// renderDetail renders the softphone state, the selected task and recent CRM logs
func (m Model) renderDetail(width int) string {
	rule := strings.Repeat("─", max(width-2, 0))
	lines := []string{"Softphone", rule}

	if w, ok, err := m.db.SoftphoneWidth(); err == nil && ok {
		lines = append(lines, fmt.Sprintf("Panel width: %dpx %s", w, widthBar(w, m.fullWidth, 30)))
	} else {
		lines = append(lines, "Panel width: not set")
	}
	panel2 := "hidden"
	if m.runtime.Config().Bool(host.ShowPanel2Path) {
		panel2 = "visible"
	}
	lines = append(lines, "Secondary panel: "+panel2, "")

	if t, ok := m.selectedTask(); ok {
		lines = append(lines, "Task "+t.SID, rule)
		lines = append(lines, fmt.Sprintf("Channel: %s  Status: %s", t.TaskChannelUniqueName, t.Status))
		if t.IsChat() {
			lines = append(lines, "Chat channel: "+t.Attributes.ChannelSID, "")
			msgs, err := m.runtime.State().Messages(t.Attributes.ChannelSID)
			if err != nil {
				lines = append(lines, errorStyle.Render(err.Error()))
			} else if len(msgs) == 0 {
				lines = append(lines, labelStyle.Render("No messages yet. Press m."))
			} else {
				text := strings.TrimSuffix(transcript.Format(msgs), "\r\n")
				lines = append(lines, strings.Split(text, "\r\n")...)
			}
		}
		lines = append(lines, "")
	}

	logs, err := m.db.ListLogs(3)
	if err == nil && len(logs) > 0 {
		lines = append(lines, "CRM call logs", rule)
		for _, l := range logs {
			lines = append(lines, fmt.Sprintf("%s  %d msgs  saved %dx  %s",
				l.ID, l.MessageCount(), l.SaveCount, l.UpdatedAt.Local().Format("15:04:05")))
		}
	}

	if m.messageMode {
		lines = append(lines, "", "From "+Authors[m.authorIdx]+" (tab to switch)", m.messageInput.View())
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderStatus() string {
	if m.err != nil {
		return " " + errorStyle.Render("Error: "+m.err.Error())
	}
	return " " + statusStyle.Render(m.status)
}

// renderHelp renders the help line
func (m Model) renderHelp() string {
	if m.messageMode {
		return " Enter: send • Tab: switch author • Esc: cancel"
	}
	return " n: chat task • v: voice task • a: accept • w: wrap up • c: complete • x: remove • m: message • j/k: move • q: quit"
}

// widthBar draws width relative to full as a bar of size cells
func widthBar(width, full, size int) string {
	if full <= 0 {
		return ""
	}
	filled := width * size / full
	if filled > size {
		filled = size
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat(" ", size-filled) + "]"
}

func shortSID(sid string) string {
	if len(sid) > 12 {
		return sid[:12] + "…"
	}
	return sid
}
