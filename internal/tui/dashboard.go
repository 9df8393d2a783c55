package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shossk/cocoro-sdk/internal/device"
	"github.com/shossk/cocoro-sdk/internal/state"
)

// Messages for async operations
type applyDoneMsg struct {
	err        error
	refreshErr error
}

type refreshDoneMsg struct {
	err error
}

// dashboardKeyMap defines key bindings for the device dashboard
type dashboardKeyMap struct {
	Power    key.Binding
	Mode     key.Binding
	Wind     key.Binding
	Temp     key.Binding
	Humidify key.Binding
	Apply    key.Binding
	Discard  key.Binding
	Refresh  key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Power, k.Mode, k.Wind, k.Temp, k.Humidify, k.Apply, k.Discard, k.Refresh, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Power, k.Mode, k.Wind, k.Temp, k.Humidify},
		{k.Apply, k.Discard, k.Refresh},
		{k.Back, k.Quit},
	}
}

// promptKeyMap is shown while a value is being typed
type promptKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

func (k promptKeyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Confirm, k.Cancel} }
func (k promptKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{{k.Confirm, k.Cancel}} }

// DashboardModel shows one device and queues commands for it. Queued
// commands are only sent when the user applies them.
type DashboardModel struct {
	cloud  Cloud
	device *device.Device
	title  string

	// Rendered device text, rebuilt after every change so View never reads
	// the device while a request is in flight
	detail  string
	pending string

	Width  int
	Height int

	// Prompting is the command whose value is being typed, or ""
	Prompting string
	Input     textinput.Model

	Busy      bool
	BusyLabel string
	Spinner   spinner.Model

	Message string
	Err     error

	BackRequested bool

	Help       help.Model
	Keys       dashboardKeyMap
	PromptKeys promptKeyMap
}

// NewDashboardModel creates a dashboard for d
func NewDashboardModel(cloud Cloud, d *device.Device, title string) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.CharLimit = 16
	input.Width = 20

	keys := dashboardKeyMap{
		Power:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "power")),
		Mode:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mode")),
		Wind:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "wind")),
		Temp:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "temp")),
		Humidify: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "humidify")),
		Apply:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "apply")),
		Discard:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "discard")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Back:     key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}

	if title == "" {
		title = d.String()
	}

	m := DashboardModel{
		cloud:   cloud,
		device:  d,
		title:   title,
		Input:   input,
		Spinner: s,
		Help:    help.New(),
		Keys:    keys,
		PromptKeys: promptKeyMap{
			Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "queue")),
			Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
	}
	m.capture()
	return m
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case applyDoneMsg:
		m.Busy = false
		m.Err = msg.err
		switch {
		case msg.err != nil:
			m.Message = ""
		case msg.refreshErr != nil:
			m.Message = fmt.Sprintf("Applied, but refresh failed: %v", msg.refreshErr)
		default:
			m.Message = "Applied at " + time.Now().Format("15:04:05")
		}
		m.capture()
		return m, nil

	case refreshDoneMsg:
		m.Busy = false
		m.Err = msg.err
		if msg.err == nil {
			m.Message = "Refreshed at " + time.Now().Format("15:04:05")
		}
		m.capture()
		return m, nil

	case tea.KeyMsg:
		if m.Busy {
			return m, nil
		}
		if m.Prompting != "" {
			return m.updatePrompt(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m DashboardModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Power):
		value := "on"
		if on, err := m.device.Power(); err == nil && on {
			value = "off"
		}
		return m.queue(device.CommandPower, value), nil

	case key.Matches(msg, m.Keys.Mode):
		return m.prompt(device.CommandMode, m.modeHint()), textinput.Blink

	case key.Matches(msg, m.Keys.Wind):
		return m.prompt(device.CommandWindspeed, "auto or 1-8"), textinput.Blink

	case key.Matches(msg, m.Keys.Temp):
		return m.prompt(device.CommandTemperature, "°C"), textinput.Blink

	case key.Matches(msg, m.Keys.Humidify):
		return m.prompt(device.CommandHumidify, "on or off"), textinput.Blink

	case key.Matches(msg, m.Keys.Apply):
		if !m.device.HasPending() {
			m.Message = "Nothing queued"
			return m, nil
		}
		m.Busy = true
		m.BusyLabel = "APPLYING"
		m.Err = nil
		return m, tea.Batch(applyCmd(m.cloud, m.device), m.Spinner.Tick)

	case key.Matches(msg, m.Keys.Discard):
		m.device.ClearPending()
		m.Message = "Queue cleared"
		m.Err = nil
		m.capture()
		return m, nil

	case key.Matches(msg, m.Keys.Refresh):
		m.Busy = true
		m.BusyLabel = "REFRESHING"
		m.Err = nil
		return m, tea.Batch(refreshCmd(m.cloud, m.device), m.Spinner.Tick)

	case key.Matches(msg, m.Keys.Back):
		m.BackRequested = true
		return m, nil
	}

	return m, nil
}

func (m DashboardModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.PromptKeys.Cancel):
		m.Prompting = ""
		m.Input.Blur()
		return m, nil

	case key.Matches(msg, m.PromptKeys.Confirm):
		command := m.Prompting
		value := m.Input.Value()
		m.Prompting = ""
		m.Input.Blur()
		return m.queue(command, value), nil
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m DashboardModel) prompt(command, placeholder string) DashboardModel {
	m.Prompting = command
	m.Input.Placeholder = placeholder
	m.Input.SetValue("")
	m.Input.Focus()
	m.Err = nil
	return m
}

// queue applies one command to the device's pending queue
func (m DashboardModel) queue(command, value string) DashboardModel {
	if err := m.device.QueueCommand(command, value); err != nil {
		m.Err = fmt.Errorf("%s %q: %w", command, value, err)
		m.Message = ""
		return m
	}
	m.Err = nil
	m.Message = fmt.Sprintf("Queued %s=%s, press a to apply", command, strings.TrimSpace(value))
	m.capture()
	return m
}

func (m DashboardModel) modeHint() string {
	if m.device.Family == state.FamilyPurifier {
		return "auto, night, pollen..."
	}
	return "auto, cool, heat, dry, fan"
}

// capture re-renders the device text
func (m *DashboardModel) capture() {
	m.detail = m.device.FormatDetailed()
	m.pending = ""
	if m.device.HasPending() {
		m.pending = m.device.FormatPending()
	}
}

// IsBackRequested reports whether the user asked to leave the dashboard
func (m DashboardModel) IsBackRequested() bool {
	return m.BackRequested
}

// View renders the dashboard
func (m DashboardModel) View() string {
	width := contentWidth(m.Width) - 8

	sections := []string{
		RenderTitle(m.title),
		StatusBoxStyle.Width(width).Render(m.detail),
	}

	if m.pending != "" {
		sections = append(sections, PendingStyle.Width(width).Render(m.pending))
	}

	switch {
	case m.Busy:
		sections = append(sections, "", SpinnerStyle.Render(fmt.Sprintf("%s %s", m.Spinner.View(), m.BusyLabel)))
	case m.Prompting != "":
		sections = append(sections, "", PromptStyle.Render(fmt.Sprintf("%s: ", m.Prompting))+m.Input.View())
	}

	if m.Err != nil {
		sections = append(sections, "", RenderError(m.Err.Error()))
	} else if m.Message != "" {
		sections = append(sections, "", RenderSuccess(m.Message))
	}

	var helpText string
	if m.Prompting != "" {
		helpText = m.Help.View(m.PromptKeys)
	} else {
		helpText = m.Help.View(m.Keys)
	}

	content := lipgloss.NewStyle().MarginLeft(2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// applyCmd submits the queued updates and refreshes the device
func applyCmd(cloud Cloud, d *device.Device) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := cloud.ExecuteQueuedUpdates(ctx, d); err != nil {
			return applyDoneMsg{err: err}
		}
		return applyDoneMsg{refreshErr: cloud.RefreshStatus(ctx, d)}
	}
}

func refreshCmd(cloud Cloud, d *device.Device) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return refreshDoneMsg{err: cloud.RefreshStatus(ctx, d)}
	}
}
