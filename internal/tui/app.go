package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shossk/cocoro-sdk/internal/device"
)

// requestTimeout bounds each cloud call made from the UI
const requestTimeout = 30 * time.Second

// Cloud is the part of the cocoro client the control panel drives
type Cloud interface {
	QueryDevices(ctx context.Context) ([]*device.Device, error)
	RefreshStatus(ctx context.Context, d *device.Device) error
	ExecuteQueuedUpdates(ctx context.Context, d *device.Device) error
}

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenPicker    Screen = "picker"
	ScreenDashboard Screen = "dashboard"
)

// AppModel is the top-level model switching between the device list and a
// device dashboard
type AppModel struct {
	cloud     Cloud
	nicknames map[int64]string

	CurrentScreen Screen

	PickerModel    PickerModel
	DashboardModel DashboardModel

	Width  int
	Height int
}

// NewAppModel creates the application, starting at the device list.
// nicknames maps device IDs to the names shown in the list.
func NewAppModel(cloud Cloud, nicknames map[int64]string) AppModel {
	return AppModel{
		cloud:         cloud,
		nicknames:     nicknames,
		CurrentScreen: ScreenPicker,
		PickerModel:   NewPickerModel(cloud, nicknames),
	}
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	return m.PickerModel.Init()
}

// Update handles all messages and routes them to the current screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		updated, cmd := m.PickerModel.Update(msg)
		m.PickerModel = updated.(PickerModel)
		m.DashboardModel.Width = msg.Width
		m.DashboardModel.Height = msg.Height
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.CurrentScreen {
	case ScreenPicker:
		if m.PickerModel.Quitting(msg) {
			return m, tea.Quit
		}

		updated, cmd := m.PickerModel.Update(msg)
		m.PickerModel = updated.(PickerModel)

		if d := m.PickerModel.SelectedDevice(); d != nil {
			m.PickerModel.Selected = false
			return m.openDashboard(d, m.PickerModel.SelectedTitle())
		}
		return m, cmd

	case ScreenDashboard:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && m.DashboardModel.Prompting == "" && !m.DashboardModel.Busy &&
			keyMsg.String() == "q" {
			return m, tea.Quit
		}

		updated, cmd := m.DashboardModel.Update(msg)
		m.DashboardModel = updated.(DashboardModel)

		if m.DashboardModel.IsBackRequested() {
			m.CurrentScreen = ScreenPicker
			return m, m.PickerModel.Init()
		}
		return m, cmd
	}

	return m, nil
}

func (m AppModel) openDashboard(d *device.Device, title string) (tea.Model, tea.Cmd) {
	m.CurrentScreen = ScreenDashboard
	m.DashboardModel = NewDashboardModel(m.cloud, d, title)
	m.DashboardModel.Width = m.Width
	m.DashboardModel.Height = m.Height
	return m, m.DashboardModel.Init()
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDashboard:
		return m.DashboardModel.View()
	default:
		return m.PickerModel.View()
	}
}

// Run starts the full-screen control panel and blocks until the user quits
func Run(cloud Cloud, nicknames map[int64]string) error {
	program := tea.NewProgram(NewAppModel(cloud, nicknames), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
