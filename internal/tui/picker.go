package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shossk/cocoro-sdk/internal/device"
)

// Messages for async operations
type loadStartMsg struct{}
type devicesLoadedMsg struct {
	devices []*device.Device
	err     error
}

// pickerKeyMap defines key bindings for the device list
type pickerKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Refresh, k.Quit},
	}
}

// deviceItem wraps a Device for use with bubbles/list. The text is captured
// when the list is loaded so rendering never reads the device.
type deviceItem struct {
	device  *device.Device
	title   string
	summary string
}

func newDeviceItem(d *device.Device, nicknames map[int64]string) deviceItem {
	title := d.String()
	if nick := nicknames[d.DeviceID]; nick != "" {
		title = fmt.Sprintf("%s (%d)", nick, d.DeviceID)
	}
	return deviceItem{device: d, title: title, summary: d.Summary()}
}

func (d deviceItem) FilterValue() string { return d.title + " " + d.device.Name }
func (d deviceItem) Title() string { return d.title }
func (d deviceItem) Description() string { return d.summary }

// deviceDelegate renders devices as cards
type deviceDelegate struct {
	width int
}

func (d deviceDelegate) Height() int { return 4 }
func (d deviceDelegate) Spacing() int { return 1 }
func (d deviceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d deviceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(deviceItem)
	if !ok {
		return
	}
	selected := index == m.Index()

	var content strings.Builder
	if selected {
		content.WriteString(SelectedItemStyle.Render("→ " + it.title))
	} else {
		content.WriteString("  " + it.title)
	}
	content.WriteString("\n  ")
	content.WriteString(it.summary)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1).
		MarginLeft(2).
		Width(contentWidth(d.width) - 10)
	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// PickerModel lists the account's devices
type PickerModel struct {
	cloud     Cloud
	nicknames map[int64]string

	Loading    bool
	DeviceList list.Model
	Selected   bool
	Err        error

	Width     int
	Height    int
	Spinner   spinner.Model
	LoadStart time.Time
	Help      help.Model
	Keys      pickerKeyMap
}

// NewPickerModel creates the device list screen
func NewPickerModel(cloud Cloud, nicknames map[int64]string) PickerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	deviceList := list.New([]list.Item{}, deviceDelegate{width: MinTerminalWidth}, 0, 0)
	deviceList.Title = "Devices"
	deviceList.SetShowStatusBar(false)
	deviceList.SetFilteringEnabled(true)
	deviceList.Styles.Title = TitleStyle

	keys := pickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "control"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	return PickerModel{
		cloud:      cloud,
		nicknames:  nicknames,
		DeviceList: deviceList,
		Spinner:    s,
		Help:       help.New(),
		Keys:       keys,
	}
}

// Init starts loading the device list
func (m PickerModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return loadStartMsg{} },
		loadDevices(m.cloud),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.Loading && m.DeviceList.FilterState() != list.Filtering {
			switch {
			case key.Matches(msg, m.Keys.Enter):
				if m.DeviceList.SelectedItem() != nil {
					m.Selected = true
				}
				return m, nil
			case key.Matches(msg, m.Keys.Refresh):
				m.DeviceList.SetItems(nil)
				m.Err = nil
				return m, tea.Batch(
					func() tea.Msg { return loadStartMsg{} },
					loadDevices(m.cloud),
					m.Spinner.Tick,
				)
			}
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceList.SetDelegate(deviceDelegate{width: msg.Width})
		m.DeviceList.SetWidth(contentWidth(msg.Width) - 4)
		m.DeviceList.SetHeight(max(msg.Height-8, 5))

	case loadStartMsg:
		m.Loading = true
		m.LoadStart = time.Now()

	case devicesLoadedMsg:
		m.Loading = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.devices))
		for i, d := range msg.devices {
			items[i] = newDeviceItem(d, m.nicknames)
		}
		m.DeviceList.SetItems(items)
		return m, nil

	case spinner.TickMsg:
		if !m.Loading {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.Loading {
		m.DeviceList, cmd = m.DeviceList.Update(msg)
	}
	return m, cmd
}

// Quitting reports whether a key press should leave the picker
func (m PickerModel) Quitting(msg tea.Msg) bool {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.DeviceList.FilterState() == list.Filtering {
		return false
	}
	return key.Matches(keyMsg, m.Keys.Quit)
}

// View renders the device list screen
func (m PickerModel) View() string {
	var content string
	switch {
	case m.Loading:
		elapsed := time.Since(m.LoadStart).Round(time.Second)
		content = lipgloss.JoinVertical(lipgloss.Left,
			"",
			TitleStyle.Render(fmt.Sprintf("%s LOADING DEVICES", m.Spinner.View())),
			RenderSubtitle(fmt.Sprintf("Querying the cloud... (%s)", elapsed)),
		)
	case m.Err != nil:
		content = "\n" + RenderError(fmt.Sprintf("Failed to load devices: %v", m.Err)) +
			"\n\n  Press r to retry."
	case len(m.DeviceList.Items()) == 0:
		content = "\n" + lipgloss.NewStyle().Foreground(WarningColor).Bold(true).
			Render("  ⚠ No devices registered to this account")
	default:
		content = m.DeviceList.View()
	}

	return RenderApplicationContainer(content, m.Help.View(m.Keys), m.Width, m.Height)
}

// SelectedDevice returns the chosen device, or nil
func (m PickerModel) SelectedDevice() *device.Device {
	if !m.Selected {
		return nil
	}
	if it, ok := m.DeviceList.SelectedItem().(deviceItem); ok {
		return it.device
	}
	return nil
}

// SelectedTitle returns the list title of the chosen device
func (m PickerModel) SelectedTitle() string {
	if it, ok := m.DeviceList.SelectedItem().(deviceItem); ok {
		return it.title
	}
	return ""
}

func loadDevices(cloud Cloud) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		devices, err := cloud.QueryDevices(ctx)
		return devicesLoadedMsg{devices: devices, err: err}
	}
}
