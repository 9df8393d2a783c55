package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Result is the box printed after a command finishes
type Result struct {
	Type            ResultType
	Title           string  // e.g., "Temperature set"
	Details         []Param // Printed in order
	Error           error   // Failure only
	Troubleshooting []string
	Width           int
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, details ...Param) *Result {
	return &Result{Type: ResultSuccess, Title: title, Details: details, Width: GetTerminalWidth()}
}

// NewFailureResult creates a failure result box
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// NewWarningResult creates a warning result box
func NewWarningResult(title string, details ...Param) *Result {
	return &Result{Type: ResultWarning, Title: title, Details: details, Width: GetTerminalWidth()}
}

// SetWidth sets the width used for rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail appends a detail line
func (r *Result) AddDetail(key, value string) *Result {
	r.Details = append(r.Details, Param{Key: key, Value: value})
	return r
}

// Render returns the styled result box
func (r *Result) Render() string {
	width := clampWidth(r.Width)

	var (
		color  lipgloss.Color
		title  lipgloss.Style
		marker string
		label  string
	)
	switch r.Type {
	case ResultFailure:
		color, title, marker, label = ErrorColor, ErrorTitleStyle, FailureMarker, "FAILED"
	case ResultWarning:
		color, title, marker, label = WarningColor, WarningTitleStyle, WarningMarker, "WARNING"
	default:
		color, title, marker, label = SuccessColor, SuccessTitleStyle, SuccessMarker, "SUCCESS"
	}

	lines := []string{"", title.Render(fmt.Sprintf("   %s  %s  ─  %s", marker, label, r.Title)), ""}

	for _, d := range r.Details {
		lines = append(lines, ResultKeyStyle.Render("   "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
	}
	if len(r.Details) > 0 {
		lines = append(lines, "")
	}

	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()), "")
	}

	if len(r.Troubleshooting) > 0 {
		lines = append(lines, renderTroubleshooting(r.Troubleshooting, width), "")
	}

	return resultBoxStyle(color, width).Render(strings.Join(lines, "\n"))
}

func renderTroubleshooting(tips []string, width int) string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range tips {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}

	innerWidth := width - 12
	if innerWidth < 40 {
		innerWidth = 40
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(innerWidth).
		Padding(0, 1).
		MarginLeft(3).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}

// Panel is a titled box around preformatted content, such as a device
// view or a request body.
type Panel struct {
	Title   string
	Content string
	Width   int
}

// NewPanel creates a panel sized to the terminal
func NewPanel(title, content string) *Panel {
	return &Panel{Title: title, Content: content, Width: GetTerminalWidth()}
}

// SetWidth sets the width used for rendering
func (p *Panel) SetWidth(width int) *Panel {
	p.Width = width
	return p
}

// Render returns the styled panel
func (p *Panel) Render() string {
	body := PanelContentStyle.Render(strings.TrimRight(p.Content, "\n"))
	if p.Title != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, PanelTitleStyle.Render(p.Title), body)
	}
	return panelStyle(MutedColor, clampWidth(p.Width)).Padding(0, 1).Render(body)
}

// String implements fmt.Stringer
func (p *Panel) String() string {
	return p.Render()
}
