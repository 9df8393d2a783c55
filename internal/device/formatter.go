package device

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shossk/cocoro-sdk/internal/property"
	"github.com/shossk/cocoro-sdk/internal/state"
)

// Summary returns a one-line summary of the device
func (d *Device) Summary() string {
	family := d.Family
	if family == "" {
		family = "unknown"
	}
	return fmt.Sprintf("%s [%s] id=%d box=%s object=%s", d.Name, family, d.DeviceID, d.BoxID, d.EchonetObject)
}

// FormatInfo returns a formatted string with device identification information
func (d *Device) FormatInfo() string {
	var b strings.Builder

	b.WriteString("=== Device Information ===\n")
	b.WriteString(fmt.Sprintf("Name:          %s\n", d.Name))
	b.WriteString(fmt.Sprintf("Device ID:     %d\n", d.DeviceID))
	b.WriteString(fmt.Sprintf("Box ID:        %s\n", d.BoxID))
	b.WriteString(fmt.Sprintf("ECHONET Node:  %s\n", d.EchonetNode))
	b.WriteString(fmt.Sprintf("ECHONET Obj:   %s\n", d.EchonetObject))
	if d.Maker != "" || d.Model != "" {
		b.WriteString(fmt.Sprintf("Model:         %s %s\n", d.Maker, d.Model))
	}
	if d.SerialNumber != "" {
		b.WriteString(fmt.Sprintf("Serial Number: %s\n", d.SerialNumber))
	}

	return b.String()
}

// FormatProperties returns a table of the declared properties
func (d *Device) FormatProperties() string {
	var b strings.Builder

	b.WriteString("=== Properties ===\n")
	b.WriteString("Code | Kind        | Access | Name\n")
	b.WriteString("-----+-------------+--------+----------------------------\n")
	for _, p := range d.Properties() {
		b.WriteString(fmt.Sprintf("%-4s | %-11s | %-6s | %s\n", p.Code, p.Kind, access(p), p.Name))
	}

	return b.String()
}

// FormatStatus returns the current status values, annotated with option
// names and decoded composite fields where known
func (d *Device) FormatStatus() string {
	var b strings.Builder

	b.WriteString("=== Status ===\n")
	statuses := d.Statuses()
	if len(statuses) == 0 {
		b.WriteString("(no status reported)\n")
		return b.String()
	}
	for _, s := range statuses {
		b.WriteString(fmt.Sprintf("%-4s %-11s %s%s\n", s.Code, s.Kind, s.Value, d.annotate(s)))
	}

	return b.String()
}

// FormatPending returns the queued updates in submission order
func (d *Device) FormatPending() string {
	var b strings.Builder

	pending := d.Pending()
	if len(pending) == 0 {
		return "No pending updates\n"
	}

	b.WriteString(fmt.Sprintf("Pending updates (%d):\n", len(pending)))
	for _, s := range pending {
		label := string(s.Code)
		if p, ok := d.GetProperty(s.Code); ok && p.Name != "" {
			label = fmt.Sprintf("%s (%s)", s.Code, p.Name)
		}
		b.WriteString(fmt.Sprintf("  • %s: %s%s\n", label, s.Value, d.annotate(s)))
	}

	return b.String()
}

// FormatCompact returns a compact multi-line format suitable for terminal display
func (d *Device) FormatCompact() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Device: %s (%d)\n", d.Name, d.DeviceID))
	if on, err := d.Power(); err == nil {
		b.WriteString(fmt.Sprintf("Power:  %s\n", onOff(on)))
	}
	if m, err := d.OperationMode(); err == nil {
		b.WriteString(fmt.Sprintf("Mode:   %s\n", m))
	}
	if w, err := d.Windspeed(); err == nil {
		b.WriteString(fmt.Sprintf("Wind:   %s\n", w))
	}
	if t, err := d.Temperature(); err == nil {
		b.WriteString(fmt.Sprintf("Target: %d°C\n", t))
	}
	if t, err := d.RoomTemperature(); err == nil {
		b.WriteString(fmt.Sprintf("Room:   %d°C\n", t))
	}

	return b.String()
}

// FormatDetailed returns every section of the device report
func (d *Device) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(d.FormatInfo())
	b.WriteString("\n")
	b.WriteString(d.FormatStatus())
	b.WriteString("\n")
	b.WriteString(d.FormatProperties())
	if d.HasPending() {
		b.WriteString("\n")
		b.WriteString(d.FormatPending())
	}

	return b.String()
}

func (d *Device) annotate(s property.Status) string {
	p, _ := d.GetProperty(s.Code)

	switch s.Kind {
	case property.KindSingle:
		if name := p.SingleName(s.Value); name != "" {
			return fmt.Sprintf(" (%s)", name)
		}
	case property.KindBinary:
		l, ok := d.Layout(s.Code)
		if !ok {
			return ""
		}
		c, err := state.Decode(l, s.Value)
		if err != nil {
			return " (undecodable)"
		}
		return " " + formatFields(c.Fields())
	}
	return ""
}

func formatFields(fields map[string]int) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, fields[name])
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func access(p property.Property) string {
	var b strings.Builder
	if p.Get {
		b.WriteString("r")
	} else {
		b.WriteString("-")
	}
	if p.Set {
		b.WriteString("w")
	} else {
		b.WriteString("-")
	}
	if p.Inf {
		b.WriteString("n")
	} else {
		b.WriteString("-")
	}
	return b.String()
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
