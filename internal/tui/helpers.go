package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andy/billing/internal/domain"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func newInput(placeholder string, limit, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = width
	return ti
}

// renderForm draws labelled inputs with the focused one highlighted.
func renderForm(labels []string, fields []textinput.Model, focus int) string {
	var b strings.Builder
	for i, label := range labels {
		indicator := "  "
		labelStyle := subtitleStyle
		if i == focus {
			indicator = "> "
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		fmt.Fprintf(&b, "%s%s\n  %s\n\n", indicator, labelStyle.Render(label), fields[i].View())
	}
	return b.String()
}

// errorText renders err, listing each invalid field of a validation error.
func errorText(err error) string {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return errorStyle.Render(fmt.Sprintf("  Error: %v", err))
	}
	lines := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("  %s: %s", f.Field, f.Message)))
	}
	return strings.Join(lines, "\n")
}

// monthStart returns the first day of t's month, UTC.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// bar scales value against scale into a bar of at most width cells.
func bar(value, scale decimal.Decimal, width int) string {
	if !scale.IsPositive() || !value.IsPositive() {
		return ""
	}
	n := int(value.Mul(decimal.NewFromInt(int64(width))).Div(scale).IntPart())
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// moveCursor clamps cursor+delta into [0, n) and keeps it inside the
// visible window starting at offset.
func moveCursor(cursor, offset, delta, n, visible int) (int, int) {
	cursor += delta
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor < offset {
		offset = cursor
	}
	if visible > 0 && cursor >= offset+visible {
		offset = cursor - visible + 1
	}
	return cursor, offset
}
