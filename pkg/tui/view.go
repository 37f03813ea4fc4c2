package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/taskverse/pkg/printers"
	"tableflip.dev/taskverse/pkg/task"
)

const helpText = "j/k move · x toggle · a add · d delete · f filter · s sort · p prioritise · w wallet · v verify · r reload · q quit"

// View renders the UI.
func (m *Model) View() string {
	width := m.frameWidth()
	st := m.tasks.State()

	sections := []string{m.header(width)}

	if len(st.View) == 0 {
		sections = append(sections, m.theme.Meta.Render("  no tasks"))
	}
	now := m.tasks.Now()
	for i, t := range st.View {
		overdue := t.HasDueDate() && !t.Completed() && t.DueDate.Before(now)
		sections = append(sections, m.row(t, i == m.cursor, overdue, width))
	}

	if m.tip != "" {
		sections = append(sections, "", m.theme.Tip.Render(wordwrap.String("AI Tip: "+m.tip, width)))
	}

	sections = append(sections, "", m.footer(width))
	return m.theme.Frame.Width(width + m.theme.Frame.GetHorizontalFrameSize()).Render(strings.Join(sections, "\n"))
}

func (m *Model) header(width int) string {
	st := m.tasks.State()
	pending := 0
	for _, t := range st.Tasks {
		if !t.Completed() {
			pending++
		}
	}
	title := m.theme.Header.Render("TaskVerse")
	meta := m.theme.Meta.Render(fmt.Sprintf("%d pending of %d · filter %s · sort %s", pending, len(st.Tasks), st.Filter, st.Sort))
	line := lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", meta)
	if m.chain != nil {
		ws := m.chain.State()
		wallet := "wallet " + ws.Phase.String()
		if ws.Connected {
			wallet = "wallet " + ws.ShortAddress()
			if !ws.CorrectNetwork {
				wallet += " (wrong network)"
			}
		}
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, "  ", m.theme.Meta.Render(wallet))
	}
	return clip(line, width)
}

func (m *Model) row(t task.Task, selected, overdue bool, width int) string {
	marker := "  "
	if selected {
		marker = m.theme.Selected.Render("› ")
	}
	title := t.Title
	if t.Completed() {
		title = m.theme.Done.Render(title)
	} else if selected {
		title = m.theme.Selected.Render(title)
	}
	parts := []string{marker + printers.Signifier(t).Symbol + printers.Bullet(t).Symbol, title}
	if t.HasDueDate() {
		style := m.theme.Due
		if overdue {
			style = m.theme.Overdue
		}
		parts = append(parts, style.Render("due "+t.DueDate.Date()))
	}
	if t.Category != "" {
		parts = append(parts, m.theme.Meta.Render(t.Category))
	}
	if v := printers.Verified(t).Symbol; v != "" {
		parts = append(parts, v)
	}
	return clip(strings.Join(parts, " "), width)
}

func (m *Model) footer(width int) string {
	if m.mode == modeAdd {
		return m.input.View() + "\n" + m.theme.Help.Render("enter save · esc cancel")
	}
	status := m.theme.Status.Render(m.status)
	if m.failed {
		status = m.theme.Error.Render(m.status)
	}
	return status + "\n" + m.theme.Help.Render(wordwrap.String(helpText, width))
}

// clip truncates s to width printable cells.
func clip(s string, width int) string {
	if width <= 0 || ansi.PrintableRuneWidth(s) <= width {
		return s
	}
	var b strings.Builder
	w := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == ansi.Marker:
			inEscape = true
		case inEscape:
			if ansi.IsTerminator(r) {
				inEscape = false
			}
		default:
			if w+1 > width-1 {
				b.WriteString("…\x1b[0m")
				return b.String()
			}
			w++
		}
		b.WriteRune(r)
	}
	return b.String()
}
