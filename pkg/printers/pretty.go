package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/wallet"
)

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

var (
	spacing = strings.Repeat(" ", len("00000000-0000-0000-0000-000000000000  "))
)

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

// JSON writes v as indented JSON.
func (pp *PrettyPrint) JSON(v any) error {
	enc := json.NewEncoder(pp.out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " task")
	default:
		_, _ = c.Fprintln(pp.out(), " tasks")
	}
}

// Tasks renders one row per task: status bullet, priority signifier, title,
// due date, category and verification mark.
func (pp *PrettyPrint) Tasks(tasks ...task.Task) {
	if len(tasks) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = f.Fprint(pp.out(), spacing)
		}
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	faint := color.New(color.Faint)
	done := color.New(color.Faint, color.CrossedOut)

	tbl := uitable.New()
	tbl.Separator = " "
	for _, t := range tasks {
		title := t.Title
		if t.Completed() {
			title = done.Sprint(title)
		}
		due := ""
		if t.HasDueDate() {
			due = faint.Sprintf("due %s", t.DueDate.Date())
		}
		row := []interface{}{Signifier(t).Symbol, Bullet(t).Symbol, title, due, faint.Sprint(t.Category), Verified(t).Symbol}
		if pp.ShowID {
			row = append([]interface{}{y.Sprint(t.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Field prints a bold label followed by a value.
func (pp *PrettyPrint) Field(label, value string) {
	b := color.New(color.Bold)
	_, _ = b.Fprintf(pp.out(), "%s: ", label)
	_, _ = fmt.Fprintln(pp.out(), value)
}

// Tip prints an AI tip.
func (pp *PrettyPrint) Tip(tip string) {
	if tip == "" {
		return
	}
	b := color.New(color.Bold, color.FgHiCyan)
	_, _ = b.Fprint(pp.out(), "AI Tip: ")
	_, _ = fmt.Fprintln(pp.out(), tip)
}

// Wallet renders the wallet connection.
func (pp *PrettyPrint) Wallet(s wallet.State) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("State"), phaseColor(s).Sprint(s.Phase.String()))
	if s.Connected {
		tbl.AddRow(bold.Sprint("Account"), s.ShortAddress())
		if s.Balance != "" {
			tbl.AddRow(bold.Sprint("Balance"), s.Balance)
		}
	}
	if s.NetworkID != "" {
		network := s.NetworkID
		if !s.CorrectNetwork {
			network = color.New(color.FgRed).Sprintf("%s (wrong network)", network)
		}
		tbl.AddRow(bold.Sprint("Network"), network)
	}
	if s.Error != "" {
		tbl.AddRow(bold.Sprint("Error"), color.New(color.FgRed).Sprint(s.Error))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

func phaseColor(s wallet.State) *color.Color {
	switch {
	case s.Connected && s.CorrectNetwork:
		return color.New(color.FgGreen)
	case s.Connected:
		return color.New(color.FgYellow)
	case s.Phase == wallet.PhaseNoProvider:
		return color.New(color.FgRed)
	default:
		return color.New(color.Faint)
	}
}
