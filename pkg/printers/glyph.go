package printers

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/taskverse/pkg/task"
)

// Glyph is a symbol used in task listings.
type Glyph struct {
	Symbol    string
	Meaning   string
	Signifier bool
}

var (
	pendingGlyph   = Glyph{Symbol: "●", Meaning: "task"}
	completedGlyph = Glyph{Symbol: "✘", Meaning: "task completed"}
	verifiedGlyph  = Glyph{Symbol: "⛓", Meaning: "verified on chain"}
	highGlyph      = Glyph{Symbol: "✷", Meaning: "high priority", Signifier: true}
	lowGlyph       = Glyph{Symbol: "·", Meaning: "low priority", Signifier: true}
	blankGlyph     = Glyph{Symbol: " ", Signifier: true}
)

// DefaultGlyphs lists every glyph, bullets first.
func DefaultGlyphs() []Glyph {
	return []Glyph{pendingGlyph, completedGlyph, verifiedGlyph, highGlyph, lowGlyph}
}

// Bullet is the status glyph of t.
func Bullet(t task.Task) Glyph {
	if t.Completed() {
		return completedGlyph
	}
	return pendingGlyph
}

// Signifier is the priority glyph of t. Medium priority has none.
func Signifier(t task.Task) Glyph {
	switch t.Priority {
	case task.PriorityHigh:
		return highGlyph
	case task.PriorityLow:
		return lowGlyph
	default:
		return blankGlyph
	}
}

// Verified marks tasks anchored on the ledger.
func Verified(t task.Task) Glyph {
	if t.BlockchainVerified {
		return verifiedGlyph
	}
	return Glyph{}
}

// Key renders a glyph table; when sig is true, signifiers are shown.
func (pp *PrettyPrint) Key(glyphs []Glyph, sig bool) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	if sig {
		tbl.AddRow(bold.Sprint("Signifiers"), bold.Sprint("Meaning"))
	} else {
		tbl.AddRow(bold.Sprint("   Bullets"), bold.Sprint("Meaning"))
	}
	for _, v := range glyphs {
		if sig == v.Signifier {
			tbl.AddRow(v.Symbol, v.Meaning)
		}
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(pp.out(), tbl)
}
