package printers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/taskverse/pkg/analytics"
	"tableflip.dev/taskverse/pkg/app"
)

const barWidth = 20

// Analytics renders totals, category counts and the weekly chart.
func (pp *PrettyPrint) Analytics(s analytics.Summary) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Total"), s.TotalTasks)
	tbl.AddRow(bold.Sprint("Completed"), s.CompletedTasks)
	tbl.AddRow(bold.Sprint("Pending"), s.PendingTasks)
	tbl.AddRow(bold.Sprint("Completion"), fmt.Sprintf("%.0f%%", s.CompletionRate))
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()

	if len(s.CategoryCounts) > 0 {
		pp.Title("Categories")
		names := make([]string, 0, len(s.CategoryCounts))
		for name := range s.CategoryCounts {
			names = append(names, name)
		}
		sort.Strings(names)
		cats := uitable.New()
		cats.Separator = "  "
		for _, name := range names {
			cats.AddRow(name, s.CategoryCounts[name])
		}
		_, _ = fmt.Fprintln(pp.out(), cats)
		pp.NewLine()
	}

	pp.Title("This week")
	pp.Week(s.WeeklyCompletion)
}

// Week renders one bar per day, scaled to the busiest day.
func (pp *PrettyPrint) Week(days []analytics.DayCount) {
	most := 0
	for _, d := range days {
		if d.Completed > most {
			most = d.Completed
		}
		if d.Created > most {
			most = d.Created
		}
	}

	done := color.New(color.FgGreen)
	created := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, d := range days {
		tbl.AddRow(d.Day,
			done.Sprintf("%-*s", barWidth, bar(d.Completed, most)),
			fmt.Sprintf("%d done", d.Completed),
			created.Sprintf("%d new", d.Created))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

func bar(n, most int) string {
	if n <= 0 || most <= 0 {
		return ""
	}
	w := n * barWidth / most
	if w == 0 {
		w = 1
	}
	return strings.Repeat("█", w)
}

// Report renders a completed-tasks report.
func (pp *PrettyPrint) Report(r app.ReportResult) {
	f := color.New(color.Faint)
	_, _ = f.Fprintf(pp.out(), "%s to %s\n\n", r.Since.Format("2006-01-02"), r.Until.Format("2006-01-02"))
	if r.Total == 0 {
		pp.Tasks()
		return
	}
	for _, section := range r.Sections {
		pp.TitleWithCount(section.Category, len(section.Tasks))
		tbl := uitable.New()
		tbl.Separator = " "
		for _, item := range section.Tasks {
			row := []interface{}{completedGlyph.Symbol, item.Task.Title, f.Sprint(item.CompletedAt.Format("2006-01-02 15:04"))}
			if pp.ShowID {
				row = append([]interface{}{item.Task.ID}, row...)
			}
			tbl.AddRow(row...)
		}
		_, _ = fmt.Fprintln(pp.out(), tbl)
		pp.NewLine()
	}
}
