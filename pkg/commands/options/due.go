package options

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/task"
)

const (
	layoutISO      = "2006-1-2"
	layoutISOShort = "1/2"
)

// DueOptions
type DueOptions struct {
	DueString string
}

func AddDueArgs(cmd *cobra.Command, o *DueOptions) {
	cmd.Flags().StringVar(&o.DueString, "due", "",
		`Specify a due date, example: --due="2024-2-28", --due="2/28" or --due=tomorrow.`)
}

// GetDue parses the due flag relative to now. An empty flag returns nil.
func (o *DueOptions) GetDue(now time.Time) (*time.Time, error) {
	raw := strings.TrimSpace(o.DueString)
	if raw == "" {
		return nil, nil
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch strings.ToLower(raw) {
	case "today":
		return &day, nil
	case "tomorrow":
		t := day.AddDate(0, 0, 1)
		return &t, nil
	}

	if t, err := time.Parse(layoutISO, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(layoutISOShort, raw)
	if err != nil {
		full, ferr := task.ParseTime(raw)
		if ferr != nil {
			return nil, err
		}
		return &full, nil
	}
	t = t.AddDate(now.Year(), 0, 0)
	// A month/day already behind us means next year.
	if t.Before(day) {
		t = t.AddDate(1, 0, 0)
	}
	return &t, nil
}
