package options

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const day = 24 * time.Hour

var (
	windowSegment = regexp.MustCompile(`(\d+)\s*([a-z]+)\s*`)
	windowUnits   = map[string]time.Duration{
		"h": time.Hour, "hr": time.Hour, "hour": time.Hour, "hours": time.Hour,
		"d": day, "day": day, "days": day,
		"w": 7 * day, "wk": 7 * day, "week": 7 * day, "weeks": 7 * day,
	}
)

// WindowOptions
type WindowOptions struct {
	Window string
}

func AddWindowArgs(cmd *cobra.Command, o *WindowOptions) {
	cmd.Flags().StringVarP(&o.Window, "window", "w", "1w",
		`How far back to look, example: --window=3d or --window=1w2d.`)
}

// GetWindow parses segments such as "1w2d12h". Empty means one week.
func (o *WindowOptions) GetWindow() (time.Duration, error) {
	raw := strings.ToLower(strings.TrimSpace(o.Window))
	if raw == "" {
		return 7 * day, nil
	}
	total := time.Duration(0)
	consumed := 0
	for _, m := range windowSegment.FindAllStringSubmatchIndex(raw, -1) {
		if m[0] != consumed {
			break
		}
		n, err := strconv.Atoi(raw[m[2]:m[3]])
		if err != nil {
			return 0, fmt.Errorf("invalid window %q: %w", o.Window, err)
		}
		unit, ok := windowUnits[raw[m[4]:m[5]]]
		if !ok {
			return 0, fmt.Errorf("invalid window %q: unknown unit %q", o.Window, raw[m[4]:m[5]])
		}
		total += time.Duration(n) * unit
		consumed = m[1]
	}
	if consumed != len(raw) || total <= 0 {
		return 0, fmt.Errorf("invalid window %q", o.Window)
	}
	return total, nil
}
