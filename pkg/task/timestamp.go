package task

import (
	"encoding/json"
	"fmt"
	"time"
)

const layoutISO = "2006-01-02"

// ParseTime accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func ParseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err == nil {
		return t, nil
	}
	if d, derr := time.Parse(layoutISO, v); derr == nil {
		return d, nil
	}
	return time.Time{}, err
}

// Timestamp is a time.Time that encodes as an RFC3339 string.
type Timestamp struct {
	time.Time
}

// SameDay compares calendar days in UTC.
func (t Timestamp) SameDay(then time.Time) bool {
	a := t.UTC()
	b := then.UTC()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(fmt.Sprintf("%q", FormatTime(t.Time))), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var timestamp string
	if err := json.Unmarshal(b, &timestamp); err != nil {
		return err
	}
	if timestamp == "" {
		t.Time = time.Time{}
		return nil
	}
	var err error
	t.Time, err = ParseTime(timestamp)
	return err
}

func (t Timestamp) String() string {
	return t.UTC().Format(time.RFC3339)
}

// Date renders the timestamp as YYYY-MM-DD.
func (t Timestamp) Date() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(layoutISO)
}

func FormatTime(v time.Time) string {
	return v.UTC().Format(time.RFC3339Nano)
}
