package store

import (
	"fmt"
	"strings"
	"time"

	"tableflip.dev/taskverse/pkg/task"
)

// Task types accepted by the persistence layer.
const (
	TypeWork     = "work"
	TypePersonal = "personal"
	TypeStudy    = "study"
	TypeHealth   = "health"
	TypeOther    = "other"
)

// DefaultPriority is the numeric priority given to records without one.
const DefaultPriority = 2

// TaskTypes lists the accepted task types.
func TaskTypes() []string {
	return []string{TypeWork, TypePersonal, TypeStudy, TypeHealth, TypeOther}
}

func validType(t string) bool {
	for _, v := range TaskTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// TaskFields are the caller supplied fields of CreateTask.
type TaskFields struct {
	Title              string
	Description        string
	Type               string
	Category           string
	Deadline           *time.Time
	Priority           int
	Completed          bool
	CompletedAt        *time.Time
	BlockchainVerified bool
}

// Record is a persisted task.
type Record struct {
	ID                 string          `json:"_id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Type               string          `json:"type"`
	Category           *string         `json:"category,omitempty"`
	Deadline           *task.Timestamp `json:"deadline,omitempty"`
	Priority           int             `json:"priority"`
	Completed          bool            `json:"completed"`
	CompletedAt        *task.Timestamp `json:"completedAt,omitempty"`
	BlockchainVerified bool            `json:"blockchainVerified,omitempty"`
	CreatedAt          task.Timestamp  `json:"createdAt"`
	UpdatedAt          task.Timestamp  `json:"updatedAt"`
}

// newRecord applies the schema defaults to f.
func newRecord(id string, f TaskFields, now time.Time) (*Record, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", task.ErrValidation)
	}
	typ := strings.ToLower(strings.TrimSpace(f.Type))
	if typ == "" {
		typ = TypeOther
	}
	if !validType(typ) {
		return nil, fmt.Errorf("%w: unknown task type %q", task.ErrValidation, f.Type)
	}
	priority := f.Priority
	if priority == 0 {
		priority = DefaultPriority
	}
	r := &Record{
		ID:                 id,
		Title:              title,
		Description:        f.Description,
		Type:               typ,
		Category:           categoryField(f.Category),
		Priority:           priority,
		Completed:          f.Completed,
		BlockchainVerified: f.BlockchainVerified,
		CreatedAt:          task.Timestamp{Time: now},
		UpdatedAt:          task.Timestamp{Time: now},
	}
	if f.Deadline != nil && !f.Deadline.IsZero() {
		r.Deadline = &task.Timestamp{Time: *f.Deadline}
	}
	switch {
	case f.CompletedAt != nil && !f.CompletedAt.IsZero():
		r.CompletedAt = &task.Timestamp{Time: *f.CompletedAt}
	case f.Completed:
		r.CompletedAt = &task.Timestamp{Time: now}
	}
	return r, nil
}

// PriorityFromInt maps a numeric priority to a task priority. Values at or
// below 1 are low, 2 is medium and 3 or more is high.
func PriorityFromInt(n int) task.Priority {
	switch {
	case n <= 1:
		return task.PriorityLow
	case n == 2:
		return task.PriorityMedium
	default:
		return task.PriorityHigh
	}
}

// PriorityToInt is the inverse of PriorityFromInt.
func PriorityToInt(p task.Priority) int {
	switch p {
	case task.PriorityLow:
		return 1
	case task.PriorityHigh:
		return 3
	default:
		return DefaultPriority
	}
}

// ToTask converts r to the client task shape.
func (r *Record) ToTask() task.Task {
	t := task.Task{
		ID:                 r.ID,
		Title:              r.Title,
		Description:        r.Description,
		Status:             task.StatusPending,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		Priority:           PriorityFromInt(r.Priority),
		Category:           r.Type,
		BlockchainVerified: r.BlockchainVerified,
	}
	if r.Category != nil {
		t.Category = *r.Category
	}
	if r.Completed {
		t.Status = task.StatusCompleted
	}
	if r.Deadline != nil {
		due := *r.Deadline
		t.DueDate = &due
	}
	return t
}

// TypeFor derives the schema type of a client category. Categories outside
// the task types are TypeOther.
func TypeFor(category string) string {
	if typ := strings.ToLower(strings.TrimSpace(category)); validType(typ) {
		return typ
	}
	return TypeOther
}

func categoryField(category string) *string {
	c := strings.TrimSpace(category)
	return &c
}

// FromTask converts a client task to a record. The category is stored as
// given, including empty, with the schema type derived from it. Records
// written without a category field read back with their type as category.
func FromTask(t task.Task) *Record {
	r := &Record{
		ID:                 t.ID,
		Title:              t.Title,
		Description:        t.Description,
		Type:               TypeFor(t.Category),
		Category:           categoryField(t.Category),
		Priority:           PriorityToInt(t.Priority),
		Completed:          t.Completed(),
		BlockchainVerified: t.BlockchainVerified,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
	if t.DueDate != nil {
		due := *t.DueDate
		r.Deadline = &due
	}
	if r.Completed {
		at := t.UpdatedAt
		r.CompletedAt = &at
	}
	return r
}
