// Package task defines the task record shared by the store, the facades and
// the persistence layer.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation is returned for malformed drafts and unknown enum values.
var ErrValidation = errors.New("task: validation failed")

// Status is the completion state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ParseStatus converts raw input to a Status. Empty input means pending.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return StatusPending, nil
	case StatusPending, StatusCompleted:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
	}
}

// Toggle flips pending and completed.
func (s Status) Toggle() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// Priority orders tasks when sorting by priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// AllPriorities returns priorities from lowest to highest.
func AllPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// ParsePriority converts raw input to a Priority. Empty input means medium.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if p == "" {
		return PriorityMedium, nil
	}
	for _, candidate := range AllPriorities() {
		if candidate == p {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, raw)
}

// Rank is high=3, medium=2, low=1 and 0 for anything else.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Task is a single tracked to-do item.
type Task struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	DueDate            *Timestamp `json:"dueDate,omitempty"`
	Status             Status     `json:"status"`
	CreatedAt          Timestamp  `json:"createdAt"`
	UpdatedAt          Timestamp  `json:"updatedAt"`
	Priority           Priority   `json:"priority"`
	Category           string     `json:"category,omitempty"`
	BlockchainVerified bool       `json:"blockchainVerified,omitempty"`
}

// Completed reports whether the task status is completed.
func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// HasDueDate reports whether a due date is set.
func (t Task) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

// CloneAll copies a slice of tasks.
func CloneAll(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// Draft carries the caller supplied fields of a new task.
type Draft struct {
	Title              string
	Description        string
	DueDate            *time.Time
	Status             Status
	Priority           Priority
	Category           string
	BlockchainVerified bool
}

// Normalize trims the draft and fills defaults. A draft without a title, or
// with an unknown status or priority, fails with ErrValidation.
func (d Draft) Normalize() (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return d, fmt.Errorf("%w: title is required", ErrValidation)
	}
	d.Category = strings.TrimSpace(d.Category)
	status, err := ParseStatus(string(d.Status))
	if err != nil {
		return d, err
	}
	d.Status = status
	priority, err := ParsePriority(string(d.Priority))
	if err != nil {
		return d, err
	}
	d.Priority = priority
	return d, nil
}

// Build turns a normalized draft into a task with the given identity.
func (d Draft) Build(id string, now time.Time) Task {
	t := Task{
		ID:                 id,
		Title:              d.Title,
		Description:        d.Description,
		Status:             d.Status,
		CreatedAt:          Timestamp{Time: now},
		UpdatedAt:          Timestamp{Time: now},
		Priority:           d.Priority,
		Category:           d.Category,
		BlockchainVerified: d.BlockchainVerified,
	}
	if d.DueDate != nil && !d.DueDate.IsZero() {
		t.DueDate = &Timestamp{Time: *d.DueDate}
	}
	return t
}

// Validate checks a full task record.
func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if t.Status != StatusPending && t.Status != StatusCompleted {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, t.Status)
	}
	if t.Priority.Rank() == 0 {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, t.Priority)
	}
	return nil
}
