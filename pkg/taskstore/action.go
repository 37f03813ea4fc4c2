package taskstore

import (
	"time"

	"tableflip.dev/taskverse/pkg/analytics"
	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/view"
)

// ActionKind is the closed set of transitions Reduce understands.
type ActionKind int

const (
	ActionFetchRequest ActionKind = iota
	ActionFetchSuccess
	ActionFetchFailure
	ActionAdd
	ActionUpdate
	ActionDelete
	ActionComplete
	ActionVerify
	ActionSetFilter
	ActionSetSort
	ActionSetAITip
	ActionSetAnalytics
)

var actionNames = [...]string{
	ActionFetchRequest: "fetch-request",
	ActionFetchSuccess: "fetch-success",
	ActionFetchFailure: "fetch-failure",
	ActionAdd:          "add",
	ActionUpdate:       "update",
	ActionDelete:       "delete",
	ActionComplete:     "complete",
	ActionVerify:       "verify",
	ActionSetFilter:    "set-filter",
	ActionSetSort:      "set-sort",
	ActionSetAITip:     "set-ai-tip",
	ActionSetAnalytics: "set-analytics",
}

func (k ActionKind) String() string {
	if k < 0 || int(k) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[k]
}

// Action is a command dispatched to Reduce. Only the fields relevant to Kind
// are read.
type Action struct {
	Kind ActionKind
	// At is the transition time used for updatedAt. Store.Dispatch fills it
	// from its clock when zero.
	At        time.Time
	ID        string
	Task      task.Task
	Tasks     []task.Task
	Filter    view.Filter
	Sort      view.SortKey
	Message   string
	Analytics *analytics.Summary
}

func FetchRequest() Action { return Action{Kind: ActionFetchRequest} }

func FetchSuccess(tasks []task.Task) Action {
	return Action{Kind: ActionFetchSuccess, Tasks: tasks}
}

func FetchFailure(msg string) Action {
	return Action{Kind: ActionFetchFailure, Message: msg}
}

// Add appends a fully built task. Use Store.AddTask to build one from a draft.
func Add(t task.Task) Action { return Action{Kind: ActionAdd, Task: t, ID: t.ID} }

func Update(t task.Task) Action { return Action{Kind: ActionUpdate, Task: t, ID: t.ID} }

func Delete(id string) Action { return Action{Kind: ActionDelete, ID: id} }

func Complete(id string) Action { return Action{Kind: ActionComplete, ID: id} }

func Verify(id string) Action { return Action{Kind: ActionVerify, ID: id} }

func SetFilter(f view.Filter) Action { return Action{Kind: ActionSetFilter, Filter: f} }

func SetSort(k view.SortKey) Action { return Action{Kind: ActionSetSort, Sort: k} }

func SetAITip(tip string) Action { return Action{Kind: ActionSetAITip, Message: tip} }

func SetAnalytics(s analytics.Summary) Action {
	return Action{Kind: ActionSetAnalytics, Analytics: &s}
}
