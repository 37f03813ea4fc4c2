// Package mcp provides the Model Context Protocol server integration for taskverse.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"tableflip.dev/taskverse/pkg/ai"
	"tableflip.dev/taskverse/pkg/analytics"
	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/taskstore"
	"tableflip.dev/taskverse/pkg/view"
	"tableflip.dev/taskverse/pkg/wallet"
)

// Service adapts the task and chain facades for MCP tools and resources.
type Service struct {
	Tasks *app.TaskService
	Chain *app.ChainService
}

// AddTaskOptions captures the parameters used to create a new task.
type AddTaskOptions struct {
	Title       string
	Description string
	Due         string
	Priority    string
	Category    string
}

// TaskDTO is a transport-friendly projection of a task.
type TaskDTO struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	Status             string `json:"status"`
	Priority           string `json:"priority"`
	Category           string `json:"category,omitempty"`
	DueISO             string `json:"dueDate,omitempty"`
	CreatedISO         string `json:"createdAt"`
	UpdatedISO         string `json:"updatedAt"`
	IsCompleted        bool   `json:"isCompleted"`
	BlockchainVerified bool   `json:"blockchainVerified"`
}

// TaskList is a filtered and sorted view of the collection.
type TaskList struct {
	Filter string    `json:"filter"`
	Sort   string    `json:"sort"`
	Count  int       `json:"count"`
	Total  int       `json:"total"`
	Tasks  []TaskDTO `json:"tasks"`
	AITip  string    `json:"aiTip,omitempty"`
}

// VerifyResult reports a ledger verification.
type VerifyResult struct {
	Task   TaskDTO `json:"task"`
	TxHash string  `json:"txHash,omitempty"`
}

// NewService builds a service over the facades. chain may be nil, which
// disables the wallet tools.
func NewService(tasks *app.TaskService, chain *app.ChainService) *Service {
	return &Service{Tasks: tasks, Chain: chain}
}

var errNoChain = errors.New("wallet support is not configured")

// ToDTO converts a task to its transport shape.
func ToDTO(t task.Task) TaskDTO {
	dto := TaskDTO{
		ID:                 t.ID,
		Title:              t.Title,
		Description:        t.Description,
		Status:             string(t.Status),
		Priority:           string(t.Priority),
		Category:           t.Category,
		CreatedISO:         t.CreatedAt.String(),
		UpdatedISO:         t.UpdatedAt.String(),
		IsCompleted:        t.Completed(),
		BlockchainVerified: t.BlockchainVerified,
	}
	if t.HasDueDate() {
		dto.DueISO = t.DueDate.String()
	}
	return dto
}

func toDTOs(tasks []task.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToDTO(t))
	}
	return out
}

// ListTasks returns the collection through filter and sort without changing
// the shared view. Empty values use the store's current settings.
func (s *Service) ListTasks(_ context.Context, filter, sort string) (TaskList, error) {
	st := s.Tasks.State()
	f, k := st.Filter, st.Sort
	if strings.TrimSpace(filter) != "" {
		parsed, err := view.ParseFilter(filter)
		if err != nil {
			return TaskList{}, err
		}
		f = parsed
	}
	if strings.TrimSpace(sort) != "" {
		parsed, err := view.ParseSortKey(sort)
		if err != nil {
			return TaskList{}, err
		}
		k = parsed
	}
	tasks := view.Apply(st.Tasks, f, k)
	return TaskList{
		Filter: string(f),
		Sort:   string(k),
		Count:  len(tasks),
		Total:  len(st.Tasks),
		Tasks:  toDTOs(tasks),
		AITip:  st.AITip,
	}, nil
}

// TaskByID returns a single task.
func (s *Service) TaskByID(_ context.Context, id string) (TaskDTO, error) {
	id = strings.TrimSpace(id)
	t, ok := s.Tasks.Get(id)
	if !ok {
		return TaskDTO{}, fmt.Errorf("%w: %s", taskstore.ErrNotFound, id)
	}
	return ToDTO(t), nil
}

// AddTask creates a task.
func (s *Service) AddTask(ctx context.Context, opts AddTaskOptions) (TaskDTO, error) {
	d := task.Draft{
		Title:       opts.Title,
		Description: opts.Description,
		Priority:    task.Priority(strings.ToLower(strings.TrimSpace(opts.Priority))),
		Category:    opts.Category,
	}
	if strings.TrimSpace(opts.Due) != "" {
		due, err := task.ParseTime(opts.Due)
		if err != nil {
			return TaskDTO{}, err
		}
		d.DueDate = &due
	}
	t, err := s.Tasks.Add(ctx, d)
	if err != nil {
		return TaskDTO{}, err
	}
	return ToDTO(t), nil
}

// CompleteTask toggles a task.
func (s *Service) CompleteTask(ctx context.Context, id string) (TaskDTO, error) {
	t, err := s.Tasks.Complete(ctx, strings.TrimSpace(id))
	if err != nil {
		return TaskDTO{}, err
	}
	return ToDTO(t), nil
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	return s.Tasks.Delete(ctx, strings.TrimSpace(id))
}

// VerifyTask anchors a completed task on the ledger, connecting the wallet
// and switching networks first when needed.
func (s *Service) VerifyTask(ctx context.Context, id string) (VerifyResult, error) {
	if s.Chain == nil {
		return VerifyResult{}, errNoChain
	}
	if _, err := s.Chain.Ready(ctx); err != nil {
		return VerifyResult{}, err
	}
	rcpt, err := s.Chain.VerifyTask(ctx, strings.TrimSpace(id))
	if err != nil {
		return VerifyResult{}, err
	}
	res := VerifyResult{Task: ToDTO(rcpt.Task)}
	if rcpt.TxHash != (common.Hash{}) {
		res.TxHash = rcpt.TxHash.Hex()
	}
	return res, nil
}

// WalletStatus returns the wallet state, detecting the provider on first use.
func (s *Service) WalletStatus(ctx context.Context) (wallet.State, error) {
	if s.Chain == nil {
		return wallet.State{}, errNoChain
	}
	if st := s.Chain.State(); st.Phase != wallet.PhaseUninitialized {
		return st, nil
	}
	return s.Chain.Detect(ctx)
}

// ConnectWallet connects the wallet.
func (s *Service) ConnectWallet(ctx context.Context) (wallet.State, error) {
	if _, err := s.WalletStatus(ctx); err != nil {
		return wallet.State{}, err
	}
	return s.Chain.Connect(ctx)
}

// SwitchNetwork moves the wallet to the target chain.
func (s *Service) SwitchNetwork(ctx context.Context) (wallet.State, error) {
	if s.Chain == nil {
		return wallet.State{}, errNoChain
	}
	return s.Chain.SwitchNetwork(ctx)
}

// Prioritize returns AI advice.
func (s *Service) Prioritize(ctx context.Context) (ai.Result, error) {
	return s.Tasks.Prioritize(ctx)
}

// Analytics returns completion statistics.
func (s *Service) Analytics(ctx context.Context) (analytics.Summary, error) {
	return s.Tasks.Analytics(ctx)
}
