package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListTasksTool(srv, svc)
	registerAddTaskTool(srv, svc)
	registerCompleteTaskTool(srv, svc)
	registerDeleteTaskTool(srv, svc)
	registerPrioritizeTool(srv, svc)
	registerAnalyticsTool(srv, svc)
	if svc.Chain == nil {
		return
	}
	registerVerifyTaskTool(srv, svc)
	registerWalletStatusTool(srv, svc)
	registerConnectWalletTool(srv, svc)
	registerSwitchNetworkTool(srv, svc)
}

func registerListTasksTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_tasks",
		mcp.WithDescription("List tasks through a status filter and sort order."),
		mcp.WithString("filter",
			mcp.Description("Status filter."),
			mcp.Enum("all", "pending", "completed"),
		),
		mcp.WithString("sort",
			mcp.Description("Sort key."),
			mcp.Enum("dueDate", "priority", "createdAt"),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := svc.ListTasks(ctx, request.GetString("filter", ""), request.GetString("sort", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(list)
	})
}

func registerAddTaskTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"add_task",
		mcp.WithDescription("Create a new pending task."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title."),
		),
		mcp.WithString("description",
			mcp.Description("Optional longer description."),
		),
		mcp.WithString("due",
			mcp.Description("Optional due date as RFC3339 or YYYY-MM-DD."),
		),
		mcp.WithString("priority",
			mcp.Description("Task priority, medium when omitted."),
			mcp.Enum("low", "medium", "high"),
		),
		mcp.WithString("category",
			mcp.Description("Optional category such as work or personal."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Due         string `json:"due"`
			Priority    string `json:"priority"`
			Category    string `json:"category"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.AddTask(ctx, AddTaskOptions{
			Title:       args.Title,
			Description: args.Description,
			Due:         args.Due,
			Priority:    args.Priority,
			Category:    args.Category,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerCompleteTaskTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"complete_task",
		mcp.WithDescription("Toggle a task between pending and completed."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.CompleteTask(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteTaskTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_task",
		mcp.WithDescription("Delete a task. Unknown identifiers are ignored."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteTask(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]string{"deleted": id})
	})
}

func registerVerifyTaskTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"verify_task",
		mcp.WithDescription("Record a completed task on the ledger, connecting the wallet first if needed."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Identifier of a completed task."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := svc.VerifyTask(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(res)
	})
}

func registerWalletStatusTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"wallet_status",
		mcp.WithDescription("Report the wallet connection, account, balance and network."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := svc.WalletStatus(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(st)
	})
}

func registerConnectWalletTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"connect_wallet",
		mcp.WithDescription("Request account access from the wallet."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := svc.ConnectWallet(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(st)
	})
}

func registerSwitchNetworkTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"switch_network",
		mcp.WithDescription("Switch the connected wallet to the ledger network."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := svc.SwitchNetwork(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(st)
	})
}

func registerPrioritizeTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"prioritize_tasks",
		mcp.WithDescription("Ask the assistant for a prioritised order of pending tasks and a tip."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := svc.Prioritize(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"prioritizedTasks": toDTOs(res.PrioritizedTasks),
			"motivationalTip":  res.MotivationalTip,
		})
	})
}

func registerAnalyticsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"task_analytics",
		mcp.WithDescription("Completion rate, per-category counts and the last seven days of completions."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sum, err := svc.Analytics(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(sum)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
