package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	s.registerReportingTools()
	s.registerHandshakeTools()
}

// ===== REPORTING TOOLS =====

type statusInput struct{}

type statusOutput struct {
	Total     int `json:"total" jsonschema:"Total task count"`
	Completed int `json:"completed" jsonschema:"Completed task count"`
	Running   int `json:"running" jsonschema:"Running task count"`
	Failed    int `json:"failed" jsonschema:"Failed task count"`
	Pending   int `json:"pending" jsonschema:"Pending task count"`
	Blocked   int `json:"blocked" jsonschema:"Tasks blocked by upstream failures"`
	Progress  int `json:"progress" jsonschema:"Completed percentage, rounded"`
}

type planInput struct{}

type planOutput struct {
	Levels                [][]string `json:"levels" jsonschema:"Task ids grouped into parallel-eligible levels"`
	CriticalPath          []string   `json:"critical_path" jsonschema:"Dominant dependency chain, root first"`
	EstimatedDuration     float64    `json:"estimated_duration" jsonschema:"Sum of critical path durations in minutes"`
	ParallelOpportunities int        `json:"parallel_opportunities" jsonschema:"Count of parallel slots across levels"`
	Report                string     `json:"report" jsonschema:"Human-readable plan report"`
}

type graphInput struct{}

type graphOutput struct {
	Mermaid string `json:"mermaid" jsonschema:"Graph in Mermaid flowchart syntax"`
}

func (s *Server) registerReportingTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "workflow_status",
		Description: "Get current workflow progress: task counts per state and completion percentage",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args statusInput) (*mcp.CallToolResult, statusOutput, error) {
		snap := s.svc.Status()
		return nil, statusOutput{
			Total:     snap.Total,
			Completed: snap.Completed,
			Running:   snap.Running,
			Failed:    snap.Failed,
			Pending:   snap.Pending,
			Blocked:   snap.Blocked,
			Progress:  snap.Progress,
		}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "workflow_plan",
		Description: "Get the leveled execution plan, critical path, and estimated duration",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args planInput) (*mcp.CallToolResult, planOutput, error) {
		plan := s.svc.Plan()
		return nil, planOutput{
			Levels:                plan.Levels,
			CriticalPath:          plan.CriticalPath,
			EstimatedDuration:     plan.EstimatedDuration,
			ParallelOpportunities: plan.ParallelOpportunities,
			Report:                plan.Render(),
		}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "workflow_graph",
		Description: "Export the dependency graph as a Mermaid flowchart",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args graphInput) (*mcp.CallToolResult, graphOutput, error) {
		return nil, graphOutput{Mermaid: s.svc.Mermaid()}, nil
	})
}

// ===== HANDSHAKE TOOLS =====

type nextTasksInput struct{}

type nextTasksOutput struct {
	Tasks []string `json:"tasks" jsonschema:"Task ids that should start now, within the concurrency budget"`
}

type taskActionInput struct {
	TaskID string `json:"task_id" jsonschema:"required,Task identifier"`
}

type taskActionOutput struct {
	TaskID   string `json:"task_id" jsonschema:"Task identifier"`
	Accepted bool   `json:"accepted" jsonschema:"True when the transition was applied"`
}

func (s *Server) registerHandshakeTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "tasks_next",
		Description: "List the tasks to start next, ordered by scheduling priority and bounded by the concurrency budget",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args nextTasksInput) (*mcp.CallToolResult, nextTasksOutput, error) {
		tasks := s.svc.NextTasks()
		if tasks == nil {
			tasks = []string{}
		}
		return nil, nextTasksOutput{Tasks: tasks}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "task_start",
		Description: "Mark a ready task as running. Fails when the task is not ready.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args taskActionInput) (*mcp.CallToolResult, taskActionOutput, error) {
		if !s.svc.StartTask(args.TaskID) {
			return nil, taskActionOutput{}, fmt.Errorf("task %s is not ready", args.TaskID)
		}
		s.logger.Debug("task started via mcp", zap.String("task", args.TaskID))
		return nil, taskActionOutput{TaskID: args.TaskID, Accepted: true}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "task_complete",
		Description: "Record a task completion, unlocking its dependents",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args taskActionInput) (*mcp.CallToolResult, taskActionOutput, error) {
		if !s.svc.CompleteTask(args.TaskID) {
			return nil, taskActionOutput{}, fmt.Errorf("unknown task %s", args.TaskID)
		}
		s.logger.Debug("task completed via mcp", zap.String("task", args.TaskID))
		return nil, taskActionOutput{TaskID: args.TaskID, Accepted: true}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "task_fail",
		Description: "Record a task failure, blocking every task downstream of it",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args taskActionInput) (*mcp.CallToolResult, taskActionOutput, error) {
		if !s.svc.FailTask(args.TaskID) {
			return nil, taskActionOutput{}, fmt.Errorf("unknown task %s", args.TaskID)
		}
		s.logger.Debug("task failed via mcp", zap.String("task", args.TaskID))
		return nil, taskActionOutput{TaskID: args.TaskID, Accepted: true}, nil
	})
}
