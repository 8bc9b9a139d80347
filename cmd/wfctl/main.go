// Package main implements the wfctl CLI for manual operations against the
// workflowd HTTP server and local workflow definition files.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/workflowd/internal/definitions"
	"github.com/fyrsmithlabs/workflowd/internal/taskgraph"
)

var (
	// serverURL is the base URL for the workflowd HTTP server
	serverURL string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wfctl",
	Short: "CLI for workflowd operations",
	Long: `wfctl is a command-line interface for workflowd.
It can plan a workflow definition file locally, and query a running
workflowd daemon for status, the execution plan, and the next tasks.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:9290", "workflowd server URL")
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(healthCmd)
}

// planCmd plans a local definitions file without a daemon
var planCmd = &cobra.Command{
	Use:   "plan <file>",
	Short: "Plan a workflow definition file locally",
	Long: `Build the dependency graph from a definitions file and print the
leveled execution plan, critical path, and estimated duration.

Examples:
  # Plan a workflow file
  wfctl plan workflow.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

// statusCmd fetches runtime status from the daemon
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workflow progress from the daemon",
	RunE:  runStatus,
}

// graphCmd fetches the Mermaid graph export from the daemon
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the dependency graph as Mermaid",
	RunE:  runGraph,
}

// nextCmd asks the daemon which tasks should start now
var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "List the tasks to start next",
	RunE:  runNext,
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check workflowd server health",
	RunE:  runHealth,
}

func runPlan(cmd *cobra.Command, args []string) error {
	logger := zap.NewNop()
	wf, err := definitions.Load(args[0], logger)
	if err != nil {
		return err
	}

	graph := taskgraph.Build(wf.GraphPhases(), logger)
	plan := taskgraph.NewExecutionPlan(graph, logger)

	fmt.Fprint(cmd.OutOrStdout(), plan.Render())
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	var status map[string]any
	if err := getJSON("/api/v1/status", &status); err != nil {
		return err
	}
	out, _ := json.MarshalIndent(status, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runGraph(cmd *cobra.Command, args []string) error {
	var resp struct {
		Mermaid string `json:"mermaid"`
	}
	if err := getJSON("/api/v1/graph", &resp); err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), resp.Mermaid)
	return nil
}

func runNext(cmd *cobra.Command, args []string) error {
	var resp struct {
		Tasks []string `json:"tasks"`
	}
	if err := getJSON("/api/v1/tasks/next", &resp); err != nil {
		return err
	}
	if len(resp.Tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no tasks ready")
		return nil
	}
	for _, id := range resp.Tasks {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	var resp struct {
		Status   string `json:"status"`
		Workflow string `json:"workflow"`
	}
	if err := getJSON("/health", &resp); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "status: %s", resp.Status)
	if resp.Workflow != "" {
		fmt.Fprintf(cmd.OutOrStdout(), " (workflow: %s)", resp.Workflow)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

// getJSON performs a GET against the daemon and decodes the JSON body.
func getJSON(path string, out any) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(serverURL + path)
	if err != nil {
		return fmt.Errorf("failed to reach workflowd at %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("workflowd returned %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
