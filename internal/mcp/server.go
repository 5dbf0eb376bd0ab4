// Package mcp exposes the paper-analysis pipeline as MCP tools over
// stdio, so an editor-hosted agent can plan and run analyses directly.
package mcp

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"deepread/internal/catalog"
	"deepread/internal/classify"
	"deepread/internal/ingest"
	"deepread/internal/llm"
	"deepread/internal/logging"
	"deepread/internal/pipeline"
	"deepread/internal/plan"
	"deepread/internal/report"
	"deepread/internal/tokencount"
)

// Server wraps the MCP SDK server around a task catalog and a provider.
type Server struct {
	MCPServer *sdkmcp.Server

	Registry    *catalog.Registry
	Provider    llm.Provider
	Parallel    int
	TaskTimeout time.Duration
}

// NewServer creates an MCP server exposing the analysis tools.
func NewServer(reg *catalog.Registry, provider llm.Provider) *Server {
	s := &Server{
		Registry: reg,
		Provider: provider,
		Parallel: 2,
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "deepread", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_tasks",
		Description: "List the analysis tasks in the catalog, optionally filtered by domain.",
	}, s.handleListTasks)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "show_plan",
		Description: "Show the layered execution plan for a domain without running anything.",
	}, s.handleShowPlan)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_paper",
		Description: "Run the full analysis pipeline over a paper file and return the markdown report.",
	}, s.handleAnalyzePaper)
}

// --- Tool input/output types ---

type taskInfo struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Weight      int      `json:"weight"`
	Domains     []string `json:"domains"`
	DependsOn   []string `json:"depends_on,omitempty"`
}

type listTasksInput struct {
	Domain string `json:"domain,omitempty" jsonschema:"only list tasks applicable to this domain (general, rf_ic)"`
}

type listTasksOutput struct {
	Tasks []taskInfo `json:"tasks"`
}

type showPlanInput struct {
	Domain string `json:"domain" jsonschema:"analysis domain (general, rf_ic)"`
}

type showPlanOutput struct {
	Domain string     `json:"domain"`
	Layers [][]string `json:"layers"`
	Total  int        `json:"total_tasks"`
}

type analyzePaperInput struct {
	Path   string `json:"path" jsonschema:"path to the paper file (.txt, .md, .tex, .rst)"`
	Domain string `json:"domain,omitempty" jsonschema:"analysis domain; empty or auto means classify the paper first"`
}

type analyzePaperOutput struct {
	Domain     string            `json:"domain"`
	Report     string            `json:"report"`
	TaskStatus map[string]string `json:"task_status"`
	Usage      string            `json:"usage"`
}

// --- Tool handlers ---

func (s *Server) handleListTasks(_ context.Context, _ *sdkmcp.CallToolRequest, input listTasksInput) (*sdkmcp.CallToolResult, listTasksOutput, error) {
	var out listTasksOutput
	for _, t := range s.Registry.Tasks() {
		if input.Domain != "" && !t.AppliesTo(input.Domain) {
			continue
		}
		out.Tasks = append(out.Tasks, taskInfo{
			ID:          t.ID,
			Description: t.Description,
			Weight:      t.Weight,
			Domains:     t.Domains,
			DependsOn:   t.DependsOn,
		})
	}
	return nil, out, nil
}

func (s *Server) handleShowPlan(_ context.Context, _ *sdkmcp.CallToolRequest, input showPlanInput) (*sdkmcp.CallToolResult, showPlanOutput, error) {
	if input.Domain == "" {
		return nil, showPlanOutput{}, fmt.Errorf("domain is required")
	}
	p, err := plan.Build(s.Registry, input.Domain, plan.Select(s.Registry, input.Domain))
	if err != nil {
		return nil, showPlanOutput{}, fmt.Errorf("show_plan: %w", err)
	}
	return nil, showPlanOutput{Domain: p.Domain, Layers: p.Layers, Total: p.Size()}, nil
}

func (s *Server) handleAnalyzePaper(ctx context.Context, _ *sdkmcp.CallToolRequest, input analyzePaperInput) (*sdkmcp.CallToolResult, analyzePaperOutput, error) {
	logger := logging.New("mcp")
	if input.Path == "" {
		return nil, analyzePaperOutput{}, fmt.Errorf("path is required")
	}

	paper, err := ingest.Load(input.Path)
	if err != nil {
		return nil, analyzePaperOutput{}, err
	}

	domain := input.Domain
	if domain == "" || domain == "auto" {
		c := &classify.Classifier{Gen: s.Provider}
		domain = c.Classify(ctx, paper.Text)
		logger.Info("paper classified", "path", input.Path, "domain", domain)
	}

	p, err := plan.Build(s.Registry, domain, plan.Select(s.Registry, domain))
	if err != nil {
		return nil, analyzePaperOutput{}, fmt.Errorf("analyze_paper: %w", err)
	}

	var usage tokencount.Usage
	ex := &pipeline.Executor{
		Gen:         s.Provider,
		Parallel:    s.Parallel,
		TaskTimeout: s.TaskTimeout,
		Usage:       &usage,
	}
	results, runErr := ex.Run(ctx, p, paper.Text, s.Registry.SystemPrompt(domain))

	r := report.Assemble(p, results)
	r.Paper = paper.Path
	r.Usage = usage.Snapshot()

	status := make(map[string]string, len(r.Entries))
	for _, e := range r.Entries {
		status[e.TaskID] = string(e.Status)
	}

	if runErr != nil {
		logger.Error("analysis aborted", "path", input.Path, "error", runErr)
		return nil, analyzePaperOutput{}, fmt.Errorf("analysis aborted: %w", runErr)
	}

	return nil, analyzePaperOutput{
		Domain:     domain,
		Report:     r.Markdown(),
		TaskStatus: status,
		Usage:      r.Usage.Summary(),
	}, nil
}
