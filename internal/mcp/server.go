// Package mcp exposes the daily report sync over the Model Context Protocol.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/covid19-reports/reportsync/internal/services"
)

// Reports is the use case served by the tools.
type Reports interface {
	Sync(ctx context.Context) (*services.SyncResult, error)
	Checkpoint(ctx context.Context) (*time.Time, error)
}

// Server wraps the MCP server with report-specific tools
type Server struct {
	server  *mcp.Server
	reports Reports
}

// NewServer creates a new MCP server instance
func NewServer(reports Reports, version string) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "reportsync",
		Version: version,
	}, nil)

	s := &Server{
		server:  mcpServer,
		reports: reports,
	}

	s.registerTools()

	return s
}

// Run starts the MCP server with stdio transport
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reports_sync",
		Description: "Fetch daily reports newer than the checkpoint and store them",
	}, s.handleSync)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reports_checkpoint",
		Description: "Get the latest last_update stored in the database",
	}, s.handleCheckpoint)
}

type SyncInput struct{}

type SyncOutput struct {
	RunID          string       `json:"runId"`
	Checkpoint     string       `json:"checkpoint,omitempty"`
	Deleted        int64        `json:"deleted"`
	Rows           int          `json:"rows"`
	Files          []FileOutput `json:"files"`
	NewCheckpoint  string       `json:"newCheckpoint,omitempty"`
	CheckpointRows int64        `json:"checkpointRows"`
}

type FileOutput struct {
	Name string `json:"name"`
	Date string `json:"date"`
	Rows int    `json:"rows"`
}

type CheckpointInput struct{}

type CheckpointOutput struct {
	Checkpoint string `json:"checkpoint,omitempty" jsonschema:"RFC 3339 timestamp, absent when nothing is stored"`
	Empty      bool   `json:"empty"`
}

func (s *Server) handleSync(ctx context.Context, req *mcp.CallToolRequest, input SyncInput) (*mcp.CallToolResult, SyncOutput, error) {
	result, err := s.reports.Sync(ctx)
	if err != nil {
		return nil, SyncOutput{}, fmt.Errorf("failed to sync reports: %w", err)
	}

	files := make([]FileOutput, 0, len(result.Files))
	for _, f := range result.Files {
		files = append(files, FileOutput{
			Name: f.Name,
			Date: f.Date.Format(time.DateOnly),
			Rows: f.Rows,
		})
	}

	return nil, SyncOutput{
		RunID:          result.RunID,
		Checkpoint:     formatTime(result.Checkpoint),
		Deleted:        result.Deleted,
		Rows:           result.Rows(),
		Files:          files,
		NewCheckpoint:  formatTime(result.NewCheckpoint),
		CheckpointRows: result.CheckpointRows,
	}, nil
}

func (s *Server) handleCheckpoint(ctx context.Context, req *mcp.CallToolRequest, input CheckpointInput) (*mcp.CallToolResult, CheckpointOutput, error) {
	checkpoint, err := s.reports.Checkpoint(ctx)
	if err != nil {
		return nil, CheckpointOutput{}, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	return nil, CheckpointOutput{
		Checkpoint: formatTime(checkpoint),
		Empty:      checkpoint == nil,
	}, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
