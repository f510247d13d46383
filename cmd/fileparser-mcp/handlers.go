package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/JonMunkholm/fileparser/internal/core"
)

// handleParseFile implements the parse_file tool
func handleParseFile(service *core.Service, maxWait time.Duration) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil || path == "" {
			return errorResult("Error: path parameter is required"), nil
		}

		content, err := readLimited(path, service.MaxFileSize())
		if err != nil {
			slog.Warn("parse_file read failed", "path", path, "error", err)
			return errorResult(fmt.Sprintf("Cannot read %s: %v", path, err)), nil
		}

		rec, err := service.Submit(ctx, filepath.Base(path), content)
		if err != nil {
			return userError(err), nil
		}

		if request.GetBool("wait", false) {
			rec, err = awaitJob(ctx, service, rec.ID, maxWait)
			if err != nil {
				return errorResult(fmt.Sprintf("Waiting for job %s: %v", rec.ID, err)), nil
			}
		}
		return jsonResult(rec)
	}
}

// handleGetJob implements the get_job tool
func handleGetJob(service *core.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobID, err := request.RequireString("job_id")
		if err != nil || jobID == "" {
			return errorResult("Error: job_id parameter is required"), nil
		}

		rec, err := service.Job(jobID)
		if err != nil {
			return userError(err), nil
		}
		return jsonResult(rec)
	}
}

// handleListJobs implements the list_jobs tool
func handleListJobs(service *core.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := core.JobStatus(strings.ToLower(request.GetString("status", "")))
		if status != "" && !status.Valid() {
			return userError(fmt.Errorf("%w: %q", core.ErrInvalidStatus, status)), nil
		}
		return jsonResult(service.Jobs(status))
	}
}

// handleDeleteJob implements the delete_job tool
func handleDeleteJob(service *core.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobID, err := request.RequireString("job_id")
		if err != nil || jobID == "" {
			return errorResult("Error: job_id parameter is required"), nil
		}

		if err := service.Delete(jobID); err != nil {
			return userError(err), nil
		}
		return textResult(fmt.Sprintf("Job '%s' deleted", jobID)), nil
	}
}

// readLimited reads at most max+1 bytes so Submit can reject oversized files
// without loading them whole.
func readLimited(path string, max int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return io.ReadAll(io.LimitReader(f, max+1))
}

// awaitJob blocks until the job is terminal, maxWait passes or ctx ends,
// and returns the latest record.
func awaitJob(ctx context.Context, service *core.Service, id string, maxWait time.Duration) (core.JobRecord, error) {
	events, cancel := service.Events().Subscribe()
	defer cancel()

	timer := time.NewTimer(maxWait)
	defer timer.Stop()

	for {
		rec, err := service.Job(id)
		if err != nil || rec.Status.Terminal() {
			return rec, err
		}
		select {
		case <-events:
		case <-timer.C:
			return rec, nil
		case <-ctx.Done():
			return rec, ctx.Err()
		}
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// userError reports err with its support code. Errors without a specific
// code are logged, since the caller only sees the generic message.
func userError(err error) *mcp.CallToolResult {
	if !core.IsUserFacing(err) {
		slog.Error("tool call failed", "error", err)
	}
	return errorResult(core.FormatUserError(err))
}

func errorResult(text string) *mcp.CallToolResult {
	res := textResult(text)
	res.IsError = true
	return res
}
