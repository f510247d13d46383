package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createParseFileTool returns the parse_file tool definition
func createParseFileTool() mcp.Tool {
	return mcp.NewTool("parse_file",
		mcp.WithDescription("Submit a local .sql, .json, .txt or .csv file for analysis and return its job"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the file on this machine"),
		),
		mcp.WithBoolean("wait",
			mcp.Description("Block until the job completes or fails (default: false)"),
		),
	)
}

// createGetJobTool returns the get_job tool definition
func createGetJobTool() mcp.Tool {
	return mcp.NewTool("get_job",
		mcp.WithDescription("Get a job's status, progress and, once completed, its summary and key facts"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("Job ID returned by parse_file"),
		),
	)
}

// createListJobsTool returns the list_jobs tool definition
func createListJobsTool() mcp.Tool {
	return mcp.NewTool("list_jobs",
		mcp.WithDescription("List jobs in submission order"),
		mcp.WithString("status",
			mcp.Description("Filter: pending, processing, completed, failed"),
		),
	)
}

// createDeleteJobTool returns the delete_job tool definition
func createDeleteJobTool() mcp.Tool {
	return mcp.NewTool("delete_job",
		mcp.WithDescription("Delete a job; a running analysis is discarded"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("Job ID to delete"),
		),
	)
}
