// Command fileparser-mcp exposes the file analysis service as MCP tools
// over stdio. Jobs live in this process only.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/JonMunkholm/fileparser/internal/config"
	"github.com/JonMunkholm/fileparser/internal/core"
	_ "github.com/JonMunkholm/fileparser/internal/core/analyzers" // Register all analyzers
	"github.com/JonMunkholm/fileparser/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol; logs go to stderr.
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	svcCfg := core.ServiceConfigFrom(cfg)
	svcCfg.SpoolScope = "mcp"
	service, err := core.NewService(svcCfg)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := service.Shutdown(ctx); err != nil {
			slog.Warn("jobs did not complete in time", "error", err)
		}
	}()

	mcpServer := newMCPServer(service, 30*time.Second)

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		slog.Error("MCP server failed", "error", err)
	}
}

// newMCPServer registers the job tools against service.
func newMCPServer(service *core.Service, maxWait time.Duration) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		"fileparser",
		core.Version,
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createParseFileTool(), handleParseFile(service, maxWait))
	mcpServer.AddTool(createGetJobTool(), handleGetJob(service))
	mcpServer.AddTool(createListJobsTool(), handleListJobs(service))
	mcpServer.AddTool(createDeleteJobTool(), handleDeleteJob(service))
	return mcpServer
}
