package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	innervoice "github.com/unowned-ai/innervoice/pkg"
	"github.com/unowned-ai/innervoice/pkg/journal"
)

// InnerVoiceMCPServer exposes a journal.Service as MCP tools over stdio.
type InnerVoiceMCPServer struct {
	mcpServer *server.MCPServer
	svc       *journal.Service
}

// NewInnerVoiceMCPServer creates the server and registers every tool.
func NewInnerVoiceMCPServer(svc *journal.Service) *InnerVoiceMCPServer {
	s := server.NewMCPServer(
		"InnerVoice MCP Server",
		innervoice.Version,
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	RegisterPingTool(s)
	RegisterCreateNoteTool(s, svc)
	RegisterGetNoteTool(s, svc)
	RegisterListNotesTool(s, svc)
	RegisterUpdateNoteTool(s, svc)
	RegisterDeleteNoteTool(s, svc)
	RegisterFindRelatedNotesTool(s, svc)
	RegisterSearchNotesTool(s, svc)
	RegisterEmotionStatsTool(s, svc)

	return &InnerVoiceMCPServer{mcpServer: s, svc: svc}
}

// Start runs the stdio event loop.
func (s *InnerVoiceMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *InnerVoiceMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}
