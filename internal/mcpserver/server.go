package mcpserver

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	appseason "pocketpoker/internal/app/season"
	domain "pocketpoker/internal/season"
)

// Server exposes settlement and season reads as MCP tools.
type Server struct {
	seasons  *appseason.Service
	defaults domain.DraftDefaults

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(seasons *appseason.Service, defaults domain.DraftDefaults) *Server {
	mcpSrv := server.NewMCPServer(
		"pocketpoker",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s := &Server{
		seasons:    seasons,
		defaults:   defaults,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerSettlementTools()
	s.registerSeasonTools()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}
