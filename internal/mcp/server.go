package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// WithUserID returns a context acting for the given user, overriding the
// server's configured user.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered. Calls
// act for userID unless the context carries another one.
func New(ds DataSource, userID int, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("gymsplit", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("gymsplit workout progression server. Generate the next workout from the routine, adjust the staged selection, complete it and browse session history. All data is scoped to one user."),
	)

	h := &handlers{ds: ds, userID: userID, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetProgressionState, Handler: h.getProgressionState},
		server.ServerTool{Tool: toolGenerateWorkout, Handler: h.generateWorkout},
		server.ServerTool{Tool: toolToggleSelection, Handler: h.toggleSelection},
		server.ServerTool{Tool: toolListSelections, Handler: h.listSelections},
		server.ServerTool{Tool: toolClearSelections, Handler: h.clearSelections},
		server.ServerTool{Tool: toolCompleteWorkout, Handler: h.completeWorkout},
		server.ServerTool{Tool: toolListSessions, Handler: h.listSessions},
		server.ServerTool{Tool: toolGetSessionLogs, Handler: h.getSessionLogs},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resNextWorkout, Handler: h.nextWorkout},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds     DataSource
	userID int
	log    *slog.Logger
}

func (h *handlers) user(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return h.userID
}

// --- Resource definitions ---

var resNextWorkout = mcp.NewResource(
	"gymsplit://next_workout",
	"Next Workout",
	mcp.WithResourceDescription("The routine day due next and the exercises currently staged for it"),
	mcp.WithMIMEType("application/json"),
)
