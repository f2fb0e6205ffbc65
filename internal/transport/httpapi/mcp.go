package httpapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vovakirdan/brick-arcade/internal/core"
	"github.com/vovakirdan/brick-arcade/internal/registry"
	"github.com/vovakirdan/brick-arcade/internal/session"
)

const mcpInstructions = `Brick Arcade - MCP Interface

Three brick games run on a cell grid: snake, tetris and race.

FLOW:
1. start_game with a game name or number (1 snake, 2 tetris, 3 race).
2. submit_action "Start" to begin the run.
3. Call game_state repeatedly; every call advances the game by at most one step.
4. Steer with Left/Right/Up/Down, rotate or boost with Action, toggle Pause.

GRID LEGEND:
'.' empty, '#' wall/food/obstacle, digits are snake body, car or tetromino cells.

Omit session_id to use the shared default session.`

func (s *Server) newMCPServer() *server.MCPServer {
	srv := server.NewMCPServer(
		"Brick Arcade",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(mcpInstructions),
	)

	sessionProp := map[string]interface{}{
		"type":        "string",
		"description": "Session ID (optional, defaults to the shared session)",
	}

	srv.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List the available games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleToolListGames)

	srv.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List the active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleToolListSessions)

	srv.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start a fresh game in a session; the game then waits for a Start action",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game": map[string]interface{}{
					"type":        "string",
					"description": "Game name or number: snake/1, tetris/2, race/3",
				},
				"session_id": sessionProp,
			},
			Required: []string{"game"},
		},
	}, s.handleToolStartGame)

	srv.AddTool(mcp.Tool{
		Name:        "submit_action",
		Description: "Buffer one action; a later action replaces it until the next game_state call",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"action": map[string]interface{}{
					"type":        "string",
					"description": "One of Start, Pause, Left, Right, Up, Down, Action, Nothing",
				},
				"session_id": sessionProp,
			},
			Required: []string{"action"},
		},
	}, s.handleToolSubmitAction)

	srv.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Advance the game by at most one step and show the board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
			},
		},
	}, s.handleToolGameState)

	return srv
}

func toolArgs(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionArg(args map[string]interface{}) string {
	if id, _ := args["session_id"].(string); id != "" {
		return id
	}
	return session.DefaultID
}

func (s *Server) handleToolListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	b.WriteString("Available games:\n\n")
	for _, g := range registry.List() {
		fmt.Fprintf(&b, "%d. %s (%s)\n", g.Number, g.Title, g.ID)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleToolListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := s.sessions.List()

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", len(list))
	for _, info := range list {
		fmt.Fprintf(&b, "- %s (Game: %s, Score: %d, Created: %s)\n",
			info.ID, info.GameID, info.Score, info.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleToolStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := toolArgs(request)
	game, _ := args["game"].(string)

	sess, err := s.sessions.Start(sessionArg(args), game)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Started %s in session %s. Submit Start to begin.", sess.GameID(), sess.ID())), nil
}

func (s *Server) handleToolSubmitAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := toolArgs(request)
	name, _ := args["action"].(string)

	action, err := core.ParseAction(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if action == core.ActionTerminate {
		return mcp.NewToolResultError("Terminate is not available to agents"), nil
	}

	sess, err := s.sessions.Get(sessionArg(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := sess.Submit(action, false); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Buffered %s", action)), nil
}

func (s *Server) handleToolGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := toolArgs(request)

	sess, err := s.sessions.Get(sessionArg(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := sess.Poll()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, _ := sess.State()
	return mcp.NewToolResultText(formatInfo(sess.GameID(), info, st)), nil
}

// formatInfo renders a snapshot as plain text for agents.
func formatInfo(gameID string, info core.GameInfo, st core.GameState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game: %s\n", gameID)
	fmt.Fprintf(&b, "Score: %d  High score: %d  Level: %d\n", info.Score, info.HighScore, info.Level)
	switch {
	case st.GameOver:
		b.WriteString("Status: GAME OVER (submit Start to play again)\n")
	case !st.Started:
		b.WriteString("Status: waiting for Start\n")
	case info.Paused():
		b.WriteString("Status: paused\n")
	default:
		b.WriteString("Status: running\n")
	}

	b.WriteString("\n")
	writeGrid(&b, info.Field)
	if info.Next != nil {
		b.WriteString("\nNext:\n")
		writeGrid(&b, info.Next)
	}
	return b.String()
}

func writeGrid(b *strings.Builder, g core.Grid) {
	for _, row := range g {
		for _, v := range row {
			switch {
			case v == core.CellEmpty:
				b.WriteByte('.')
			case v == core.CellMarker:
				b.WriteByte('#')
			case v > 0 && v < 9:
				b.WriteByte(byte('0' + v))
			default:
				b.WriteByte('?')
			}
		}
		b.WriteByte('\n')
	}
}
