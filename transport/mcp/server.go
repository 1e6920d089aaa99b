package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pmmsinno/lightrace/game/service"
)

// Admin exposes host controls over MCP so an assistant can run the game:
// inspect state, start rounds, reset the lobby, and kick players.
type Admin struct {
	service   service.GameService
	mcpServer *server.MCPServer
}

// NewAdmin creates the MCP admin surface over the game service.
func NewAdmin(gameService service.GameService) *Admin {
	a := &Admin{service: gameService}
	a.initMCPServer()
	return a
}

// initMCPServer initializes the MCP server with all tools.
func (a *Admin) initMCPServer() {
	a.mcpServer = server.NewMCPServer(
		"Light Race Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Light Race Game - MCP Host Interface

A red light / green light elimination game. Players join from their phones by
scanning a QR code; a shared display shows the race. These tools give you the
host controls.

GAME FLOW:
lobby -> countdown -> playing -> gameOver, round after round until a winner
emerges. During green, holding the button advances a player; holding during
red eliminates them.

AVAILABLE TOOLS:
- game_state: Current phase, light, round, and leaderboard
- list_players: Who is in the game and how they are doing
- start_game: Start the next round (needs at least one player)
- reset_lobby: Tear the tournament down and reopen joining
- kick_player: Remove a player entirely`),
	)

	a.registerTools()
}

// registerTools registers all MCP tools.
func (a *Admin) registerTools() {
	a.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state: phase, light, round, difficulty, and leaderboard",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, a.handleGameState)

	a.mcpServer.AddTool(mcp.Tool{
		Name:        "list_players",
		Description: "List every player with their progress and status",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, a.handleListPlayers)

	a.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start the next round. No-op unless the game is in the lobby or between rounds",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, a.handleStartGame)

	a.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_lobby",
		Description: "Abort the tournament, clear all players, and reopen joining",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, a.handleResetLobby)

	a.mcpServer.AddTool(mcp.Tool{
		Name:        "kick_player",
		Description: "Remove a player from the game entirely",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the player to remove (see list_players)",
				},
			},
			Required: []string{"player_id"},
		},
	}, a.handleKickPlayer)
}

// GetMCPServer returns the underlying MCP server for serving.
func (a *Admin) GetMCPServer() *server.MCPServer {
	return a.mcpServer
}

// Tool handlers

func (a *Admin) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := a.service.Snapshot(ctx)

	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s\nLight: %s\nRound: %d (%s)\nPlayers: %d\n",
		snap.Phase, snap.Light, snap.Round, snap.Difficulty.Label, len(snap.Players))
	if snap.EliminationPending {
		b.WriteString("Grace window open: holders are about to be swept\n")
	}
	if len(snap.Leaderboard) > 0 {
		b.WriteString("\nLeaderboard:\n")
		for _, st := range snap.Leaderboard {
			fmt.Fprintf(&b, "%2d. %s [%s] %.0f%%\n", st.Position, st.Name, st.Status, st.Progress)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (a *Admin) handleListPlayers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := a.service.Snapshot(ctx)
	if len(snap.Players) == 0 {
		return mcp.NewToolResultText("No players in the game."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Players (%d):\n\n", len(snap.Players))
	for _, p := range snap.Players {
		status := "alive"
		switch {
		case p.FinishedAt != nil:
			status = "finished"
		case !p.Alive:
			status = fmt.Sprintf("eliminated in round %d", p.EliminatedInRound)
		}
		fmt.Fprintf(&b, "- %s (id: %s) progress=%.0f%% %s\n", p.Name, p.ID, p.Progress, status)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (a *Admin) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	before := a.service.Snapshot(ctx)
	if len(before.Players) == 0 {
		return mcp.NewToolResultError("cannot start: no players have joined"), nil
	}

	a.service.StartGame(ctx)
	after := a.service.Snapshot(ctx)
	if after.Phase == before.Phase && after.Round == before.Round {
		return mcp.NewToolResultError(fmt.Sprintf("cannot start from phase %q", before.Phase)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Round %d starting (%s).", after.Round, after.Difficulty.Label)), nil
}

func (a *Admin) handleResetLobby(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a.service.ResetLobby(ctx)
	return mcp.NewToolResultText("Lobby reset. Joining is open again."), nil
}

func (a *Admin) handleKickPlayer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)
	if playerID == "" {
		return mcp.NewToolResultError("player_id is required"), nil
	}

	snap := a.service.Snapshot(ctx)
	name := ""
	for _, p := range snap.Players {
		if p.ID == playerID {
			name = p.Name
			break
		}
	}
	if name == "" {
		return mcp.NewToolResultError(fmt.Sprintf("no player with id %q", playerID)), nil
	}

	a.service.KickPlayer(ctx, playerID)
	return mcp.NewToolResultText(fmt.Sprintf("Removed %s.", name)), nil
}
