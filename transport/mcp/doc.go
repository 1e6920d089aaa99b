// Package mcp provides the Model Context Protocol host interface for the
// light race game.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Host tool definitions over the game service
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools:
//   - game_state: Current phase, light, round, and leaderboard
//   - list_players: Every player with progress and status
//   - start_game: Start the next round
//   - reset_lobby: Abort the tournament and reopen joining
//   - kick_player: Remove a player entirely
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: HTTP endpoint for remote MCP integration
//
// Usage:
//
//	admin := mcp.NewAdmin(gameService)
//
//	// Stdio mode
//	server.ServeStdio(admin.GetMCPServer())
//
//	// HTTP mode: mount GetMCPServer().HandleMessage at POST /mcp
//
// The tools are host controls, not player controls: an agent can run the game
// night (start rounds, clean up the lobby, remove stuck players) but cannot
// move on a player's behalf.
package mcp
