package service

import (
	"context"

	"github.com/pmmsinno/lightrace/game/session"
)

// GameService defines all game-related operations exposed to the transports.
// Every transport (WebSocket, HTTP, MCP) goes through this interface rather
// than touching the session directly, so each surface can be tested against a
// mock.
type GameService interface {
	// Player actions
	Join(ctx context.Context, connID, name string) error
	HoldStart(ctx context.Context, connID string)
	HoldEnd(ctx context.Context, connID string)
	Disconnect(ctx context.Context, connID string)

	// Host actions
	StartGame(ctx context.Context)
	ResetLobby(ctx context.Context)
	KickPlayer(ctx context.Context, playerID string)

	// Display
	RegisterDisplay(ctx context.Context, connID string)

	// State
	Snapshot(ctx context.Context) session.Snapshot
}
