// Package service provides the business logic facade for the light race game.
//
// GameService is the single interface the transports program against. It wraps
// the global session and exposes:
//   - Player actions: join, hold start/end, disconnect
//   - Host actions: start game, reset lobby, kick player
//   - Display registration and state snapshots
//
// Architecture:
//
// The service layer sits between the transport layer (WebSocket/HTTP/MCP) and
// the game session. The session is the only holder of mutable state; the
// service adds the context-aware interface boundary that lets each transport
// be tested against a mock.
//
// Usage:
//
//	sess := session.New(hub)
//	gameService := service.NewGameService(sess)
//
//	// A player joins
//	err := gameService.Join(ctx, connID, "Ana")
//
//	// The host starts the round
//	gameService.StartGame(ctx)
package service
