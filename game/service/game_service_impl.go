package service

import (
	"context"

	"github.com/pmmsinno/lightrace/game/session"
)

// gameServiceImpl implements GameService over the single global session. The
// session serializes on its own mutex, so the facade carries no state of its
// own.
type gameServiceImpl struct {
	session *session.Session
}

// NewGameService creates a new game service instance.
func NewGameService(s *session.Session) GameService {
	return &gameServiceImpl{session: s}
}

// Join registers a player under the given connection id.
func (g *gameServiceImpl) Join(ctx context.Context, connID, name string) error {
	return g.session.Join(connID, name)
}

// HoldStart records the player pressing the move button.
func (g *gameServiceImpl) HoldStart(ctx context.Context, connID string) {
	g.session.HoldStart(connID)
}

// HoldEnd records the player releasing the move button.
func (g *gameServiceImpl) HoldEnd(ctx context.Context, connID string) {
	g.session.HoldEnd(connID)
}

// Disconnect handles a dropped player connection.
func (g *gameServiceImpl) Disconnect(ctx context.Context, connID string) {
	g.session.Disconnect(connID)
}

// StartGame begins the next round.
func (g *gameServiceImpl) StartGame(ctx context.Context) {
	g.session.StartGame()
}

// ResetLobby tears the tournament down and reopens joining.
func (g *gameServiceImpl) ResetLobby(ctx context.Context) {
	g.session.ResetLobby()
}

// KickPlayer removes a player entirely.
func (g *gameServiceImpl) KickPlayer(ctx context.Context, playerID string) {
	g.session.KickPlayer(playerID)
}

// RegisterDisplay pushes current state to a newly connected display.
func (g *gameServiceImpl) RegisterDisplay(ctx context.Context, connID string) {
	g.session.RegisterDisplay(connID)
}

// Snapshot returns a point-in-time copy of session state.
func (g *gameServiceImpl) Snapshot(ctx context.Context) session.Snapshot {
	return g.session.Snapshot()
}
