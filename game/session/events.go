package session

import (
	"github.com/pmmsinno/lightrace/game/engine"
)

// Outbound event names. The hub wraps each payload in an envelope carrying the
// event name; clients switch on it.
const (
	EventGameState    = "gameState"
	EventPlayerState  = "playerState"
	EventEliminations = "eliminations"
	EventEliminated   = "eliminated"
	EventCountdown    = "countdown"
	EventRoundInfo    = "roundInfo"
	EventGameOver     = "gameOver"
	EventLobbyReset   = "lobbyReset"
	EventKicked       = "kicked"
	EventJoinError    = "joinError"
	EventPlayerJoined = "playerJoined"
)

// Broadcaster is the outbound half of the transport contract: room broadcast
// to the shared display plus per-connection addressing. Implementations must
// not block; the session calls these while holding its lock.
type Broadcaster interface {
	ToDisplay(event string, payload any)
	ToPlayer(id string, event string, payload any)
}

// DifficultySummary is the display-facing slice of the active profile.
type DifficultySummary struct {
	Label         string  `json:"label"`
	GracePeriodMs int64   `json:"grace_period_ms"`
	ProgressRate  float64 `json:"progress_rate"`
}

// GameStatePayload is the full spectator view, pushed to the display room
// after every mutation.
type GameStatePayload struct {
	Phase            Phase             `json:"phase"`
	Light            Light             `json:"light"`
	Round            int               `json:"round"`
	TournamentActive bool              `json:"tournament_active"`
	Difficulty       DifficultySummary `json:"difficulty"`
	Players          []*engine.Player  `json:"players"`
	Leaderboard      []engine.Standing `json:"leaderboard"`
}

// PlayerStatePayload is the private per-player view.
type PlayerStatePayload struct {
	Phase            Phase       `json:"phase"`
	Light            Light       `json:"light"`
	Round            int         `json:"round"`
	TournamentActive bool        `json:"tournament_active"`
	Progress         float64     `json:"progress"`
	Alive            bool        `json:"alive"`
	Holding          bool        `json:"holding"`
	Rank             engine.Rank `json:"rank"`
}

// EliminationsPayload carries one bulk grace-expiry sweep.
type EliminationsPayload struct {
	Players []engine.LogEntry `json:"players"`
}

// EliminatedPayload tells a single player they are out and where they landed.
type EliminatedPayload struct {
	Rank engine.Rank `json:"rank"`
}

// CountdownPayload is one pre-round countdown tick.
type CountdownPayload struct {
	Value int `json:"value"`
}

// RoundInfoPayload announces the round about to start.
type RoundInfoPayload struct {
	Round         int    `json:"round"`
	Label         string `json:"label"`
	GracePeriodMs int64  `json:"grace_period_ms"`
}

// GameOverPayload ends a round. Winner is null when nobody survived.
type GameOverPayload struct {
	Winner      *engine.Player    `json:"winner"`
	Players     []*engine.Player  `json:"players"`
	Leaderboard []engine.Standing `json:"leaderboard"`
}

// JoinErrorPayload carries the human-readable join rejection.
type JoinErrorPayload struct {
	Reason string `json:"reason"`
}

// PlayerJoinedPayload announces a new lobby member.
type PlayerJoinedPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// KickedPayload is sent to a player removed by the host.
type KickedPayload struct {
	Reason string `json:"reason"`
}
