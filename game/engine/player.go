// Package engine holds the pure game rules: player records, the
// insertion-ordered registry, and the leaderboard projection. Nothing in this
// package owns timers or does I/O; the session drives it.
package engine

import "time"

// MaxNameLength caps display names accepted at join time.
const MaxNameLength = 15

// Player is the per-participant game record, created at join and kept for the
// lifetime of a tournament.
type Player struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Progress float64 `json:"progress"`
	Alive    bool    `json:"alive"`
	Holding  bool    `json:"holding"`

	// FinishedAt is stamped once when Progress reaches the win threshold.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// EliminatedInRound is the round the player was eliminated in, 0 if never.
	EliminatedInRound int `json:"eliminated_in_round,omitempty"`
}

// NewPlayer returns a live, idle player record.
func NewPlayer(id, name string) *Player {
	return &Player{ID: id, Name: name, Alive: true}
}

// Finished reports whether the player has crossed the win threshold this round.
func (p *Player) Finished() bool {
	return p.FinishedAt != nil
}

// ResetForRound clears the round-local fields. Cumulative state (Alive,
// EliminatedInRound) is untouched; eliminated players stay eliminated.
func (p *Player) ResetForRound() {
	p.Progress = 0
	p.Holding = false
	p.FinishedAt = nil
}

// LogEntry records one elimination or finish in tournament order.
type LogEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Round int    `json:"round"`
}
