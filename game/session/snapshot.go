package session

import "github.com/pmmsinno/lightrace/game/engine"

// Snapshot is a point-in-time copy of session state for the HTTP and MCP
// surfaces. Player records are copied by value so callers can't mutate live
// state.
type Snapshot struct {
	Phase              Phase             `json:"phase"`
	Light              Light             `json:"light"`
	Round              int               `json:"round"`
	TournamentActive   bool              `json:"tournament_active"`
	EliminationPending bool              `json:"elimination_pending"`
	Difficulty         DifficultySummary `json:"difficulty"`
	Players            []engine.Player   `json:"players"`
	Leaderboard        []engine.Standing `json:"leaderboard"`
}

// Snapshot returns a consistent copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.players.Players()
	players := make([]engine.Player, 0, len(live))
	for _, p := range live {
		players = append(players, *p)
	}
	prof := s.profile()
	return Snapshot{
		Phase:              s.phase,
		Light:              s.light,
		Round:              s.round,
		TournamentActive:   s.tournamentActive,
		EliminationPending: s.eliminationPending,
		Difficulty: DifficultySummary{
			Label:         prof.Label,
			GracePeriodMs: prof.GracePeriod.Milliseconds(),
			ProgressRate:  prof.ProgressRate,
		},
		Players:     players,
		Leaderboard: s.leaderboard(),
	}
}
