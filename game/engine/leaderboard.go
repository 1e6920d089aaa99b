package engine

import "sort"

// Player statuses reported on the leaderboard. Every finisher reports
// StatusWinner, not only the tournament's ultimate winner.
const (
	StatusWinner     = "winner"
	StatusAlive      = "alive"
	StatusEliminated = "eliminated"
)

// Standing is one leaderboard row.
type Standing struct {
	Position int     `json:"position"`
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`

	// Round is the round the player finished or was eliminated in, 0 for
	// players still racing.
	Round int `json:"round,omitempty"`
}

// Rank is the per-player leaderboard lookup sent with playerState.
type Rank struct {
	Position int    `json:"position"`
	Total    int    `json:"total"`
	Status   string `json:"status"`
}

// BuildLeaderboard projects a full ranking from the two append-only logs and
// live progress. Best to worst: finishers in finish order, then alive
// unfinished players by descending progress (ties keep registry order), then
// eliminated players in reverse elimination order. Positions are contiguous
// 1..N where N is the registry size.
func BuildLeaderboard(players []*Player, finishOrder, elimOrder []LogEntry) []Standing {
	byID := make(map[string]*Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	out := make([]Standing, 0, len(players))
	placed := make(map[string]bool, len(players))

	for _, e := range finishOrder {
		p, ok := byID[e.ID]
		if !ok {
			continue
		}
		out = append(out, Standing{
			ID:       e.ID,
			Name:     e.Name,
			Status:   StatusWinner,
			Progress: p.Progress,
			Round:    e.Round,
		})
		placed[e.ID] = true
	}

	var racing []*Player
	for _, p := range players {
		if !placed[p.ID] && p.Alive {
			racing = append(racing, p)
		}
	}
	// Stable keeps registry order for equal progress.
	sort.SliceStable(racing, func(i, j int) bool {
		return racing[i].Progress > racing[j].Progress
	})
	for _, p := range racing {
		out = append(out, Standing{
			ID:       p.ID,
			Name:     p.Name,
			Status:   StatusAlive,
			Progress: p.Progress,
		})
		placed[p.ID] = true
	}

	for i := len(elimOrder) - 1; i >= 0; i-- {
		e := elimOrder[i]
		p, ok := byID[e.ID]
		if !ok || placed[e.ID] {
			continue
		}
		out = append(out, Standing{
			ID:       e.ID,
			Name:     e.Name,
			Status:   StatusEliminated,
			Progress: p.Progress,
			Round:    e.Round,
		})
		placed[e.ID] = true
	}

	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// RankFor returns the position, field size, and status for one player, or a
// zero Rank if the player is not on the board.
func RankFor(board []Standing, id string) Rank {
	for _, s := range board {
		if s.ID == id {
			return Rank{Position: s.Position, Total: len(board), Status: s.Status}
		}
	}
	return Rank{}
}
