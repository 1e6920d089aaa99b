package engine

import (
	"testing"
	"time"
)

// boardFixture builds a six-player tournament snapshot:
// p1 finished first, p2 finished second, p3 and p4 still racing,
// p5 eliminated first, p6 eliminated second.
func boardFixture() ([]*Player, []LogEntry, []LogEntry) {
	now := time.Now()
	mk := func(id, name string) *Player { return NewPlayer(id, name) }

	p1 := mk("p1", "Ana")
	p1.Progress = 100
	p1.FinishedAt = &now
	p2 := mk("p2", "Ben")
	p2.Progress = 100
	p2.FinishedAt = &now
	p3 := mk("p3", "Cho")
	p3.Progress = 40
	p4 := mk("p4", "Dee")
	p4.Progress = 75
	p5 := mk("p5", "Eli")
	p5.Alive = false
	p5.EliminatedInRound = 1
	p6 := mk("p6", "Fay")
	p6.Alive = false
	p6.EliminatedInRound = 1

	players := []*Player{p1, p2, p3, p4, p5, p6}
	finishOrder := []LogEntry{
		{ID: "p1", Name: "Ana", Round: 1},
		{ID: "p2", Name: "Ben", Round: 1},
	}
	elimOrder := []LogEntry{
		{ID: "p5", Name: "Eli", Round: 1},
		{ID: "p6", Name: "Fay", Round: 1},
	}
	return players, finishOrder, elimOrder
}

func TestBuildLeaderboardOrdering(t *testing.T) {
	players, finishOrder, elimOrder := boardFixture()

	board := BuildLeaderboard(players, finishOrder, elimOrder)

	// Finishers first in finish order, then racing players by descending
	// progress, then eliminated players most-recent-first.
	want := []string{"p1", "p2", "p4", "p3", "p6", "p5"}
	if len(board) != len(want) {
		t.Fatalf("board size = %d, want %d", len(board), len(want))
	}
	for i, id := range want {
		if board[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i+1, board[i].ID, id)
		}
	}
}

func TestBuildLeaderboardPositionsAreContiguous(t *testing.T) {
	players, finishOrder, elimOrder := boardFixture()

	board := BuildLeaderboard(players, finishOrder, elimOrder)

	seen := make(map[int]bool)
	for _, s := range board {
		if s.Position < 1 || s.Position > len(players) {
			t.Errorf("position %d out of range 1..%d", s.Position, len(players))
		}
		if seen[s.Position] {
			t.Errorf("duplicate position %d", s.Position)
		}
		seen[s.Position] = true
	}
	if len(seen) != len(players) {
		t.Errorf("expected %d distinct positions, got %d", len(players), len(seen))
	}
}

func TestBuildLeaderboardStatuses(t *testing.T) {
	players, finishOrder, elimOrder := boardFixture()

	board := BuildLeaderboard(players, finishOrder, elimOrder)

	wantStatus := map[string]string{
		"p1": StatusWinner,
		"p2": StatusWinner,
		"p3": StatusAlive,
		"p4": StatusAlive,
		"p5": StatusEliminated,
		"p6": StatusEliminated,
	}
	for _, s := range board {
		if s.Status != wantStatus[s.ID] {
			t.Errorf("%s: status %q, want %q", s.ID, s.Status, wantStatus[s.ID])
		}
	}
}

func TestBuildLeaderboardProgressTieKeepsRegistryOrder(t *testing.T) {
	a := NewPlayer("a", "Ana")
	b := NewPlayer("b", "Ben")
	c := NewPlayer("c", "Cho")
	a.Progress, b.Progress, c.Progress = 50, 50, 50

	board := BuildLeaderboard([]*Player{a, b, c}, nil, nil)

	for i, id := range []string{"a", "b", "c"} {
		if board[i].ID != id {
			t.Errorf("tie-break position %d: got %s, want %s", i+1, board[i].ID, id)
		}
	}
}

func TestRankFor(t *testing.T) {
	players, finishOrder, elimOrder := boardFixture()
	board := BuildLeaderboard(players, finishOrder, elimOrder)

	r := RankFor(board, "p1")
	if r.Position != 1 || r.Total != 6 || r.Status != StatusWinner {
		t.Errorf("RankFor(p1) = %+v", r)
	}

	r = RankFor(board, "p5")
	if r.Position != 6 || r.Status != StatusEliminated {
		t.Errorf("RankFor(p5) = %+v", r)
	}

	r = RankFor(board, "ghost")
	if r != (Rank{}) {
		t.Errorf("RankFor(unknown) = %+v, want zero Rank", r)
	}
}
