package session

import (
	"time"

	"github.com/pmmsinno/lightrace/game/engine"
)

// enterGreen turns the light green and schedules the next red. If every
// remaining alive player has already finished, the light cycle would stall,
// so the round-end check runs instead. Lock held, epoch-guarded.
func (s *Session) enterGreen() {
	if s.phase != PhasePlaying {
		return
	}
	s.light = LightGreen
	s.eliminationPending = false
	s.log.Debug().Int("round", s.round).Msg("light green")

	if len(s.players.AliveUnfinished()) == 0 {
		s.broadcastState()
		s.checkRoundEnd()
		return
	}

	prof := s.profile()
	s.lightTimer = s.schedule(s.randDuration(prof.GreenMin, prof.GreenMax), s.enterRed)
	s.broadcastState()
}

// enterRed turns the light red and opens the grace window: holders are
// tolerated until the grace timer sweeps them. Lock held, epoch-guarded.
func (s *Session) enterRed() {
	if s.phase != PhasePlaying {
		return
	}
	s.light = LightRed
	s.eliminationPending = true
	s.log.Debug().Int("round", s.round).Msg("light red, grace window open")

	prof := s.profile()
	s.graceTimer = s.schedule(prof.GracePeriod, s.sweepViolators)
	s.broadcastState()
}

// sweepViolators fires at grace expiry: every player still holding is
// eliminated in one batch, and red becomes confirmed: from here on a new
// hold is eliminated instantly. Lock held, epoch-guarded.
func (s *Session) sweepViolators() {
	if s.phase != PhasePlaying || s.light != LightRed {
		return
	}
	s.eliminationPending = false

	var batch []engine.LogEntry
	var victims []*engine.Player
	for _, p := range s.players.Players() {
		if p.Alive && p.Holding && !p.Finished() {
			if s.eliminate(p) {
				batch = append(batch, engine.LogEntry{ID: p.ID, Name: p.Name, Round: s.round})
				victims = append(victims, p)
			}
		}
	}

	if len(batch) > 0 {
		s.log.Info().Int("count", len(batch)).Int("round", s.round).Msg("grace expired, holders eliminated")
		s.out.ToDisplay(EventEliminations, EliminationsPayload{Players: batch})
		board := s.leaderboard()
		for _, p := range victims {
			s.out.ToPlayer(p.ID, EventEliminated, EliminatedPayload{Rank: engine.RankFor(board, p.ID)})
		}
	}

	s.broadcastState()
	if s.checkRoundEnd() {
		return
	}

	prof := s.profile()
	s.lightTimer = s.schedule(s.randDuration(prof.RedMin, prof.RedMax), s.enterGreen)
}

// randDuration draws uniformly from [min, max] at millisecond granularity.
func (s *Session) randDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	spanMs := (max - min).Milliseconds()
	return min + time.Duration(s.rng.Int63n(spanMs+1))*time.Millisecond
}
