package session

import (
	"github.com/pmmsinno/lightrace/game/difficulty"
	"github.com/pmmsinno/lightrace/game/engine"
)

// scheduleTick arms the next progress accumulator tick. Lock held.
func (s *Session) scheduleTick() {
	s.tickTimer = s.schedule(difficulty.TickInterval, s.tick)
}

// tick advances every holder's progress while the light is green. The phase
// and light are re-validated because an earlier callback in the same tick
// queue may have changed them. Lock held, epoch-guarded.
func (s *Session) tick() {
	if s.phase != PhasePlaying {
		return
	}
	defer func() {
		if s.phase == PhasePlaying {
			s.scheduleTick()
		}
	}()
	if s.light != LightGreen {
		return
	}

	rate := s.profile().ProgressRate
	moved := false
	var finished []*engine.Player
	for _, p := range s.players.Players() {
		if !p.Alive || !p.Holding || p.Finished() {
			continue
		}
		p.Progress += rate
		moved = true
		if p.Progress >= difficulty.ProgressToWin {
			p.Progress = difficulty.ProgressToWin
			s.awardFinish(p)
			finished = append(finished, p)
		}
	}

	if moved {
		s.broadcastState()
	}
	if len(finished) > 0 {
		s.checkRoundEnd()
	}
}
