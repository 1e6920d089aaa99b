// Package session implements the single global game session: the phase state
// machine, the light scheduler, the progress accumulator, and the elimination
// engine. The session is the only writer of shared game state; inbound client
// actions and timer callbacks serialize on its mutex, and every scheduled
// callback captures an epoch so that a transition out of the scheduling phase
// turns stale callbacks into no-ops.
package session

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/pmmsinno/lightrace/game/difficulty"
	"github.com/pmmsinno/lightrace/game/engine"
	"github.com/pmmsinno/lightrace/validate"
)

// Phase is the session lifecycle state.
type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseCountdown Phase = "countdown"
	PhasePlaying   Phase = "playing"
	PhaseGameOver  Phase = "gameOver"
)

// Light is the current traffic light color.
type Light string

const (
	LightGreen Light = "green"
	LightRed   Light = "red"
)

// countdownFrom is the starting value of the pre-round countdown, ticking
// once per second.
const countdownFrom = 3

// Join rejections surfaced to the client as joinError events.
var (
	ErrNameTaken         = errors.New("that name is already taken")
	ErrTournamentRunning = errors.New("a tournament is already running")
	ErrJoinClosed        = errors.New("joining is closed right now")
)

// Session is the single authoritative game session.
type Session struct {
	mu    sync.Mutex
	clock clockwork.Clock
	rng   *rand.Rand
	log   zerolog.Logger
	out   Broadcaster

	phase              Phase
	light              Light
	round              int
	tournamentActive   bool
	eliminationPending bool

	players     *engine.Registry
	finishOrder []engine.LogEntry
	elimOrder   []engine.LogEntry

	// epoch invalidates scheduled callbacks: cancelTimers bumps it, and every
	// callback scheduled before the bump becomes a no-op.
	epoch          uint64
	lightTimer     clockwork.Timer
	graceTimer     clockwork.Timer
	countdownTimer clockwork.Timer
	tickTimer      clockwork.Timer
}

// Option configures a Session at construction.
type Option func(*Session)

// WithClock substitutes the session clock. Tests pass a fake clock.
func WithClock(c clockwork.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithRand substitutes the duration RNG for deterministic light cycles.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// New returns a session in the lobby phase with the light idle on red.
func New(out Broadcaster, opts ...Option) *Session {
	s := &Session{
		clock:   clockwork.NewRealClock(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     zerolog.Nop(),
		out:     out,
		phase:   PhaseLobby,
		light:   LightRed,
		players: engine.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Join registers a new player. It fails with a human-readable reason while a
// tournament is running, outside the lobby phase, or on a bad or duplicate
// name; the transport surfaces the reason as a joinError event.
func (s *Session) Join(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleaned, err := validate.PlayerName(name)
	if err != nil {
		return err
	}
	if s.tournamentActive {
		return ErrTournamentRunning
	}
	if s.phase != PhaseLobby {
		return ErrJoinClosed
	}
	if s.players.NameTaken(cleaned) {
		return ErrNameTaken
	}

	s.players.Add(engine.NewPlayer(id, cleaned))
	s.log.Info().Str("player", cleaned).Str("id", id).Int("lobby_size", s.players.Len()).Msg("player joined")

	s.out.ToDisplay(EventPlayerJoined, PlayerJoinedPayload{ID: id, Name: cleaned, Count: s.players.Len()})
	s.broadcastState()
	return nil
}

// StartGame begins a round from the lobby or from a finished round. With a
// single alive player left the tournament is decided on the spot (default
// win); otherwise the countdown starts.
func (s *Session) StartGame() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLobby && s.phase != PhaseGameOver {
		return
	}
	alive := s.players.Alive()
	if len(alive) == 0 {
		return
	}
	if len(alive) == 1 {
		s.tournamentActive = true
		w := alive[0]
		if !w.Finished() {
			s.awardFinish(w)
		}
		s.log.Info().Str("winner", w.Name).Msg("default win, not enough players for a round")
		s.concludeRound(w)
		return
	}

	s.cancelTimers()
	s.round++
	s.tournamentActive = true
	s.eliminationPending = false
	s.light = LightRed
	for _, p := range s.players.Players() {
		if p.Alive {
			p.ResetForRound()
		}
	}
	s.phase = PhaseCountdown

	prof := s.profile()
	s.log.Info().Int("round", s.round).Str("difficulty", prof.Label).Msg("round starting")
	info := RoundInfoPayload{Round: s.round, Label: prof.Label, GracePeriodMs: prof.GracePeriod.Milliseconds()}
	s.out.ToDisplay(EventRoundInfo, info)
	for _, p := range s.players.Players() {
		s.out.ToPlayer(p.ID, EventRoundInfo, info)
	}
	s.broadcastState()
	s.countdownTick(countdownFrom)
}

// HoldStart records a player pressing the move button. During confirmed red
// (grace expired) this is an instant elimination; during the grace window it
// is tolerated until the sweep.
func (s *Session) HoldStart(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.players.Get(id)
	if p == nil || s.phase != PhasePlaying || !p.Alive || p.Finished() {
		return
	}
	if s.light == LightRed && !s.eliminationPending {
		if s.eliminate(p) {
			s.notifyEliminated(p)
			s.broadcastState()
			s.checkRoundEnd()
		}
		return
	}
	if p.Holding {
		return
	}
	p.Holding = true
	s.broadcastState()
}

// HoldEnd records a player releasing the move button. Releasing strictly
// before the grace sweep fires spares them for that red phase.
func (s *Session) HoldEnd(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.players.Get(id)
	if p == nil || s.phase != PhasePlaying || !p.Holding {
		return
	}
	p.Holding = false
	s.broadcastState()
}

// ResetLobby tears the whole tournament down: timers cancelled, registry and
// logs cleared, round counter zeroed.
func (s *Session) ResetLobby() {
	s.mu.Lock()
	defer s.mu.Unlock()

	former := s.players.Players()
	s.cancelTimers()
	s.phase = PhaseLobby
	s.light = LightRed
	s.round = 0
	s.tournamentActive = false
	s.eliminationPending = false
	s.players.Reset()
	s.finishOrder = nil
	s.elimOrder = nil

	s.log.Info().Msg("lobby reset")
	s.out.ToDisplay(EventLobbyReset, struct{}{})
	for _, p := range former {
		s.out.ToPlayer(p.ID, EventLobbyReset, struct{}{})
	}
	s.broadcastState()
}

// KickPlayer removes a player from the registry entirely, in any phase.
func (s *Session) KickPlayer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.players.Get(id)
	if p == nil {
		return
	}
	s.players.Remove(id)
	s.log.Info().Str("player", p.Name).Msg("player kicked")
	s.out.ToPlayer(id, EventKicked, KickedPayload{Reason: "removed by the host"})
	s.broadcastState()
	if s.phase == PhasePlaying {
		s.checkRoundEnd()
	}
}

// Disconnect handles a dropped connection. In the lobby the player is simply
// removed; during a tournament they stay in the registry and are eliminated
// so leaderboard accounting stays consistent. A finisher who disconnects
// keeps their finish slot.
func (s *Session) Disconnect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.players.Get(id)
	if p == nil {
		return
	}
	if !s.tournamentActive {
		s.players.Remove(id)
		s.log.Info().Str("player", p.Name).Msg("player left the lobby")
		s.broadcastState()
		return
	}
	if p.Finished() {
		return
	}
	if s.eliminate(p) {
		s.log.Info().Str("player", p.Name).Msg("player disconnected mid-tournament, eliminated")
		s.broadcastState()
		// A disconnect only evaluates the softlock conditions. A lone
		// survivor left behind by disconnects is not awarded the win here;
		// the next cycle evaluation (sweep, finish, elimination) decides,
		// so a room that empties out entirely ends with no winner.
		if s.phase != PhasePlaying {
			return
		}
		if s.players.AliveCount() == 0 {
			s.endGame(nil)
		} else if len(s.players.AliveUnfinished()) == 0 {
			s.endGame(s.roundWinner())
		}
	}
}

// RegisterDisplay pushes the current state to a newly connected display.
func (s *Session) RegisterDisplay(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.ToPlayer(id, EventGameState, s.gameStatePayload(s.leaderboard()))
}

// eliminate applies the single elimination operation. Finished and already
// dead players are untouchable; returns whether the player was eliminated.
func (s *Session) eliminate(p *engine.Player) bool {
	if p == nil || !p.Alive || p.Finished() {
		return false
	}
	p.Alive = false
	p.Holding = false
	p.EliminatedInRound = s.round
	s.elimOrder = append(s.elimOrder, engine.LogEntry{ID: p.ID, Name: p.Name, Round: s.round})
	s.log.Debug().Str("player", p.Name).Int("round", s.round).Msg("eliminated")
	return true
}

// notifyEliminated sends the victim their final position.
func (s *Session) notifyEliminated(p *engine.Player) {
	board := s.leaderboard()
	s.out.ToPlayer(p.ID, EventEliminated, EliminatedPayload{Rank: engine.RankFor(board, p.ID)})
}

// awardFinish stamps a finish from the session clock and appends to the
// finish log.
func (s *Session) awardFinish(p *engine.Player) {
	now := s.clock.Now()
	p.FinishedAt = &now
	s.finishOrder = append(s.finishOrder, engine.LogEntry{ID: p.ID, Name: p.Name, Round: s.round})
	s.log.Debug().Str("player", p.Name).Int("round", s.round).Msg("finished")
}

// checkRoundEnd evaluates the termination conditions and ends the round when
// one holds. Reports whether the round is over (or already was).
func (s *Session) checkRoundEnd() bool {
	if s.phase != PhasePlaying {
		return true
	}
	alive := s.players.Alive()
	if len(alive) == 0 {
		s.endGame(nil)
		return true
	}
	unfinished := s.players.AliveUnfinished()
	if len(unfinished) == 0 {
		// Everyone still alive has crossed the line; the earliest finisher
		// of this round takes it.
		s.endGame(s.roundWinner())
		return true
	}
	if len(unfinished) == 1 {
		if len(alive) == 1 {
			// Last one standing beats an unfinished race.
			w := alive[0]
			s.awardFinish(w)
			s.endGame(w)
			return true
		}
		// One racer left against players who already finished: decided.
		s.endGame(s.roundWinner())
		return true
	}
	return false
}

// roundWinner is the first finisher of the current round still in the
// registry, nil if none. A kicked finisher forfeits to the next one.
func (s *Session) roundWinner() *engine.Player {
	for _, e := range s.finishOrder {
		if e.Round != s.round {
			continue
		}
		if p := s.players.Get(e.ID); p != nil {
			return p
		}
	}
	return nil
}

// endGame is the guarded terminal transition: a second call while already in
// gameOver is a no-op, because a finish-by-progress and a finish-by-
// elimination can both conclude the round within the same tick.
func (s *Session) endGame(winner *engine.Player) {
	if s.phase == PhaseGameOver {
		return
	}
	s.concludeRound(winner)
}

// concludeRound cancels all timers, enters gameOver, and broadcasts the final
// standings. Callers other than endGame must know the phase guard does not
// apply (the default-win path re-announces from gameOver).
func (s *Session) concludeRound(winner *engine.Player) {
	s.cancelTimers()
	s.phase = PhaseGameOver
	s.eliminationPending = false

	name := ""
	if winner != nil {
		name = winner.Name
	}
	s.log.Info().Int("round", s.round).Str("winner", name).Msg("round over")

	payload := GameOverPayload{
		Winner:      winner,
		Players:     s.players.Players(),
		Leaderboard: s.leaderboard(),
	}
	s.out.ToDisplay(EventGameOver, payload)
	for _, p := range s.players.Players() {
		s.out.ToPlayer(p.ID, EventGameOver, payload)
	}
	s.broadcastState()
}

// countdownTick broadcasts one countdown value and schedules the next; at
// zero the round starts. Lock held.
func (s *Session) countdownTick(n int) {
	if s.phase != PhaseCountdown {
		return
	}
	if n < 1 {
		s.startRound()
		return
	}
	tick := CountdownPayload{Value: n}
	s.out.ToDisplay(EventCountdown, tick)
	for _, p := range s.players.Players() {
		s.out.ToPlayer(p.ID, EventCountdown, tick)
	}
	s.countdownTimer = s.schedule(time.Second, func() { s.countdownTick(n - 1) })
}

// startRound flips to playing and kicks off the light cycle and the progress
// accumulator. If eliminations during the countdown left too few players the
// round terminates immediately. Lock held.
func (s *Session) startRound() {
	s.phase = PhasePlaying
	if s.checkRoundEnd() {
		return
	}
	s.scheduleTick()
	s.enterGreen()
}

// profile returns the difficulty profile for the current round.
func (s *Session) profile() difficulty.Profile {
	round := s.round
	if round < 1 {
		round = 1
	}
	return difficulty.ForRound(round)
}

// schedule wraps clock.AfterFunc with the epoch guard: the callback runs
// under the session lock and only if no cancelTimers happened since
// scheduling. Lock held by the caller.
func (s *Session) schedule(d time.Duration, fn func()) clockwork.Timer {
	epoch := s.epoch
	return s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != epoch {
			return
		}
		fn()
	})
}

// cancelTimers stops every outstanding timer and advances the epoch so that
// callbacks already in flight become no-ops. Runs on every transition out of
// playing/countdown. Lock held.
func (s *Session) cancelTimers() {
	for _, t := range []clockwork.Timer{s.lightTimer, s.graceTimer, s.countdownTimer, s.tickTimer} {
		if t != nil {
			t.Stop()
		}
	}
	s.lightTimer = nil
	s.graceTimer = nil
	s.countdownTimer = nil
	s.tickTimer = nil
	s.epoch++
}

// leaderboard projects the current standings. Lock held.
func (s *Session) leaderboard() []engine.Standing {
	return engine.BuildLeaderboard(s.players.Players(), s.finishOrder, s.elimOrder)
}

// gameStatePayload builds the display view. Lock held.
func (s *Session) gameStatePayload(board []engine.Standing) GameStatePayload {
	prof := s.profile()
	return GameStatePayload{
		Phase:            s.phase,
		Light:            s.light,
		Round:            s.round,
		TournamentActive: s.tournamentActive,
		Difficulty: DifficultySummary{
			Label:         prof.Label,
			GracePeriodMs: prof.GracePeriod.Milliseconds(),
			ProgressRate:  prof.ProgressRate,
		},
		Players:     s.players.Players(),
		Leaderboard: board,
	}
}

// broadcastState pushes gameState to the display room and playerState to each
// player. Lock held.
func (s *Session) broadcastState() {
	board := s.leaderboard()
	s.out.ToDisplay(EventGameState, s.gameStatePayload(board))
	for _, p := range s.players.Players() {
		s.out.ToPlayer(p.ID, EventPlayerState, PlayerStatePayload{
			Phase:            s.phase,
			Light:            s.light,
			Round:            s.round,
			TournamentActive: s.tournamentActive,
			Progress:         p.Progress,
			Alive:            p.Alive,
			Holding:          p.Holding,
			Rank:             engine.RankFor(board, p.ID),
		})
	}
}
