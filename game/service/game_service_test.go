package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pmmsinno/lightrace/game/service"
	"github.com/pmmsinno/lightrace/game/session"
)

// nopBroadcaster discards outbound events; the facade tests only care about
// state transitions.
type nopBroadcaster struct{}

func (nopBroadcaster) ToDisplay(event string, payload any)    {}
func (nopBroadcaster) ToPlayer(id, event string, payload any) {}

func newService() service.GameService {
	return service.NewGameService(session.New(nopBroadcaster{}))
}

func TestJoinAndSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if err := svc.Join(ctx, "c1", "Ana"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if err := svc.Join(ctx, "c2", "ana"); !errors.Is(err, session.ErrNameTaken) {
		t.Errorf("duplicate name error = %v, want %v", err, session.ErrNameTaken)
	}

	snap := svc.Snapshot(ctx)
	if snap.Phase != session.PhaseLobby {
		t.Errorf("phase = %s, want lobby", snap.Phase)
	}
	if len(snap.Players) != 1 || snap.Players[0].Name != "Ana" {
		t.Errorf("unexpected players: %+v", snap.Players)
	}
}

func TestStartAndReset(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if err := svc.Join(ctx, "c1", "Ana"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Join(ctx, "c2", "Ben"); err != nil {
		t.Fatal(err)
	}

	svc.StartGame(ctx)
	if got := svc.Snapshot(ctx).Phase; got != session.PhaseCountdown {
		t.Errorf("phase after start = %s, want countdown", got)
	}
	if err := svc.Join(ctx, "c3", "Cho"); !errors.Is(err, session.ErrTournamentRunning) {
		t.Errorf("join mid-tournament error = %v, want %v", err, session.ErrTournamentRunning)
	}

	svc.ResetLobby(ctx)
	snap := svc.Snapshot(ctx)
	if snap.Phase != session.PhaseLobby || len(snap.Players) != 0 {
		t.Errorf("reset did not clear state: %+v", snap)
	}
}

func TestKickAndDisconnect(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if err := svc.Join(ctx, "c1", "Ana"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Join(ctx, "c2", "Ben"); err != nil {
		t.Fatal(err)
	}

	svc.KickPlayer(ctx, "c1")
	svc.Disconnect(ctx, "c2")

	if snap := svc.Snapshot(ctx); len(snap.Players) != 0 {
		t.Errorf("expected empty lobby, got %+v", snap.Players)
	}
}
