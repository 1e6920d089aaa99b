package difficulty

import (
	"testing"
	"time"
)

func TestForRoundClampsAtTableEnds(t *testing.T) {
	first := ForRound(1)
	if got := ForRound(0); got != first {
		t.Errorf("ForRound(0) = %+v, want first profile %+v", got, first)
	}
	if got := ForRound(-3); got != first {
		t.Errorf("ForRound(-3) = %+v, want first profile %+v", got, first)
	}

	last := ForRound(Rounds())
	if got := ForRound(Rounds() + 10); got != last {
		t.Errorf("ForRound(%d) = %+v, want last profile %+v", Rounds()+10, got, last)
	}
}

func TestProfilesTightenAcrossRounds(t *testing.T) {
	prev := ForRound(1)
	for round := 2; round <= Rounds(); round++ {
		p := ForRound(round)
		if p.GracePeriod >= prev.GracePeriod {
			t.Errorf("round %d grace %v not shorter than round %d grace %v",
				round, p.GracePeriod, round-1, prev.GracePeriod)
		}
		prev = p
	}
}

func TestProfileRangesAreValid(t *testing.T) {
	for round := 1; round <= Rounds(); round++ {
		p := ForRound(round)
		if p.GreenMin <= 0 || p.GreenMax < p.GreenMin {
			t.Errorf("round %d: invalid green range [%v, %v]", round, p.GreenMin, p.GreenMax)
		}
		if p.RedMin <= 0 || p.RedMax < p.RedMin {
			t.Errorf("round %d: invalid red range [%v, %v]", round, p.RedMin, p.RedMax)
		}
		if p.GracePeriod <= 0 {
			t.Errorf("round %d: non-positive grace period %v", round, p.GracePeriod)
		}
		if p.ProgressRate <= 0 {
			t.Errorf("round %d: non-positive progress rate %f", round, p.ProgressRate)
		}
		if p.Label == "" {
			t.Errorf("round %d: empty label", round)
		}
	}
}

func TestMinTicksToFinish(t *testing.T) {
	p := Profile{ProgressRate: 2.0}
	if got := p.MinTicksToFinish(); got != 50 {
		t.Errorf("MinTicksToFinish() = %d, want 50", got)
	}

	p = Profile{ProgressRate: 3.0}
	// 33 ticks cover 99, a 34th is needed to clamp at 100.
	if got := p.MinTicksToFinish(); got != 34 {
		t.Errorf("MinTicksToFinish() = %d, want 34", got)
	}
}

func TestTickInterval(t *testing.T) {
	if TickInterval != 100*time.Millisecond {
		t.Errorf("TickInterval = %v, want 100ms", TickInterval)
	}
}
