// Command tuning prints quick, human-readable heuristics about the difficulty
// ladder. It summarizes light timing windows, grace periods, and progress
// rates per round, and highlights rounds where the timing makes finishing
// unrealistic for human players.
package main

import (
	"fmt"
	"time"

	"github.com/pmmsinno/lightrace/game/difficulty"
)

// Human reaction to a light change is roughly 250ms; a grace period at or
// below that sweeps players who reacted as fast as possible.
const humanReaction = 250 * time.Millisecond

func main() {
	for round := 1; round <= difficulty.Rounds(); round++ {
		prof := difficulty.ForRound(round)
		fmt.Printf("\n=== Round %d: %s ===\n", round, prof.Label)
		analyzeProfile(prof)
	}
	fmt.Printf("\nRounds beyond %d reuse the final profile.\n", difficulty.Rounds())
}

func analyzeProfile(prof difficulty.Profile) {
	fmt.Printf("Green window: %s - %s\n", prof.GreenMin, prof.GreenMax)
	fmt.Printf("Red window: %s - %s\n", prof.RedMin, prof.RedMax)
	fmt.Printf("Grace period: %s\n", prof.GracePeriod)
	fmt.Printf("Progress per tick: %.1f (tick every %s)\n", prof.ProgressRate, difficulty.TickInterval)

	ticks := prof.MinTicksToFinish()
	holdTime := time.Duration(ticks) * difficulty.TickInterval
	fmt.Printf("Hold time to finish: %s (%d ticks)\n", holdTime, ticks)

	greens := greensToFinish(prof)
	fmt.Printf("Green phases to finish (average luck): %d\n", greens)

	cycle := avg(prof.GreenMin, prof.GreenMax) + avg(prof.RedMin, prof.RedMax)
	fmt.Printf("Expected round length: ~%s\n", (time.Duration(greens) * cycle).Round(time.Second))

	if prof.GracePeriod <= humanReaction {
		fmt.Printf("WARNING: grace period is at or below human reaction time; expect heavy sweeps\n")
	}
	if holdTime > prof.GreenMax*10 {
		fmt.Printf("WARNING: finishing needs more than 10 max-length greens; rounds may drag\n")
	}
}

// greensToFinish estimates how many average-length green phases a player who
// holds perfectly needs to accumulate full progress.
func greensToFinish(prof difficulty.Profile) int {
	holdTime := time.Duration(prof.MinTicksToFinish()) * difficulty.TickInterval
	avgGreen := avg(prof.GreenMin, prof.GreenMax)
	if avgGreen <= 0 {
		return 0
	}
	greens := int(holdTime / avgGreen)
	if holdTime%avgGreen != 0 {
		greens++
	}
	return greens
}

func avg(a, b time.Duration) time.Duration {
	return (a + b) / 2
}
