// Package difficulty holds the static, round-indexed timing profiles that drive
// the light cycle. Lookups are pure; rounds past the end of the table keep the
// last profile.
package difficulty

import "time"

const (
	// ProgressToWin is the race distance every player must cover.
	ProgressToWin = 100.0

	// TickInterval is the cadence of the progress accumulator.
	TickInterval = 100 * time.Millisecond
)

// Profile describes the timing and rate parameters for a single round.
type Profile struct {
	Label        string        `json:"label"`
	GracePeriod  time.Duration `json:"grace_period"`
	GreenMin     time.Duration `json:"green_min"`
	GreenMax     time.Duration `json:"green_max"`
	RedMin       time.Duration `json:"red_min"`
	RedMax       time.Duration `json:"red_max"`
	ProgressRate float64       `json:"progress_rate"` // distance per 100ms tick while green and holding
}

// table is indexed by round-1. Later rounds shrink the grace period and
// stretch the red phases.
var table = []Profile{
	{
		Label:        "Warm-up",
		GracePeriod:  1000 * time.Millisecond,
		GreenMin:     2 * time.Second,
		GreenMax:     5 * time.Second,
		RedMin:       3 * time.Second,
		RedMax:       6 * time.Second,
		ProgressRate: 2.0,
	},
	{
		Label:        "Heats",
		GracePeriod:  700 * time.Millisecond,
		GreenMin:     1500 * time.Millisecond,
		GreenMax:     4 * time.Second,
		RedMin:       3 * time.Second,
		RedMax:       7 * time.Second,
		ProgressRate: 2.0,
	},
	{
		Label:        "Finals",
		GracePeriod:  450 * time.Millisecond,
		GreenMin:     1 * time.Second,
		GreenMax:     3 * time.Second,
		RedMin:       4 * time.Second,
		RedMax:       8 * time.Second,
		ProgressRate: 2.0,
	},
}

// ForRound returns the profile for a 1-based round number, clamped at the last
// table entry. Round values below 1 map to the first entry.
func ForRound(round int) Profile {
	if round < 1 {
		round = 1
	}
	if round > len(table) {
		round = len(table)
	}
	return table[round-1]
}

// Rounds returns the number of distinct profiles in the table.
func Rounds() int {
	return len(table)
}

// MinTicksToFinish returns how many accumulator ticks a player holding through
// uninterrupted green needs to cover the full distance at p's rate.
func (p Profile) MinTicksToFinish() int {
	ticks := int(ProgressToWin / p.ProgressRate)
	if float64(ticks)*p.ProgressRate < ProgressToWin {
		ticks++
	}
	return ticks
}
