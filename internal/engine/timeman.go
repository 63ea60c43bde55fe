package engine

import (
	"time"

	"github.com/hailam/luna/internal/board"
)

// TimeManager turns search limits into a soft deadline, checked between
// iterations, and a hard deadline, polled inside the search.
type TimeManager struct {
	startTime time.Time
	soft      time.Time // zero when unlimited
	hard      time.Time // zero when unlimited
}

// Init initializes the time manager for a new search.
// ply is the current game ply (half-move number).
func (tm *TimeManager) Init(limits Limits, us board.Color, ply int, overhead time.Duration) {
	tm.startTime = time.Now()
	tm.soft, tm.hard = time.Time{}, time.Time{}

	switch {
	case limits.Infinite:
	case limits.MoveTime > 0:
		budget := max(limits.MoveTime-overhead, time.Millisecond)
		tm.soft = tm.startTime.Add(budget)
		tm.hard = tm.soft
	case limits.Time[us] > 0:
		optimum, maximum := allocate(limits.Time[us], limits.Inc[us], limits.MovesToGo, ply, overhead)
		tm.soft = tm.startTime.Add(optimum)
		tm.hard = tm.startTime.Add(maximum)
	}

	if !limits.Deadline.IsZero() && !limits.Infinite {
		if tm.hard.IsZero() || limits.Deadline.Before(tm.hard) {
			tm.hard = limits.Deadline
		}
		if tm.soft.IsZero() || limits.Deadline.Before(tm.soft) {
			tm.soft = limits.Deadline
		}
	}
}

// allocate splits the remaining clock into an optimum and a maximum time.
func allocate(timeLeft, inc time.Duration, movesToGo, ply int, overhead time.Duration) (optimum, maximum time.Duration) {
	timeLeft = max(timeLeft-overhead, time.Millisecond)

	mtg := movesToGo
	if mtg == 0 {
		// Sudden death: expect fewer moves as the game goes on.
		mtg = min(max(50-ply/4, 10), 50)
	}

	optimum = timeLeft/time.Duration(mtg) + inc*9/10
	if ply < 8 {
		optimum = optimum * 85 / 100
	}

	// 5x optimum or 80% of remaining, whichever is smaller
	maximum = min(optimum*5, timeLeft*8/10)
	optimum = min(optimum, maximum)

	optimum = max(optimum, 10*time.Millisecond)
	maximum = max(maximum, 50*time.Millisecond)
	return optimum, maximum
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Limited reports whether any deadline is set.
func (tm *TimeManager) Limited() bool {
	return !tm.hard.IsZero()
}

// PastSoft reports whether a new iteration should not be started.
func (tm *TimeManager) PastSoft() bool {
	return !tm.soft.IsZero() && !time.Now().Before(tm.soft)
}

// PastHard reports whether the running iteration must be abandoned.
func (tm *TimeManager) PastHard() bool {
	return !tm.hard.IsZero() && !time.Now().Before(tm.hard)
}
