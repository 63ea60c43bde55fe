package engine

import (
	"testing"
	"time"

	"github.com/hailam/luna/internal/board"
)

func TestTimeManagerDeadlines(t *testing.T) {
	tests := []struct {
		name      string
		limits    Limits
		limited   bool
		minSoft   time.Duration
		maxHard   time.Duration
		softEqual bool
	}{
		{"infinite", Limits{Infinite: true, MoveTime: time.Second}, false, 0, 0, false},
		{"depth only", Limits{Depth: 5}, false, 0, 0, false},
		{"move time", Limits{MoveTime: time.Second}, true, 900 * time.Millisecond, time.Second, true},
		{"clock", Limits{Time: [2]time.Duration{60 * time.Second, time.Second}}, true, 500 * time.Millisecond, 48 * time.Second, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var tm TimeManager
			tm.Init(tc.limits, board.White, 20, 30*time.Millisecond)
			if tm.Limited() != tc.limited {
				t.Fatalf("Limited() = %v, want %v", tm.Limited(), tc.limited)
			}
			if !tc.limited {
				return
			}
			soft, hard := tm.soft.Sub(tm.startTime), tm.hard.Sub(tm.startTime)
			if soft < tc.minSoft || hard > tc.maxHard || soft > hard {
				t.Errorf("soft %v hard %v", soft, hard)
			}
			if tc.softEqual && soft != hard {
				t.Errorf("soft %v != hard %v", soft, hard)
			}
		})
	}
}

func TestTimeManagerDeadlineCaps(t *testing.T) {
	var tm TimeManager
	deadline := time.Now().Add(20 * time.Millisecond)
	tm.Init(Limits{MoveTime: time.Minute, Deadline: deadline}, board.Black, 0, 0)
	if !tm.hard.Equal(deadline) || !tm.soft.Equal(deadline) {
		t.Errorf("deadline not applied: soft %v hard %v", tm.soft, tm.hard)
	}
	time.Sleep(25 * time.Millisecond)
	if !tm.PastHard() || !tm.PastSoft() {
		t.Error("deadline passed but not reported")
	}
}

func TestAllocateUsesIncrement(t *testing.T) {
	a, _ := allocate(10*time.Second, 0, 0, 40, 0)
	b, _ := allocate(10*time.Second, 2*time.Second, 0, 40, 0)
	if b <= a {
		t.Errorf("increment did not add time: %v vs %v", a, b)
	}
	c, _ := allocate(10*time.Second, 0, 2, 40, 0)
	if c <= a {
		t.Errorf("two moves to go should allow more time: %v vs %v", c, a)
	}
}
