package engine

import (
	"github.com/hailam/luna/internal/board"
)

// Move ordering priorities
const (
	PVMoveScore     = 20000000 // Previous iteration's PV move
	TTMoveScore     = 10000000 // TT move
	GoodCaptureBase = 1000000  // Captures and promotions that do not lose material
	KillerScore1    = 900000   // First killer move
	KillerScore2    = 800000   // Second killer move
	BadCaptureBase  = -100000  // Losing captures

	historyMax = 400000
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = search first
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// moveScores holds one ordering score per entry of a board.MoveList.
type moveScores [board.MaxMoves]int

// MoveOrderer holds the killer and history tables of one search.
type MoveOrderer struct {
	// Killer moves (quiet moves that caused beta cutoffs), two per ply
	killers [MaxPly][2]board.Move

	// History heuristic indexed by [moved piece][destination]
	history [12][64]int
}

// Clear resets the tables for a new search.
func (mo *MoveOrderer) Clear() {
	mo.killers = [MaxPly][2]board.Move{}
	mo.history = [12][64]int{}
}

// mvvLvaScore ranks a capture or promotion by victim and attacker.
func mvvLvaScore(m board.Move) int {
	score := 0
	if victim := m.Captured(); victim != board.NoPiece {
		score = mvvLva[victim.Type()][m.Moved().Type()] * 1000
	}
	if m.IsPromotion() {
		score += int(m.Promotion()) * 100
	}
	return score
}

// ScoreMoves assigns ordering scores: PV move, TT move, non-losing captures
// and promotions, killers, quiet history, then losing captures.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, ml *board.MoveList, ply int, pvMove, ttMove board.Move, scores *moveScores) {
	pvMove, ttMove = pvMove.Base(), ttMove.Base()
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		base := m.Base()
		switch {
		case pvMove != board.NoMove && base == pvMove:
			scores[i] = PVMoveScore
		case ttMove != board.NoMove && base == ttMove:
			scores[i] = TTMoveScore
		case !m.IsQuiet():
			if m.IsCapture() && SEE(pos, m) < 0 {
				scores[i] = BadCaptureBase + mvvLvaScore(m)
			} else {
				scores[i] = GoodCaptureBase + mvvLvaScore(m)
			}
		case base == mo.killers[ply][0]:
			scores[i] = KillerScore1
		case base == mo.killers[ply][1]:
			scores[i] = KillerScore2
		default:
			scores[i] = mo.history[m.Moved()][m.To()]
		}
	}
}

// ScoreCaptures orders quiescence moves by MVV-LVA alone.
func (mo *MoveOrderer) ScoreCaptures(ml *board.MoveList, scores *moveScores) {
	for i := 0; i < ml.Len(); i++ {
		scores[i] = mvvLvaScore(ml.Get(i))
	}
}

// PickMove selects the best remaining move and moves it to index, so sorting
// stops as soon as a cutoff happens.
func PickMove(ml *board.MoveList, scores *moveScores, index int) board.Move {
	best := index
	for j := index + 1; j < ml.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		ml.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
	return ml.Get(index)
}

// IsKiller reports whether m is one of the killers at ply.
func (mo *MoveOrderer) IsKiller(m board.Move, ply int) bool {
	base := m.Base()
	return base == mo.killers[ply][0] || base == mo.killers[ply][1]
}

// UpdateKillers adds a quiet cutoff move at the given ply.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly {
		return
	}
	base := m.Base()
	if mo.killers[ply][0] == base {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = base
}

// UpdateHistory rewards a quiet move that raised alpha or cut off.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int) {
	h := &mo.history[m.Moved()][m.To()]
	*h += depth * depth
	if *h > historyMax {
		// Halve everything so relative order survives.
		for pc := range mo.history {
			for sq := range mo.history[pc] {
				mo.history[pc][sq] /= 2
			}
		}
	}
}

// HistoryScore returns the history value of a quiet move.
func (mo *MoveOrderer) HistoryScore(m board.Move) int {
	return mo.history[m.Moved()][m.To()]
}
