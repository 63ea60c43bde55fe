package engine

import (
	"github.com/hailam/luna/internal/board"
)

// quiescence searches captures and promotions until the position is quiet,
// so the horizon never falls in the middle of an exchange. Standing pat is
// always an option except in check, where the node becomes a one-ply negamax
// node so that mates are not overlooked.
func (e *EngineContext) quiescence(ply int, alpha, beta int) int {
	e.pv.clear(ply)
	if e.poll() {
		return 0
	}
	e.selDepth = max(e.selDepth, ply)

	pos := e.pos
	if ply >= MaxPly-1 {
		return e.evaluate()
	}
	if pos.InCheck() {
		// One ply of evasions; the check extension supplies it when enabled.
		depth := 0
		if !e.features.CheckExtension {
			depth = 1
		}
		return e.negamax(depth, ply, alpha, beta, false)
	}

	// Stand pat
	standPat := e.evaluate()
	if standPat >= beta {
		return beta
	}

	// Delta pruning: even winning a queen would not reach alpha
	if standPat+QueenValue+deltaMargin < alpha {
		return alpha
	}
	if standPat > alpha {
		alpha = standPat
	}

	var moves board.MoveList
	pos.GenerateCaptures(&moves)
	var scores moveScores
	e.orderer.ScoreCaptures(&moves, &scores)

	for i := 0; i < moves.Len(); i++ {
		move := PickMove(&moves, &scores, i)

		// Delta pruning for individual moves
		if !move.IsPromotion() {
			gain := 0
			if victim := move.Captured(); victim != board.NoPiece {
				gain = pieceValues[victim.Type()]
			}
			if standPat+gain+deltaMargin <= alpha {
				continue
			}
		}

		// SEE pruning of losing captures
		if !SEEGE(pos, move, 0) {
			continue
		}

		if !pos.MakeMove(move) {
			pos.UnmakeMove()
			continue
		}
		score := -e.quiescence(ply+1, -beta, -alpha)
		pos.UnmakeMove()
		if e.aborted {
			return 0
		}

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}
