package engine

import (
	"github.com/hailam/luna/internal/board"
)

// negamax implements the negamax algorithm with alpha-beta pruning. Scores
// are fail-hard: the result always lies in [alpha, beta]. afterNull is set
// when the move leading here was a null move.
func (e *EngineContext) negamax(depth, ply int, alpha, beta int, afterNull bool) int {
	e.pv.clear(ply)
	if e.poll() {
		return 0
	}
	e.selDepth = max(e.selDepth, ply)

	pos := e.pos
	if pos.IsDraw(ply) {
		return 0
	}
	// Use MaxPly-1 because children write pv.length[ply+1]
	if ply >= MaxPly-1 {
		return e.evaluate()
	}

	inCheck := pos.InCheck()
	if inCheck && e.features.CheckExtension {
		depth++
	}

	if depth <= 0 {
		if e.features.Quiescence {
			return e.quiescence(ply, alpha, beta)
		}
		return e.evaluate()
	}

	pvNode := beta-alpha > 1
	key := pos.Hash

	ttScore, ttMove, ttHit := e.tt.Probe(key, depth, ply, alpha, beta)
	if ttHit && ply > 0 && !pvNode && e.features.TTCutoffs {
		return ttScore
	}

	if !inCheck && !pvNode && ply > 0 {
		staticEval := e.evaluate()

		// Reverse Futility Pruning
		if e.features.ReverseFutility && depth <= rfpMaxDepth && abs(beta) < MateBound &&
			staticEval-rfpMargin*depth >= beta {
			return beta
		}

		// Null Move Pruning
		if e.features.NullMove && !afterNull && depth >= nullMoveMinDepth && staticEval >= beta &&
			pos.HasNonPawnMaterial(pos.SideToMove) {
			r := 2 + depth/4
			pos.MakeNullMove()
			score := -e.negamax(depth-1-r, ply+1, -beta, -beta+1, true)
			pos.UnmakeNullMove()
			if e.aborted {
				return 0
			}
			if score >= beta {
				return beta
			}
		}
	}

	var moves board.MoveList
	pos.GenerateLegalMoves(&moves)

	// Checkmate or stalemate
	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	pvMove := board.NoMove
	if e.followPV {
		if ply < len(e.prevPV) && moves.Contains(e.prevPV[ply]) {
			pvMove = e.prevPV[ply]
		} else {
			e.followPV = false
		}
	}

	var scores moveScores
	e.orderer.ScoreMoves(pos, &moves, ply, pvMove, ttMove, &scores)

	bestMove := board.NoMove
	flag := TTUpperBound

	for i := 0; i < moves.Len(); i++ {
		move := PickMove(&moves, &scores, i)
		quiet := move.IsQuiet()

		pos.MakeMove(move)
		givesCheck := pos.InCheck()

		var score int
		if i == 0 {
			score = -e.negamax(depth-1, ply+1, -beta, -alpha, false)
		} else {
			// Late Move Reduction for quiet moves deep in the list
			reduction := 0
			if e.features.LateMoveReduction && i >= lmrFullDepthMoves && depth >= lmrMinDepth &&
				quiet && !inCheck && !givesCheck && !e.orderer.IsKiller(move, ply) {
				reduction = min(lmrReductions[min(depth, 63)][min(i, 63)], depth-2)
			}

			// Principal Variation Search: null window first, full window if it beats alpha
			score = -e.negamax(depth-1-reduction, ply+1, -alpha-1, -alpha, false)
			if score > alpha && reduction > 0 {
				score = -e.negamax(depth-1, ply+1, -alpha-1, -alpha, false)
			}
			if score > alpha && score < beta {
				score = -e.negamax(depth-1, ply+1, -beta, -alpha, false)
			}
		}

		pos.UnmakeMove()
		if i == 0 {
			e.followPV = false
		}
		if e.aborted {
			return 0
		}

		// Beta cutoff
		if score >= beta {
			e.tt.Store(key, depth, ply, beta, move, TTLowerBound, false)
			if quiet {
				e.orderer.UpdateKillers(move, ply)
				e.orderer.UpdateHistory(move, depth)
			}
			return beta
		}

		if score > alpha {
			alpha = score
			bestMove = move
			flag = TTExact
			if quiet {
				e.orderer.UpdateHistory(move, depth)
			}
			e.pv.update(ply, move)
		}
	}

	e.tt.Store(key, depth, ply, alpha, bestMove, flag, flag == TTExact)
	return alpha
}
