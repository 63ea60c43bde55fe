package engine

import (
	"github.com/hailam/luna/internal/board"
)

// Piece values used by exchange evaluation and move ordering.
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 20000
)

// pieceValues is indexed by board.PieceType; the trailing zero covers NoPieceType.
var pieceValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue, 0}

// Evaluate returns the static evaluation of pos with the default parameters,
// from the side to move's point of view.
func Evaluate(pos *board.Position) int {
	p := DefaultEvalParams()
	return EvaluateWith(pos, &p)
}

// EvaluateWith returns the static evaluation of pos from the side to move's
// point of view: the tapered piece-square score plus the structural terms.
func EvaluateWith(pos *board.Position, p *EvalParams) int {
	score := pos.Tapered() + evaluateBishopPair(pos, p) + evaluatePawnFiles(pos, p) + evaluateHeavyFiles(pos, p)
	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}

// evaluateBishopPair returns the bishop pair bonus, white minus black.
func evaluateBishopPair(pos *board.Position, p *EvalParams) int {
	score := 0
	if pos.Pieces[board.White][board.Bishop].Several() {
		score += p.BishopPair
	}
	if pos.Pieces[board.Black][board.Bishop].Several() {
		score -= p.BishopPair
	}
	return score
}

// evaluatePawnFiles penalizes every file holding more than one pawn of a color.
func evaluatePawnFiles(pos *board.Position, p *EvalParams) int {
	score := 0
	for _, fileMask := range board.FileMask {
		if (pos.Pieces[board.White][board.Pawn] & fileMask).Several() {
			score -= p.DoubledPawn
		}
		if (pos.Pieces[board.Black][board.Pawn] & fileMask).Several() {
			score += p.DoubledPawn
		}
	}
	return score
}

// evaluateHeavyFiles rewards rooks and queens on files without pawns, or
// without pawns of their own color.
func evaluateHeavyFiles(pos *board.Position, p *EvalParams) int {
	allPawns := pos.Pieces[board.White][board.Pawn] | pos.Pieces[board.Black][board.Pawn]
	score := 0
	for color := board.White; color <= board.Black; color++ {
		sign := 1
		if color == board.Black {
			sign = -1
		}
		ownPawns := pos.Pieces[color][board.Pawn]
		heavy := pos.Pieces[color][board.Rook] | pos.Pieces[color][board.Queen]
		for heavy != 0 {
			fileMask := board.SquareFile(heavy.PopLSB())
			switch {
			case allPawns&fileMask == 0:
				score += sign * p.OpenFile
			case ownPawns&fileMask == 0:
				score += sign * p.SemiOpenFile
			}
		}
	}
	return score
}
