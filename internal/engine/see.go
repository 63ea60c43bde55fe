package engine

import (
	"github.com/hailam/luna/internal/board"
)

// SEE (Static Exchange Evaluation) estimates the material outcome of m when
// both sides keep recapturing on the destination with their least valuable
// attacker. Sliders behind a capturing piece join in as the occupancy shrinks.
// The result is from the moving side's point of view.
func SEE(pos *board.Position, m board.Move) int {
	from, to := m.From(), m.To()

	var gain [32]int
	if victim := m.Captured(); victim != board.NoPiece {
		gain[0] = pieceValues[victim.Type()]
	}
	attacker := m.Moved().Type()
	if m.IsPromotion() {
		gain[0] += pieceValues[m.Promotion()] - PawnValue
		attacker = m.Promotion()
	}

	occupied := pos.AllOccupied
	if m.Category() == board.EnPassant {
		occupied &^= board.SquareBB(board.NewSquare(to.File(), from.Rank()))
	}
	fromBB := board.SquareBB(from)
	side := m.Moved().Color()

	d := 0
	for d < len(gain)-1 {
		d++
		// Speculative: what the side that just captured keeps if its piece is taken.
		gain[d] = pieceValues[attacker] - gain[d-1]

		occupied &^= fromBB
		side = side.Other()
		attackers := pos.AttackersTo(to, occupied) & occupied & pos.Occupied[side]
		if attackers == 0 {
			break
		}
		var sq board.Square
		sq, attacker = leastValuableAttacker(pos, attackers, side)
		fromBB = board.SquareBB(sq)
	}

	for d--; d > 0; d-- {
		gain[d-1] = -max(-gain[d-1], gain[d])
	}
	return gain[0]
}

// SEEGE reports whether the exchange started by m gains at least threshold.
func SEEGE(pos *board.Position, m board.Move, threshold int) bool {
	return SEE(pos, m) >= threshold
}

// leastValuableAttacker picks the cheapest of side's pieces in attackers.
func leastValuableAttacker(pos *board.Position, attackers board.Bitboard, side board.Color) (board.Square, board.PieceType) {
	for pt := board.Pawn; pt <= board.King; pt++ {
		if bb := attackers & pos.Pieces[side][pt]; bb != 0 {
			return bb.LSB(), pt
		}
	}
	return board.NoSquare, board.NoPieceType
}
