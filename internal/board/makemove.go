package board

// epVictim returns the square of the pawn taken by an en passant capture
// landing on to.
func epVictim(to Square, us Color) Square {
	if us == White {
		return to - 8
	}
	return to + 8
}

// MakeMove applies m, which must come from this position's generator, and
// reports whether it was legal: false means the mover's own king is left in
// check. The move is applied either way and must be undone with UnmakeMove.
func (p *Position) MakeMove(m Move) bool {
	us, them := p.SideToMove, p.SideToMove.Other()
	from, to := m.From(), m.To()
	m = m.withCastling(p.CastlingRights)

	p.history = append(p.history, Undo{
		Move:          m,
		EnPassant:     p.EnPassant,
		HalfMoveClock: p.HalfMoveClock,
		Hash:          p.Hash,
		Attacked:      p.Attacked,
		Checkers:      p.Checkers,
	})

	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
		p.EnPassant = NoSquare
	}

	switch m.Category() {
	case Quiet:
		p.movePiece(from, to)
	case DoublePush:
		p.movePiece(from, to)
		p.EnPassant = Square((int(from) + int(to)) / 2)
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	case Capture:
		p.removePiece(to)
		p.movePiece(from, to)
	case EnPassant:
		p.removePiece(epVictim(to, us))
		p.movePiece(from, to)
	case CastleKing, CastleQueen:
		rookFrom, rookTo := castleRook(us, m.Category())
		p.movePiece(from, to)
		p.movePiece(rookFrom, rookTo)
	case Promotion:
		p.removePiece(from)
		p.putPiece(NewPiece(m.Promotion(), us), to)
	case PromotionCapture:
		p.removePiece(to)
		p.removePiece(from)
		p.putPiece(NewPiece(m.Promotion(), us), to)
	}

	if m.Moved().Type() == Pawn || m.IsCapture() {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	if cr := p.CastlingRights & castlingKeep[from] & castlingKeep[to]; cr != p.CastlingRights {
		p.Hash ^= zobristCastling[p.CastlingRights] ^ zobristCastling[cr]
		p.CastlingRights = cr
	}

	if us == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = them
	p.Hash ^= zobristSide
	p.refresh()

	return !p.IsAttacked(p.KingSquare[us], them)
}

// UnmakeMove reverts the last MakeMove, restoring the position exactly.
func (p *Position) UnmakeMove() {
	u := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]

	m := u.Move
	from, to := m.From(), m.To()
	p.SideToMove = p.SideToMove.Other()
	us := p.SideToMove
	if us == Black {
		p.FullMoveNumber--
	}

	switch m.Category() {
	case Quiet, DoublePush:
		p.movePiece(to, from)
	case Capture:
		p.movePiece(to, from)
		p.putPiece(m.Captured(), to)
	case EnPassant:
		p.movePiece(to, from)
		p.putPiece(m.Captured(), epVictim(to, us))
	case CastleKing, CastleQueen:
		rookFrom, rookTo := castleRook(us, m.Category())
		p.movePiece(rookTo, rookFrom)
		p.movePiece(to, from)
	case Promotion:
		p.removePiece(to)
		p.putPiece(m.Moved(), from)
	case PromotionCapture:
		p.removePiece(to)
		p.putPiece(m.Moved(), from)
		p.putPiece(m.Captured(), to)
	}

	p.CastlingRights = m.PrevCastling()
	p.EnPassant = u.EnPassant
	p.HalfMoveClock = u.HalfMoveClock
	p.Hash = u.Hash
	p.Attacked = u.Attacked
	p.Checkers = u.Checkers
}

// MakeNullMove passes the turn. Only the side, the en passant square and the
// hash change; the history records a NoMove entry so repetition scans stop
// there.
func (p *Position) MakeNullMove() {
	p.history = append(p.history, Undo{
		Move:          NoMove,
		EnPassant:     p.EnPassant,
		HalfMoveClock: p.HalfMoveClock,
		Hash:          p.Hash,
		Attacked:      p.Attacked,
		Checkers:      p.Checkers,
	})
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
		p.EnPassant = NoSquare
	}
	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zobristSide
	p.refresh()
}

// UnmakeNullMove reverts MakeNullMove.
func (p *Position) UnmakeNullMove() {
	u := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	p.SideToMove = p.SideToMove.Other()
	p.EnPassant = u.EnPassant
	p.Hash = u.Hash
	p.Attacked = u.Attacked
	p.Checkers = u.Checkers
}
