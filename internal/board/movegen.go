package board

import "strings"

type genMode uint8

const (
	genAll genMode = iota
	genCaptures
)

// GeneratePseudoLegalMoves fills ml with every pseudo-legal move. Moves may
// leave the mover's king in check; MakeMove reports those.
func (p *Position) GeneratePseudoLegalMoves(ml *MoveList) {
	ml.Clear()
	p.generate(ml, genAll)
}

// GenerateCaptures fills ml with pseudo-legal captures, en passant captures
// and promotions, for quiescence search.
func (p *Position) GenerateCaptures(ml *MoveList) {
	ml.Clear()
	p.generate(ml, genCaptures)
}

// GenerateLegalMoves fills ml with the legal moves of the position.
func (p *Position) GenerateLegalMoves(ml *MoveList) {
	p.GeneratePseudoLegalMoves(ml)
	p.filterLegal(ml)
}

func (p *Position) generate(ml *MoveList, mode genMode) {
	us, them := p.SideToMove, p.SideToMove.Other()
	targets := p.Occupied[them]
	if mode == genAll {
		targets = ^p.Occupied[us]
	}
	occ := p.AllOccupied

	p.generatePawnMoves(ml, mode)

	pcs := &p.Pieces[us]
	for bb := pcs[Knight]; bb != 0; {
		from := bb.PopLSB()
		p.addPieceMoves(ml, from, KnightAttacks(from)&targets)
	}
	for bb := pcs[Bishop]; bb != 0; {
		from := bb.PopLSB()
		p.addPieceMoves(ml, from, BishopAttacks(from, occ)&targets)
	}
	for bb := pcs[Rook]; bb != 0; {
		from := bb.PopLSB()
		p.addPieceMoves(ml, from, RookAttacks(from, occ)&targets)
	}
	for bb := pcs[Queen]; bb != 0; {
		from := bb.PopLSB()
		p.addPieceMoves(ml, from, QueenAttacks(from, occ)&targets)
	}

	ksq := p.KingSquare[us]
	p.addPieceMoves(ml, ksq, KingAttacks(ksq)&targets)
	if mode == genAll {
		p.generateCastling(ml)
	}
}

// addPieceMoves emits a quiet move or capture from from to every square in to.
func (p *Position) addPieceMoves(ml *MoveList, from Square, to Bitboard) {
	moved := p.Board[from]
	for to != 0 {
		sq := to.PopLSB()
		captured := p.Board[sq]
		cat := Quiet
		if captured != NoPiece {
			cat = Capture
		}
		ml.Add(p.newMove(from, sq, moved, captured, NoPieceType, cat))
	}
}

// newMove stamps the current castling rights into the move.
func (p *Position) newMove(from, to Square, moved, captured Piece, promo PieceType, cat Category) Move {
	return NewMove(from, to, moved, captured, promo, cat).withCastling(p.CastlingRights)
}

func (p *Position) addPromotions(ml *MoveList, from, to Square) {
	moved := p.Board[from]
	captured := p.Board[to]
	cat := Promotion
	if captured != NoPiece {
		cat = PromotionCapture
	}
	for _, pt := range [...]PieceType{Queen, Knight, Rook, Bishop} {
		ml.Add(p.newMove(from, to, moved, captured, pt, cat))
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, mode genMode) {
	us, them := p.SideToMove, p.SideToMove.Other()
	pawns := p.Pieces[us][Pawn]
	empty := ^p.AllOccupied
	enemies := p.Occupied[them]
	moved := NewPiece(Pawn, us)

	// forward is the signed step of a single push; captures are taken to
	// the west (forward-1) and east (forward+1) of it.
	forward, lastRank, doubleRank := 8, Rank8, Rank4
	pushes := pawns.North() & empty
	west := pawns.NorthWest() & enemies
	east := pawns.NorthEast() & enemies
	if us == Black {
		forward, lastRank, doubleRank = -8, Rank1, Rank5
		pushes = pawns.South() & empty
		west = pawns.SouthWest() & enemies
		east = pawns.SouthEast() & enemies
	}
	doubles := pushes.Forward(us) & empty & doubleRank

	for bb := pushes & lastRank; bb != 0; {
		to := bb.PopLSB()
		p.addPromotions(ml, Square(int(to)-forward), to)
	}
	for bb := west & lastRank; bb != 0; {
		to := bb.PopLSB()
		p.addPromotions(ml, Square(int(to)-forward+1), to)
	}
	for bb := east & lastRank; bb != 0; {
		to := bb.PopLSB()
		p.addPromotions(ml, Square(int(to)-forward-1), to)
	}

	for bb := west &^ lastRank; bb != 0; {
		to := bb.PopLSB()
		ml.Add(p.newMove(Square(int(to)-forward+1), to, moved, p.Board[to], NoPieceType, Capture))
	}
	for bb := east &^ lastRank; bb != 0; {
		to := bb.PopLSB()
		ml.Add(p.newMove(Square(int(to)-forward-1), to, moved, p.Board[to], NoPieceType, Capture))
	}

	if p.EnPassant != NoSquare {
		victim := NewPiece(Pawn, them)
		for bb := PawnAttacks(p.EnPassant, them) & pawns; bb != 0; {
			ml.Add(p.newMove(bb.PopLSB(), p.EnPassant, moved, victim, NoPieceType, EnPassant))
		}
	}

	if mode == genCaptures {
		return
	}
	for bb := pushes &^ lastRank; bb != 0; {
		to := bb.PopLSB()
		ml.Add(p.newMove(Square(int(to)-forward), to, moved, NoPiece, NoPieceType, Quiet))
	}
	for bb := doubles; bb != 0; {
		to := bb.PopLSB()
		ml.Add(p.newMove(Square(int(to)-2*forward), to, moved, NoPiece, NoPieceType, DoublePush))
	}
}

// castling describes one castling move: the rights flag, the king and rook
// squares, the squares that must be empty and the squares the king crosses,
// which must not be attacked.
type castling struct {
	right            CastlingRights
	kingFrom, kingTo Square
	rookFrom, rookTo Square
	empty, safe      Bitboard
	cat              Category
}

// On the queen side the b-file square must be empty but may be attacked.
var castlings = [2][2]castling{
	White: {
		{WhiteKingSide, E1, G1, H1, F1, SquareBB(F1) | SquareBB(G1), SquareBB(E1) | SquareBB(F1) | SquareBB(G1), CastleKing},
		{WhiteQueenSide, E1, C1, A1, D1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), SquareBB(E1) | SquareBB(D1) | SquareBB(C1), CastleQueen},
	},
	Black: {
		{BlackKingSide, E8, G8, H8, F8, SquareBB(F8) | SquareBB(G8), SquareBB(E8) | SquareBB(F8) | SquareBB(G8), CastleKing},
		{BlackQueenSide, E8, C8, A8, D8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), SquareBB(E8) | SquareBB(D8) | SquareBB(C8), CastleQueen},
	},
}

func (p *Position) generateCastling(ml *MoveList) {
	us := p.SideToMove
	for i := range castlings[us] {
		c := &castlings[us][i]
		if p.CastlingRights&c.right == 0 || p.AllOccupied&c.empty != 0 || p.Attacked&c.safe != 0 {
			continue
		}
		ml.Add(p.newMove(c.kingFrom, c.kingTo, NewPiece(King, us), NoPiece, NoPieceType, c.cat))
	}
}

// castleRook returns the rook squares of a castling move.
func castleRook(us Color, cat Category) (from, to Square) {
	c := &castlings[us][0]
	if cat == CastleQueen {
		c = &castlings[us][1]
	}
	return c.rookFrom, c.rookTo
}

// filterLegal drops moves that leave the king in check. Only moves that can
// expose the king are tried on the board: any move while in check, king
// moves, moves of pinned pieces and en passant, which can uncover a rank
// pin by removing two pawns at once.
func (p *Position) filterLegal(ml *MoveList) {
	us := p.SideToMove
	ksq := p.KingSquare[us]
	pinned := p.Pinned(us)
	inCheck := p.Checkers != 0

	n := 0
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if inCheck || m.From() == ksq || pinned.Has(m.From()) || m.Category() == EnPassant {
			if !p.isLegal(m) {
				continue
			}
		}
		ml.Set(n, m)
		n++
	}
	ml.truncate(n)
}

func (p *Position) isLegal(m Move) bool {
	legal := p.MakeMove(m)
	p.UnmakeMove()
	return legal
}

// HasLegalMove reports whether the side to move can move at all.
func (p *Position) HasLegalMove() bool {
	var ml MoveList
	p.GenerateLegalMoves(&ml)
	return ml.Len() > 0
}

// IsCheckmate reports a side to move in check with no legal move.
func (p *Position) IsCheckmate() bool { return p.InCheck() && !p.HasLegalMove() }

// IsStalemate reports a side to move not in check with no legal move.
func (p *Position) IsStalemate() bool { return !p.InCheck() && !p.HasLegalMove() }

// ParseMove resolves coordinate text such as "e2e4" or "a7a8q" against the
// legal moves of the position.
func (p *Position) ParseMove(text string) (Move, error) {
	want := strings.ToLower(strings.TrimSpace(text))
	var ml MoveList
	p.GenerateLegalMoves(&ml)
	for _, m := range ml.Slice() {
		if m.String() == want {
			return m, nil
		}
	}
	return NoMove, &IllegalMoveError{Move: text, FEN: p.FEN()}
}
