package board

var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard

	betweenBB [64][64]Bitboard
	lineBB    [64][64]Bitboard

	squareFile [64]Bitboard

	// adjacentFiles[f] holds the files either side of f, for isolated pawns.
	adjacentFiles [8]Bitboard
	// passedMask[c][sq] covers the squares in front of a pawn on sq, on its
	// own and adjacent files, that an enemy pawn would have to occupy to stop it.
	passedMask [2][64]Bitboard
)

type direction struct{ df, dr int }

var (
	rookDirections   = [4]direction{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirections = [4]direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func init() {
	initLeaperAttacks()
	initLines()
	initPawnMasks()
	initMagics()
}

// leap is one knight or king jump: a shift plus the mask that removes
// squares which wrapped around the board edge.
type leap struct {
	shift int
	mask  Bitboard
}

var (
	knightLeaps = [8]leap{
		{17, NotFileA}, {15, NotFileH}, {-15, NotFileA}, {-17, NotFileH},
		{10, NotFileA &^ FileB}, {6, NotFileH &^ FileG},
		{-6, NotFileA &^ FileB}, {-10, NotFileH &^ FileG},
	}
	kingLeaps = [8]leap{
		{8, ^Bitboard(0)}, {-8, ^Bitboard(0)}, {1, NotFileA}, {-1, NotFileH},
		{9, NotFileA}, {7, NotFileH}, {-7, NotFileA}, {-9, NotFileH},
	}
)

func (l leap) apply(b Bitboard) Bitboard {
	if l.shift > 0 {
		return (b << l.shift) & l.mask
	}
	return (b >> -l.shift) & l.mask
}

func initLeaperAttacks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)
		for _, l := range knightLeaps {
			knightAttacks[sq] |= l.apply(bb)
		}
		for _, l := range kingLeaps {
			kingAttacks[sq] |= l.apply(bb)
		}
		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
}

func initLines() {
	for from := A1; from <= H8; from++ {
		for _, dirs := range [][4]direction{rookDirections, bishopDirections} {
			for _, d := range dirs {
				var ray Bitboard
				f, r := from.File()+d.df, from.Rank()+d.dr
				for onBoard(f, r) {
					to := NewSquare(f, r)
					betweenBB[from][to] = ray
					ray |= SquareBB(to)
					f, r = f+d.df, r+d.dr
				}
				// Every square on the ray shares the full line through from.
				full := ray | SquareBB(from) | castRay(from, direction{-d.df, -d.dr}, 0)
				for ray != 0 {
					lineBB[from][ray.PopLSB()] = full
				}
			}
		}
	}
}

func initPawnMasks() {
	for f := 0; f < 8; f++ {
		if f > 0 {
			adjacentFiles[f] |= FileMask[f-1]
		}
		if f < 7 {
			adjacentFiles[f] |= FileMask[f+1]
		}
	}
	for sq := A1; sq <= H8; sq++ {
		squareFile[sq] = FileMask[sq.File()]
		span := squareFile[sq] | adjacentFiles[sq.File()]
		var ahead [2]Bitboard
		for r := sq.Rank() + 1; r < 8; r++ {
			ahead[White] |= RankMask[r]
		}
		for r := sq.Rank() - 1; r >= 0; r-- {
			ahead[Black] |= RankMask[r]
		}
		passedMask[White][sq] = span & ahead[White]
		passedMask[Black][sq] = span & ahead[Black]
	}
}

func onBoard(f, r int) bool { return f >= 0 && f < 8 && r >= 0 && r < 8 }

// castRay walks from sq in direction d, stopping after the first occupied square.
func castRay(sq Square, d direction, occupied Bitboard) Bitboard {
	var attacks Bitboard
	f, r := sq.File()+d.df, sq.Rank()+d.dr
	for onBoard(f, r) {
		to := SquareBB(NewSquare(f, r))
		attacks |= to
		if occupied&to != 0 {
			break
		}
		f, r = f+d.df, r+d.dr
	}
	return attacks
}

func slidingAttacks(sq Square, occupied Bitboard, dirs [4]direction) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		attacks |= castRay(sq, d, occupied)
	}
	return attacks
}

// KnightAttacks returns the squares a knight on sq attacks.
func KnightAttacks(sq Square) Bitboard { return knightAttacks[sq] }

// KingAttacks returns the squares a king on sq attacks.
func KingAttacks(sq Square) Bitboard { return kingAttacks[sq] }

// PawnAttacks returns the squares a c-colored pawn on sq attacks.
func PawnAttacks(sq Square, c Color) Bitboard { return pawnAttacks[c][sq] }

// QueenAttacks is the union of rook and bishop attacks.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return RookAttacks(sq, occupied) | BishopAttacks(sq, occupied)
}

// Between returns the squares strictly between a and b when they share a
// rank, file or diagonal, and the empty set otherwise.
func Between(a, b Square) Bitboard { return betweenBB[a][b] }

// Line returns the whole line through a and b, or the empty set when they
// are not aligned.
func Line(a, b Square) Bitboard { return lineBB[a][b] }

// Aligned reports whether c lies on the line through a and b.
func Aligned(a, b, c Square) bool { return lineBB[a][b].Has(c) }

// SquareFile returns the file sq stands on.
func SquareFile(sq Square) Bitboard { return squareFile[sq] }

// AdjacentFiles returns the files neighbouring file f.
func AdjacentFiles(f int) Bitboard { return adjacentFiles[f] }

// PassedMask returns the squares that must be free of enemy pawns for a
// c-colored pawn on sq to be passed.
func PassedMask(c Color, sq Square) Bitboard { return passedMask[c][sq] }

// AttackersTo returns every piece of either color attacking sq under the
// given occupancy.
func (p *Position) AttackersTo(sq Square, occupied Bitboard) Bitboard {
	rooks := p.Pieces[White][Rook] | p.Pieces[Black][Rook] | p.Pieces[White][Queen] | p.Pieces[Black][Queen]
	bishops := p.Pieces[White][Bishop] | p.Pieces[Black][Bishop] | p.Pieces[White][Queen] | p.Pieces[Black][Queen]
	return pawnAttacks[Black][sq]&p.Pieces[White][Pawn] |
		pawnAttacks[White][sq]&p.Pieces[Black][Pawn] |
		knightAttacks[sq]&(p.Pieces[White][Knight]|p.Pieces[Black][Knight]) |
		kingAttacks[sq]&(p.Pieces[White][King]|p.Pieces[Black][King]) |
		RookAttacks(sq, occupied)&rooks |
		BishopAttacks(sq, occupied)&bishops
}

// IsAttacked reports whether any piece of color by attacks sq.
func (p *Position) IsAttacked(sq Square, by Color) bool {
	pcs := &p.Pieces[by]
	if pawnAttacks[by.Other()][sq]&pcs[Pawn] != 0 ||
		knightAttacks[sq]&pcs[Knight] != 0 ||
		kingAttacks[sq]&pcs[King] != 0 {
		return true
	}
	occ := p.AllOccupied
	return RookAttacks(sq, occ)&(pcs[Rook]|pcs[Queen]) != 0 ||
		BishopAttacks(sq, occ)&(pcs[Bishop]|pcs[Queen]) != 0
}

// attackMap returns every square attacked by color by. Sliders see through
// the king of the other side so that a king cannot step back along a check ray.
func (p *Position) attackMap(by Color) Bitboard {
	pcs := &p.Pieces[by]
	occ := p.AllOccupied &^ p.Pieces[by.Other()][King]

	var attacks Bitboard
	if by == White {
		attacks = pcs[Pawn].NorthEast() | pcs[Pawn].NorthWest()
	} else {
		attacks = pcs[Pawn].SouthEast() | pcs[Pawn].SouthWest()
	}
	for bb := pcs[Knight]; bb != 0; {
		attacks |= knightAttacks[bb.PopLSB()]
	}
	for bb := pcs[Bishop] | pcs[Queen]; bb != 0; {
		attacks |= BishopAttacks(bb.PopLSB(), occ)
	}
	for bb := pcs[Rook] | pcs[Queen]; bb != 0; {
		attacks |= RookAttacks(bb.PopLSB(), occ)
	}
	return attacks | kingAttacks[p.KingSquare[by]]
}
