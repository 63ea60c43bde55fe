package board

import (
	"fmt"
	"strings"
)

// CastlingRights holds the four independent castling flags.
type CastlingRights uint8

const (
	WhiteKingSide CastlingRights = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, ch := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}

// castlingKeep[sq] holds the rights that survive a move from or to sq.
var castlingKeep [64]CastlingRights

func init() {
	for sq := range castlingKeep {
		castlingKeep[sq] = AllCastling
	}
	castlingKeep[A1] &^= WhiteQueenSide
	castlingKeep[H1] &^= WhiteKingSide
	castlingKeep[E1] &^= WhiteKingSide | WhiteQueenSide
	castlingKeep[A8] &^= BlackQueenSide
	castlingKeep[H8] &^= BlackKingSide
	castlingKeep[E8] &^= BlackKingSide | BlackQueenSide
}

// MaxGameMoves bounds the history stack of a game.
const MaxGameMoves = 2048

// Undo is one history entry: the applied move plus the irreversible state
// that make cannot recompute backwards.
type Undo struct {
	Move          Move
	EnPassant     Square
	HalfMoveClock int
	Hash          uint64
	Attacked      Bitboard
	Checkers      Bitboard
}

// Position is the board: one bitboard per piece, a mailbox mirror, and the
// incrementally maintained hash and score.
type Position struct {
	Pieces      [2][6]Bitboard
	Occupied    [2]Bitboard
	AllOccupied Bitboard
	Board       [64]Piece

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int
	KingSquare     [2]Square

	Hash uint64

	// ScoreMG and ScoreEG are white-relative sums of material and square
	// values; Phase is the sum of PhaseWeight over the pieces on the board.
	ScoreMG int
	ScoreEG int
	Phase   int

	// Attacked holds every square attacked by the opponent of SideToMove and
	// Checkers the opponent pieces giving check. Both are current after any
	// parse, make or unmake.
	Attacked Bitboard
	Checkers Bitboard

	history []Undo
}

func newEmptyPosition() *Position {
	p := &Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
		KingSquare:     [2]Square{NoSquare, NoSquare},
		history:        make([]Undo, 0, MaxGameMoves),
	}
	for sq := range p.Board {
		p.Board[sq] = NoPiece
	}
	return p
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	p, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// Copy returns an independent deep copy, history included.
func (p *Position) Copy() *Position {
	c := *p
	c.history = make([]Undo, len(p.history), max(cap(p.history), MaxGameMoves))
	copy(c.history, p.history)
	return &c
}

// PieceAt returns the piece on sq or NoPiece.
func (p *Position) PieceAt(sq Square) Piece { return p.Board[sq] }

func (p *Position) putPiece(pc Piece, sq Square) {
	c, pt := pc.Color(), pc.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.Board[sq] = pc
	p.Hash ^= zobristPiece[pc][sq]
	p.ScoreMG += psqMG[pc][sq]
	p.ScoreEG += psqEG[pc][sq]
	p.Phase += PhaseWeight[pt]
	if pt == King {
		p.KingSquare[c] = sq
	}
}

func (p *Position) removePiece(sq Square) Piece {
	pc := p.Board[sq]
	c, pt := pc.Color(), pc.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.Board[sq] = NoPiece
	p.Hash ^= zobristPiece[pc][sq]
	p.ScoreMG -= psqMG[pc][sq]
	p.ScoreEG -= psqEG[pc][sq]
	p.Phase -= PhaseWeight[pt]
	return pc
}

func (p *Position) movePiece(from, to Square) {
	pc := p.Board[from]
	c, pt := pc.Color(), pc.Type()
	fromTo := SquareBB(from) | SquareBB(to)
	p.Pieces[c][pt] ^= fromTo
	p.Occupied[c] ^= fromTo
	p.AllOccupied ^= fromTo
	p.Board[from] = NoPiece
	p.Board[to] = pc
	p.Hash ^= zobristPiece[pc][from] ^ zobristPiece[pc][to]
	p.ScoreMG += psqMG[pc][to] - psqMG[pc][from]
	p.ScoreEG += psqEG[pc][to] - psqEG[pc][from]
	if pt == King {
		p.KingSquare[c] = to
	}
}

// refresh recomputes the derived attack state for the side to move.
func (p *Position) refresh() {
	us, them := p.SideToMove, p.SideToMove.Other()
	p.Attacked = p.attackMap(them)
	p.Checkers = p.AttackersTo(p.KingSquare[us], p.AllOccupied) & p.Occupied[them]
}

// InCheck reports whether the side to move is in check. It reads the cached
// Attacked set, which every mutation keeps current.
func (p *Position) InCheck() bool {
	return p.Attacked.Has(p.KingSquare[p.SideToMove])
}

// Ply returns the number of moves (null moves included) in the history.
func (p *Position) Ply() int { return len(p.history) }

// LastMove returns the most recently applied move, or NoMove.
func (p *Position) LastMove() Move {
	if len(p.history) == 0 {
		return NoMove
	}
	return p.history[len(p.history)-1].Move
}

// ClearHistory forgets the applied moves; the position itself is unchanged.
// Positions before the cut can no longer be undone or repeated.
func (p *Position) ClearHistory() { p.history = p.history[:0] }

// repetitions counts earlier occurrences of the current position, looking
// back no further than the last irreversible move or null move.
func (p *Position) repetitions(stopAt int) int {
	n := 0
	limit := min(p.HalfMoveClock, len(p.history))
	for i := 2; i <= limit; i += 2 {
		u := &p.history[len(p.history)-i]
		if u.Move == NoMove || p.history[len(p.history)-i+1].Move == NoMove {
			break
		}
		if u.Hash == p.Hash {
			n++
			if n >= stopAt {
				break
			}
		}
	}
	return n
}

// IsRepetition reports whether the current position already occurred in the
// reversible part of the game. Search treats a single repeat as a draw.
func (p *Position) IsRepetition() bool { return p.repetitions(1) >= 1 }

// IsThreefoldRepetition reports a position seen for the third time.
func (p *Position) IsThreefoldRepetition() bool { return p.repetitions(2) >= 2 }

// IsDraw reports a draw by repetition, the fifty-move rule or insufficient
// material at distance ply from the search root. The root itself is never
// scored as a draw, so a move is always chosen there.
func (p *Position) IsDraw(ply int) bool {
	if ply == 0 {
		return false
	}
	return p.IsFiftyMoveDraw() || p.IsInsufficientMaterial() || p.IsRepetition()
}

// IsFiftyMoveDraw reports that a hundred plies passed without a capture or
// pawn move.
func (p *Position) IsFiftyMoveDraw() bool { return p.HalfMoveClock >= 100 }

// IsInsufficientMaterial reports positions no sequence of legal moves can
// win: bare kings, a single minor piece, or bishops all on one color.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn]|
		p.Pieces[White][Rook]|p.Pieces[Black][Rook]|
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}
	knights := p.Pieces[White][Knight] | p.Pieces[Black][Knight]
	bishops := p.Pieces[White][Bishop] | p.Pieces[Black][Bishop]
	minors := (knights | bishops).PopCount()
	if minors <= 1 {
		return true
	}
	return knights == 0 && (bishops&lightSquares == 0 || bishops&^lightSquares == 0)
}

// lightSquares are the light-colored squares (b1, a2, ...).
const lightSquares Bitboard = 0x55AA55AA55AA55AA

// HasNonPawnMaterial reports whether c has a knight, bishop, rook or queen.
func (p *Position) HasNonPawnMaterial(c Color) bool {
	return p.Occupied[c]&^(p.Pieces[c][Pawn]|p.Pieces[c][King]) != 0
}

// Pinned returns the pieces of color c that shield c's king from an enemy
// slider. Each sniper is found by an x-ray: the king's slider attacks are
// recomputed with c's first blockers removed, and any enemy slider newly
// seen is pinning the piece between it and the king.
func (p *Position) Pinned(c Color) Bitboard {
	ksq := p.KingSquare[c]
	own := p.Occupied[c]
	them := &p.Pieces[c.Other()]
	occ := p.AllOccupied

	var pinned Bitboard
	direct := RookAttacks(ksq, occ)
	xray := direct ^ RookAttacks(ksq, occ^(direct&own))
	for snipers := xray & (them[Rook] | them[Queen]); snipers != 0; {
		pinned |= Between(snipers.PopLSB(), ksq) & own
	}
	direct = BishopAttacks(ksq, occ)
	xray = direct ^ BishopAttacks(ksq, occ^(direct&own))
	for snipers := xray & (them[Bishop] | them[Queen]); snipers != 0; {
		pinned |= Between(snipers.PopLSB(), ksq) & own
	}
	return pinned
}

// Validate checks the invariants that make and unmake maintain: bitboards
// agree with the mailbox, occupancy sets are consistent, and hash and score
// match a from-scratch computation.
func (p *Position) Validate() error {
	var all Bitboard
	for c := White; c <= Black; c++ {
		var occ Bitboard
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			if all&bb != 0 {
				return fmt.Errorf("piece sets overlap on %v", (all & bb).LSB())
			}
			all |= bb
			occ |= bb
			for b := bb; b != 0; {
				sq := b.PopLSB()
				if p.Board[sq] != NewPiece(pt, c) {
					return fmt.Errorf("mailbox holds %v on %v, bitboard says %v", p.Board[sq], sq, NewPiece(pt, c))
				}
			}
		}
		if occ != p.Occupied[c] {
			return fmt.Errorf("%v occupancy out of sync", c)
		}
		if p.Pieces[c][King].LSB() != p.KingSquare[c] {
			return fmt.Errorf("%v king square out of sync", c)
		}
	}
	if all != p.AllOccupied {
		return fmt.Errorf("occupancy out of sync")
	}
	for sq := A1; sq <= H8; sq++ {
		if p.Board[sq] != NoPiece && !all.Has(sq) {
			return fmt.Errorf("mailbox holds %v on empty square %v", p.Board[sq], sq)
		}
	}
	if h := p.ComputeHash(); h != p.Hash {
		return fmt.Errorf("hash %016x, recomputed %016x", p.Hash, h)
	}
	if mg, eg, phase := p.ComputeScore(); mg != p.ScoreMG || eg != p.ScoreEG || phase != p.Phase {
		return fmt.Errorf("score (%d,%d,%d), recomputed (%d,%d,%d)", p.ScoreMG, p.ScoreEG, p.Phase, mg, eg, phase)
	}
	return nil
}

// String draws the board with white at the bottom.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d ", rank+1)
		for file := 0; file < 8; file++ {
			sb.WriteString(" " + p.Board[NewSquare(file, rank)].String())
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a b c d e f g h\n")
	fmt.Fprintf(&sb, "fen: %s\nkey: %016x\n", p.FEN(), p.Hash)
	return sb.String()
}
