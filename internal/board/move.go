package board

// Category tags how a move changes the board; make and unmake dispatch on it.
type Category uint8

const (
	Quiet Category = iota
	DoublePush
	Capture
	EnPassant
	CastleKing
	CastleQueen
	Promotion
	PromotionCapture
)

var categoryNames = [...]string{"quiet", "double-push", "capture", "en-passant", "O-O", "O-O-O", "promotion", "promotion-capture"}

func (c Category) String() string { return categoryNames[c&7] }

// Move is a packed move record:
//
//	bits  0-5   from square
//	bits  6-11  to square
//	bits 12-15  moved piece
//	bits 16-19  captured piece (NoPiece for none)
//	bits 20-22  promotion piece type (NoPieceType for none)
//	bits 23-25  category
//	bits 26-29  castling rights before the move
//
// Callers only use the accessors below.
type Move uint32

// NoMove is the zero move; it is never generated.
const NoMove Move = 0

const (
	moveToShift       = 6
	moveMovedShift    = 12
	moveCapturedShift = 16
	movePromoShift    = 20
	moveCategoryShift = 23
	moveCastlingShift = 26
)

// NewMove packs a move. captured is NoPiece and promo NoPieceType when unused.
func NewMove(from, to Square, moved, captured Piece, promo PieceType, cat Category) Move {
	return Move(from) |
		Move(to)<<moveToShift |
		Move(moved)<<moveMovedShift |
		Move(captured)<<moveCapturedShift |
		Move(promo)<<movePromoShift |
		Move(cat)<<moveCategoryShift
}

func (m Move) From() Square         { return Square(m & 0x3F) }
func (m Move) To() Square           { return Square(m >> moveToShift & 0x3F) }
func (m Move) Moved() Piece         { return Piece(m >> moveMovedShift & 0xF) }
func (m Move) Captured() Piece      { return Piece(m >> moveCapturedShift & 0xF) }
func (m Move) Promotion() PieceType { return PieceType(m >> movePromoShift & 0x7) }
func (m Move) Category() Category   { return Category(m >> moveCategoryShift & 0x7) }

// PrevCastling returns the castling rights in force before the move, which
// unmake restores.
func (m Move) PrevCastling() CastlingRights {
	return CastlingRights(m >> moveCastlingShift & 0xF)
}

func (m Move) withCastling(cr CastlingRights) Move {
	return m&^(0xF<<moveCastlingShift) | Move(cr)<<moveCastlingShift
}

// Base strips the castling snapshot so that moves can be compared.
func (m Move) Base() Move { return m &^ (0xF << moveCastlingShift) }

// IsCapture reports whether the move removes an enemy piece.
func (m Move) IsCapture() bool { return m.Captured() != NoPiece }

// IsPromotion reports whether a pawn is promoted.
func (m Move) IsPromotion() bool { return m.Promotion() != NoPieceType }

// IsQuiet reports a move that neither captures nor promotes.
func (m Move) IsQuiet() bool { return !m.IsCapture() && !m.IsPromotion() }

// IsCastle reports either castling category.
func (m Move) IsCastle() bool {
	c := m.Category()
	return c == CastleKing || c == CastleQueen
}

// String returns the coordinate form used by UCI, e.g. "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// MaxMoves bounds the number of moves in any position.
const MaxMoves = 256

// MoveList is a fixed array of moves filled without allocation.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

func (ml *MoveList) Add(m Move)          { ml.moves[ml.count] = m; ml.count++ }
func (ml *MoveList) Len() int            { return ml.count }
func (ml *MoveList) Get(i int) Move      { return ml.moves[i] }
func (ml *MoveList) Set(i int, m Move)   { ml.moves[i] = m }
func (ml *MoveList) Swap(i, j int)       { ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i] }
func (ml *MoveList) Clear()              { ml.count = 0 }
func (ml *MoveList) Slice() []Move       { return ml.moves[:ml.count] }
func (ml *MoveList) truncate(n int)      { ml.count = n }

// Contains reports whether m (ignoring the castling snapshot) is in the list.
func (ml *MoveList) Contains(m Move) bool {
	for _, x := range ml.moves[:ml.count] {
		if x.Base() == m.Base() {
			return true
		}
	}
	return false
}
