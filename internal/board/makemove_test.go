package board

import (
	"errors"
	"testing"
)

// state is the comparable part of a Position.
type state struct {
	pieces      [2][6]Bitboard
	occupied    [2]Bitboard
	all         Bitboard
	board       [64]Piece
	side        Color
	castling    CastlingRights
	ep          Square
	halfMove    int
	fullMove    int
	kings       [2]Square
	hash        uint64
	mg, eg, ph  int
	attacked    Bitboard
	checkers    Bitboard
	historySize int
}

func snapshot(p *Position) state {
	return state{
		p.Pieces, p.Occupied, p.AllOccupied, p.Board, p.SideToMove, p.CastlingRights,
		p.EnPassant, p.HalfMoveClock, p.FullMoveNumber, p.KingSquare, p.Hash,
		p.ScoreMG, p.ScoreEG, p.Phase, p.Attacked, p.Checkers, len(p.history),
	}
}

// walk visits every node of the legal tree to depth, checking the
// incremental state against a recomputation and the round trip of each move.
func walk(t *testing.T, p *Position, depth int) {
	t.Helper()
	if err := p.Validate(); err != nil {
		t.Fatalf("%s: %v", p.FEN(), err)
	}
	if depth == 0 {
		return
	}
	var ml MoveList
	p.GenerateLegalMoves(&ml)
	for _, m := range ml.Slice() {
		before := snapshot(p)
		if !p.MakeMove(m) {
			t.Fatalf("%s: legal move %v reported illegal", p.FEN(), m)
		}
		walk(t, p, depth-1)
		p.UnmakeMove()
		if after := snapshot(p); after != before {
			t.Fatalf("%s: %v (%v) did not round trip", p.FEN(), m, m.Category())
		}
	}
}

func TestMakeUnmakeRoundTrip(t *testing.T) {
	depth := 3
	if testing.Short() {
		depth = 2
	}
	for _, tc := range perftCases {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			walk(t, pos, depth)
		})
	}
}

func TestIllegalPseudoMoveIsReported(t *testing.T) {
	// The bishop on e2 is pinned by the rook on e8.
	pos, err := ParseFEN("4r1k1/8/8/8/8/8/4B3/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var ml MoveList
	pos.GeneratePseudoLegalMoves(&ml)
	for _, m := range ml.Slice() {
		before := snapshot(pos)
		legal := pos.MakeMove(m)
		pos.UnmakeMove()
		if m.Moved() == WhiteBishop && legal {
			t.Errorf("%v leaves the king in check but was reported legal", m)
		}
		if snapshot(pos) != before {
			t.Fatalf("%v did not round trip", m)
		}
	}
	if !pos.Pinned(White).Has(E2) {
		t.Error("bishop on e2 should be pinned")
	}
}

func TestNullMoveRoundTrip(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
	if err != nil {
		t.Fatal(err)
	}
	before := snapshot(pos)
	pos.MakeNullMove()
	if pos.SideToMove != Black || pos.EnPassant != NoSquare {
		t.Fatalf("null move: side %v ep %v", pos.SideToMove, pos.EnPassant)
	}
	if pos.Hash != pos.ComputeHash() {
		t.Fatal("null move hash out of sync")
	}
	pos.UnmakeNullMove()
	if snapshot(pos) != before {
		t.Fatal("null move did not round trip")
	}
}

func TestCastlingRightsUpdate(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		move string
		want CastlingRights
	}{
		{"e1g1", BlackKingSide | BlackQueenSide},
		{"a1a8", WhiteKingSide | BlackKingSide},
		{"h1h2", WhiteQueenSide | BlackKingSide | BlackQueenSide},
	} {
		m, err := pos.ParseMove(tc.move)
		if err != nil {
			t.Fatal(err)
		}
		pos.MakeMove(m)
		if pos.CastlingRights != tc.want {
			t.Errorf("after %s rights = %v, want %v", tc.move, pos.CastlingRights, tc.want)
		}
		if err := pos.Validate(); err != nil {
			t.Error(err)
		}
		pos.UnmakeMove()
		if pos.CastlingRights != AllCastling {
			t.Errorf("undo %s restored %v", tc.move, pos.CastlingRights)
		}
	}
}

func TestQueenSideCastlingNeedsEmptyBFile(t *testing.T) {
	cases := []struct {
		fen  string
		want bool
	}{
		{"4k3/8/8/8/8/8/8/R3K3 w Q - 0 1", true},
		// b1 attacked by the bishop but not crossed by the king.
		{"4k3/8/8/8/8/8/b7/R3K3 w Q - 0 1", true},
		// b1 occupied.
		{"4k3/8/8/8/8/8/8/RN2K3 w Q - 0 1", false},
		// d1 attacked.
		{"3rk3/8/8/8/8/8/8/R3K3 w Q - 0 1", false},
	}
	for _, tc := range cases {
		pos, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatal(err)
		}
		_, err = pos.ParseMove("e1c1")
		if got := err == nil; got != tc.want {
			t.Errorf("%s: castling allowed = %v, want %v", tc.fen, got, tc.want)
		}
	}
}

func TestParseMoveRejectsIllegalText(t *testing.T) {
	pos := NewPosition()
	for _, text := range []string{"e2e5", "e1e2", "a7a8q", "zz", ""} {
		_, err := pos.ParseMove(text)
		var ime *IllegalMoveError
		if !errors.As(err, &ime) || !errors.Is(err, ErrIllegalMove) {
			t.Errorf("ParseMove(%q) error = %v, want IllegalMoveError", text, err)
		}
	}
	m, err := pos.ParseMove("g1f3")
	if err != nil {
		t.Fatal(err)
	}
	if m.Moved() != WhiteKnight || m.Category() != Quiet {
		t.Errorf("g1f3 decoded as %v %v", m.Moved(), m.Category())
	}
}

func TestPromotionText(t *testing.T) {
	pos, err := ParseFEN("1n2k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	for _, text := range []string{"a7a8q", "a7a8n", "a7b8r", "a7b8b"} {
		m, err := pos.ParseMove(text)
		if err != nil {
			t.Fatalf("%s: %v", text, err)
		}
		if m.String() != text {
			t.Errorf("%s round trips as %s", text, m)
		}
	}
}

func TestRepetitionAndFiftyMoves(t *testing.T) {
	pos := NewPosition()
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for i, text := range append(shuffle, shuffle...) {
		m, err := pos.ParseMove(text)
		if err != nil {
			t.Fatal(err)
		}
		pos.MakeMove(m)
		switch i {
		case 2:
			if pos.IsRepetition() {
				t.Error("no repetition after three plies")
			}
		case 3:
			if !pos.IsRepetition() || pos.IsThreefoldRepetition() {
				t.Error("want a single repetition after four plies")
			}
		case 7:
			if !pos.IsThreefoldRepetition() {
				t.Error("want threefold repetition after eight plies")
			}
		}
	}

	fifty, err := ParseFEN("4k3/8/8/8/8/8/8/4K2R w - - 99 80")
	if err != nil {
		t.Fatal(err)
	}
	if fifty.IsFiftyMoveDraw() {
		t.Error("99 plies is not yet a draw")
	}
	m, _ := fifty.ParseMove("h1h2")
	fifty.MakeMove(m)
	if !fifty.IsFiftyMoveDraw() {
		t.Error("100 plies without progress is a draw")
	}
}

func TestIsDraw(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		moves []string
		want  bool
	}{
		{"start", StartFEN, nil, false},
		{"repetition", StartFEN, []string{"g1f3", "g8f6", "f3g1", "f6g8"}, true},
		{"fifty moves", "4k3/8/8/8/8/8/8/4K2R w - - 100 80", nil, true},
		{"bare kings", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", nil, true},
		{"rook ending", "4k3/8/8/8/8/8/8/4K2R w - - 0 1", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := ParseFEN(tt.fen)
			if err != nil {
				t.Fatal(err)
			}
			for _, text := range tt.moves {
				m, err := pos.ParseMove(text)
				if err != nil {
					t.Fatal(err)
				}
				pos.MakeMove(m)
			}
			if got := pos.IsDraw(1); got != tt.want {
				t.Errorf("IsDraw(1) = %v, want %v", got, tt.want)
			}
			if pos.IsDraw(0) {
				t.Error("the root is never a draw")
			}
		})
	}
}

func TestInsufficientMaterial(t *testing.T) {
	cases := []struct {
		fen  string
		want bool
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/4KN2 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/4KB2 w - - 0 1", true},
		{"4kb2/8/8/8/8/8/8/2B1K3 w - - 0 1", true},
		{"4k1b1/8/8/8/8/8/8/2B1K3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/8/3NKN2 w - - 0 1", false},
		{"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", false},
	}
	for _, tc := range cases {
		pos, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatal(err)
		}
		if got := pos.IsInsufficientMaterial(); got != tc.want {
			t.Errorf("%s: insufficient = %v, want %v", tc.fen, got, tc.want)
		}
	}
}

func TestCheckmateAndStalemate(t *testing.T) {
	mate, err := ParseFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if err != nil {
		t.Fatal(err)
	}
	if !mate.InCheck() || !mate.IsCheckmate() {
		t.Error("fool's mate not detected")
	}
	stale, err := ParseFEN("7k/5Q2/8/8/8/8/8/6K1 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if stale.InCheck() || !stale.IsStalemate() {
		t.Error("stalemate not detected")
	}
}
