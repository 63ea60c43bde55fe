package board

import (
	"errors"
	"testing"
)

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 17 42",
		"4k3/8/8/8/8/8/8/4K3 b - - 0 1",
	}
	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := pos.FEN(); got != fen {
			t.Errorf("FEN() = %q, want %q", got, fen)
		}
		if err := pos.Validate(); err != nil {
			t.Errorf("%s: %v", fen, err)
		}
	}
}

func TestParseFENDefaults(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/4K3 w")
	if err != nil {
		t.Fatal(err)
	}
	if pos.CastlingRights != NoCastling || pos.EnPassant != NoSquare || pos.FullMoveNumber != 1 {
		t.Errorf("unexpected defaults in %s", pos.FEN())
	}
}

func TestParseFENDropsUnusableCastling(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/4K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if pos.CastlingRights != WhiteKingSide {
		t.Errorf("rights = %v, want K", pos.CastlingRights)
	}
}

func TestParseFENMalformed(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBN w KQkq - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNRR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQxq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e4 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQQBNR w kq - 0 1",
		"4k3/8/8/8/8/8/8/4K2q b - - 0 1",
		"4k3/8/8/3P4/8/8/8/4K3 w - e6 0 1",
		"4k3/8/4n3/3Pp3/8/8/8/4K3 w - e6 0 1",
		"4k3/4b3/8/3Pp3/8/8/8/4K3 w - e6 0 1",
		"4k3/8/8/8/3pP3/8/8/4K3 b - d3 0 1",
	}
	for _, fen := range bad {
		_, err := ParseFEN(fen)
		var mpe *MalformedPositionError
		if !errors.As(err, &mpe) || !errors.Is(err, ErrMalformedPosition) {
			t.Errorf("ParseFEN(%q) error = %v, want MalformedPositionError", fen, err)
		}
	}
}
