package board

import (
	"math/rand/v2"
	"testing"
)

func TestMagicMatchesRayCasting(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for sq := A1; sq <= H8; sq++ {
		for i := 0; i < 200; i++ {
			occ := Bitboard(rng.Uint64() & rng.Uint64())
			if got, want := RookAttacks(sq, occ), slidingAttacks(sq, occ, rookDirections); got != want {
				t.Fatalf("rook %v occ %016x: got\n%vwant\n%v", sq, uint64(occ), got, want)
			}
			if got, want := BishopAttacks(sq, occ), slidingAttacks(sq, occ, bishopDirections); got != want {
				t.Fatalf("bishop %v occ %016x: got\n%vwant\n%v", sq, uint64(occ), got, want)
			}
		}
	}
}

func TestLeaperTables(t *testing.T) {
	cases := []struct {
		name string
		got  Bitboard
		want []Square
	}{
		{"knight a1", KnightAttacks(A1), []Square{B3, C2}},
		{"knight h8", KnightAttacks(H8), []Square{G6, F7}},
		{"knight d4", KnightAttacks(D4), []Square{C2, E2, B3, F3, B5, F5, C6, E6}},
		{"king a1", KingAttacks(A1), []Square{A2, B1, B2}},
		{"king h5", KingAttacks(H5), []Square{G4, H4, G5, G6, H6}},
		{"white pawn a2", PawnAttacks(A2, White), []Square{B3}},
		{"black pawn h7", PawnAttacks(H7, Black), []Square{G6}},
	}
	for _, tc := range cases {
		var want Bitboard
		for _, sq := range tc.want {
			want |= SquareBB(sq)
		}
		if tc.got != want {
			t.Errorf("%s: got\n%vwant\n%v", tc.name, tc.got, want)
		}
	}
}

func TestBetweenAndLine(t *testing.T) {
	if got := Between(A1, D4); got != SquareBB(B2)|SquareBB(C3) {
		t.Errorf("between a1 d4 = \n%v", got)
	}
	if got := Between(A1, B3); got != 0 {
		t.Errorf("between unaligned squares = \n%v", got)
	}
	if got := Between(E1, E2); got != 0 {
		t.Errorf("between adjacent squares = \n%v", got)
	}
	if got := Line(C1, C5); got != FileC {
		t.Errorf("line c1 c5 = \n%v", got)
	}
	if !Aligned(A1, H8, D4) || Aligned(A1, H8, D5) {
		t.Error("Aligned disagrees with the long diagonal")
	}
}

func TestSquareFile(t *testing.T) {
	tests := []struct {
		sq   Square
		want Bitboard
	}{
		{A1, FileA}, {A8, FileA}, {E4, FileE}, {H1, FileH}, {D7, FileD},
	}
	for _, tt := range tests {
		if got := SquareFile(tt.sq); got != tt.want {
			t.Errorf("SquareFile(%s):\n%v", tt.sq, got)
		}
	}
	for sq := A1; sq <= H8; sq++ {
		if !SquareFile(sq).Has(sq) || SquareFile(sq).PopCount() != 8 {
			t.Fatalf("SquareFile(%s) is not the file through it", sq)
		}
	}
}

func TestPassedMask(t *testing.T) {
	want := (FileD | FileE | FileF) & (Rank5 | Rank6 | Rank7 | Rank8)
	if got := PassedMask(White, E4); got != want {
		t.Errorf("white e4 passed mask:\n%v", got)
	}
	want = (FileA | FileB) & (Rank1 | Rank2)
	if got := PassedMask(Black, A3); got != want {
		t.Errorf("black a3 passed mask:\n%v", got)
	}
}
