package engine

import (
	"testing"

	"github.com/hailam/luna/internal/board"
)

func TestMoveOrdering(t *testing.T) {
	// White can win a queen with a pawn, trade a rook for a defended pawn or
	// play quiet moves.
	pos, err := board.ParseFEN("3rk3/8/2p5/3p1q2/4P3/8/8/3RK1N1 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var ml board.MoveList
	pos.GenerateLegalMoves(&ml)

	killer, _ := pos.ParseMove("g1f3")
	ttMove, _ := pos.ParseMove("e1d2")
	pvMove, _ := pos.ParseMove("e1e2")

	var mo MoveOrderer
	mo.UpdateKillers(killer, 2)

	var scores moveScores
	mo.ScoreMoves(pos, &ml, 2, pvMove, ttMove, &scores)

	var order []string
	for i := 0; i < ml.Len(); i++ {
		order = append(order, PickMove(&ml, &scores, i).String())
	}
	want := []string{"e1e2", "e1d2", "e4f5", "e4d5", "g1f3"}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("order %v, want prefix %v", order, want)
		}
	}
	if last := order[len(order)-1]; last != "d1d5" {
		t.Errorf("losing capture ordered at %v, want last", order)
	}
}

func TestHistoryHalvesAtCap(t *testing.T) {
	var mo MoveOrderer
	m := board.NewMove(board.G1, board.F3, board.WhiteKnight, board.NoPiece, board.NoPieceType, board.Quiet)
	other := board.NewMove(board.B1, board.C3, board.WhiteKnight, board.NoPiece, board.NoPieceType, board.Quiet)
	mo.UpdateHistory(other, 10)
	for i := 0; i <= historyMax/400; i++ {
		mo.UpdateHistory(m, 20)
	}
	if got := mo.HistoryScore(m); got != (historyMax+400)/2 {
		t.Errorf("history = %d, want %d", got, (historyMax+400)/2)
	}
	if got := mo.HistoryScore(other); got != 50 {
		t.Errorf("other history = %d, want 50", got)
	}
}
