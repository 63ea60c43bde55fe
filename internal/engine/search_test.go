package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hailam/luna/internal/board"
)

func newTestEngine(t *testing.T, fen string) *EngineContext {
	t.Helper()
	e := New()
	if err := e.NewPosition(fen, nil); err != nil {
		t.Fatal(err)
	}
	return e
}

func isLegal(pos *board.Position, m board.Move) bool {
	var ml board.MoveList
	pos.GenerateLegalMoves(&ml)
	return ml.Contains(m)
}

func TestSearchFindsMate(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		plies int
	}{
		{"back rank mate in 1", "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1", 1},
		{"mate in 2", "kbK5/pp6/1P6/8/8/8/8/R7 w - - 0 1", 3},
		{"scholar's mate", "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4", 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t, tc.fen)
			res, err := e.Search(context.Background(), Limits{Depth: 5})
			if err != nil {
				t.Fatal(err)
			}
			if want := MateScore - tc.plies; res.Score != want {
				t.Fatalf("score = %d (%s), want %d", res.Score, FormatScore(res.Score), want)
			}
			if len(res.PV) != tc.plies {
				t.Fatalf("pv %v has %d plies, want %d", res.PV, len(res.PV), tc.plies)
			}

			pos := e.Position().Copy()
			for _, m := range res.PV {
				if !isLegal(pos, m) {
					t.Fatalf("pv move %v is illegal in %s", m, pos.FEN())
				}
				pos.MakeMove(m)
			}
			if !pos.IsCheckmate() {
				t.Errorf("pv %v does not end in mate: %s", res.PV, pos.FEN())
			}
		})
	}
}

func TestSearchMatedAndStalemated(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		score int
	}{
		{"mated", "3R2k1/5ppp/8/8/8/8/5PPP/6K1 b - - 0 1", -MateScore},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t, tc.fen)
			res, err := e.Search(context.Background(), Limits{Depth: 3})
			if err != nil {
				t.Fatal(err)
			}
			if res.BestMove != board.NoMove || res.Score != tc.score {
				t.Errorf("got (%v, %d), want (0000, %d)", res.BestMove, res.Score, tc.score)
			}
		})
	}
}

// minimax is the exhaustive reference search: same leaves, draws and mate
// scores as the engine, no pruning of any kind.
func minimax(pos *board.Position, p *EvalParams, depth, ply int) int {
	if ply > 0 && (pos.IsFiftyMoveDraw() || pos.IsInsufficientMaterial() || pos.IsRepetition()) {
		return 0
	}
	if depth == 0 {
		return EvaluateWith(pos, p)
	}
	var ml board.MoveList
	pos.GenerateLegalMoves(&ml)
	if ml.Len() == 0 {
		if pos.InCheck() {
			return -MateScore + ply
		}
		return 0
	}
	best := -Infinity
	for _, m := range ml.Slice() {
		pos.MakeMove(m)
		best = max(best, -minimax(pos, p, depth-1, ply+1))
		pos.UnmakeMove()
	}
	return best
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
	}{
		{"start", board.StartFEN, 3},
		{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2},
		{"rook endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 4},
		{"promotion race", "8/P6k/8/8/8/8/6Kp/8 w - - 0 1", 4},
		{"mate in 2", "kbK5/pp6/1P6/8/8/8/8/R7 w - - 0 1", 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if testing.Short() && tc.depth > 3 {
				t.Skip("deep minimax")
			}
			e := newTestEngine(t, tc.fen)
			e.SetFeatures(Features{})
			res, err := e.Search(context.Background(), Limits{Depth: tc.depth})
			if err != nil {
				t.Fatal(err)
			}

			pos := e.Position()
			params := e.EvalParams()
			want := minimax(pos, &params, tc.depth, 0)
			if res.Score != want {
				t.Fatalf("alpha-beta score %d, minimax %d", res.Score, want)
			}

			// Ties may be broken differently; the chosen move must be worth the same.
			pos.MakeMove(res.BestMove)
			got := -minimax(pos, &params, tc.depth-1, 1)
			pos.UnmakeMove()
			if got != want {
				t.Errorf("best move %v is worth %d, minimax best is %d", res.BestMove, got, want)
			}
		})
	}
}

func TestSearchLeavesPositionUnchanged(t *testing.T) {
	e := newTestEngine(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	before := e.Position().FEN()
	hash := e.Position().Hash
	if _, err := e.Search(context.Background(), Limits{Depth: 4}); err != nil {
		t.Fatal(err)
	}
	if got := e.Position().FEN(); got != before || e.Position().Hash != hash {
		t.Errorf("position changed: %s", got)
	}
	if err := e.Position().Validate(); err != nil {
		t.Error(err)
	}
}

func TestSearchHonoursLimits(t *testing.T) {
	t.Run("cancelled context", func(t *testing.T) {
		e := New()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := e.Search(ctx, Limits{Infinite: true})
		if err != nil {
			t.Fatal(err)
		}
		if !isLegal(e.Position(), res.BestMove) {
			t.Errorf("best move %v is not legal", res.BestMove)
		}
	})

	t.Run("stop from another goroutine", func(t *testing.T) {
		e := New()
		go func() {
			time.Sleep(50 * time.Millisecond)
			e.Stop()
		}()
		start := time.Now()
		res, err := e.Search(context.Background(), Limits{Infinite: true})
		if err != nil {
			t.Fatal(err)
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("search ran %v after stop", elapsed)
		}
		if !isLegal(e.Position(), res.BestMove) {
			t.Errorf("best move %v is not legal", res.BestMove)
		}
	})

	t.Run("move time", func(t *testing.T) {
		e := New()
		start := time.Now()
		res, err := e.Search(context.Background(), Limits{MoveTime: 100 * time.Millisecond})
		if err != nil {
			t.Fatal(err)
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("search took %v", elapsed)
		}
		if res.Depth < 1 || !isLegal(e.Position(), res.BestMove) {
			t.Errorf("result %+v", res)
		}
	})

	t.Run("node limit", func(t *testing.T) {
		e := New()
		res, err := e.Search(context.Background(), Limits{Nodes: 10000})
		if err != nil {
			t.Fatal(err)
		}
		if res.Nodes > 10000+2*(pollMask+1) {
			t.Errorf("searched %d nodes", res.Nodes)
		}
		if !isLegal(e.Position(), res.BestMove) {
			t.Errorf("best move %v is not legal", res.BestMove)
		}
	})

	t.Run("default depth", func(t *testing.T) {
		e := New()
		if err := e.SetOption("Depth", "3"); err != nil {
			t.Fatal(err)
		}
		res, err := e.Search(context.Background(), Limits{})
		if err != nil {
			t.Fatal(err)
		}
		if res.Depth != 3 {
			t.Errorf("depth = %d, want 3", res.Depth)
		}
	})
}

func TestSearchReportsIterations(t *testing.T) {
	e := New()
	var infos []Info
	e.OnInfo = func(i Info) { infos = append(infos, i) }
	res, err := e.Search(context.Background(), Limits{Depth: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 4 {
		t.Fatalf("got %d info records, want 4", len(infos))
	}
	for i, info := range infos {
		if info.Depth != i+1 || len(info.PV) == 0 {
			t.Errorf("info %d = %+v", i, info)
		}
	}
	last := infos[len(infos)-1]
	if last.PV[0] != res.BestMove || last.Score != res.Score {
		t.Errorf("last info %v disagrees with result %v", last.PV, res.BestMove)
	}
}

func TestSearchWinsHangingQueen(t *testing.T) {
	e := newTestEngine(t, "3rk3/8/8/8/3Q4/8/8/4K3 b - - 0 1")
	res, err := e.Search(context.Background(), Limits{Depth: 3})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.BestMove.String(); got != "d8d4" {
		t.Errorf("best move %s, want d8d4", got)
	}
}

func TestNewPositionErrors(t *testing.T) {
	e := New()
	if err := e.NewPosition("startpos", []string{"e2e4", "e7e5", "g1f3"}); err != nil {
		t.Fatal(err)
	}
	want := e.Position().FEN()

	err := e.NewPosition("startpos", []string{"e2e4", "e2e4"})
	var ime *board.IllegalMoveError
	if !errors.As(err, &ime) || !errors.Is(err, board.ErrIllegalMove) {
		t.Errorf("illegal move error = %v", err)
	}
	if got := e.Position().FEN(); got != want {
		t.Errorf("position replaced after error: %s", got)
	}

	err = e.NewPosition("rnbqkbnr/pppppppp/8/8 w - - 0 1", nil)
	if !errors.Is(err, board.ErrMalformedPosition) {
		t.Errorf("malformed position error = %v", err)
	}
}

func TestSetOption(t *testing.T) {
	e := New()
	tests := []struct {
		name, value string
		err         error
	}{
		{"Hash", "32", nil},
		{"hash", "8", nil},
		{"Move Overhead", "100", nil},
		{"Clear Hash", "", nil},
		{"Hash", "0", ErrInvalidOption},
		{"Depth", "deep", ErrInvalidOption},
		{"Threads", "4", ErrUnknownOption},
	}
	for _, tc := range tests {
		err := e.SetOption(tc.name, tc.value)
		if !errors.Is(err, tc.err) || (tc.err == nil && err != nil) {
			t.Errorf("SetOption(%q, %q) = %v, want %v", tc.name, tc.value, err, tc.err)
		}
	}
	if opts := e.Options(); opts.Hash != 8 || opts.MoveOverhead != 100*time.Millisecond {
		t.Errorf("options = %+v", opts)
	}
}

func TestFormatScore(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{35, "cp 35"},
		{-120, "cp -120"},
		{MateScore - 1, "mate 1"},
		{MateScore - 3, "mate 2"},
		{-MateScore + 2, "mate -1"},
		{-MateScore + 4, "mate -2"},
	}
	for _, tc := range tests {
		if got := FormatScore(tc.score); got != tc.want {
			t.Errorf("FormatScore(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestPonderMoveFromTable(t *testing.T) {
	e := newTestEngine(t, board.StartFEN)
	pos := e.Position()

	best, err := pos.ParseMove("e2e4")
	if err != nil {
		t.Fatal(err)
	}
	if got := e.ponderMove(best); got != board.NoMove {
		t.Errorf("empty table: ponder %v, want none", got)
	}

	pos.MakeMove(best)
	reply, err := pos.ParseMove("e7e5")
	if err != nil {
		t.Fatal(err)
	}
	childKey := pos.Hash
	pos.UnmakeMove()

	e.tt.Store(childKey, 4, 1, 0, reply, TTExact, true)
	if got := e.ponderMove(best); got.Base() != reply.Base() {
		t.Errorf("ponder = %v, want e7e5", got)
	}

	// A stored move that is not legal in the child is ignored.
	e.tt.Store(childKey, 5, 1, 0, best, TTExact, true)
	if got := e.ponderMove(best); got != board.NoMove {
		t.Errorf("illegal hint: ponder %v, want none", got)
	}
	if got := pos.FEN(); got != board.StartFEN {
		t.Errorf("position changed to %s", got)
	}
}

func TestQuiescenceInCheckSearchesOnePly(t *testing.T) {
	const fen = "r3k3/8/8/8/8/8/3q4/R3K2R w KQ - 0 1"
	quiesce := func(f Features) (int, uint64) {
		e := newTestEngine(t, fen)
		e.SetFeatures(f)
		e.prepare(context.Background(), Limits{})
		score := e.quiescence(0, -Infinity, Infinity)
		return score, e.nodes
	}

	noExtension := DefaultFeatures()
	noExtension.CheckExtension = false
	score, nodes := quiesce(DefaultFeatures())
	want, _ := quiesce(noExtension)
	if score != want {
		t.Errorf("score %d with check extension, %d without", score, want)
	}

	// Without the extension quiescence must still terminate in check.
	onlyQuiescence := Features{Quiescence: true}
	quiesce(onlyQuiescence)

	e := newTestEngine(t, fen)
	e.prepare(context.Background(), Limits{})
	e.negamax(2, 0, -Infinity, Infinity, false)
	if nodes >= e.nodes {
		t.Errorf("quiescence in check visited %d nodes, a two-ply search %d", nodes, e.nodes)
	}
}
