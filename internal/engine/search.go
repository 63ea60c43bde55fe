package engine

import (
	"context"
	"math"
	"time"

	"github.com/hailam/luna/internal/board"
)

// Search constants
const (
	Infinity  = 32000
	MateScore = 31000
	MaxPly    = 128

	// MateBound separates mate scores from ordinary evaluations.
	MateBound = MateScore - MaxPly
)

// Pruning constants
const (
	aspirationWindow   = 50
	aspirationMinDepth = 4
	nullMoveMinDepth   = 3
	rfpMaxDepth        = 6
	rfpMargin          = 90 // per ply of remaining depth
	lmrMinDepth        = 3
	lmrFullDepthMoves  = 4
	deltaMargin        = 200
	pollMask           = 4095 // poll the stop conditions every 4096 nodes
)

// lmrReductions[depth][moveNumber] is the late move reduction in plies.
var lmrReductions [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrReductions[d][m] = int(0.75 + math.Log(float64(d))*math.Log(float64(m))/2.25)
		}
	}
}

// Limits specifies constraints on a search. The zero value searches to the
// configured default depth.
type Limits struct {
	Depth     int              // Maximum depth (0 = no limit)
	Nodes     uint64           // Maximum nodes (0 = no limit)
	MoveTime  time.Duration    // Time for this move (0 = no limit)
	Deadline  time.Time        // Absolute hard deadline (zero = none)
	Infinite  bool             // Search until stopped
	Time      [2]time.Duration // wtime, btime
	Inc       [2]time.Duration // winc, binc
	MovesToGo int              // moves until next time control (0 = sudden death)
}

// Result is the outcome of a search: the best move of the deepest completed
// iteration. BestMove is NoMove only when the position has no legal move.
type Result struct {
	BestMove board.Move
	Ponder   board.Move
	Score    int
	Depth    int
	PV       []board.Move
	Nodes    uint64
}

// PVTable stores the principal variation. Row ply holds the line found from
// that ply, ending before length[ply].
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

func (pv *PVTable) clear(ply int) {
	pv.length[ply] = ply
}

// update makes m followed by the child's line the line at ply.
func (pv *PVTable) update(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	end := max(pv.length[ply+1], ply+1)
	for j := ply + 1; j < end; j++ {
		pv.moves[ply][j] = pv.moves[ply+1][j]
	}
	pv.length[ply] = end
}

// line returns a copy of the root line.
func (pv *PVTable) line() []board.Move {
	out := make([]board.Move, pv.length[0])
	copy(out, pv.moves[0][:pv.length[0]])
	return out
}

// Search runs iterative deepening on the current position until a limit, a
// Stop call or ctx cancellation. It always returns a legal move when one
// exists; an interrupted iteration is discarded in favour of the last
// completed one. The position is unchanged when Search returns.
func (e *EngineContext) Search(ctx context.Context, limits Limits) (Result, error) {
	e.prepare(ctx, limits)
	pos := e.pos

	var root board.MoveList
	pos.GenerateLegalMoves(&root)
	if root.Len() == 0 {
		score := 0
		if pos.InCheck() {
			score = -MateScore
		}
		return Result{Score: score}, nil
	}

	// A legal answer even if the first iteration is interrupted.
	res := Result{BestMove: root.Get(0), PV: []board.Move{root.Get(0)}}
	maxDepth := e.maxDepth(limits)

	score := 0
	for depth := 1; depth <= maxDepth; depth++ {
		s, err := e.searchIteration(depth, score)
		if err != nil {
			e.logger.Debug().Int("depth", depth).Uint64("nodes", e.nodes).Msg("iteration aborted")
			break
		}
		score = s

		pv := e.pv.line()
		if len(pv) == 0 {
			pv = []board.Move{res.BestMove}
		}
		res = Result{BestMove: pv[0], Score: score, Depth: depth, PV: pv}
		if len(pv) > 1 {
			res.Ponder = pv[1]
		} else {
			res.Ponder = e.ponderMove(pv[0])
		}
		e.prevPV = pv
		e.report(depth, score, pv)

		if e.tm.PastSoft() {
			break
		}
		// A mate within the searched horizon will not change.
		if s := abs(score); s > MateBound && MateScore-s <= depth {
			break
		}
	}

	res.Nodes = e.nodes
	e.logger.Debug().
		Str("bestmove", res.BestMove.String()).
		Int("depth", res.Depth).
		Int("score", res.Score).
		Uint64("nodes", res.Nodes).
		Dur("elapsed", e.tm.Elapsed()).
		Msg("search finished")
	return res, nil
}

// prepare resets the per-search state. The transposition table survives and
// moves to a new generation.
func (e *EngineContext) prepare(ctx context.Context, limits Limits) {
	if ctx == nil {
		ctx = context.Background()
	}
	e.ctx = ctx
	e.stop.Store(false)
	e.aborted = false
	e.nodes = 0
	e.selDepth = 0
	e.nodeLimit = limits.Nodes
	e.orderer.Clear()
	e.pv = PVTable{}
	e.prevPV = nil
	e.followPV = false
	e.tt.NewSearch()
	e.tm.Init(limits, e.pos.SideToMove, e.pos.FullMoveNumber*2, e.options.MoveOverhead)
}

// maxDepth picks the deepest iteration: the explicit depth, the ply ceiling
// when some other limit ends the search, or the configured default.
func (e *EngineContext) maxDepth(limits Limits) int {
	switch {
	case limits.Depth > 0:
		return min(limits.Depth, MaxPly-1)
	case limits.Infinite || limits.Nodes > 0 || e.tm.Limited():
		return MaxPly - 1
	}
	return e.options.Depth
}

// searchIteration searches the root to depth, first inside an aspiration
// window around the previous score and with the full window if that fails.
func (e *EngineContext) searchIteration(depth, prevScore int) (int, error) {
	alpha, beta := -Infinity, Infinity
	if e.features.Aspiration && depth >= aspirationMinDepth {
		alpha, beta = prevScore-aspirationWindow, prevScore+aspirationWindow
	}

	for {
		e.followPV = len(e.prevPV) > 0
		score := e.negamax(depth, 0, alpha, beta, false)
		if e.aborted {
			return 0, ErrSearchAborted
		}
		if (score > alpha && score < beta) || (alpha == -Infinity && beta == Infinity) {
			return score, nil
		}
		e.logger.Debug().Int("depth", depth).Int("score", score).Msg("aspiration window failed")
		alpha, beta = -Infinity, Infinity
	}
}

// poll counts a node and reports whether the search must unwind.
func (e *EngineContext) poll() bool {
	e.nodes++
	if e.aborted {
		return true
	}
	if e.nodes&pollMask == 0 {
		e.aborted = e.stop.Load() ||
			e.ctx.Err() != nil ||
			e.tm.PastHard() ||
			(e.nodeLimit > 0 && e.nodes >= e.nodeLimit)
	}
	return e.aborted
}

// report publishes the progress record of a completed iteration.
func (e *EngineContext) report(depth, score int, pv []board.Move) {
	elapsed := e.tm.Elapsed()
	info := Info{
		Depth:    depth,
		SelDepth: e.selDepth,
		Score:    score,
		Nodes:    e.nodes,
		Elapsed:  elapsed,
		NPS:      nps(e.nodes, elapsed),
		HashFull: e.tt.HashFull(),
		PV:       pv,
	}
	e.logger.Debug().
		Int("depth", depth).
		Int("seldepth", info.SelDepth).
		Str("score", FormatScore(score)).
		Uint64("nodes", info.Nodes).
		Str("pv", pv[0].String()).
		Msg("iteration complete")
	if e.OnInfo != nil {
		e.OnInfo(info)
	}
}

// evaluate returns the static evaluation with the engine's parameters.
func (e *EngineContext) evaluate() int {
	return EvaluateWith(e.pos, &e.params)
}

// ponderMove returns the reply to best remembered by the transposition
// table, for lines the PV table cut short, or NoMove.
func (e *EngineContext) ponderMove(best board.Move) board.Move {
	pos := e.pos
	pos.MakeMove(best)
	defer pos.UnmakeMove()

	hint, ok := e.tt.Lookup(pos.Hash)
	if !ok || hint == board.NoMove {
		return board.NoMove
	}
	var ml board.MoveList
	pos.GenerateLegalMoves(&ml)
	for _, m := range ml.Slice() {
		if m.Base() == hint.Base() {
			return m
		}
	}
	return board.NoMove
}

// abs returns the absolute value of an integer.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
