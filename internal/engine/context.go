// Package engine implements the luna search: iterative deepening alpha-beta
// over board.Position with a transposition table, plus the static evaluation.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/luna/internal/board"
)

// Options are the engine settings exposed through SetOption.
type Options struct {
	Hash         int           // Transposition table size in MB
	Depth        int           // Depth searched when a search has no other limit
	MoveOverhead time.Duration // Reserved per move for communication lag
}

// DefaultOptions returns the settings of a fresh engine.
func DefaultOptions() Options {
	return Options{
		Hash:         16,
		Depth:        6,
		MoveOverhead: 30 * time.Millisecond,
	}
}

// OptionSpec describes one setting for the protocol layer.
type OptionSpec struct {
	Name    string
	Type    string // "spin" or "button"
	Default int
	Min     int
	Max     int
}

// String formats the option as a UCI "option" line.
func (o OptionSpec) String() string {
	if o.Type == "button" {
		return "option name " + o.Name + " type button"
	}
	return fmt.Sprintf("option name %s type spin default %d min %d max %d", o.Name, o.Default, o.Min, o.Max)
}

// OptionSpecs lists the settings SetOption accepts.
func OptionSpecs() []OptionSpec {
	def := DefaultOptions()
	return []OptionSpec{
		{Name: "Hash", Type: "spin", Default: def.Hash, Min: 1, Max: 4096},
		{Name: "Depth", Type: "spin", Default: def.Depth, Min: 1, Max: MaxPly - 1},
		{Name: "Move Overhead", Type: "spin", Default: int(def.MoveOverhead.Milliseconds()), Min: 0, Max: 5000},
		{Name: "Clear Hash", Type: "button"},
	}
}

// Features switches individual search heuristics. DefaultFeatures enables all
// of them; with every field false the search is plain alpha-beta.
type Features struct {
	Aspiration        bool
	NullMove          bool
	ReverseFutility   bool
	LateMoveReduction bool
	CheckExtension    bool
	Quiescence        bool
	TTCutoffs         bool
}

// DefaultFeatures returns the heuristics used in play.
func DefaultFeatures() Features {
	return Features{
		Aspiration:        true,
		NullMove:          true,
		ReverseFutility:   true,
		LateMoveReduction: true,
		CheckExtension:    true,
		Quiescence:        true,
		TTCutoffs:         true,
	}
}

// EngineContext owns everything one engine instance needs: the game position,
// the transposition table, the per-search heuristic tables and the stop
// signal. Instances share nothing, so several can run side by side.
//
// Search runs on the caller's goroutine; Stop may be called from any other.
// All other methods must not overlap a running Search.
type EngineContext struct {
	pos      *board.Position
	tt       *TranspositionTable
	params   EvalParams
	options  Options
	features Features
	logger   zerolog.Logger

	// OnInfo, when set, receives a progress record after every completed iteration.
	OnInfo func(Info)

	// Per-search state, reset by prepare
	orderer   MoveOrderer
	pv        PVTable
	prevPV    []board.Move
	followPV  bool
	ctx       context.Context
	tm        TimeManager
	nodeLimit uint64
	nodes     uint64
	selDepth  int
	aborted   bool

	stop atomic.Bool
}

// New creates an engine on the starting position with default options.
func New() *EngineContext {
	opts := DefaultOptions()
	return &EngineContext{
		pos:      board.NewPosition(),
		tt:       NewTranspositionTable(opts.Hash),
		params:   DefaultEvalParams(),
		options:  opts,
		features: DefaultFeatures(),
		logger:   zerolog.Nop(),
		ctx:      context.Background(),
	}
}

// SetLogger replaces the engine's logger. The default discards everything.
func (e *EngineContext) SetLogger(l zerolog.Logger) {
	e.logger = l
}

// SetFeatures selects the search heuristics.
func (e *EngineContext) SetFeatures(f Features) {
	e.features = f
}

// SetEvalParams replaces the evaluation terms.
func (e *EngineContext) SetEvalParams(p EvalParams) {
	e.params = p
}

// EvalParams returns the evaluation terms in use.
func (e *EngineContext) EvalParams() EvalParams {
	return e.params
}

// Options returns the current settings.
func (e *EngineContext) Options() Options {
	return e.options
}

// Position returns the game position. It must not be modified while a search runs.
func (e *EngineContext) Position() *board.Position {
	return e.pos
}

// NewPosition sets up fen ("startpos" or empty for the initial position) and
// plays moves, given in coordinate notation, from it. On error the previous
// position is kept and the error is a *board.MalformedPositionError or a
// *board.IllegalMoveError.
func (e *EngineContext) NewPosition(fen string, moves []string) error {
	if fen == "" || fen == "startpos" {
		fen = board.StartFEN
	}
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}
	for _, text := range moves {
		m, err := pos.ParseMove(text)
		if err != nil {
			return err
		}
		pos.MakeMove(m)
	}
	e.pos = pos
	return nil
}

// NewGame resets the position and forgets everything learned so far.
func (e *EngineContext) NewGame() {
	e.pos = board.NewPosition()
	e.tt.Clear()
	e.orderer.Clear()
}

// Stop asks a running search to return as soon as possible.
func (e *EngineContext) Stop() {
	e.stop.Store(true)
}

// Evaluate returns the static evaluation of the current position from the
// side to move's point of view.
func (e *EngineContext) Evaluate() int {
	return EvaluateWith(e.pos, &e.params)
}

// Perft counts the leaf nodes of the legal move tree below the current position.
func (e *EngineContext) Perft(depth int) uint64 {
	return e.pos.Perft(depth)
}

// HashFull returns the permille of the transposition table used by the last search.
func (e *EngineContext) HashFull() int {
	return e.tt.HashFull()
}

// SetOption changes a setting by its UCI name, ignoring case. Unknown names
// wrap ErrUnknownOption and out-of-range values wrap ErrInvalidOption.
func (e *EngineContext) SetOption(name, value string) error {
	spec, ok := findOption(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	if spec.Type == "button" {
		e.tt.Clear()
		e.logger.Info().Str("option", spec.Name).Msg("hash cleared")
		return nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < spec.Min || n > spec.Max {
		return fmt.Errorf("%w: %s = %q (want %d..%d)", ErrInvalidOption, spec.Name, value, spec.Min, spec.Max)
	}
	switch spec.Name {
	case "Hash":
		e.options.Hash = n
		e.tt.Resize(n)
	case "Depth":
		e.options.Depth = n
	case "Move Overhead":
		e.options.MoveOverhead = time.Duration(n) * time.Millisecond
	}
	e.logger.Info().Str("option", spec.Name).Int("value", n).Msg("option set")
	return nil
}

// LookupOption finds a setting by its UCI name, ignoring case.
func LookupOption(name string) (OptionSpec, bool) {
	return findOption(name)
}

func findOption(name string) (OptionSpec, bool) {
	for _, spec := range OptionSpecs() {
		if strings.EqualFold(spec.Name, strings.TrimSpace(name)) {
			return spec, true
		}
	}
	return OptionSpec{}, false
}
