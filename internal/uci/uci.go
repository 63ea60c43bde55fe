// Package uci implements the Universal Chess Interface protocol on top of
// an engine.EngineContext.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/hailam/luna/internal/board"
	"github.com/hailam/luna/internal/diagram"
	"github.com/hailam/luna/internal/engine"
	"github.com/hailam/luna/internal/storage"
)

// Engine identification
const (
	EngineName   = "Luna"
	EngineAuthor = "the Luna authors"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine *engine.EngineContext
	store  *storage.Storage // nil disables persistence
	log    zerolog.Logger

	outMu sync.Mutex
	out   io.Writer

	// Search state
	cancel     context.CancelFunc
	searchDone chan struct{}
}

// New creates a protocol handler writing to out. Options saved in store by
// earlier sessions are applied to eng; store may be nil.
func New(eng *engine.EngineContext, store *storage.Storage, out io.Writer, log zerolog.Logger) *UCI {
	u := &UCI{
		engine: eng,
		store:  store,
		log:    log,
		out:    out,
	}
	u.restoreOptions()
	return u
}

func (u *UCI) restoreOptions() {
	if u.store == nil {
		return
	}
	opts, err := u.store.LoadOptions()
	if err != nil {
		u.log.Warn().Err(err).Msg("could not load saved options")
		return
	}
	for name, value := range opts {
		if err := u.engine.SetOption(name, value); err != nil {
			u.log.Warn().Err(err).Str("option", name).Msg("ignoring saved option")
		}
	}
}

// Run reads commands from in until "quit" or end of input. A running search
// is stopped before Run returns.
func (u *UCI) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if !u.Handle(scanner.Text()) {
			return nil
		}
	}
	u.stopSearch()
	return scanner.Err()
}

// Handle executes one command line. It returns false after "quit".
func (u *UCI) Handle(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := parts[0]
	args := parts[1:]
	u.log.Debug().Str("cmd", line).Msg("command")

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		u.println("readyok")
	case "ucinewgame":
		u.stopSearch()
		u.engine.NewGame()
	case "position":
		u.stopSearch()
		u.handlePosition(args)
	case "go":
		u.stopSearch()
		u.handleGo(args)
	case "stop":
		u.stopSearch()
	case "quit":
		u.stopSearch()
		return false
	case "setoption":
		u.stopSearch()
		u.handleSetOption(args)
	// Debug commands
	case "d", "print":
		u.stopSearch()
		u.handleDisplay()
	case "eval":
		u.stopSearch()
		u.printf("info string eval %s\n", engine.FormatScore(u.engine.Evaluate()))
	case "perft":
		u.stopSearch()
		u.handlePerft(args)
	case "diagram":
		u.stopSearch()
		u.handleDiagram(args)
	default:
		u.printf("info string unknown command %q\n", cmd)
	}
	return true
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name " + EngineName)
	u.println("id author " + EngineAuthor)
	for _, spec := range engine.OptionSpecs() {
		u.println(spec.String())
	}
	u.println("uciok")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		u.println("info string position needs startpos or fen")
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}
	var moves []string
	if movesAt < len(args) {
		moves = args[movesAt+1:]
	}

	var fen string
	switch args[0] {
	case "startpos":
		fen = board.StartFEN
	case "fen":
		fen = strings.Join(args[1:movesAt], " ")
	default:
		u.printf("info string unknown position type %q\n", args[0])
		return
	}

	if err := u.engine.NewPosition(fen, moves); err != nil {
		u.printf("info string %v\n", err)
	}
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	Infinite  bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
	Perft     int
}

// parseGoOptions parses "go" command arguments. Values that are missing or
// not numbers are reported in the error.
func parseGoOptions(args []string) (GoOptions, error) {
	opts := GoOptions{}
	for i := 0; i < len(args); i++ {
		key := args[i]
		if key == "infinite" {
			opts.Infinite = true
			continue
		}
		if key == "ponder" {
			continue
		}
		if i+1 >= len(args) {
			return opts, fmt.Errorf("go %s: missing value", key)
		}
		n, err := strconv.ParseInt(args[i+1], 10, 64)
		if err != nil {
			return opts, fmt.Errorf("go %s: %w", key, err)
		}
		i++
		ms := time.Duration(n) * time.Millisecond

		switch key {
		case "depth":
			opts.Depth = int(n)
		case "nodes":
			opts.Nodes = uint64(max(n, 0))
		case "movetime":
			opts.MoveTime = ms
		case "wtime":
			opts.WTime = ms
		case "btime":
			opts.BTime = ms
		case "winc":
			opts.WInc = ms
		case "binc":
			opts.BInc = ms
		case "movestogo":
			opts.MovesToGo = int(n)
		case "perft":
			opts.Perft = int(n)
		default:
			return opts, fmt.Errorf("go: unknown parameter %q", key)
		}
	}
	return opts, nil
}

// Limits converts GoOptions to engine.Limits.
func (o GoOptions) Limits() engine.Limits {
	return engine.Limits{
		Depth:     o.Depth,
		Nodes:     o.Nodes,
		MoveTime:  o.MoveTime,
		Infinite:  o.Infinite,
		Time:      [2]time.Duration{o.WTime, o.BTime},
		Inc:       [2]time.Duration{o.WInc, o.BInc},
		MovesToGo: o.MovesToGo,
	}
}

// handleGo starts a search in the background. The result is printed as
// "bestmove" when it finishes or is stopped.
func (u *UCI) handleGo(args []string) {
	opts, err := parseGoOptions(args)
	if err != nil {
		u.printf("info string %v\n", err)
		return
	}
	if opts.Perft > 0 {
		u.divide(opts.Perft)
		return
	}

	pos := u.engine.Position()
	hash, fen := pos.Hash, pos.FEN()
	u.engine.OnInfo = func(info engine.Info) {
		u.println(info.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.searchDone = make(chan struct{})

	go func() {
		defer close(u.searchDone)
		defer cancel()

		res, err := u.engine.Search(ctx, opts.Limits())
		if err != nil {
			u.printf("info string search failed: %v\n", err)
		}
		// "go infinite" reports only once the GUI says stop.
		if opts.Infinite {
			<-ctx.Done()
		}
		if res.BestMove == board.NoMove {
			u.println("bestmove 0000")
			return
		}
		if res.Ponder != board.NoMove {
			u.printf("bestmove %s ponder %s\n", res.BestMove, res.Ponder)
		} else {
			u.printf("bestmove %s\n", res.BestMove)
		}
		u.saveAnalysis(hash, fen, res)
	}()
}

func (u *UCI) saveAnalysis(hash uint64, fen string, res engine.Result) {
	if u.store == nil || res.Depth == 0 {
		return
	}
	_, err := u.store.SaveAnalysis(hash, storage.Analysis{
		FEN:      fen,
		BestMove: res.BestMove.String(),
		Score:    res.Score,
		Depth:    res.Depth,
		Nodes:    res.Nodes,
	})
	if err != nil {
		u.log.Warn().Err(err).Msg("could not save analysis")
	}
}

// stopSearch cancels a running search and waits for its bestmove.
func (u *UCI) stopSearch() {
	if u.searchDone == nil {
		return
	}
	u.cancel()
	<-u.searchDone
	u.searchDone = nil
	u.cancel = nil
}

// Wait blocks until the running search, if any, has printed its bestmove.
func (u *UCI) Wait() {
	if u.searchDone != nil {
		<-u.searchDone
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> [value <value>]
	var name, value []string
	target := &name
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			*target = append(*target, arg)
		}
	}
	n, v := strings.Join(name, " "), strings.Join(value, " ")

	if err := u.engine.SetOption(n, v); err != nil {
		u.printf("info string %v\n", err)
		return
	}
	spec, _ := engine.LookupOption(n)
	if u.store == nil || spec.Type == "button" {
		return
	}
	if err := u.store.SetOption(spec.Name, v); err != nil {
		u.log.Warn().Err(err).Str("option", n).Msg("could not save option")
	}
}

// handleDisplay prints the board, its evaluation and the stored analysis.
func (u *UCI) handleDisplay() {
	pos := u.engine.Position()
	var sb strings.Builder
	sb.WriteString(pos.String())
	fmt.Fprintf(&sb, "eval: %s\n", engine.FormatScore(u.engine.Evaluate()))
	if u.store != nil {
		a, found, err := u.store.LoadAnalysis(pos.Hash)
		switch {
		case err != nil:
			u.log.Warn().Err(err).Msg("could not load analysis")
		case found:
			fmt.Fprintf(&sb, "stored: %s depth %d %s, %s nodes, %s\n",
				a.BestMove, a.Depth, engine.FormatScore(a.Score),
				humanize.Comma(int64(a.Nodes)), humanize.Time(a.SearchedAt))
		}
	}
	u.printf("%s", sb.String())
}

// handlePerft runs "perft <depth>".
func (u *UCI) handlePerft(args []string) {
	if len(args) == 0 {
		u.println("info string perft needs a depth")
		return
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < 1 {
		u.printf("info string invalid perft depth %q\n", args[0])
		return
	}
	u.divide(depth)
}

// divide prints the node count below every root move and the total.
func (u *UCI) divide(depth int) {
	start := time.Now()
	var total uint64
	for _, e := range u.engine.Position().Divide(depth) {
		u.printf("%s: %d\n", e.Move, e.Nodes)
		total += e.Nodes
	}
	elapsed := time.Since(start)
	u.printf("\nNodes searched: %d\n", total)
	u.log.Info().
		Int("depth", depth).
		Str("nodes", humanize.Comma(int64(total))).
		Dur("elapsed", elapsed).
		Msg("perft finished")
}

// handleDiagram writes the current position as SVG: "diagram <file> [flip]".
func (u *UCI) handleDiagram(args []string) {
	if len(args) == 0 {
		u.println("info string diagram needs a file name")
		return
	}
	pos := u.engine.Position()
	opts := diagram.Options{Coords: true, Highlight: pos.LastMove()}
	if len(args) > 1 && args[1] == "flip" {
		opts.Flipped = true
	}

	if err := writeDiagram(args[0], pos, opts); err != nil {
		u.printf("info string %v\n", err)
		return
	}
	u.printf("info string diagram written to %s\n", args[0])
}

func writeDiagram(path string, pos *board.Position, opts diagram.Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := diagram.Render(f, pos, opts); err != nil {
		return fmt.Errorf("write diagram: %w", errors.Join(err, os.Remove(path)))
	}
	return nil
}

func (u *UCI) println(s string) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintln(u.out, s)
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}
