// Command luna-perft counts move generation leaf nodes, splitting the work
// over the root moves.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/luna/internal/board"
)

var (
	fen      = flag.String("fen", board.StartFEN, "position to count from")
	depth    = flag.Int("depth", 5, "perft depth")
	divide   = flag.Bool("divide", false, "print the count below every root move")
	workers  = flag.Int("workers", runtime.NumCPU(), "parallel root moves")
	expected = flag.Uint64("expect", 0, "exit with status 1 unless the total matches")
	logLevel = flag.String("log-level", "info", "log level")
)

func main() {
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid position")
	}
	if *depth < 1 {
		log.Fatal().Int("depth", *depth).Msg("depth must be at least 1")
	}

	start := time.Now()
	entries, err := parallelDivide(context.Background(), pos, *depth, *workers)
	if err != nil {
		log.Fatal().Err(err).Msg("perft failed")
	}
	elapsed := time.Since(start)

	var total uint64
	for _, e := range entries {
		if *divide {
			fmt.Printf("%s: %d\n", e.Move, e.Nodes)
		}
		total += e.Nodes
	}
	fmt.Printf("\nNodes searched: %d\n", total)

	nps := uint64(0)
	if elapsed > 0 {
		nps = uint64(float64(total) / elapsed.Seconds())
	}
	log.Info().
		Int("depth", *depth).
		Str("nodes", humanize.Comma(int64(total))).
		Str("nps", humanize.SI(float64(nps), "nps")).
		Dur("elapsed", elapsed).
		Msg("perft finished")

	if *expected != 0 && total != *expected {
		log.Error().Uint64("want", *expected).Uint64("got", total).Msg("node count mismatch")
		os.Exit(1)
	}
}

// parallelDivide runs Perft below every root move of pos on its own copy of
// the position, at most workers at a time. Results keep generation order.
func parallelDivide(ctx context.Context, pos *board.Position, depth, workers int) ([]board.DivideEntry, error) {
	var ml board.MoveList
	pos.GenerateLegalMoves(&ml)
	entries := make([]board.DivideEntry, ml.Len())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, m := range ml.Slice() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			child := pos.Copy()
			if !child.MakeMove(m) {
				return fmt.Errorf("generated move %s is illegal in %s", m, pos.FEN())
			}
			entries[i] = board.DivideEntry{Move: m, Nodes: child.Perft(depth - 1)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
