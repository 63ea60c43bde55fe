package main

import (
	"flag"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/luna/internal/engine"
	"github.com/hailam/luna/internal/storage"
	"github.com/hailam/luna/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	hashMB     = flag.Int("hash", 0, "transposition table size in MB (overrides the saved option)")
	dbDir      = flag.String("db", "", "database directory (default: platform data dir)")
	noDB       = flag.Bool("no-db", false, "do not load or save options and analysis")
	logLevel   = flag.String("log-level", "warn", "log level: trace, debug, info, warn, error")
)

func main() {
	flag.Parse()

	// stdout carries the protocol, so logs go to stderr
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	var store *storage.Storage
	if !*noDB {
		if *dbDir != "" {
			store, err = storage.Open(*dbDir, log)
		} else {
			store, err = storage.OpenDefault(log)
		}
		if err != nil {
			log.Warn().Err(err).Msg("running without persistent storage")
			store = nil
		} else {
			defer store.Close()
		}
	}

	eng := engine.New()
	eng.SetLogger(log)

	protocol := uci.New(eng, store, os.Stdout, log)
	if *hashMB > 0 {
		if err := eng.SetOption("Hash", strconv.Itoa(*hashMB)); err != nil {
			log.Error().Err(err).Msg("invalid -hash")
		}
	}

	if err := protocol.Run(os.Stdin); err != nil {
		log.Error().Err(err).Msg("reading commands")
	}
}
