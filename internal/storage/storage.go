package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// Storage keys
const (
	keyOptions     = "options"
	prefixAnalysis = "analysis/"
)

// Analysis is the result of a finished search, stored under the Zobrist hash
// of the searched position.
type Analysis struct {
	FEN        string    `json:"fen"`
	BestMove   string    `json:"best_move"`
	Score      int       `json:"score"`
	Depth      int       `json:"depth"`
	Nodes      uint64    `json:"nodes"`
	SearchedAt time.Time `json:"searched_at"`
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db  *badger.DB
	log zerolog.Logger
}

// Open opens the database in dir. An empty dir keeps everything in memory,
// which is what tests and one-shot tools use.
func Open(dir string, log zerolog.Logger) (*Storage, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{log})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", dir, err)
	}
	log.Debug().Str("dir", dir).Bool("in_memory", dir == "").Msg("database opened")
	return &Storage{db: db, log: log}, nil
}

// OpenDefault opens the database in the platform data directory.
func OpenDefault(log zerolog.Logger) (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir, log)
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveOptions replaces the stored engine options.
func (s *Storage) SaveOptions(opts map[string]string) error {
	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyOptions), data)
	})
}

// SetOption stores a single option, keeping the others.
func (s *Storage) SetOption(name, value string) error {
	opts, err := s.LoadOptions()
	if err != nil {
		return err
	}
	opts[name] = value
	return s.SaveOptions(opts)
}

// LoadOptions loads the stored engine options. Nothing stored yields an
// empty map.
func (s *Storage) LoadOptions() (map[string]string, error) {
	opts := make(map[string]string)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyOptions))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &opts)
		})
	})

	return opts, err
}

// SaveAnalysis records a search result for the position with the given hash.
// A stored result from a deeper search is kept; saved reports whether a was
// written.
func (s *Storage) SaveAnalysis(hash uint64, a Analysis) (saved bool, err error) {
	if a.SearchedAt.IsZero() {
		a.SearchedAt = time.Now()
	}
	data, err := json.Marshal(a)
	if err != nil {
		return false, err
	}

	key := analysisKey(hash)
	err = s.db.Update(func(txn *badger.Txn) error {
		old, found, err := getAnalysis(txn, key)
		if err != nil {
			return err
		}
		if found && old.Depth > a.Depth {
			return nil
		}
		saved = true
		return txn.Set(key, data)
	})
	if err == nil && saved {
		s.log.Debug().Str("fen", a.FEN).Str("bestmove", a.BestMove).Int("depth", a.Depth).Msg("analysis saved")
	}
	return saved, err
}

// LoadAnalysis returns the stored result for hash, if any.
func (s *Storage) LoadAnalysis(hash uint64) (a Analysis, found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		a, found, err = getAnalysis(txn, analysisKey(hash))
		return err
	})
	return a, found, err
}

// CountAnalyses returns the number of stored search results.
func (s *Storage) CountAnalyses() (int, error) {
	n := 0
	prefix := []byte(prefixAnalysis)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func getAnalysis(txn *badger.Txn, key []byte) (Analysis, bool, error) {
	var a Analysis
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return a, false, nil
	}
	if err != nil {
		return a, false, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &a)
	})
	return a, err == nil, err
}

func analysisKey(hash uint64) []byte {
	key := make([]byte, len(prefixAnalysis)+8)
	copy(key, prefixAnalysis)
	binary.BigEndian.PutUint64(key[len(prefixAnalysis):], hash)
	return key
}

// badgerLogger routes badger's internal messages to zerolog. Badger is chatty
// at info level, so those go to debug.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Str("component", "badger").Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Str("component", "badger").Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Str("component", "badger").Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Str("component", "badger").Msgf(format, args...)
}
