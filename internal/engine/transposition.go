package engine

import (
	"math"

	"github.com/hailam/luna/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	ttEmpty      TTFlag = iota
	TTExact             // Exact score
	TTLowerBound        // Failed high (beta cutoff)
	TTUpperBound        // Failed low
)

// ttEntrySize is the in-memory size of TTEntry, used to size tables from megabytes.
const ttEntrySize = 16

// genBound packs the generation (upper five bits), the PV bit and the flag.
const (
	ttFlagMask = 0x3
	ttPVBit    = 0x4
	ttGenShift = 3
	ttGenMask  = 0x1F
)

// TTEntry represents an entry in the transposition table.
type TTEntry struct {
	Key      uint64     // Full Zobrist hash for verification
	BestMove board.Move // Best move found, NoMove if none
	Score    int16      // Score relative to this node, mate scores stored from the node
	Depth    int8       // Remaining depth of the search that produced it
	genBound uint8
}

// Flag returns the bound type of the entry.
func (e *TTEntry) Flag() TTFlag { return TTFlag(e.genBound & ttFlagMask) }

// IsPV reports whether the entry was stored from an exact PV node.
func (e *TTEntry) IsPV() bool { return e.genBound&ttPVBit != 0 }

func (e *TTEntry) generation() uint8 { return e.genBound >> ttGenShift }

// TranspositionTable is a hash table for storing search results.
// It is owned by a single EngineContext and is not safe for concurrent use.
type TranspositionTable struct {
	entries []TTEntry
	mask    uint64
	gen     uint8
}

// NewTranspositionTable creates a transposition table with the given size in MB.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	tt := &TranspositionTable{}
	tt.Resize(sizeMB)
	return tt
}

// Resize reallocates the table. All entries are lost.
func (tt *TranspositionTable) Resize(sizeMB int) {
	n := roundDownToPowerOf2(uint64(max(sizeMB, 1)) * 1024 * 1024 / ttEntrySize)
	tt.entries = make([]TTEntry, n)
	tt.mask = n - 1
	tt.gen = 0
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Lookup returns the stored best move for key regardless of depth.
func (tt *TranspositionTable) Lookup(key uint64) (board.Move, bool) {
	e := &tt.entries[key&tt.mask]
	if e.Key != key || e.Flag() == ttEmpty {
		return board.NoMove, false
	}
	return e.BestMove, true
}

// Probe looks up key for a node searched to depth at distance ply from the
// root. ok is true only when the entry is deep enough and its bound settles
// the window: exact scores always, lower bounds at or above beta, upper
// bounds at or below alpha. The stored move is returned whenever the key
// matches, for move ordering.
func (tt *TranspositionTable) Probe(key uint64, depth, ply, alpha, beta int) (score int, move board.Move, ok bool) {
	e := &tt.entries[key&tt.mask]
	if e.Key != key || e.Flag() == ttEmpty {
		return 0, board.NoMove, false
	}
	move = e.BestMove
	if int(e.Depth) < min(depth, math.MaxInt8) {
		return 0, move, false
	}

	score = scoreFromTT(int(e.Score), ply)
	switch e.Flag() {
	case TTExact:
		return score, move, true
	case TTLowerBound:
		if score >= beta {
			return beta, move, true
		}
	case TTUpperBound:
		if score <= alpha {
			return alpha, move, true
		}
	}
	return 0, move, false
}

// Store saves a search result. Depths beyond the int8 range are stored as
// math.MaxInt8. An entry is replaced when it is empty, from an
// older search, for the same position, not deeper than the new data, or when
// the new data comes from a PV node. Deeper entries of the current search are
// kept.
func (tt *TranspositionTable) Store(key uint64, depth, ply, score int, move board.Move, flag TTFlag, pv bool) {
	e := &tt.entries[key&tt.mask]

	if e.Flag() != ttEmpty && e.generation() == tt.gen && e.Key != key && depth < int(e.Depth) && !pv {
		return
	}
	if move == board.NoMove && e.Key == key {
		move = e.BestMove
	}

	gb := tt.gen<<ttGenShift | uint8(flag)
	if pv {
		gb |= ttPVBit
	}
	*e = TTEntry{
		Key:      key,
		BestMove: move.Base(),
		Score:    int16(scoreToTT(score, ply)),
		Depth:    int8(min(depth, math.MaxInt8)),
		genBound: gb,
	}
}

// NewSearch increments the generation so entries of earlier searches become
// replaceable.
func (tt *TranspositionTable) NewSearch() {
	tt.gen = (tt.gen + 1) & ttGenMask
}

// Clear clears the transposition table.
func (tt *TranspositionTable) Clear() {
	clear(tt.entries)
	tt.gen = 0
}

// HashFull returns the permille (parts per thousand) of the table used by the
// current search.
func (tt *TranspositionTable) HashFull() int {
	sample := min(1000, len(tt.entries))
	used := 0
	for i := 0; i < sample; i++ {
		e := &tt.entries[i]
		if e.Flag() != ttEmpty && e.generation() == tt.gen {
			used++
		}
	}
	return used * 1000 / sample
}

// Size returns the number of entries in the table.
func (tt *TranspositionTable) Size() int {
	return len(tt.entries)
}

// scoreToTT converts a mate score relative to the root into one relative to
// the node being stored.
func scoreToTT(score, ply int) int {
	if score > MateBound {
		return score + ply
	}
	if score < -MateBound {
		return score - ply
	}
	return score
}

// scoreFromTT is the inverse of scoreToTT.
func scoreFromTT(score, ply int) int {
	if score > MateBound {
		return score - ply
	}
	if score < -MateBound {
		return score + ply
	}
	return score
}
