package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/hailam/luna/internal/board"
)

// Info is the progress record published after every completed iteration.
type Info struct {
	Depth    int
	SelDepth int
	Score    int
	Nodes    uint64
	Elapsed  time.Duration
	NPS      uint64
	HashFull int // Permille of hash table used
	PV       []board.Move
}

// String formats the record as a UCI info line.
func (i Info) String() string {
	var sb strings.Builder
	sb.WriteString("info depth ")
	sb.WriteString(strconv.Itoa(i.Depth))
	sb.WriteString(" seldepth ")
	sb.WriteString(strconv.Itoa(i.SelDepth))
	sb.WriteString(" score ")
	sb.WriteString(FormatScore(i.Score))
	sb.WriteString(" nodes ")
	sb.WriteString(strconv.FormatUint(i.Nodes, 10))
	sb.WriteString(" nps ")
	sb.WriteString(strconv.FormatUint(i.NPS, 10))
	sb.WriteString(" hashfull ")
	sb.WriteString(strconv.Itoa(i.HashFull))
	sb.WriteString(" time ")
	sb.WriteString(strconv.FormatInt(i.Elapsed.Milliseconds(), 10))
	if len(i.PV) > 0 {
		sb.WriteString(" pv")
		for _, m := range i.PV {
			sb.WriteByte(' ')
			sb.WriteString(m.String())
		}
	}
	return sb.String()
}

// FormatScore renders a score in UCI form: "cp N", or "mate N" with N in
// full moves, negative when the side to move is getting mated.
func FormatScore(score int) string {
	switch {
	case score > MateBound:
		return "mate " + strconv.Itoa((MateScore-score+1)/2)
	case score < -MateBound:
		return "mate -" + strconv.Itoa((MateScore+score)/2)
	}
	return "cp " + strconv.Itoa(score)
}

// nps returns nodes per second, zero for an empty interval.
func nps(nodes uint64, elapsed time.Duration) uint64 {
	if elapsed <= 0 {
		return 0
	}
	return uint64(float64(nodes) / elapsed.Seconds())
}
