package board

// Zobrist keys. A fixed seed keeps hashes stable between runs, which the
// persistent analysis store relies on.
var (
	zobristPiece     [12][64]uint64
	zobristCastling  [16]uint64
	zobristEnPassant [8]uint64
	zobristSide      uint64
)

const zobristSeed = 0x98F107A2BEEF1234

func init() {
	rng := newPRNG(zobristSeed)
	for pc := WhitePawn; pc < NoPiece; pc++ {
		for sq := A1; sq <= H8; sq++ {
			zobristPiece[pc][sq] = rng.next()
		}
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	for f := range zobristEnPassant {
		zobristEnPassant[f] = rng.next()
	}
	zobristSide = rng.next()
}

// prng is xorshift64*.
type prng struct{ s uint64 }

func newPRNG(seed uint64) *prng { return &prng{s: seed} }

func (r *prng) next() uint64 {
	r.s ^= r.s >> 12
	r.s ^= r.s << 25
	r.s ^= r.s >> 27
	return r.s * 0x2545F4914F6CDD1D
}

// sparse returns a number with roughly an eighth of its bits set.
func (r *prng) sparse() uint64 { return r.next() & r.next() & r.next() }

// ComputeHash rebuilds the Zobrist key from the mailbox and state fields.
// Black to move carries the side key.
func (p *Position) ComputeHash() uint64 {
	var h uint64
	for sq := A1; sq <= H8; sq++ {
		if pc := p.Board[sq]; pc != NoPiece {
			h ^= zobristPiece[pc][sq]
		}
	}
	h ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		h ^= zobristEnPassant[p.EnPassant.File()]
	}
	if p.SideToMove == Black {
		h ^= zobristSide
	}
	return h
}
