package board

// Material and piece-square values used for the incremental score. Tables
// are written as seen from white's side, rank 8 on the first row.

var (
	materialMG = [6]int{100, 320, 330, 500, 900, 0}
	materialEG = [6]int{115, 290, 310, 540, 950, 0}
)

// PhaseWeight is the contribution of each piece type to the game phase.
var PhaseWeight = [6]int{0, 1, 1, 2, 4, 0}

// MaxPhase is the phase of the starting material; larger values are clamped.
const MaxPhase = 24

var boardValuesMG = [6][64]int{
	Pawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		45, 50, 50, 55, 55, 50, 50, 45,
		10, 10, 20, 30, 30, 20, 10, 10,
		5, 5, 10, 25, 25, 10, 5, 5,
		0, 0, 5, 20, 20, 0, 0, 0,
		5, -5, -10, 0, 0, -10, -5, 5,
		5, 10, 10, -20, -20, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	Knight: {
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-50, -35, -30, -30, -30, -30, -35, -50,
	},
	Bishop: {
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
	Rook: {
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, 10, 10, 10, 10, 5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		0, 0, 0, 5, 5, 0, 0, 0,
	},
	Queen: {
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-5, 0, 5, 5, 5, 5, 0, -5,
		0, 0, 5, 5, 5, 5, 0, -5,
		-10, 5, 5, 5, 5, 5, 0, -10,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	King: {
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		20, 20, 0, 0, 0, 0, 20, 20,
		20, 30, 10, 0, 0, 10, 30, 20,
	},
}

var boardValuesEG = [6][64]int{
	Pawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		90, 90, 85, 80, 80, 85, 90, 90,
		55, 55, 50, 45, 45, 50, 55, 55,
		30, 30, 25, 20, 20, 25, 30, 30,
		15, 15, 10, 10, 10, 10, 15, 15,
		5, 5, 5, 5, 5, 5, 5, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	Knight: {
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, -5, 0, 0, -5, -20, -40,
		-30, -5, 10, 15, 15, 10, -5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, -5, 10, 15, 15, 10, -5, -30,
		-40, -20, -5, 0, 0, -5, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	},
	Bishop: {
		-15, -10, -10, -10, -10, -10, -10, -15,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-15, -10, -10, -10, -10, -10, -10, -15,
	},
	Rook: {
		5, 5, 5, 5, 5, 5, 5, 5,
		10, 10, 10, 10, 10, 10, 10, 10,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	Queen: {
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 5, 10, 10, 10, 10, 5, -10,
		-5, 5, 10, 15, 15, 10, 5, -5,
		-5, 5, 10, 15, 15, 10, 5, -5,
		-10, 5, 10, 10, 10, 10, 5, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	King: {
		-50, -40, -30, -20, -20, -30, -40, -50,
		-30, -20, -10, 0, 0, -10, -20, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -30, 0, 0, 0, 0, -30, -30,
		-50, -30, -30, -30, -30, -30, -30, -50,
	},
}

// psqMG and psqEG hold material plus square value per piece, already signed
// so that white adds and black subtracts.
var psqMG, psqEG [12][64]int

func init() {
	for pt := Pawn; pt <= King; pt++ {
		for sq := A1; sq <= H8; sq++ {
			w, b := NewPiece(pt, White), NewPiece(pt, Black)
			// The tables are printed rank 8 first, so a white square reads
			// its mirror and a black square reads itself.
			psqMG[w][sq] = materialMG[pt] + boardValuesMG[pt][sq.Mirror()]
			psqEG[w][sq] = materialEG[pt] + boardValuesEG[pt][sq.Mirror()]
			psqMG[b][sq] = -(materialMG[pt] + boardValuesMG[pt][sq])
			psqEG[b][sq] = -(materialEG[pt] + boardValuesEG[pt][sq])
		}
	}
}

// PieceSquare returns the signed middlegame and endgame value of pc on sq.
func PieceSquare(pc Piece, sq Square) (mg, eg int) {
	return psqMG[pc][sq], psqEG[pc][sq]
}

// ComputeScore sums the piece-square values and phase from scratch.
func (p *Position) ComputeScore() (mg, eg, phase int) {
	for sq := A1; sq <= H8; sq++ {
		pc := p.Board[sq]
		if pc == NoPiece {
			continue
		}
		mg += psqMG[pc][sq]
		eg += psqEG[pc][sq]
		phase += PhaseWeight[pc.Type()]
	}
	return mg, eg, phase
}

// Tapered blends the incremental middlegame and endgame scores by phase.
// The result is from white's point of view.
func (p *Position) Tapered() int {
	phase := min(p.Phase, MaxPhase)
	return (p.ScoreMG*phase + p.ScoreEG*(MaxPhase-phase)) / MaxPhase
}
