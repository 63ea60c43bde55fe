package board

import "math/bits"

// Magic holds the fancy magic bitboard lookup for one square: the occupancy
// bits that matter are isolated by Mask, multiplied by Number and shifted down
// to index Attacks.
type Magic struct {
	Mask    Bitboard
	Number  uint64
	Shift   uint
	Attacks []Bitboard
}

// Index hashes an occupancy into the square's attack slice.
func (m *Magic) Index(occupied Bitboard) uint {
	return uint((uint64(occupied&m.Mask) * m.Number) >> m.Shift)
}

var (
	rookMagics   [64]Magic
	bishopMagics [64]Magic

	rookTable   [0x19000]Bitboard
	bishopTable [0x1480]Bitboard
)

// Per-rank seeds known to find a full magic set quickly with xorshift64*.
var magicSeeds = [8]uint64{728, 10316, 55013, 32803, 12281, 15100, 16645, 255}

func initMagics() {
	findMagics(rookMagics[:], rookTable[:], rookDirections)
	findMagics(bishopMagics[:], bishopTable[:], bishopDirections)
}

// findMagics fills the magic for every square by trying sparse random
// multipliers until one maps every relevant occupancy subset to a slot
// holding the matching attack set. Constructive collisions, where two
// subsets share an attack set, are allowed.
func findMagics(magics []Magic, table []Bitboard, dirs [4]direction) {
	var (
		occupancy [4096]Bitboard
		reference [4096]Bitboard
		epoch     [4096]int
		attempt   int
	)
	offset := 0

	for sq := A1; sq <= H8; sq++ {
		edges := ((Rank1 | Rank8) &^ RankMask[sq.Rank()]) | ((FileA | FileH) &^ FileMask[sq.File()])

		m := &magics[sq]
		m.Mask = slidingAttacks(sq, 0, dirs) &^ edges
		m.Shift = uint(64 - m.Mask.PopCount())
		size := 1 << m.Mask.PopCount()
		m.Attacks = table[offset : offset+size]
		offset += size

		// Carry-rippler enumeration of every subset of the mask.
		n := 0
		for b := Bitboard(0); ; {
			occupancy[n] = b
			reference[n] = slidingAttacks(sq, b, dirs)
			n++
			b = (b - m.Mask) & m.Mask
			if b == 0 {
				break
			}
		}

		rng := newPRNG(magicSeeds[sq.Rank()])
		for i := 0; i < n; {
			for m.Number = 0; bits.OnesCount64((m.Number*uint64(m.Mask))>>56) < 6; {
				m.Number = rng.sparse()
			}
			attempt++
			for i = 0; i < n; i++ {
				idx := m.Index(occupancy[i])
				if epoch[idx] < attempt {
					epoch[idx] = attempt
					m.Attacks[idx] = reference[i]
				} else if m.Attacks[idx] != reference[i] {
					break
				}
			}
		}
	}
}

// RookAttacks returns the squares a rook on sq attacks given the occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &rookMagics[sq]
	return m.Attacks[m.Index(occupied)]
}

// BishopAttacks returns the squares a bishop on sq attacks given the occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &bishopMagics[sq]
	return m.Attacks[m.Index(occupied)]
}
