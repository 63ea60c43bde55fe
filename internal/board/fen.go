package board

import (
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a position from FEN text. The placement and side fields are
// required; castling, en passant and the two counters are optional. Every
// failure is a *MalformedPositionError.
func ParseFEN(fen string) (*Position, error) {
	bad := func(reason string) error {
		return &MalformedPositionError{FEN: fen, Reason: reason}
	}

	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return nil, bad("need at least placement and side to move")
	}

	p := newEmptyPosition()
	if reason := p.parsePlacement(fields[0]); reason != "" {
		return nil, bad(reason)
	}
	if p.Pieces[White][King].PopCount() != 1 || p.Pieces[Black][King].PopCount() != 1 {
		return nil, bad("each side needs exactly one king")
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return nil, bad("pawn on first or last rank")
	}

	switch fields[1] {
	case "w":
		p.SideToMove = White
	case "b":
		p.SideToMove = Black
		p.Hash ^= zobristSide
	default:
		return nil, bad("side to move must be w or b")
	}

	if len(fields) > 2 && fields[2] != "-" {
		for _, ch := range fields[2] {
			i := strings.IndexRune("KQkq", ch)
			if i < 0 {
				return nil, bad("invalid castling field " + fields[2])
			}
			p.CastlingRights |= 1 << i
		}
	}
	// Rights without the king and rook on their home squares cannot be used.
	p.CastlingRights &= p.castlingSupported()
	p.Hash ^= zobristCastling[p.CastlingRights]

	if len(fields) > 3 && fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil || sq.RelativeRank(p.SideToMove) != 5 {
			return nil, bad("invalid en passant square " + fields[3])
		}
		// The double push must be visible: the pawn that made it, and empty
		// squares behind it.
		them := p.SideToMove.Other()
		if p.Board[epVictim(sq, p.SideToMove)] != NewPiece(Pawn, them) ||
			p.Board[sq] != NoPiece || p.Board[epVictim(sq, them)] != NoPiece {
			return nil, bad("no double pawn push behind en passant square " + fields[3])
		}
		p.EnPassant = sq
		p.Hash ^= zobristEnPassant[sq.File()]
	}

	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return nil, bad("invalid half-move clock " + fields[4])
		}
		p.HalfMoveClock = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return nil, bad("invalid full-move number " + fields[5])
		}
		p.FullMoveNumber = n
	}

	p.refresh()
	if p.IsAttacked(p.KingSquare[p.SideToMove.Other()], p.SideToMove) {
		return nil, bad("side not to move is in check")
	}
	return p, nil
}

// parsePlacement fills the board from the first FEN field and returns a
// non-empty reason when it does not describe exactly 64 squares.
func (p *Position) parsePlacement(placement string) string {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return "placement needs 8 ranks, got " + strconv.Itoa(len(ranks))
	}
	for i, row := range ranks {
		rank, file := 7-i, 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			pc := PieceFromChar(ch)
			if pc == NoPiece {
				return "invalid piece letter " + strconv.QuoteRune(rune(ch))
			}
			if file > 7 {
				return "rank " + strconv.Itoa(rank+1) + " covers more than 8 squares"
			}
			p.putPiece(pc, NewSquare(file, rank))
			file++
		}
		if file != 8 {
			return "rank " + strconv.Itoa(rank+1) + " covers " + strconv.Itoa(file) + " squares"
		}
	}
	return ""
}

func (p *Position) castlingSupported() CastlingRights {
	var cr CastlingRights
	if p.Board[E1] == WhiteKing {
		if p.Board[H1] == WhiteRook {
			cr |= WhiteKingSide
		}
		if p.Board[A1] == WhiteRook {
			cr |= WhiteQueenSide
		}
	}
	if p.Board[E8] == BlackKing {
		if p.Board[H8] == BlackRook {
			cr |= BlackKingSide
		}
		if p.Board[A8] == BlackRook {
			cr |= BlackQueenSide
		}
	}
	return cr
}

// FEN renders the position in Forsyth-Edwards notation.
func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.Board[NewSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	side := " w "
	if p.SideToMove == Black {
		side = " b "
	}
	sb.WriteString(side)
	sb.WriteString(p.CastlingRights.String())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	sb.WriteString(" " + strconv.Itoa(p.HalfMoveClock) + " " + strconv.Itoa(p.FullMoveNumber))
	return sb.String()
}
