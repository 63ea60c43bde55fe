// Package diagram draws positions as SVG board diagrams.
package diagram

import (
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/hailam/luna/internal/board"
)

// Colors
const (
	lightSquare     = "#f0d9b5"
	darkSquare      = "#b58863"
	highlightSquare = "#cdd26a"
	labelColor      = "#404040"
)

// glyphs holds the Unicode chess symbols indexed by board.Piece.
var glyphs = [board.NoPiece]string{
	"♙", "♘", "♗", "♖", "♕", "♔",
	"♟", "♞", "♝", "♜", "♛", "♚",
}

// Options control the drawing.
type Options struct {
	SquareSize int        // Side of one square in pixels, 45 when zero
	Flipped    bool       // Draw with black at the bottom
	Coords     bool       // Label files and ranks along the edges
	Highlight  board.Move // Move whose squares are tinted, NoMove for none
}

// Render writes pos as a standalone SVG document.
func Render(w io.Writer, pos *board.Position, opts Options) error {
	size := opts.SquareSize
	if size <= 0 {
		size = 45
	}
	margin := 0
	if opts.Coords {
		margin = size / 2
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(8*size+margin, 8*size+margin)

	hl := map[board.Square]bool{}
	if opts.Highlight != board.NoMove {
		hl[opts.Highlight.From()] = true
		hl[opts.Highlight.To()] = true
	}

	for sq := board.A1; sq <= board.H8; sq++ {
		x, y := squareOrigin(sq, size, opts.Flipped)
		x += margin
		fill := darkSquare
		if (sq.File()+sq.Rank())%2 == 1 {
			fill = lightSquare
		}
		if hl[sq] {
			fill = highlightSquare
		}
		canvas.Rect(x, y, size, size, "fill:"+fill)

		if pc := pos.PieceAt(sq); pc != board.NoPiece {
			canvas.Text(x+size/2, y+size*4/5, glyphs[pc],
				"text-anchor:middle;font-size:"+strconv.Itoa(size*4/5)+"px;font-family:serif")
		}
	}

	if opts.Coords {
		labelStyle := "text-anchor:middle;font-size:" + strconv.Itoa(size/3) + "px;fill:" + labelColor
		for i := 0; i < 8; i++ {
			x, _ := squareOrigin(board.NewSquare(i, 0), size, opts.Flipped)
			canvas.Text(x+margin+size/2, 8*size+margin*3/4, string(rune('a'+i)), labelStyle)
			_, y := squareOrigin(board.NewSquare(0, i), size, opts.Flipped)
			canvas.Text(margin/2, y+size/2+size/8, string(rune('1'+i)), labelStyle)
		}
	}

	canvas.End()
	return ew.err
}

// squareOrigin returns the top-left pixel of sq on an unlabelled board.
func squareOrigin(sq board.Square, size int, flipped bool) (x, y int) {
	file, rank := sq.File(), sq.Rank()
	if flipped {
		file, rank = 7-file, 7-rank
	}
	return file * size, (7 - rank) * size
}

// errWriter keeps the first write error, since svgo drops them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
