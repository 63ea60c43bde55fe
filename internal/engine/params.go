package engine

import (
	"encoding/json"
	"fmt"
	"io"
)

// EvalParams holds the tunable evaluation terms layered on top of the
// piece-square score. All values are centipawns.
type EvalParams struct {
	BishopPair   int `json:"bishop_pair"`
	DoubledPawn  int `json:"doubled_pawn"`
	OpenFile     int `json:"open_file"`
	SemiOpenFile int `json:"semi_open_file"`
}

// DefaultEvalParams returns the built-in evaluation terms.
func DefaultEvalParams() EvalParams {
	return EvalParams{
		BishopPair:   30,
		DoubledPawn:  15,
		OpenFile:     25,
		SemiOpenFile: 10,
	}
}

// LoadEvalParams decodes parameters from JSON. Fields missing from the input
// keep their default value.
func LoadEvalParams(r io.Reader) (EvalParams, error) {
	p := DefaultEvalParams()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return DefaultEvalParams(), fmt.Errorf("decode eval params: %w", err)
	}
	return p, nil
}

// Save writes the parameters as indented JSON.
func (p EvalParams) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode eval params: %w", err)
	}
	return nil
}
