// Package transfer reads and writes the ledger export formats.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"kharcha/internal/core"
)

// ErrMalformed reports an import file that is not a JSON array of expenses.
var ErrMalformed = errors.New("malformed import file")

// WriteJSON writes expenses as a 2-space indented array.
func WriteJSON(w io.Writer, expenses []core.Expense) error {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(expenses); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}

// ReadJSON decodes an exported array. Records keep their ids and timestamps.
func ReadJSON(r io.Reader) ([]core.Expense, error) {
	var out []core.Expense
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode json import: %w", ErrMalformed, err)
	}
	return out, nil
}
