package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vcscsvcscs/wellness-tracker/internal/normalize"
)

// ErrNotFound is returned when a single requested row does not exist
var ErrNotFound = errors.New("not found")

// listColumn converts a loosely-typed list field into its TEXT column value. Strings are
// stored verbatim so the normalizer sees exactly what the logging screen wrote.
func listColumn(value any) (*string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	case *string:
		return v, nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode list column: %w", err)
		}
		s := string(encoded)
		return &s, nil
	}
}

// numberColumn keeps only finite numeric values for DOUBLE PRECISION columns
func numberColumn(value any) *float64 {
	return normalize.SafeNumber(value)
}
