package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// jsonValue encodes v for a nullable TEXT column. nil slices and maps are stored as NULL.
func jsonValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json column: %w", err)
	}
	if string(b) == "null" {
		return nil, nil
	}
	return string(b), nil
}

func scanJSON(ns sql.NullString, dst any) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(ns.String), dst); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}
