package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/weft/internal/node"
)

// marshalDetails serializes error details to canonical JSON. Nil and empty
// maps become "{}".
func marshalDetails(details map[string]string) (string, error) {
	if details == nil {
		details = map[string]string{}
	}
	data, err := node.MarshalCanonical(details)
	if err != nil {
		return "", fmt.Errorf("marshal details: %w", err)
	}
	return string(data), nil
}

func unmarshalDetails(s string) (map[string]string, error) {
	out := map[string]string{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("unmarshal details: %w", err)
	}
	return out, nil
}
