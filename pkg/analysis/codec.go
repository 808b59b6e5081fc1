package analysis

import (
	"encoding/json"
	"fmt"
)

// Encode serializes a as self-describing JSON. It is the only format the
// store writes into a note's ai_analysis column.
func Encode(a AIAnalysis) (string, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encode analysis: %w", err)
	}
	return string(data), nil
}

// Decode parses a blob written by Encode.
func Decode(blob string) (AIAnalysis, error) {
	var a AIAnalysis
	if err := json.Unmarshal([]byte(blob), &a); err != nil {
		return AIAnalysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	return a, nil
}
