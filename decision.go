package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	ActionRecord  = "record"
	ActionClarify = "clarify"
	ActionAnswer  = "answer"
)

const fallbackMessage = "Не совсем понял. Попробуй переформулировать или напиши /help"

type WorkPayload struct {
	WorkType string
	Client   string
	Quantity string
	Details  string
}

// Decision is the validated classifier output. Exactly one of the three
// action tags is set; anything the model sends that does not conform
// collapses to the answer fallback.
type Decision struct {
	Action  string
	Message string
	Data    WorkPayload
}

func FallbackDecision() Decision {
	return Decision{Action: ActionAnswer, Message: fallbackMessage}
}

type rawDecision struct {
	Action  string         `json:"action"`
	Message string         `json:"message"`
	Data    rawWorkPayload `json:"data"`
}

type rawWorkPayload struct {
	WorkType string          `json:"workType"`
	Client   string          `json:"client"`
	Quantity json.RawMessage `json:"quantity"`
	Details  string          `json:"details"`
}

// ParseDecision extracts the first balanced JSON object from the model's
// raw text (prose around it is tolerated) and validates the action tag.
// It never fails: any malformation yields the fallback answer decision.
func ParseDecision(responseText string) Decision {
	obj, ok := extractJSONObject(responseText)
	if !ok {
		return FallbackDecision()
	}

	var raw rawDecision
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return FallbackDecision()
	}

	action := strings.TrimSpace(raw.Action)
	switch action {
	case ActionRecord, ActionClarify, ActionAnswer:
	default:
		return FallbackDecision()
	}

	return Decision{
		Action:  action,
		Message: strings.TrimSpace(raw.Message),
		Data: WorkPayload{
			WorkType: strings.TrimSpace(raw.Data.WorkType),
			Client:   strings.TrimSpace(raw.Data.Client),
			Quantity: parseQuantityField(raw.Data.Quantity),
			Details:  strings.TrimSpace(raw.Data.Details),
		},
	}
}

// parseQuantityField accepts both "50" and bare 50 from the model.
func parseQuantityField(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString)
	}

	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return fmt.Sprintf("%.0f", asNumber)
	}

	return ""
}

// extractJSONObject returns the first brace-balanced object in s, tracking
// string literals and escapes so braces inside values don't end the scan.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
