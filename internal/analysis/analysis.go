// Package analysis asks a language model for the tone of a journal entry.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyContent is returned before any provider call when there is nothing
// to analyse.
var ErrEmptyContent = errors.New("nothing to analyze")

// Result is the tone analysis of one entry.
type Result struct {
	OverallSentiment    string `json:"overallSentiment"`
	KeyEmotionalSignals string `json:"keyEmotionalSignals"`
}

// Analyzer performs a single tone analysis. Calls are independent: there is
// no retry and no shared state.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Result, error)
}

// Prompt is the instruction sent with every entry.
func Prompt(text string) string {
	return "Analyze the following journal entry for its tone and sentiment. " +
		"Provide an overall sentiment and summarize the key emotional signals present.\n\n" +
		"Journal Entry: " + text
}

// ParseResult decodes a model reply, tolerating a markdown code fence around
// the JSON.
func ParseResult(reply string) (Result, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)

	var r Result
	if err := json.Unmarshal([]byte(reply), &r); err != nil {
		return Result{}, fmt.Errorf("parse analysis: %w (response: %s)", err, reply)
	}
	if r.OverallSentiment == "" && r.KeyEmotionalSignals == "" {
		return Result{}, fmt.Errorf("parse analysis: empty result")
	}
	return r, nil
}
