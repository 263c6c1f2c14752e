package classifier

import (
	"context"
	"fmt"
	"strings"

	"trashvision/internal/config"
	"trashvision/internal/domain"
)

// Candidate is one credential/iteration pair to try against the prediction
// API. The header name depends on which key type is being attempted.
type Candidate struct {
	Header    string
	Key       string
	Iteration string
}

// Predictor issues a single classification attempt.
type Predictor interface {
	Predict(ctx context.Context, image []byte, c Candidate) ([]domain.Prediction, error)
}

// Result is a successful classification: the raw predictions plus the
// candidate that produced them.
type Result struct {
	Predictions []domain.Prediction
	Candidate   Candidate
}

// ExhaustionError means every candidate failed. TriedIterations lists the
// iteration name of each attempt, in order.
type ExhaustionError struct {
	TriedIterations []string
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("no working iteration found (tried: %s)", strings.Join(e.TriedIterations, ", "))
}

// Candidates builds the fixed attempt order: the prediction key first, then
// the training key as fallback, each tried against the configured published
// name followed by the known-good fallback iterations.
func Candidates(cfg config.PredictionConfig) []Candidate {
	keys := []struct{ header, key string }{
		{"Prediction-Key", cfg.Key},
		{"Training-Key", cfg.TrainingKey},
	}
	iterations := append([]string{cfg.PublishedName}, cfg.FallbackIterations...)

	var out []Candidate
	for _, k := range keys {
		for _, it := range iterations {
			out = append(out, Candidate{Header: k.header, Key: k.key, Iteration: it})
		}
	}
	return out
}
