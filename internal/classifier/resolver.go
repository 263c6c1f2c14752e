package classifier

import (
	"context"
	"errors"
	"log"
)

// Resolver walks the candidate list in order and returns the first
// successful classification. Candidates with an empty key are skipped
// without a network call.
type Resolver struct {
	predictor  Predictor
	candidates []Candidate
	primary    string
}

// NewResolver builds a resolver over a fixed candidate list. primary is the
// iteration name whose failures are worth logging; failures on fallback
// candidates stay out of the logs to cut noise.
func NewResolver(p Predictor, candidates []Candidate, primary string) *Resolver {
	return &Resolver{
		predictor:  p,
		candidates: candidates,
		primary:    primary,
	}
}

func (r *Resolver) Resolve(ctx context.Context, image []byte) (*Result, error) {
	if len(r.candidates) == 0 {
		return nil, errors.New("no candidates configured")
	}
	if len(image) == 0 {
		return nil, errors.New("empty image")
	}

	var tried []string
	for _, c := range r.candidates {
		if c.Key == "" {
			continue
		}
		tried = append(tried, c.Iteration)

		preds, err := r.predictor.Predict(ctx, image, c)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if c.Iteration == r.primary {
				log.Printf("[PREDICT] iteration %s (%s) failed: %v", c.Iteration, c.Header, err)
			}
			continue
		}

		return &Result{Predictions: preds, Candidate: c}, nil
	}

	return nil, &ExhaustionError{TriedIterations: tried}
}
