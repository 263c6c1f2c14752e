package classifier

import (
	"fmt"
	"sort"
	"strings"

	"trashvision/internal/domain"
)

// DefaultConfidenceFloor is the minimum probability (exclusive) for a
// prediction to be reported as a detection.
const DefaultConfidenceFloor = 0.5

// recyclableTag is the tag name treated as the recyclable verdict.
const recyclableTag = "recyclable"

const fallbackRecommendation = "Unable to classify item. Please check local recycling guidelines."

// Normalize turns raw predictions into the response summary: sorted by
// probability descending, filtered to strictly above floor, with one
// recommendation per detection. When nothing clears the floor the summary
// holds a single synthetic "unknown" detection. Pure function; the input
// slice is not modified.
func Normalize(preds []domain.Prediction, floor float64) domain.Summary {
	sorted := make([]domain.Prediction, len(preds))
	copy(sorted, preds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Probability > sorted[j].Probability
	})

	var items []domain.Detection
	var recs []string
	for _, p := range sorted {
		if p.Probability <= floor {
			continue
		}

		recyclable := strings.ToLower(p.TagName) == recyclableTag
		items = append(items, domain.Detection{
			Type:       strings.ToLower(p.TagName),
			Confidence: p.Probability,
			Recyclable: recyclable,
		})

		if recyclable {
			recs = append(recs, fmt.Sprintf("%s item can be placed in recycling bin", p.TagName))
		} else {
			recs = append(recs, fmt.Sprintf("%s item should go in general waste", p.TagName))
		}
	}

	if len(items) == 0 {
		items = []domain.Detection{{Type: "unknown", Confidence: 0.0, Recyclable: false}}
		recs = []string{fallbackRecommendation}
	}

	return domain.Summary{
		DetectedItems:   items,
		Recommendations: recs,
		RawPredictions:  preds,
	}
}
