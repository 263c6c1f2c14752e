package domain

import "time"

// Prediction is one raw label/probability pair as returned by the
// Custom Vision prediction API.
type Prediction struct {
	TagName     string  `json:"tagName"`
	Probability float64 `json:"probability"`
}

// Detection is a prediction that cleared the confidence floor.
type Detection struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Recyclable bool    `json:"recyclable"`
}

// Summary is the response body of a successful /predict call.
// RawPredictions carries the upstream list untouched, for diagnostics.
type Summary struct {
	DetectedItems   []Detection  `json:"detected_items"`
	Recommendations []string     `json:"recommendations"`
	RawPredictions  []Prediction `json:"raw_predictions"`
}

// Classification is the audit record of one verdict. It is both the
// Kafka event payload and the Postgres row.
type Classification struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Recyclable bool      `json:"recyclable"`
	Iteration  string    `json:"iteration"`
	CreatedAt  time.Time `json:"created_at"`
}
