package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"trashvision/internal/domain"
)

// CustomVision calls the Azure Custom Vision prediction API.
type CustomVision struct {
	endpoint  string
	projectID string
	client    *http.Client
}

func NewCustomVision(endpoint, projectID string, timeout time.Duration) *CustomVision {
	return &CustomVision{
		endpoint:  strings.TrimRight(endpoint, "/"),
		projectID: projectID,
		client:    &http.Client{Timeout: timeout},
	}
}

// Predict sends the image to one iteration with one credential. The image
// bytes are forwarded as-is; format validation is the service's job.
func (cv *CustomVision) Predict(ctx context.Context, image []byte, c Candidate) ([]domain.Prediction, error) {
	url := fmt.Sprintf("%s/customvision/v3.0/Prediction/%s/classify/iterations/%s/image",
		cv.endpoint, cv.projectID, c.Iteration)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(image))
	if err != nil {
		return nil, err
	}

	req.Header.Set(c.Header, c.Key)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := cv.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prediction API error: %d", resp.StatusCode)
	}

	var apiResp struct {
		Predictions []domain.Prediction `json:"predictions"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}

	return apiResp.Predictions, nil
}
