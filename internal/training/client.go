package training

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin wrapper over the Custom Vision training REST API.
type Client struct {
	endpoint string
	key      string
	client   *http.Client
}

func NewClient(endpoint, key string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		key:      key,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Created     string `json:"created"`
}

type Tag struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ImageCount int    `json:"imageCount"`
}

type Iteration struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Created     string `json:"created"`
	PublishName string `json:"publishName"`
	IsDefault   bool   `json:"isDefault"`
}

type Performance struct {
	Precision        float64 `json:"precision"`
	Recall           float64 `json:"recall"`
	AveragePrecision float64 `json:"averagePrecision"`
}

// ImageEntry is one file queued for upload, already tagged.
type ImageEntry struct {
	Name     string   `json:"name"`
	Contents []byte   `json:"contents"`
	TagIDs   []string `json:"tagIds"`
}

type imageBatch struct {
	Images []ImageEntry `json:"images"`
}

type uploadSummary struct {
	IsBatchSuccessful bool `json:"isBatchSuccessful"`
	Images            []struct {
		Status string `json:"status"`
	} `json:"images"`
}

func (c *Client) GetProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	err := c.do(ctx, "GET", "/projects", nil, nil, &projects)
	return projects, err
}

func (c *Client) CreateProject(ctx context.Context, name string) (*Project, error) {
	var project Project
	err := c.do(ctx, "POST", "/projects", url.Values{"name": {name}}, nil, &project)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var project Project
	err := c.do(ctx, "GET", "/projects/"+projectID, nil, nil, &project)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) GetTags(ctx context.Context, projectID string) ([]Tag, error) {
	var tags []Tag
	err := c.do(ctx, "GET", "/projects/"+projectID+"/tags", nil, nil, &tags)
	return tags, err
}

func (c *Client) CreateTag(ctx context.Context, projectID, name string) (*Tag, error) {
	var tag Tag
	err := c.do(ctx, "POST", "/projects/"+projectID+"/tags", url.Values{"name": {name}}, nil, &tag)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// UploadImages sends one batch of tagged images. The API rejects batches
// over 64 files; callers are expected to chunk.
func (c *Client) UploadImages(ctx context.Context, projectID string, entries []ImageEntry) error {
	var summary uploadSummary
	err := c.do(ctx, "POST", "/projects/"+projectID+"/images/files", nil, imageBatch{Images: entries}, &summary)
	if err != nil {
		return err
	}
	if !summary.IsBatchSuccessful {
		failed := 0
		for _, img := range summary.Images {
			if img.Status != "OK" && img.Status != "OKDuplicate" {
				failed++
			}
		}
		return fmt.Errorf("upload batch had %d failed images", failed)
	}
	return nil
}

func (c *Client) TrainProject(ctx context.Context, projectID string) (*Iteration, error) {
	var iteration Iteration
	err := c.do(ctx, "POST", "/projects/"+projectID+"/train", nil, nil, &iteration)
	if err != nil {
		return nil, err
	}
	return &iteration, nil
}

func (c *Client) GetIteration(ctx context.Context, projectID, iterationID string) (*Iteration, error) {
	var iteration Iteration
	err := c.do(ctx, "GET", "/projects/"+projectID+"/iterations/"+iterationID, nil, nil, &iteration)
	if err != nil {
		return nil, err
	}
	return &iteration, nil
}

func (c *Client) GetIterations(ctx context.Context, projectID string) ([]Iteration, error) {
	var iterations []Iteration
	err := c.do(ctx, "GET", "/projects/"+projectID+"/iterations", nil, nil, &iterations)
	return iterations, err
}

func (c *Client) GetIterationPerformance(ctx context.Context, projectID, iterationID string) (*Performance, error) {
	var perf Performance
	err := c.do(ctx, "GET", "/projects/"+projectID+"/iterations/"+iterationID+"/performance", nil, nil, &perf)
	if err != nil {
		return nil, err
	}
	return &perf, nil
}

// PublishIteration makes an iteration available to the prediction API under
// publishName.
func (c *Client) PublishIteration(ctx context.Context, projectID, iterationID, publishName, predictionResourceID string) error {
	query := url.Values{
		"publishName":  {publishName},
		"predictionId": {predictionResourceID},
	}
	return c.do(ctx, "POST", "/projects/"+projectID+"/iterations/"+iterationID+"/publish", query, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.endpoint + "/customvision/v3.4/training" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Training-Key", c.key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("training API error: %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
