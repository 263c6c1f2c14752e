package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trashvision/internal/classifier"
	"trashvision/internal/domain"
)

type stubResolver struct {
	result *classifier.Result
	err    error
}

func (s stubResolver) Resolve(context.Context, []byte) (*classifier.Result, error) {
	return s.result, s.err
}

func multipartImage(t *testing.T, field string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, "bottle.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doPredict(s *Server, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestPredictSuccess(t *testing.T) {
	resolver := stubResolver{
		result: &classifier.Result{
			Predictions: []domain.Prediction{
				{TagName: "Recyclable", Probability: 0.92},
				{TagName: "Non-Recyclable", Probability: 0.08},
			},
			Candidate: classifier.Candidate{Iteration: "trashvision-v1"},
		},
	}
	s := NewServer(resolver, 0.5, Options{})

	body, contentType := multipartImage(t, "image")
	rec := doPredict(s, body, contentType)

	assert.Equal(t, http.StatusOK, rec.Code)

	var summary domain.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	require.Len(t, summary.DetectedItems, 1)
	assert.Equal(t, "recyclable", summary.DetectedItems[0].Type)
	assert.True(t, summary.DetectedItems[0].Recyclable)
	assert.Equal(t, []string{"Recyclable item can be placed in recycling bin"}, summary.Recommendations)
	assert.Len(t, summary.RawPredictions, 2)
}

func TestPredictMissingFile(t *testing.T) {
	s := NewServer(stubResolver{}, 0.5, Options{})

	body, contentType := multipartImage(t, "photo") // wrong field name
	rec := doPredict(s, body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "No image uploaded", resp["error"])
}

func TestPredictExhaustion(t *testing.T) {
	resolver := stubResolver{
		err: &classifier.ExhaustionError{TriedIterations: []string{"trashvision-v1", "RecycleSmart-Prediction", "RecycleSmart"}},
	}
	s := NewServer(resolver, 0.5, Options{})

	body, contentType := multipartImage(t, "image")
	rec := doPredict(s, body, contentType)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp struct {
		Error           string   `json:"error"`
		TriedIterations []string `json:"tried_iterations"`
		Suggestion      string   `json:"suggestion"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "No working iteration found. Check your Azure Custom Vision project.", resp.Error)
	assert.Equal(t, []string{"trashvision-v1", "RecycleSmart-Prediction", "RecycleSmart"}, resp.TriedIterations)
	assert.NotEmpty(t, resp.Suggestion)
}

func TestPredictUpstreamFailure(t *testing.T) {
	s := NewServer(stubResolver{err: errors.New("no candidates configured")}, 0.5, Options{})

	body, contentType := multipartImage(t, "image")
	rec := doPredict(s, body, contentType)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp["error"], "Prediction failed")
}

func TestPredictLowConfidenceIsNotAnError(t *testing.T) {
	resolver := stubResolver{
		result: &classifier.Result{
			Predictions: []domain.Prediction{{TagName: "Recyclable", Probability: 0.3}},
		},
	}
	s := NewServer(resolver, 0.5, Options{})

	body, contentType := multipartImage(t, "image")
	rec := doPredict(s, body, contentType)

	assert.Equal(t, http.StatusOK, rec.Code)

	var summary domain.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	require.Len(t, summary.DetectedItems, 1)
	assert.Equal(t, "unknown", summary.DetectedItems[0].Type)
}

// brokenCache fails every operation, like a cache whose backend went away.
type brokenCache struct {
	gets, sets int
}

func (c *brokenCache) Key(image []byte) string { return "predict:test" }

func (c *brokenCache) GetSummary(context.Context, string) (*domain.Summary, bool, error) {
	c.gets++
	return nil, false, errors.New("connection refused")
}

func (c *brokenCache) SetSummary(context.Context, string, domain.Summary) error {
	c.sets++
	return errors.New("connection refused")
}

type hitCache struct {
	summary domain.Summary
}

func (c hitCache) Key(image []byte) string { return "predict:test" }

func (c hitCache) GetSummary(context.Context, string) (*domain.Summary, bool, error) {
	return &c.summary, true, nil
}

func (c hitCache) SetSummary(context.Context, string, domain.Summary) error { return nil }

func TestPredictCacheFailureFallsThrough(t *testing.T) {
	resolver := stubResolver{
		result: &classifier.Result{
			Predictions: []domain.Prediction{{TagName: "Recyclable", Probability: 0.92}},
			Candidate:   classifier.Candidate{Iteration: "trashvision-v1"},
		},
	}
	cache := &brokenCache{}
	s := NewServer(resolver, 0.5, Options{Cache: cache})

	body, contentType := multipartImage(t, "image")
	rec := doPredict(s, body, contentType)

	// A dead cache never fails the request; the resolver still runs.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, cache.gets)
	assert.Equal(t, 1, cache.sets)

	var summary domain.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	require.Len(t, summary.DetectedItems, 1)
	assert.Equal(t, "recyclable", summary.DetectedItems[0].Type)
}

func TestPredictCacheHitSkipsResolver(t *testing.T) {
	resolver := stubResolver{err: errors.New("resolver should not be reached")}
	cached := domain.Summary{
		DetectedItems:   []domain.Detection{{Type: "recyclable", Confidence: 0.92, Recyclable: true}},
		Recommendations: []string{"Recyclable item can be placed in recycling bin"},
	}
	s := NewServer(resolver, 0.5, Options{Cache: hitCache{summary: cached}})

	body, contentType := multipartImage(t, "image")
	rec := doPredict(s, body, contentType)

	assert.Equal(t, http.StatusOK, rec.Code)

	var summary domain.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, cached.DetectedItems, summary.DetectedItems)
}

func TestHealth(t *testing.T) {
	s := NewServer(stubResolver{}, 0.5, Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHistoryWithoutStorage(t *testing.T) {
	s := NewServer(stubResolver{}, 0.5, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
