package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trashvision/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "trashvision-v1", cfg.Prediction.PublishedName)
	assert.Equal(t, []string{"RecycleSmart-Prediction", "RecycleSmart"}, cfg.Prediction.FallbackIterations)
	assert.Equal(t, 10*time.Second, cfg.Prediction.Timeout)
	assert.Equal(t, 0.5, cfg.Prediction.ConfidenceFloor)
	assert.Equal(t, "classifications", cfg.Queue.Topic)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: ":9090"
prediction:
  endpoint: https://westeurope.api.cognitive.microsoft.com
  key: pred-key
  project_id: proj-123
  published_name: custom-v2
  timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "https://westeurope.api.cognitive.microsoft.com", cfg.Prediction.Endpoint)
	assert.Equal(t, "pred-key", cfg.Prediction.Key)
	assert.Equal(t, "custom-v2", cfg.Prediction.PublishedName)
	assert.Equal(t, 5*time.Second, cfg.Prediction.Timeout)
	require.NoError(t, cfg.ValidatePrediction())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prediction:\n  key: file-key\n"), 0o644))

	t.Setenv("TRASHVISION_PREDICTION__KEY", "env-key")
	t.Setenv("TRASHVISION_PREDICTION__PROJECT_ID", "proj-env")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Prediction.Key)
	assert.Equal(t, "proj-env", cfg.Prediction.ProjectID)
}

func TestTrainingInheritsPredictionAccount(t *testing.T) {
	t.Setenv("TRASHVISION_PREDICTION__ENDPOINT", "https://example.cognitive.microsoft.com")
	t.Setenv("TRASHVISION_PREDICTION__TRAINING_KEY", "train-key")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://example.cognitive.microsoft.com", cfg.Training.Endpoint)
	assert.Equal(t, "train-key", cfg.Training.Key)
	require.NoError(t, cfg.ValidateTraining())
}

func TestValidatePredictionReportsAllMissing(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	err = cfg.ValidatePrediction()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prediction.endpoint")
	assert.Contains(t, err.Error(), "prediction.key")
	assert.Contains(t, err.Error(), "prediction.project_id")
}
