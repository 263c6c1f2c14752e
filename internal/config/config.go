package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Prediction PredictionConfig `koanf:"prediction"`
	Training   TrainingConfig   `koanf:"training"`
	Cache      CacheConfig      `koanf:"cache"`
	Storage    StorageConfig    `koanf:"storage"`
	Queue      QueueConfig      `koanf:"queue"`
	Notifier   NotifierConfig   `koanf:"notifier"`
}

type ServerConfig struct {
	Port      string `koanf:"port"`
	StaticDir string `koanf:"static_dir"`
}

type PredictionConfig struct {
	Endpoint           string        `koanf:"endpoint"`
	Key                string        `koanf:"key"`
	TrainingKey        string        `koanf:"training_key"`
	ProjectID          string        `koanf:"project_id"`
	PublishedName      string        `koanf:"published_name"`
	FallbackIterations []string      `koanf:"fallback_iterations"`
	Timeout            time.Duration `koanf:"timeout"`
	ConfidenceFloor    float64       `koanf:"confidence_floor"`
}

type TrainingConfig struct {
	Endpoint             string `koanf:"endpoint"`
	Key                  string `koanf:"key"`
	PredictionResourceID string `koanf:"prediction_resource_id"`
}

type CacheConfig struct {
	Addr string        `koanf:"addr"`
	TTL  time.Duration `koanf:"ttl"`
}

type StorageConfig struct {
	DSN string `koanf:"dsn"`
}

type QueueConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
	GroupID string   `koanf:"group_id"`
}

type NotifierConfig struct {
	TelegramToken   string   `koanf:"telegram_token"`
	TelegramChatIDs []string `koanf:"telegram_chat_ids"`
}

// Load reads the yaml file at path (optional) and overlays TRASHVISION_*
// environment variables. Env keys map "__" to nesting, e.g.
// TRASHVISION_PREDICTION__KEY sets prediction.key.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := k.Load(env.ProviderWithValue("TRASHVISION_", ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(key, "TRASHVISION_")
		key = strings.ReplaceAll(strings.ToLower(key), "__", ".")
		return key, value
	}), nil); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.Prediction.PublishedName == "" {
		c.Prediction.PublishedName = "trashvision-v1"
	}
	if len(c.Prediction.FallbackIterations) == 0 {
		c.Prediction.FallbackIterations = []string{"RecycleSmart-Prediction", "RecycleSmart"}
	}
	if c.Prediction.Timeout == 0 {
		c.Prediction.Timeout = 10 * time.Second
	}
	if c.Prediction.ConfidenceFloor == 0 {
		c.Prediction.ConfidenceFloor = 0.5
	}
	// The training resource shares the Custom Vision account unless
	// configured separately.
	if c.Training.Endpoint == "" {
		c.Training.Endpoint = c.Prediction.Endpoint
	}
	if c.Training.Key == "" {
		c.Training.Key = c.Prediction.TrainingKey
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Hour
	}
	if c.Queue.Topic == "" {
		c.Queue.Topic = "classifications"
	}
	if c.Queue.GroupID == "" {
		c.Queue.GroupID = "trashvision-recorder"
	}
}

// ValidatePrediction checks the settings the prediction server cannot run
// without, reporting every missing key at once.
func (c *Config) ValidatePrediction() error {
	var missing []string
	if c.Prediction.Endpoint == "" {
		missing = append(missing, "prediction.endpoint")
	}
	if c.Prediction.Key == "" {
		missing = append(missing, "prediction.key")
	}
	if c.Prediction.ProjectID == "" {
		missing = append(missing, "prediction.project_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateTraining checks the settings the training CLI cannot run without.
func (c *Config) ValidateTraining() error {
	var missing []string
	if c.Training.Endpoint == "" {
		missing = append(missing, "training.endpoint")
	}
	if c.Training.Key == "" {
		missing = append(missing, "training.key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}
