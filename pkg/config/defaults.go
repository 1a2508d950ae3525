// Package config defines the typed configuration and its defaults.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/DrSkyle/routeviz/pkg/graph"
	"github.com/DrSkyle/routeviz/pkg/storage"
)

// Config is the full application configuration as read by viper.
type Config struct {
	Backend   BackendConfig   `mapstructure:"backend"`
	Canvas    CanvasConfig    `mapstructure:"canvas"`
	Random    RandomConfig    `mapstructure:"random"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	Playback  PlaybackConfig  `mapstructure:"playback"`
	Scenarios ScenariosConfig `mapstructure:"scenarios"`

	// RulesFile replaces the built-in run admission rules.
	RulesFile    string `mapstructure:"rules_file"`
	OTelEndpoint string `mapstructure:"otel_endpoint"`
	LogFile      string `mapstructure:"log_file"`
	Verbose      bool   `mapstructure:"verbose"`
}

type BackendConfig struct {
	// URL is the base address of the algorithm service.
	URL     string        `mapstructure:"url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type CanvasConfig struct {
	Width    float64 `mapstructure:"width" validate:"gt=0"`
	Height   float64 `mapstructure:"height" validate:"gt=0"`
	NodeSize float64 `mapstructure:"node_size" validate:"gt=0"`
}

type RandomConfig struct {
	MinNodes    int     `mapstructure:"min_nodes" validate:"gte=1"`
	MaxNodes    int     `mapstructure:"max_nodes" validate:"gtefield=MinNodes"`
	MinDistance float64 `mapstructure:"min_distance" validate:"gte=0"`
	Margin      float64 `mapstructure:"margin" validate:"gte=0"`
	MaxCost     int     `mapstructure:"max_cost" validate:"gte=1"`
}

// LimitsConfig caps what may be sent to the backend. Zero disables a cap.
type LimitsConfig struct {
	MaxNodes int `mapstructure:"max_nodes" validate:"gte=0"`
	MaxEdges int `mapstructure:"max_edges" validate:"gte=0"`
}

type PlaybackConfig struct {
	// LockPolicy is "reject" or "ignore" and decides what Undo does during playback.
	LockPolicy string        `mapstructure:"lock_policy" validate:"oneof=reject ignore"`
	Interval   time.Duration `mapstructure:"interval" validate:"gte=0"`
}

type ScenariosConfig struct {
	// URL selects the backend: a path, file://, s3://bucket/prefix or badger:///dir.
	URL string   `mapstructure:"url" validate:"required"`
	S3  S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Defaults.
const (
	DefaultBackendURL   = "http://localhost:8080"
	DefaultScenariosURL = "file://~/.routeviz/scenarios"
	DefaultLogFile      = "~/.routeviz/routeviz.log"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: BackendConfig{URL: DefaultBackendURL, Timeout: 30 * time.Second},
		Canvas:  CanvasConfig{Width: 1000, Height: 600, NodeSize: graph.DefaultNodeSize},
		Random: RandomConfig{
			MinNodes:    3,
			MaxNodes:    12,
			MinDistance: 100,
			Margin:      100,
			MaxCost:     100,
		},
		Limits:    LimitsConfig{MaxNodes: 100, MaxEdges: 500},
		Playback:  PlaybackConfig{LockPolicy: "reject", Interval: 400 * time.Millisecond},
		Scenarios: ScenariosConfig{URL: DefaultScenariosURL},
		LogFile:   DefaultLogFile,
	}
}

// SetDefaults registers every default with v so that env vars and config
// files can override single keys.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("backend.url", d.Backend.URL)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("canvas.width", d.Canvas.Width)
	v.SetDefault("canvas.height", d.Canvas.Height)
	v.SetDefault("canvas.node_size", d.Canvas.NodeSize)
	v.SetDefault("random.min_nodes", d.Random.MinNodes)
	v.SetDefault("random.max_nodes", d.Random.MaxNodes)
	v.SetDefault("random.min_distance", d.Random.MinDistance)
	v.SetDefault("random.margin", d.Random.Margin)
	v.SetDefault("random.max_cost", d.Random.MaxCost)
	v.SetDefault("limits.max_nodes", d.Limits.MaxNodes)
	v.SetDefault("limits.max_edges", d.Limits.MaxEdges)
	v.SetDefault("playback.lock_policy", d.Playback.LockPolicy)
	v.SetDefault("playback.interval", d.Playback.Interval)
	v.SetDefault("scenarios.url", d.Scenarios.URL)
	v.SetDefault("scenarios.s3.endpoint", "")
	v.SetDefault("scenarios.s3.region", "")
	v.SetDefault("scenarios.s3.access_key", "")
	v.SetDefault("scenarios.s3.secret_key", "")
	v.SetDefault("rules_file", "")
	v.SetDefault("otel_endpoint", "")
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("verbose", false)
}

var validate = validator.New()

// Load unmarshals v and validates the result.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid key by its config path.
func (c Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("config: %s is invalid (%s)", fe.Namespace(), fe.Tag())
	}
	return err
}

// RandomOptions maps the random and canvas sections onto the generator.
func (c Config) RandomOptions() graph.RandomOptions {
	o := graph.DefaultRandomOptions()
	o.MinNodes = c.Random.MinNodes
	o.MaxNodes = c.Random.MaxNodes
	o.Width = c.Canvas.Width
	o.Height = c.Canvas.Height
	o.Margin = c.Random.Margin
	o.MinDistance = c.Random.MinDistance
	o.MaxCost = c.Random.MaxCost
	o.NodeSize = c.Canvas.NodeSize
	return o
}

// StorageOptions maps the scenarios section onto storage.Open.
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		S3Endpoint:  c.Scenarios.S3.Endpoint,
		S3Region:    c.Scenarios.S3.Region,
		S3AccessKey: c.Scenarios.S3.AccessKey,
		S3SecretKey: c.Scenarios.S3.SecretKey,
	}
}
