// Package config loads pathway's application configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables prefixed with PATHWAY_. Environment keys map to
// sections by their first segment, so PATHWAY_AI_EMBEDDING_MODEL sets
// ai.embedding_model and PATHWAY_RANKING_TOP_N sets ranking.top_n.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/poiesic/pathway/ai"
	"github.com/poiesic/pathway/index"
	"github.com/poiesic/pathway/recommend"
)

// EnvPrefix is stripped from environment variable names.
const EnvPrefix = "PATHWAY_"

// PathEnvVar names a config file when no path is passed to Load.
const PathEnvVar = EnvPrefix + "CONFIG"

// DefaultPaths are searched in order when neither an explicit path nor
// PathEnvVar is set. Missing files are skipped.
var DefaultPaths = []string{
	"pathway.yaml",
	"pathway.yml",
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full application configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	AI       AIConfig       `koanf:"ai"`
	Index    IndexConfig    `koanf:"index"`
	Ranking  RankingConfig  `koanf:"ranking"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type AIConfig struct {
	EmbeddingHost  string        `koanf:"embedding_host" validate:"required,url"`
	EmbeddingModel string        `koanf:"embedding_model" validate:"required"`
	Token          string        `koanf:"token"`
	MaxBatchSize   int           `koanf:"max_batch_size" validate:"min=1"`
	BreakerTimeout time.Duration `koanf:"breaker_timeout" validate:"gte=0"`
}

// IndexConfig controls how catalog embeddings are built.
type IndexConfig struct {
	BatchSize   int           `koanf:"batch_size" validate:"min=1"`
	PoolSize    int           `koanf:"pool_size" validate:"min=1"`
	MaxAttempts int           `koanf:"max_attempts" validate:"min=1"`
	RetryDelay  time.Duration `koanf:"retry_delay" validate:"gte=0"`
}

// RankingConfig holds the default request parameters.
type RankingConfig struct {
	TopN  int     `koanf:"top_n" validate:"gte=0"`
	Alpha float64 `koanf:"alpha" validate:"gte=0,lte=1"`
	Beta  float64 `koanf:"beta" validate:"gte=0,lte=1"`
	Gamma float64 `koanf:"gamma" validate:"gte=0"`
}

type ServerConfig struct {
	Address        string        `koanf:"address" validate:"required,hostname_port"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
	MaxBodyBytes   int64         `koanf:"max_body_bytes" validate:"min=1024"`
}

type LoggingConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	params := recommend.DefaultParams()
	return &Config{
		Database: DatabaseConfig{
			Path: "pathway.db",
		},
		AI: AIConfig{
			EmbeddingHost:  aiDefaults.EmbeddingHost,
			EmbeddingModel: aiDefaults.EmbeddingModel,
			Token:          aiDefaults.Token,
			MaxBatchSize:   aiDefaults.MaxBatchSize,
			BreakerTimeout: aiDefaults.BreakerTimeout,
		},
		Index: IndexConfig{
			BatchSize:   index.DefaultBatchSize,
			PoolSize:    4,
			MaxAttempts: index.DefaultMaxAttempts,
			RetryDelay:  index.DefaultRetryDelay,
		},
		Ranking: RankingConfig{
			TopN:  params.TopN,
			Alpha: params.Alpha,
			Beta:  params.Beta,
			Gamma: params.Gamma,
		},
		Server: ServerConfig{
			Address:        "127.0.0.1:8080",
			RequestTimeout: 30 * time.Second,
			MaxBodyBytes:   1 << 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration. An explicit path must exist; otherwise
// PathEnvVar and DefaultPaths are consulted and a missing file is fine.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sections = map[string]struct{}{
	"database": {},
	"ai":       {},
	"index":    {},
	"ranking":  {},
	"server":   {},
	"logging":  {},
}

// envKey maps PATHWAY_SECTION_FIELD_NAME to section.field_name.
// Unknown sections are dropped.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(key, "_")
	if !ok || field == "" {
		return ""
	}
	if _, known := sections[section]; !known {
		return ""
	}
	return section + "." + field
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// AIConfig converts the ai section for the embedder constructor.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithToken(c.AI.Token),
		ai.WithMaxBatchSize(c.AI.MaxBatchSize),
		ai.WithBreakerTimeout(c.AI.BreakerTimeout),
	)
}

// IndexOptions converts the index section into build options.
func (c *Config) IndexOptions() []index.Option {
	return []index.Option{
		index.WithBatchSize(c.Index.BatchSize),
		index.WithPoolSize(c.Index.PoolSize),
		index.WithRetry(c.Index.MaxAttempts, c.Index.RetryDelay),
	}
}

// Params returns the ranking section as request parameters.
func (c *Config) Params() recommend.Params {
	return recommend.Params{
		TopN:  c.Ranking.TopN,
		Alpha: c.Ranking.Alpha,
		Beta:  c.Ranking.Beta,
		Gamma: c.Ranking.Gamma,
	}
}

// LogLevel parses the logging level. Validate guarantees it is known.
func (c *Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
