package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	SentimentBackendHuggingFace = "huggingface"
	SentimentBackendVader       = "vader"

	// MaxPageSize is the commentThreads.list ceiling per call.
	MaxPageSize = 100
)

type Config struct {
	Env       string `env:"APP_ENV" env-default:"dev"`
	HTTP      HTTPConfig
	YouTube   YouTubeConfig
	Sentiment SentimentConfig
	Topics    TopicsConfig
	OpenAI    OpenAIConfig
	Log       LogConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"120s"`
	AnalysisTimeout time.Duration `env:"ANALYSIS_TIMEOUT" env-default:"90s"`
	AllowOrigins    []string      `env:"CORS_ALLOW_ORIGINS" env-separator:"," env-default:"*"`
}

func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

type YouTubeConfig struct {
	APIKey          string        `env:"YOUTUBE_API_KEY" env-required:"true"`
	Endpoint        string        `env:"YOUTUBE_API_ENDPOINT"`
	MaxComments     int           `env:"MAX_COMMENTS" env-default:"200"`
	PageSize        int           `env:"YOUTUBE_PAGE_SIZE" env-default:"100"`
	RequestInterval time.Duration `env:"YOUTUBE_REQUEST_INTERVAL" env-default:"100ms"`
	Timeout         time.Duration `env:"YOUTUBE_TIMEOUT" env-default:"15s"`
}

type SentimentConfig struct {
	Backend     string        `env:"SENTIMENT_BACKEND" env-default:"huggingface"`
	Endpoint    string        `env:"HF_SENTIMENT_ENDPOINT" env-default:"https://api-inference.huggingface.co/models/distilbert/distilbert-base-uncased-finetuned-sst-2-english"`
	Token       string        `env:"HF_API_TOKEN"`
	MaxTokens   int           `env:"SENTIMENT_MAX_TOKENS" env-default:"500"`
	MaxAttempts int           `env:"HF_MAX_ATTEMPTS" env-default:"1"`
	Timeout     time.Duration `env:"HF_TIMEOUT" env-default:"60s"`
}

type TopicsConfig struct {
	NumTopics     int    `env:"NUM_TOPICS" env-default:"5"`
	TopWords      int    `env:"TOPIC_TOP_WORDS" env-default:"10"`
	MinDocuments  int    `env:"TOPIC_MIN_DOCUMENTS" env-default:"3"`
	MaxIterations int    `env:"TOPIC_MAX_ITERATIONS" env-default:"200"`
	Seed          int64  `env:"TOPIC_SEED" env-default:"42"`
	Language      string `env:"TOPIC_STOPWORDS_LANG" env-default:"en"`
	MinWordLength int    `env:"TOPIC_MIN_WORD_LENGTH" env-default:"3"`
}

// OpenAIConfig is optional; topic labels are only generated when APIKey is set.
type OpenAIConfig struct {
	APIKey  string        `env:"OPENAI_API_KEY"`
	BaseURL string        `env:"OPENAI_BASE_URL"`
	Model   string        `env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	Timeout time.Duration `env:"OPENAI_TIMEOUT" env-default:"30s"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) Validate() error {
	var errs []error

	if c.YouTube.APIKey == "" {
		errs = append(errs, errors.New("YOUTUBE_API_KEY is required"))
	}
	if c.YouTube.PageSize < 1 || c.YouTube.PageSize > MaxPageSize {
		errs = append(errs, fmt.Errorf("YOUTUBE_PAGE_SIZE must be between 1 and %d, got %d", MaxPageSize, c.YouTube.PageSize))
	}
	if c.YouTube.MaxComments < 1 {
		errs = append(errs, fmt.Errorf("MAX_COMMENTS must be positive, got %d", c.YouTube.MaxComments))
	}

	switch c.Sentiment.Backend {
	case SentimentBackendHuggingFace:
		if c.Sentiment.Token == "" {
			errs = append(errs, errors.New("HF_API_TOKEN is required for the huggingface sentiment backend"))
		}
		if c.Sentiment.Endpoint == "" {
			errs = append(errs, errors.New("HF_SENTIMENT_ENDPOINT is required for the huggingface sentiment backend"))
		}
	case SentimentBackendVader:
	default:
		errs = append(errs, fmt.Errorf("unknown SENTIMENT_BACKEND %q", c.Sentiment.Backend))
	}
	if c.Sentiment.MaxTokens < 1 {
		errs = append(errs, fmt.Errorf("SENTIMENT_MAX_TOKENS must be positive, got %d", c.Sentiment.MaxTokens))
	}
	if c.Sentiment.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("HF_MAX_ATTEMPTS must be at least 1, got %d", c.Sentiment.MaxAttempts))
	}

	if c.Topics.NumTopics < 1 {
		errs = append(errs, fmt.Errorf("NUM_TOPICS must be positive, got %d", c.Topics.NumTopics))
	}
	if c.Topics.TopWords < 1 {
		errs = append(errs, fmt.Errorf("TOPIC_TOP_WORDS must be positive, got %d", c.Topics.TopWords))
	}
	if c.Topics.MinWordLength < 1 {
		errs = append(errs, fmt.Errorf("TOPIC_MIN_WORD_LENGTH must be positive, got %d", c.Topics.MinWordLength))
	}
	// a single document cannot yield topics
	if c.Topics.MinDocuments < 2 {
		c.Topics.MinDocuments = 2
	}

	return errors.Join(errs...)
}
