package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Reddit
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string
	RedditTokenURL     string
	RedditOAuthBaseURL string
	RedditPublicURL    string
	RedditScrapeURL    string
	ScrapeEnabled      bool
	StubEnabled        bool
	SearchLimit        int
	ProviderTimeout    time.Duration

	// OpenAI-compatible LLM
	OpenAIAPIKey   string
	LLMBaseURL     string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeout     time.Duration

	// Sentiment / emotion scorer
	SentimentAPIURL string
	EmotionAPIURL   string
	ScorerAPIKey    string
	ScorerAPIHost   string

	// Cache
	RedisURL string
	CacheTTL time.Duration

	// HTTP
	AllowedOrigins []string
	MaxBodyBytes   int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Reddit
		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		RedditUserAgent:    getEnv("REDDIT_USER_AGENT", "pulse/1.0"),
		RedditTokenURL:     getEnv("REDDIT_TOKEN_URL", "https://www.reddit.com/api/v1/access_token"),
		RedditOAuthBaseURL: getEnv("REDDIT_OAUTH_BASE_URL", "https://oauth.reddit.com"),
		RedditPublicURL:    getEnv("REDDIT_PUBLIC_BASE_URL", "https://www.reddit.com"),
		RedditScrapeURL:    getEnv("REDDIT_SCRAPE_BASE_URL", "https://old.reddit.com"),
		ScrapeEnabled:      getEnvBool("SCRAPE_ENABLED", true),
		StubEnabled:        getEnvBool("STUB_ENABLED", true),
		SearchLimit:        getEnvInt("SEARCH_LIMIT", 10),
		ProviderTimeout:    time.Duration(getEnvInt("PROVIDER_TIMEOUT_SEC", 10)) * time.Second,

		// LLM
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMBaseURL:     getEnv("LLM_BASE_URL", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 800),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeout:     time.Duration(getEnvInt("LLM_TIMEOUT_SEC", 30)) * time.Second,

		// Scorer
		SentimentAPIURL: getEnv("SENTIMENT_API_URL", ""),
		EmotionAPIURL:   getEnv("EMOTION_API_URL", ""),
		ScorerAPIKey:    getEnv("SCORER_API_KEY", ""),
		ScorerAPIHost:   getEnv("SCORER_API_HOST", ""),

		// Cache
		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: time.Duration(getEnvInt("CACHE_TTL_MIN", 15)) * time.Minute,

		// HTTP
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),
		MaxBodyBytes:   getEnvInt("MAX_BODY_BYTES", 1<<20),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values that would make the chain or the server unusable.
func (c *Config) Validate() error {
	if c.SearchLimit < 1 || c.SearchLimit > 100 {
		return fmt.Errorf("SEARCH_LIMIT must be between 1 and 100, got %d", c.SearchLimit)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT_SEC must be positive")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT_SEC must be positive")
	}
	if (c.RedditClientID == "") != (c.RedditClientSecret == "") {
		return fmt.Errorf("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET must be set together")
	}
	return nil
}

// HasRedditCredentials reports whether the authenticated strategy can try
// to acquire a token.
func (c *Config) HasRedditCredentials() bool {
	return c.RedditClientID != "" && c.RedditClientSecret != ""
}

func (c *Config) LLMConfigured() bool {
	return c.OpenAIAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
