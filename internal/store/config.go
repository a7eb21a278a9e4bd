package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		Provider      string  `yaml:"provider"` // OPENAI, CLAUDE or NOOP
		Model         string  `yaml:"model"`
		RerankModel   string  `yaml:"rerank_model"`
		MaxTokens     int     `yaml:"max_tokens"`
		Temperature   float32 `yaml:"temperature"`
		ConfidenceMin float64 `yaml:"confidence_min"`
	} `yaml:"llm"`
	Borsdata struct {
		BaseURL        string `yaml:"base_url"`
		APIKeyEnv      string `yaml:"api_key_env"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		Universe       string `yaml:"universe"` // NORDIC or GLOBAL
	} `yaml:"borsdata"`
	Resolver struct {
		ShortlistSize int               `yaml:"shortlist_size"`
		Aliases       map[string]string `yaml:"aliases"` // merged over the built-in table
	} `yaml:"resolver"`
	News struct {
		Enabled      bool `yaml:"enabled"`
		MaxArticles  int  `yaml:"max_articles"`
		CacheMinutes int  `yaml:"cache_minutes"`
	} `yaml:"news"`
	RulesPath   string `yaml:"rules_path"`
	AuditLogDir string `yaml:"audit_log_dir"`
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "OPENAI", "CLAUDE", "NOOP":
	default:
		return fmt.Errorf("invalid llm.provider '%s': must be 'OPENAI', 'CLAUDE' or 'NOOP'", c.LLM.Provider)
	}
	if c.Borsdata.Universe != "NORDIC" && c.Borsdata.Universe != "GLOBAL" {
		return fmt.Errorf("invalid borsdata.universe '%s': must be 'NORDIC' or 'GLOBAL'", c.Borsdata.Universe)
	}
	if c.LLM.ConfidenceMin < 0 || c.LLM.ConfidenceMin > 1 {
		return fmt.Errorf("llm.confidence_min must be between 0 and 1, got %.2f", c.LLM.ConfidenceMin)
	}
	if c.Resolver.ShortlistSize <= 0 {
		return fmt.Errorf("resolver.shortlist_size must be positive, got %d", c.Resolver.ShortlistSize)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "NOOP"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4.1"
	}
	if c.LLM.RerankModel == "" {
		c.LLM.RerankModel = "gpt-4o-mini"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 512
	}
	if c.LLM.ConfidenceMin == 0 {
		c.LLM.ConfidenceMin = 0.60
	}
	if c.Borsdata.BaseURL == "" {
		c.Borsdata.BaseURL = "https://apiservice.borsdata.se/v1"
	}
	if c.Borsdata.APIKeyEnv == "" {
		c.Borsdata.APIKeyEnv = "BORSDATA_API_KEY"
	}
	if c.Borsdata.TimeoutSeconds == 0 {
		c.Borsdata.TimeoutSeconds = 15
	}
	if c.Borsdata.Universe == "" {
		c.Borsdata.Universe = "NORDIC"
	}
	if c.Resolver.ShortlistSize == 0 {
		c.Resolver.ShortlistSize = 50
	}
	if c.News.MaxArticles == 0 {
		c.News.MaxArticles = 6
	}
	if c.News.CacheMinutes == 0 {
		c.News.CacheMinutes = 60
	}
	if c.RulesPath == "" {
		c.RulesPath = "config/params.yaml"
	}
	if c.AuditLogDir == "" {
		c.AuditLogDir = "logs"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
