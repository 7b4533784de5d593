package llm

import (
	"fmt"
	"strings"
)

// Default gateway endpoints per provider.
const (
	DedalusBaseURL = "https://api.dedaluslabs.ai/v1"
	OpenAIBaseURL  = "https://api.openai.com/v1"
)

// NewClient creates a completion client based on the provided configuration.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "dedalus", "":
		if cfg.BaseURL == "" {
			cfg.BaseURL = DedalusBaseURL
		}
		return newOpenAIClient(cfg)
	case "openai":
		if cfg.BaseURL == "" {
			cfg.BaseURL = OpenAIBaseURL
		}
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
