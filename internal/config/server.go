package config

import (
	"fmt"
	"os"
)

// ServerConfig is the process-wide configuration read once at startup
// from the environment: the API token gating the HTTP API, and the
// optional LLM credentials enabling the executive narrator.
type ServerConfig struct {
	APIToken string
	LLMAPIKey string
	LLMModel string
}

// ErrMissingAPIToken means API_TOKEN was not set; the serve command
// returns it without starting the HTTP server.
var ErrMissingAPIToken = fmt.Errorf("%w: API_TOKEN is not set", ErrInvalidConfig)

// LoadServerConfig reads API_TOKEN (required), LLM_API_KEY and
// LLM_MODEL (both optional) from the process environment.
func LoadServerConfig() (ServerConfig, error) {
	token := os.Getenv("API_TOKEN")
	if token == "" {
		return ServerConfig{}, ErrMissingAPIToken
	}
	return ServerConfig{
		APIToken:  token,
		LLMAPIKey: os.Getenv("LLM_API_KEY"),
		LLMModel:  os.Getenv("LLM_MODEL"),
	}, nil
}

// NarratorEnabled reports whether enough configuration is present to
// construct a narrator.
func (s ServerConfig) NarratorEnabled() bool {
	return s.LLMAPIKey != ""
}
