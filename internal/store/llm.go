package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// LLMExchange represents a prompt/response pair for caching
type LLMExchange struct {
	Timestamp time.Time `json:"timestamp"`
	Provider  string    `json:"provider"` // e.g. "anthropic"
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Error     string    `json:"error,omitempty"`
}

// LLMCacheDir returns the path to the LLM cache directory under cacheDir
func LLMCacheDir(cacheDir string) string {
	return filepath.Join(cacheDir, "llm")
}

// SaveLLMExchange serializes an LLM exchange to JSON and writes it to a timestamped file.
// Returns the path to the saved file.
func SaveLLMExchange(cacheDir string, exchange LLMExchange) (string, error) {
	dir := LLMCacheDir(cacheDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	// concurrent exchanges can share a timestamp
	f, err := os.CreateTemp(dir, exchange.Timestamp.Format("2006-01-02T15-04-05")+"-*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := json.MarshalIndent(exchange, "", "  ")
	if err != nil {
		return "", err
	}

	if _, err := f.Write(data); err != nil {
		return "", err
	}

	return f.Name(), nil
}
