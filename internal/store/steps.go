// Package store keeps JSON snapshots of pipeline steps and provider
// exchanges under the cache directory, for debugging and replay.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StepName identifies a pipeline step for caching purposes.
type StepName string

const (
	StepCollected  StepName = "step1_collected"
	StepSentiment  StepName = "step2_sentiment"
	StepReconciled StepName = "step3_reconciled"
	StepReport     StepName = "step4_report"
)

// stepDir returns the cache directory for a given step.
func stepDir(cacheDir string, step StepName) string {
	return filepath.Join(cacheDir, string(step))
}

// generateFilename names a cache file after the run id. Run ids sort by
// creation time; without one a timestamp is used.
func generateFilename(runID, ext string) string {
	if runID == "" {
		return time.Now().Format("2006-01-02T15-04-05") + ext
	}
	return runID + ext
}

// SaveStepOutput saves JSON-serializable data to the step's cache directory.
// Returns the path to the saved file.
func SaveStepOutput[T any](cacheDir string, step StepName, runID string, data T) (string, error) {
	dir := stepDir(cacheDir, step)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create step cache dir: %w", err)
	}

	path := filepath.Join(dir, generateFilename(runID, ".json"))

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal step output: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write step output: %w", err)
	}

	return path, nil
}

// SaveTextOutput saves text content (e.g., HTML) to the step's cache directory.
// Returns the path to the saved file.
func SaveTextOutput(cacheDir string, step StepName, runID, content, ext string) (string, error) {
	dir := stepDir(cacheDir, step)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create step cache dir: %w", err)
	}

	path := filepath.Join(dir, generateFilename(runID, ext))

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write step output: %w", err)
	}

	return path, nil
}

// LoadLatestStepOutput loads the most recent output from a step's cache directory.
// Returns the data, the filepath it was loaded from, and any error.
func LoadLatestStepOutput[T any](cacheDir string, step StepName) (T, string, error) {
	var zero T

	latestPath, err := LatestStepFile(cacheDir, step, ".json")
	if err != nil {
		return zero, "", err
	}

	data, err := LoadStepOutput[T](latestPath)
	if err != nil {
		return zero, "", err
	}

	return data, latestPath, nil
}

// LoadStepOutput loads JSON data from a specific file path.
func LoadStepOutput[T any](path string) (T, error) {
	var data T

	jsonData, err := os.ReadFile(path)
	if err != nil {
		return data, fmt.Errorf("failed to read step output: %w", err)
	}

	if err := json.Unmarshal(jsonData, &data); err != nil {
		return data, fmt.Errorf("failed to unmarshal step output: %w", err)
	}

	return data, nil
}

// LatestStepFile returns the path to the most recent file with the given
// extension in a step's cache directory.
func LatestStepFile(cacheDir string, step StepName, ext string) (string, error) {
	dir := stepDir(cacheDir, step)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no cached output for step %s", step)
		}
		return "", err
	}

	// os.ReadDir sorts by name, which is chronological for run ids and timestamps
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ext {
			files = append(files, entry.Name())
		}
	}

	if len(files) == 0 {
		return "", fmt.Errorf("no cached output for step %s", step)
	}

	return filepath.Join(dir, files[len(files)-1]), nil
}
