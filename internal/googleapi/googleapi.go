// Package googleapi holds what the Google REST clients have in common: the
// API key header and the JSON error envelope.
package googleapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIKeyHeader carries the key. Keys never go in the URL, since transport
// errors print the full request URL.
const APIKeyHeader = "X-Goog-Api-Key"

// Error is a non-200 response from a Google API
type Error struct {
	API        string
	StatusCode int
	Status     string // e.g. INVALID_ARGUMENT, empty when the body was not an envelope
	Message    string
}

func (e *Error) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s returned status %d: %s %s", e.API, e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("%s returned status %d: %.200s", e.API, e.StatusCode, e.Message)
}

type envelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Do sends req with the key attached and returns the body of a 200
// response. Any other status comes back as *Error.
func Do(client *http.Client, req *http.Request, api, apiKey string) ([]byte, error) {
	req.Header.Set(APIKeyHeader, apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", api, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", api, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(api, resp.StatusCode, body)
	}
	return body, nil
}

func parseError(api string, code int, body []byte) *Error {
	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		return &Error{API: api, StatusCode: code, Status: env.Error.Status, Message: env.Error.Message}
	}
	return &Error{API: api, StatusCode: code, Message: string(body)}
}
