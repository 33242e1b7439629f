// Package gennotes provides a client for the GenNotes variant annotation API.
package gennotes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public GenNotes API endpoint.
const DefaultBaseURL = "https://gennotes.herokuapp.com/api"

// Client queries GenNotes by coordinate key. Responses are opaque JSON
// payloads passed through unmodified.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a GenNotes client. An empty baseURL uses the public API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Variant fetches the annotation payload for a single coordinate key
// (e.g. "b37-1-1000-A-G"). The API takes a JSON-encoded variant_list query
// parameter.
func (c *Client) Variant(key string) (json.RawMessage, error) {
	list, err := json.Marshal([]string{key})
	if err != nil {
		return nil, fmt.Errorf("encode variant list: %w", err)
	}

	params := url.Values{}
	params.Set("variant_list", string(list))
	reqURL := fmt.Sprintf("%s/variant/?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("gennotes request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gennotes error %d: %s", resp.StatusCode, string(body))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gennotes response: %w", err)
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("gennotes returned invalid JSON for %q", key)
	}

	return json.RawMessage(payload), nil
}
