package myvariant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Jeffail/gabs"
)

// DefaultBaseURL is the public MyVariant.info API endpoint.
const DefaultBaseURL = "https://myvariant.info/v1"

// DefaultFields is the annotation field subset requested for each variant.
var DefaultFields = []string{"clinvar", "dbsnp", "exac"}

// nullPayload records a variant the service did not know, so repeat queries
// skip the network.
var nullPayload = json.RawMessage("null")

// Client queries MyVariant.info by genomic HGVS name, memoizing responses in
// a caller-supplied Cache.
type Client struct {
	baseURL    string
	fields     []string
	cache      Cache
	httpClient *http.Client
}

// NewClient creates a MyVariant client with the default field subset. An
// empty baseURL uses the public API; a nil cache disables memoization via an
// in-memory cache.
func NewClient(baseURL string, cache Cache) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Client{
		baseURL: baseURL,
		fields:  DefaultFields,
		cache:   cache,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Variant fetches the annotation payload for a genomic HGVS name, e.g.
// "chr1:g.1000A>G". Returns nil with no error when the service does not know
// the variant. Responses, including misses, are cached by query string.
func (c *Client) Variant(hgvs string) (json.RawMessage, error) {
	if payload, ok, err := c.cache.Get(hgvs); err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	} else if ok {
		if bytes.Equal(payload, nullPayload) {
			return nil, nil
		}
		return payload, nil
	}

	params := url.Values{}
	params.Set("fields", strings.Join(c.fields, ","))
	reqURL := fmt.Sprintf("%s/variant/%s?%s", c.baseURL, url.PathEscape(hgvs), params.Encode())

	resp, err := c.httpClient.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("myvariant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		if err := c.cache.Put(hgvs, nullPayload); err != nil {
			return nil, fmt.Errorf("cache miss entry: %w", err)
		}
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("myvariant error %d: %s", resp.StatusCode, string(body))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read myvariant response: %w", err)
	}

	parsed, err := gabs.ParseJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode myvariant response: %w", err)
	}
	if parsed.Exists("notfound") {
		if err := c.cache.Put(hgvs, nullPayload); err != nil {
			return nil, fmt.Errorf("cache miss entry: %w", err)
		}
		return nil, nil
	}

	if err := c.cache.Put(hgvs, json.RawMessage(payload)); err != nil {
		return nil, fmt.Errorf("cache entry: %w", err)
	}
	return json.RawMessage(payload), nil
}
