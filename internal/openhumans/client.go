// Package openhumans retrieves 23andMe-derived VCF files shared through the
// OpenHumans public-data API.
package openhumans

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public-data listing endpoint.
const DefaultBaseURL = "https://www.openhumans.org/api/public-data/"

// DefaultSource is the 23andMe data source tag.
const DefaultSource = "twenty_three_and_me"

// User identifies the individual who shared a file.
type User struct {
	ID       json.Number `json:"id"`
	Username string      `json:"username"`
}

// Result is one shared file from the listing.
type Result struct {
	User        User     `json:"user"`
	Metadata    Metadata `json:"metadata"`
	DownloadURL string   `json:"download_url"`
	Created     string   `json:"created"`

	// LocalFilename is filled in after download; it is the per-individual
	// basename used for the downloaded VCF and the mapped output.
	LocalFilename string `json:"local_filename,omitempty"`
}

// Metadata carries the file tags used to filter for VCF uploads.
type Metadata struct {
	Tags []string `json:"tags"`
}

// HasTag reports whether the file carries the given tag.
func (m Metadata) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// listing is one page of the paginated API response.
type listing struct {
	Next    string   `json:"next"`
	Results []Result `json:"results"`
}

// Client lists and downloads shared VCF files.
type Client struct {
	baseURL    string
	source     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an OpenHumans client. Empty arguments use the public
// endpoint and the 23andMe source.
func NewClient(baseURL, source string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if source == "" {
		source = DefaultSource
	}
	return &Client{
		baseURL: baseURL,
		source:  source,
		httpClient: &http.Client{
			Timeout: 30 * time.Minute, // streamed downloads can be large
		},
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for progress messages.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// ListVCF walks every page of the listing and returns the results tagged as
// VCF uploads. Transient page fetch failures are retried with exponential
// backoff before giving up on the run.
func (c *Client) ListVCF() ([]Result, error) {
	pageURL := fmt.Sprintf("%s?source=%s", c.baseURL, url.QueryEscape(c.source))

	var results []Result
	pages := 0
	for pageURL != "" {
		var page listing
		fetch := func() error {
			return c.fetchPage(pageURL, &page)
		}
		if err := backoff.Retry(fetch, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4)); err != nil {
			return nil, fmt.Errorf("list page %d: %w", pages+1, err)
		}
		pages++

		for _, r := range page.Results {
			if r.Metadata.HasTag("vcf") {
				results = append(results, r)
			}
		}
		pageURL = page.Next
	}

	c.logger.Info("fetched vcf listing",
		zap.Int("pages", pages),
		zap.Int("results", len(results)))
	return results, nil
}

func (c *Client) fetchPage(pageURL string, page *listing) error {
	resp, err := c.httpClient.Get(pageURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("listing error %d", resp.StatusCode)
	}

	*page = listing{}
	if err := json.NewDecoder(resp.Body).Decode(page); err != nil {
		return fmt.Errorf("decode listing: %w", err)
	}
	return nil
}

// Filename returns the per-individual basename for a result,
// `{username}_{id}_{created}_23andme_data`.
func (r *Result) Filename() string {
	return fmt.Sprintf("%s_%s_%s_23andme_data", r.User.Username, r.User.ID.String(), r.Created)
}

// Download streams one individual's VCF into dir as
// `{filename}.vcf.bz2`, skipping files that are already present, and records
// the basename in r.LocalFilename. Writes go to a temp file first so an
// interrupted download never leaves a truncated artifact behind.
func (c *Client) Download(r *Result, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	r.LocalFilename = r.Filename()
	destPath := filepath.Join(dir, r.LocalFilename+".vcf.bz2")

	if _, err := os.Stat(destPath); err == nil {
		c.logger.Info("already downloaded, skipping",
			zap.String("user", r.User.Username),
			zap.String("file", destPath))
		return destPath, nil
	}

	c.logger.Info("downloading vcf data", zap.String("user", r.User.Username))

	resp, err := c.httpClient.Get(r.DownloadURL)
	if err != nil {
		return "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download error %d for %s", resp.StatusCode, r.User.Username)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	_, err = io.Copy(f, resp.Body)
	f.Close()
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename file: %w", err)
	}

	return destPath, nil
}
