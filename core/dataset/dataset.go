package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cedricrupb/dataviewer/core/config"
)

// Common errors
var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrSplitNotFound   = errors.New("split not found")
	ErrRowOutOfRange   = errors.New("row index out of range")
	ErrEmptyDataset    = errors.New("dataset has no rows")
)

// DefaultSplit is used when no split is requested
const DefaultSplit = "train"

// rowPageSize is the page length requested from the rows endpoint
const rowPageSize = 100

// Client talks to the Hugging Face Hub and datasets-server APIs
type Client struct {
	hubURL    string
	serverURL string
	client    *http.Client
}

// NewClient creates a dataset client for the configured endpoints
func NewClient(cfg config.DatasetConfig) *Client {
	hubURL := cfg.HubURL
	if hubURL == "" {
		hubURL = config.DefaultHubURL
	}
	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL = config.DefaultServerURL
	}

	return &Client{
		hubURL:    strings.TrimSuffix(hubURL, "/"),
		serverURL: strings.TrimSuffix(serverURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient replaces the underlying HTTP client (used in tests)
func (c *Client) SetHTTPClient(client *http.Client) {
	c.client = client
}

// Handle is an immutable view of one loaded dataset split
type Handle struct {
	name    string
	cfgName string
	split   string
	numRows int
	schema  []Field

	client    *Client
	firstPage []map[string]interface{}
}

// Row is one decoded dataset instance
type Row = map[string]interface{}

// splitsResponse mirrors the datasets-server /splits payload
type splitsResponse struct {
	Splits []struct {
		Dataset string `json:"dataset"`
		Config  string `json:"config"`
		Split   string `json:"split"`
	} `json:"splits"`
}

// rowsResponse mirrors the datasets-server /rows payload
type rowsResponse struct {
	Features []struct {
		FeatureIdx int             `json:"feature_idx"`
		Name       string          `json:"name"`
		Type       json.RawMessage `json:"type"`
	} `json:"features"`
	Rows []struct {
		RowIdx int                    `json:"row_idx"`
		Row    map[string]interface{} `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

// Load resolves a dataset identifier and split into a Handle.
//
// The identifier must exist on the Hub (ErrDatasetNotFound otherwise) and the
// split must be advertised by the datasets-server (ErrSplitNotFound). An empty
// split defaults to "train", falling back to the first advertised split.
func (c *Client) Load(ctx context.Context, name, split string) (*Handle, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty dataset identifier", ErrDatasetNotFound)
	}

	if err := c.checkExists(ctx, name); err != nil {
		return nil, err
	}

	cfgName, split, err := c.resolveSplit(ctx, name, split)
	if err != nil {
		return nil, err
	}

	// First page carries the schema, the total row count and the sample rows
	// used for the schema summary.
	page, err := c.fetchRows(ctx, name, cfgName, split, 0, rowPageSize)
	if err != nil {
		return nil, err
	}
	if page.NumRowsTotal == 0 {
		return nil, fmt.Errorf("%w: %s split %q", ErrEmptyDataset, name, split)
	}

	schema := make([]Field, 0, len(page.Features))
	for _, f := range page.Features {
		schema = append(schema, Field{
			Name:  f.Name,
			Type:  inferFieldType(f.Type),
			DType: rawDType(f.Type),
		})
	}

	rows := make([]map[string]interface{}, 0, len(page.Rows))
	for _, r := range page.Rows {
		rows = append(rows, r.Row)
	}

	return &Handle{
		name:      name,
		cfgName:   cfgName,
		split:     split,
		numRows:   page.NumRowsTotal,
		schema:    schema,
		client:    c,
		firstPage: rows,
	}, nil
}

// Exists probes the Hub API for the dataset identifier without loading it
func (c *Client) Exists(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty dataset identifier", ErrDatasetNotFound)
	}
	return c.checkExists(ctx, name)
}

// checkExists probes the Hub API for the dataset identifier
func (c *Client) checkExists(ctx context.Context, name string) error {
	endpoint := fmt.Sprintf("%s/api/datasets/%s", c.hubURL, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach hub: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	case resp.StatusCode >= 400:
		return fmt.Errorf("hub returned status %d for %s", resp.StatusCode, name)
	}

	return nil
}

// resolveSplit picks a config/split pair from the advertised splits
func (c *Client) resolveSplit(ctx context.Context, name, split string) (string, string, error) {
	endpoint := fmt.Sprintf("%s/splits?dataset=%s", c.serverURL, url.QueryEscape(name))

	var splits splitsResponse
	if err := c.getJSON(ctx, endpoint, &splits); err != nil {
		return "", "", err
	}

	if len(splits.Splits) == 0 {
		return "", "", fmt.Errorf("%w: no splits advertised for %s", ErrSplitNotFound, name)
	}

	if split == "" {
		// Prefer the canonical default split, else take whatever comes first.
		split = splits.Splits[0].Split
		for _, s := range splits.Splits {
			if s.Split == DefaultSplit {
				split = DefaultSplit
				break
			}
		}
	}

	for _, s := range splits.Splits {
		if s.Split == split {
			return s.Config, split, nil
		}
	}

	return "", "", fmt.Errorf("%w: %q in dataset %s", ErrSplitNotFound, split, name)
}

// fetchRows retrieves one page from the rows endpoint
func (c *Client) fetchRows(ctx context.Context, name, cfgName, split string, offset, length int) (*rowsResponse, error) {
	endpoint := fmt.Sprintf("%s/rows?dataset=%s&config=%s&split=%s&offset=%d&length=%d",
		c.serverURL, url.QueryEscape(name), url.QueryEscape(cfgName), url.QueryEscape(split), offset, length)

	var page rowsResponse
	if err := c.getJSON(ctx, endpoint, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// getJSON performs a GET request and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach datasets server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, endpoint)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("datasets server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Card fetches the dataset README (fallback: dataset_card.md) from the Hub.
// A missing card is not an error; the prompt just goes without it.
func (c *Client) Card(ctx context.Context, name string) string {
	for _, filename := range []string{"README.md", "dataset_card.md"} {
		endpoint := fmt.Sprintf("%s/datasets/%s/raw/main/%s", c.hubURL, name, filename)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			continue
		}

		resp, err := c.client.Do(req)
		if err != nil {
			continue
		}

		if resp.StatusCode == http.StatusOK {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err == nil {
				return string(body)
			}
			continue
		}
		resp.Body.Close()
	}

	return ""
}

// Name returns the dataset identifier
func (h *Handle) Name() string { return h.name }

// Config returns the resolved dataset config name
func (h *Handle) Config() string { return h.cfgName }

// Split returns the resolved split name
func (h *Handle) Split() string { return h.split }

// NumRows returns the total number of rows in the split
func (h *Handle) NumRows() int { return h.numRows }

// Schema returns the ordered field schema
func (h *Handle) Schema() []Field { return h.schema }

// Row returns the instance at the given index, fetching a page on demand
// when the index falls outside the cached first page.
func (h *Handle) Row(ctx context.Context, index int) (Row, error) {
	if index < 0 || index >= h.numRows {
		return nil, fmt.Errorf("%w: %d (split has %d rows)", ErrRowOutOfRange, index, h.numRows)
	}

	if index < len(h.firstPage) {
		return h.firstPage[index], nil
	}

	page, err := h.client.fetchRows(ctx, h.name, h.cfgName, h.split, index, 1)
	if err != nil {
		return nil, err
	}
	if len(page.Rows) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}

	return page.Rows[0].Row, nil
}

// Card fetches the dataset card for this handle
func (h *Handle) Card(ctx context.Context) string {
	return h.client.Card(ctx, h.name)
}
