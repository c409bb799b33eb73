package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrAnalysisAPI indicates the external analysis engine rejected or failed a call.
var ErrAnalysisAPI = errors.New("analysis api failure")

// InfoColumn describes one column of a customer datasource table as reported
// by the analysis engine.
type InfoColumn struct {
	Name        string `json:"column_name"`
	Type        string `json:"column_type"`
	OriginTable string `json:"origin_table"`
}

// Client is a connector to the external analysis engine. Calls are fail-fast;
// retry policy belongs to the caller.
type Client interface {
	RequestAnalysis(ctx context.Context, dbInfoNo int64) error
	InfoColumns(ctx context.Context, dbInfoNo int64, originTable string) ([]InfoColumn, error)
}

// HTTPClient talks JSON over HTTP to the analysis engine.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds a client for the engine at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// RequestAnalysis asks the engine to start an analysis run for the datasource.
func (c *HTTPClient) RequestAnalysis(ctx context.Context, dbInfoNo int64) error {
	payload, err := json.Marshal(map[string]int64{"db_info_no": dbInfoNo})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analysis", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAnalysisAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", ErrAnalysisAPI, resp.StatusCode)
	}
	return nil
}

// InfoColumns fetches column metadata for a datasource, optionally scoped to
// one origin table.
func (c *HTTPClient) InfoColumns(ctx context.Context, dbInfoNo int64, originTable string) ([]InfoColumn, error) {
	query := url.Values{}
	query.Set("db_info_no", strconv.FormatInt(dbInfoNo, 10))
	if originTable != "" {
		query.Set("origin_table", originTable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/info-columns?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrAnalysisAPI, resp.StatusCode)
	}

	var columns []InfoColumn
	if err := json.NewDecoder(resp.Body).Decode(&columns); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrAnalysisAPI, err)
	}
	return columns, nil
}

// StaticClient simulates a healthy analysis engine. Used in development mode
// and as a default when no engine URL is configured.
type StaticClient struct{}

// RequestAnalysis accepts every run request.
func (StaticClient) RequestAnalysis(_ context.Context, _ int64) error {
	return nil
}

// InfoColumns returns an empty column set.
func (StaticClient) InfoColumns(_ context.Context, _ int64, _ string) ([]InfoColumn, error) {
	return nil, nil
}
