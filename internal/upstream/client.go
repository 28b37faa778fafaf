// Package upstream talks to the three public healthcare data APIs the
// gateway fronts: the NLM Clinical Tables search APIs (ICD-10-CM codes and
// the NPI provider registry) and the CMS dataset API for Medicare claims.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/uh-joan/icd-mcp-server/internal/common"
	"github.com/uh-joan/icd-mcp-server/internal/config"
)

// Client performs single-shot HTTP GETs against the upstream APIs.
// It is safe for concurrent use. No retries: a failed call fails the
// whole request immediately and visibly.
type Client struct {
	httpClient *http.Client
	logger     *common.Logger
	icd10URL   string
	npiURL     string
	datasetURL string
	timeout    time.Duration
}

// New creates a Client from upstream configuration.
func New(cfg config.UpstreamConfig, logger *common.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		icd10URL:   cfg.ICD10URL,
		npiURL:     cfg.NPIURL,
		datasetURL: cfg.DatasetURL,
		timeout:    timeout,
	}
}

// SearchICD10 runs a table search against the ICD-10-CM API.
func (c *Client) SearchICD10(ctx context.Context, q TableQuery) (*TableEnvelope, error) {
	return c.tableSearch(ctx, c.icd10URL, q)
}

// SearchNPI runs a table search against the NPI provider registry API.
func (c *Client) SearchNPI(ctx context.Context, q TableQuery) (*TableEnvelope, error) {
	return c.tableSearch(ctx, c.npiURL, q)
}

func (c *Client) tableSearch(ctx context.Context, base string, q TableQuery) (*TableEnvelope, error) {
	body, err := c.get(ctx, base+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return ParseTableEnvelope(body)
}

// SearchDataset fetches rows from a CMS dataset identified by datasetID.
func (c *Client) SearchDataset(ctx context.Context, datasetID string, q DatasetQuery) ([]map[string]any, error) {
	u := fmt.Sprintf("%s/%s/data?%s", c.datasetURL, datasetID, q.Encode())
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	return ParseDatasetRecords(body)
}

// get issues one GET and returns the body, enforcing the failure policy:
// transport failures and non-2xx statuses become TransportError with the
// original diagnostic text preserved; a non-JSON 2xx body is reported by
// the callers' parse step, not here.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug().
		Str("method", "GET").
		Str("url", rawURL).
		Msg("upstream request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error().Err(err).Str("url", rawURL).Dur("duration", duration).Msg("upstream request failed")
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug().
		Int("status_code", resp.StatusCode).
		Dur("duration", duration).
		Int("bytes", len(body)).
		Msg("upstream response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Some upstream errors still carry structured JSON; surface its
		// message when present, otherwise the raw body.
		msg := string(body)
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &errResp) == nil {
			if errResp.Error != "" {
				msg = errResp.Error
			} else if errResp.Message != "" {
				msg = errResp.Message
			}
		}
		return nil, &TransportError{Status: resp.StatusCode, Msg: msg}
	}

	if !json.Valid(body) {
		return nil, &ParseError{Err: fmt.Errorf("invalid JSON in %d-byte response", len(body))}
	}

	return body, nil
}
