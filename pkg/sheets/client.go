// Package sheets is the HTTP client for the spreadsheet REST endpoints that
// hold shipments and pickup assignments.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-courier-dashboard/components/shipments"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 2.0
	DefaultBurst     = 4

	maxErrorBody = 4 << 10
)

// Config names the endpoints and pacing of the client.
type Config struct {
	ShipmentsURL   string
	AssignmentsURL string
	// UpdateURL defaults to AssignmentsURL.
	UpdateURL  string
	APIKey     string
	Timeout    time.Duration
	RateLimit  float64
	Burst      int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client reads and patches the sheets.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ shipments.SheetClient = (*Client)(nil)

// New validates cfg and builds a client.
func New(cfg Config) (*Client, error) {
	if cfg.ShipmentsURL == "" {
		return nil, errors.New("sheets: shipments url is required")
	}
	if cfg.AssignmentsURL == "" {
		return nil, errors.New("sheets: assignments url is required")
	}
	if cfg.UpdateURL == "" {
		cfg.UpdateURL = cfg.AssignmentsURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		logger:  logger.Named("sheets"),
	}, nil
}

// FetchShipments issues one GET against the shipment endpoint.
func (c *Client) FetchShipments(ctx context.Context) ([]shipments.ShipmentRecord, error) {
	var records []shipments.ShipmentRecord
	if err := c.getJSON(ctx, c.cfg.ShipmentsURL, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FetchAssignments issues one GET against the assignment endpoint.
func (c *Client) FetchAssignments(ctx context.Context) ([]shipments.AssignmentRecord, error) {
	var rows []shipments.AssignmentRecord
	if err := c.getJSON(ctx, c.cfg.AssignmentsURL, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

type updateBody struct {
	Data map[string]string `json:"data"`
}

// UpdateAssignment patches PickUpPersonName of the row keyed by awb. Anything
// but 200 is a failure.
func (c *Client) UpdateAssignment(ctx context.Context, awb, person string) error {
	body, err := json.Marshal(updateBody{Data: map[string]string{shipments.ColumnPickUpPersonName: person}})
	if err != nil {
		return fmt.Errorf("sheets: encode update: %w", err)
	}
	endpoint := strings.TrimRight(c.cfg.UpdateURL, "/") + "/id/" + url.PathEscape(awb)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sheets: build update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return remoteError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("sheets: build request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return remoteError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("sheets: decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// do paces the request, then sends it. A request that got no response is
// reported as *shipments.TransportError.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("sheets: rate limiter: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("request failed", zap.String("method", req.Method), zap.String("url", req.URL.Redacted()), zap.Error(err))
		return nil, &shipments.TransportError{Err: err}
	}
	c.logger.Debug("request completed",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

func remoteError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &shipments.RemoteError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
}

// errorMessage pulls a "message" or "error" string out of a JSON error body,
// falling back to the trimmed body text.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
		return ""
	}
	return strings.TrimSpace(string(raw))
}
