// Package api is the HTTP client for the CropCare backend. The base
// address and per-call timeout are fixed at construction; the bearer
// credential is looked up fresh on every call through a TokenSource.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
)

const (
	defaultBaseURL = "http://127.0.0.1:8080/api"
	defaultTimeout = 20 * time.Second
)

// TokenSource supplies the current bearer credential; empty means
// unauthenticated, and requests still proceed.
type TokenSource interface {
	Token() string
}

// Client performs HTTP requests against the CropCare API.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient builds an API client. tokens may be nil for a client that
// never authenticates.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	address := strings.TrimSpace(baseURL)
	if address == "" {
		address = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(address, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Infer submits a multipart analysis payload and decodes the diagnosis.
func (c *Client) Infer(ctx context.Context, body io.Reader, contentType string) (healthcheck.AnalysisResult, error) {
	data, err := c.do(ctx, http.MethodPost, "/infer", nil, body, contentType)
	if err != nil {
		return healthcheck.AnalysisResult{}, err
	}
	var out healthcheck.AnalysisResult
	if err := json.Unmarshal(data, &out); err != nil {
		return healthcheck.AnalysisResult{}, &Error{Kind: KindDecode, Message: "decode infer response", Err: err}
	}
	return out, nil
}

// Weather fetches weather readings for a coordinate.
func (c *Client) Weather(ctx context.Context, lat, lon float64) (healthcheck.WeatherContext, error) {
	data, err := c.do(ctx, http.MethodGet, "/weather", coordQuery(lat, lon), nil, "")
	if err != nil {
		return healthcheck.WeatherContext{}, err
	}
	var out healthcheck.WeatherContext
	if err := json.Unmarshal(data, &out); err != nil {
		return healthcheck.WeatherContext{}, &Error{Kind: KindDecode, Message: "decode weather response", Err: err}
	}
	return out, nil
}

// Air fetches air quality readings for a coordinate.
func (c *Client) Air(ctx context.Context, lat, lon float64) (healthcheck.AirContext, error) {
	data, err := c.do(ctx, http.MethodGet, "/air", coordQuery(lat, lon), nil, "")
	if err != nil {
		return healthcheck.AirContext{}, err
	}
	var out healthcheck.AirContext
	if err := json.Unmarshal(data, &out); err != nil {
		return healthcheck.AirContext{}, &Error{Kind: KindDecode, Message: "decode air response", Err: err}
	}
	return out, nil
}

// Detections lists historical scans, newest first.
func (c *Client) Detections(ctx context.Context, limit, offset int) ([]healthcheck.Detection, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	data, err := c.do(ctx, http.MethodGet, "/detections", query, nil, "")
	if err != nil {
		return nil, err
	}
	var out []healthcheck.Detection
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &Error{Kind: KindDecode, Message: "decode detections response", Err: err}
	}
	return out, nil
}

// Tips fetches general crop-care tips.
func (c *Client) Tips(ctx context.Context) ([]string, error) {
	data, err := c.do(ctx, http.MethodGet, "/tips", nil, nil, "")
	if err != nil {
		return nil, err
	}
	var out struct {
		Tips []string `json:"tips"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &Error{Kind: KindDecode, Message: "decode tips response", Err: err}
	}
	return out.Tips, nil
}

// Me fetches the signed-in profile. Callers that want the documented
// placeholder fallback apply it themselves; the client reports failures.
func (c *Client) Me(ctx context.Context) (healthcheck.Profile, error) {
	data, err := c.do(ctx, http.MethodGet, "/me", nil, nil, "")
	if err != nil {
		return healthcheck.Profile{}, err
	}
	var out healthcheck.Profile
	if err := json.Unmarshal(data, &out); err != nil {
		return healthcheck.Profile{}, &Error{Kind: KindDecode, Message: "decode profile response", Err: err}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "build request", Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &Error{Kind: KindTimeout, Message: method + " " + path, Err: err}
		}
		return nil, &Error{Kind: KindNetwork, Message: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &Error{
			Kind:    KindHTTPStatus,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("%s %s: %s", method, path, strings.TrimSpace(string(snippet))),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "read response", Err: err}
	}
	return data, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func coordQuery(lat, lon float64) url.Values {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return query
}
