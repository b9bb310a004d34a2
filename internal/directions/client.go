package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Skotchmaster/trafine/internal/domain"
)

const maxBodyBytes = 8 << 20

// UpstreamError is a failed provider call; Details is the best-effort reason
// reported by the provider or the transport.
type UpstreamError struct {
	StatusCode int
	Details    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return "directions provider: " + e.Details
	}
	return fmt.Sprintf("directions provider: status %d: %s", e.StatusCode, e.Details)
}

type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// Route asks the provider for a driving route and returns its body unmodified.
// The call is not retried.
func (c *Client) Route(ctx context.Context, origin, destination domain.Coordinate) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("access_token", c.accessToken)
	q.Set("geometries", "geojson")
	q.Set("overview", "full")

	endpoint := fmt.Sprintf("%s/%s;%s?%s", c.baseURL, origin, destination, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Details: redact(err.Error(), c.accessToken)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Details: "read body: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Details: providerMessage(body, resp.Status)}
	}
	if !json.Valid(body) {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Details: "provider returned invalid JSON"}
	}

	return json.RawMessage(body), nil
}

func providerMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fallback
}

// redact keeps the access token out of transport errors, which embed the URL.
func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, url.QueryEscape(secret), "REDACTED")
}
