package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// LinkClient handles the plex.tv HTTP endpoints used by the device-link flow.
type LinkClient interface {
	RequestPin(ctx context.Context, clientIdentifier string) (*Pin, error)
	PollPin(ctx context.Context, clientIdentifier string, id int64) (*PinStatus, error)
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Pin is a device-link code awaiting user approval at plex.tv/link.
type Pin struct {
	ID        int64
	Code      string
	ExpiresAt time.Time
}

// PinStatus reports whether the user has approved a pin yet.
type PinStatus struct {
	Authorized         bool
	AuthorizationToken string
	ExpiresAt          time.Time
}

type httpLinkClient struct {
	baseURL string
	client  HTTPDoer
}

// NewHTTPLinkClient constructs a plex.tv link client using the provided HTTP backend.
func NewHTTPLinkClient(baseURL string, client HTTPDoer) LinkClient {
	return &httpLinkClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *httpLinkClient) RequestPin(ctx context.Context, clientIdentifier string) (*Pin, error) {
	var resp pinResponse
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/v2/pins", clientIdentifier, &resp); err != nil {
		return nil, err
	}

	return &Pin{
		ID:        resp.ID,
		Code:      resp.Code,
		ExpiresAt: resp.expirationTime(),
	}, nil
}

func (c *httpLinkClient) PollPin(ctx context.Context, clientIdentifier string, id int64) (*PinStatus, error) {
	path := fmt.Sprintf("/api/v2/pins/%d", id)
	var resp pinResponse
	if err := c.doJSONRequest(ctx, http.MethodGet, path, clientIdentifier, &resp); err != nil {
		return nil, err
	}

	status := &PinStatus{
		ExpiresAt: resp.expirationTime(),
	}
	if token := strings.TrimSpace(resp.AuthToken); token != "" {
		status.Authorized = true
		status.AuthorizationToken = token
	}
	return status, nil
}

func (c *httpLinkClient) doJSONRequest(ctx context.Context, method, path, clientIdentifier string, out any) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	applyStandardHeaders(req, clientIdentifier)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("plex request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusUnauthorized {
			return ErrAuthorizationMissing
		}
		return fmt.Errorf("plex %s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type pinResponse struct {
	ID        int64   `json:"id"`
	Code      string  `json:"code"`
	AuthToken string  `json:"authToken"`
	ExpiresIn float64 `json:"expires_in"`
	ExpiresAt string  `json:"expires_at"`
}

func (p pinResponse) expirationTime() time.Time {
	if p.ExpiresAt != "" {
		if t, err := time.Parse(time.RFC3339, p.ExpiresAt); err == nil {
			return t
		}
	}
	if p.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(p.ExpiresIn) * time.Second)
	}
	return time.Time{}
}

func applyStandardHeaders(req *http.Request, clientIdentifier string) {
	req.Header.Set("X-Plex-Client-Identifier", clientIdentifier)
	req.Header.Set("X-Plex-Product", productName)
	req.Header.Set("X-Plex-Version", productVersion)
	req.Header.Set("X-Plex-Device-Name", productName)
	req.Header.Set("X-Plex-Platform", runtime.GOOS)
}
