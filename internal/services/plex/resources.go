package plex

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

var plexResourcesEndpoint = "https://plex.tv/api/v2/resources?includeHttps=1"

// DiscoveredServer is one media server advertised for the linked account.
// URLs are ordered best first (https and plex.direct preferred, relays last).
type DiscoveredServer struct {
	Name  string
	Token string
	URLs  []string
}

type plexResourceList struct {
	Resources []plexResource `xml:"resource"`
}

type plexResource struct {
	Name             string                   `xml:"name,attr"`
	AccessToken      string                   `xml:"accessToken,attr"`
	ClientIdentifier string                   `xml:"clientIdentifier,attr"`
	Provides         string                   `xml:"provides,attr"`
	Connections      []plexResourceConnection `xml:"connections>connection"`
}

type plexResourceConnection struct {
	URI      string `xml:"uri,attr"`
	Protocol string `xml:"protocol,attr"`
	Local    string `xml:"local,attr"`
	Relay    string `xml:"relay,attr"`
	Address  string `xml:"address,attr"`
	Port     string `xml:"port,attr"`
}

// DiscoverServers lists the account's media servers from plex.tv resources.
func DiscoverServers(ctx context.Context, client HTTPDoer, authToken, clientID string) ([]DiscoveredServer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, plexResourcesEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build plex resources request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("X-Plex-Token", strings.TrimSpace(authToken))
	applyStandardHeaders(req, clientID)

	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch plex resources: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrAuthorizationMissing
	}
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("plex resources returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var list plexResourceList
	if err := xml.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode plex resources: %w", err)
	}

	var servers []DiscoveredServer
	for _, res := range list.Resources {
		if !strings.Contains(res.Provides, "server") {
			continue
		}
		urls := rankConnections(res.Connections)
		if len(urls) == 0 {
			continue
		}
		name := strings.TrimSpace(res.Name)
		if name == "" {
			name = strings.TrimSpace(res.ClientIdentifier)
		}
		servers = append(servers, DiscoveredServer{
			Name:  name,
			Token: strings.TrimSpace(res.AccessToken),
			URLs:  urls,
		})
	}
	if len(servers) == 0 {
		return nil, errors.New("no plex servers found in resources response")
	}
	return servers, nil
}

func rankConnections(connections []plexResourceConnection) []string {
	type scored struct {
		url   string
		score int
	}
	var candidates []scored
	seen := make(map[string]struct{}, len(connections))
	for _, conn := range connections {
		uri := strings.TrimRight(strings.TrimSpace(conn.URI), "/")
		if uri == "" {
			continue
		}
		if _, dup := seen[uri]; dup {
			continue
		}
		seen[uri] = struct{}{}

		protocol := strings.ToLower(strings.TrimSpace(conn.Protocol))
		score := 0
		if protocol == "https" {
			score += 50
		} else if protocol != "" {
			score -= 10
		}
		if strings.Contains(uri, ".plex.direct") {
			score += 30
		}
		if parseBool(conn.Local) {
			score += 5
		}
		if parseBool(conn.Relay) {
			score -= 5
		}
		candidates = append(candidates, scored{url: uri, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	urls := make([]string, 0, len(candidates))
	for _, c := range candidates {
		urls = append(urls, c.url)
	}
	return urls
}

func parseBool(value string) bool {
	if value == "" {
		return false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return b
}
