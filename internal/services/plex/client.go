package plex

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"plexgraph/internal/library"
	"plexgraph/internal/logging"
	"plexgraph/internal/services"
)

// Client talks to a single Plex media server.
type Client struct {
	baseURL    string
	token      string
	serverName string
	clientID   string
	httpClient HTTPDoer
	logger     *slog.Logger
}

// ClientOption customises Client construction.
type ClientOption func(*Client)

// WithClientHTTP overrides the HTTP backend (used in tests).
func WithClientHTTP(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithClientLogger attaches a logger for fetch progress.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient builds a client for one server URL and access token.
func NewClient(baseURL, token, serverName, clientID string, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      strings.TrimSpace(token),
		serverName: serverName,
		clientID:   clientID,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	c.logger = logging.NewComponentLogger(c.logger, "plex")
	return c
}

// BaseURL returns the server URL this client was built for.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Section is one library section on a server.
type Section struct {
	Key   string
	Title string
	Type  string
}

type sectionContainer struct {
	Directories []struct {
		Key   string `xml:"key,attr"`
		Title string `xml:"title,attr"`
		Type  string `xml:"type,attr"`
	} `xml:"Directory"`
}

type videoContainer struct {
	Videos []videoEntry `xml:"Video"`
}

type videoEntry struct {
	RatingKey     string  `xml:"ratingKey,attr"`
	Title         string  `xml:"title,attr"`
	Year          int     `xml:"year,attr"`
	Studio        string  `xml:"studio,attr"`
	ContentRating string  `xml:"contentRating,attr"`
	Rating        float64 `xml:"rating,attr"`
	Genres        []tag   `xml:"Genre"`
	Directors     []tag   `xml:"Director"`
	Writers       []tag   `xml:"Writer"`
	Roles         []tag   `xml:"Role"`
}

type tag struct {
	Tag string `xml:"tag,attr"`
}

type identityContainer struct {
	MachineIdentifier string `xml:"machineIdentifier,attr"`
}

// Identity fetches the server's machine identifier. Used as a cheap
// connectivity probe when selecting a URL.
func (c *Client) Identity(ctx context.Context) (string, error) {
	var container identityContainer
	if err := c.doXMLRequest(ctx, "/identity", &container); err != nil {
		return "", err
	}
	return container.MachineIdentifier, nil
}

// MovieSections lists the library sections holding movies.
func (c *Client) MovieSections(ctx context.Context) ([]Section, error) {
	var container sectionContainer
	if err := c.doXMLRequest(ctx, "/library/sections", &container); err != nil {
		return nil, err
	}

	var sections []Section
	for _, dir := range container.Directories {
		if dir.Key == "" || !strings.EqualFold(dir.Type, "movie") {
			continue
		}
		sections = append(sections, Section{Key: dir.Key, Title: dir.Title, Type: dir.Type})
	}
	return sections, nil
}

// SectionMovies fetches every movie in a section with full metadata. The
// section listing returns abbreviated tag lists, so each movie's detail
// endpoint is fetched individually.
func (c *Client) SectionMovies(ctx context.Context, section Section) ([]library.Movie, error) {
	var container videoContainer
	path := fmt.Sprintf("/library/sections/%s/all", section.Key)
	if err := c.doXMLRequest(ctx, path, &container); err != nil {
		return nil, err
	}

	movies := make([]library.Movie, 0, len(container.Videos))
	for _, entry := range container.Videos {
		if entry.RatingKey == "" {
			continue
		}
		movie, err := c.MovieMetadata(ctx, entry.RatingKey)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
		c.logger.Debug("fetched movie metadata",
			logging.String(logging.FieldServer, c.serverName),
			logging.String(logging.FieldMovieKey, movie.Key()),
			logging.String("title", movie.Title))
	}
	return movies, nil
}

// MovieMetadata fetches the full record for one movie.
func (c *Client) MovieMetadata(ctx context.Context, ratingKey string) (library.Movie, error) {
	var container videoContainer
	path := fmt.Sprintf("/library/metadata/%s", ratingKey)
	if err := c.doXMLRequest(ctx, path, &container); err != nil {
		return library.Movie{}, err
	}
	if len(container.Videos) == 0 {
		return library.Movie{}, services.Wrap(services.ErrNotFound, "plex", "movie metadata",
			fmt.Sprintf("rating key %s on %s", ratingKey, c.serverName), nil)
	}

	entry := container.Videos[0]
	return library.Movie{
		RatingKey:     entry.RatingKey,
		Server:        c.serverName,
		Title:         entry.Title,
		Year:          entry.Year,
		Studio:        entry.Studio,
		ContentRating: entry.ContentRating,
		Rating:        entry.Rating,
		Actors:        tagNames(entry.Roles),
		Directors:     tagNames(entry.Directors),
		Writers:       tagNames(entry.Writers),
		Genres:        tagNames(entry.Genres),
		HarvestedAt:   time.Now().UTC(),
	}, nil
}

func (c *Client) doXMLRequest(ctx context.Context, path string, out any) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("X-Plex-Token", c.token)
	applyStandardHeaders(req, c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrConnection, "plex", "request",
			fmt.Sprintf("%s %s", c.serverName, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return services.Wrap(services.ErrAuthorization, "plex", "request",
			fmt.Sprintf("server %s rejected the access token", c.serverName), nil)
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrConnection, "plex", "request",
			fmt.Sprintf("%s %s returned %d: %s", c.serverName, path, resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrConnection, "plex", "decode response", path, err)
	}
	return nil
}

func tagNames(tags []tag) []string {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		name := strings.TrimSpace(t.Tag)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
