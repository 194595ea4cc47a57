package plex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plexgraph/internal/services"
)

const sectionsXML = `<MediaContainer>
  <Directory key="1" title="Movies" type="movie"/>
  <Directory key="2" title="TV Shows" type="show"/>
  <Directory key="3" title="Concert Films" type="movie"/>
</MediaContainer>`

const sectionAllXML = `<MediaContainer>
  <Video ratingKey="101" title="Inception" year="2010"/>
  <Video ratingKey="102" title="Heat" year="1995"/>
</MediaContainer>`

func metadataXML(ratingKey string) string {
	switch ratingKey {
	case "101":
		return `<MediaContainer>
  <Video ratingKey="101" title="Inception" year="2010" studio="Warner Bros." contentRating="PG-13" rating="8.7">
    <Genre tag="Science Fiction"/><Genre tag="Action"/>
    <Director tag="Christopher Nolan"/>
    <Writer tag="Christopher Nolan"/>
    <Role tag="Leonardo DiCaprio"/><Role tag="Elliot Page"/>
  </Video>
</MediaContainer>`
	default:
		return `<MediaContainer>
  <Video ratingKey="102" title="Heat" year="1995" rating="8.3">
    <Director tag="Michael Mann"/>
    <Role tag="Al Pacino"/><Role tag="Robert De Niro"/>
  </Video>
</MediaContainer>`
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Plex-Token") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		switch r.URL.Path {
		case "/identity":
			_, _ = w.Write([]byte(`<MediaContainer machineIdentifier="abc123"/>`))
		case "/library/sections":
			_, _ = w.Write([]byte(sectionsXML))
		case "/library/sections/1/all":
			_, _ = w.Write([]byte(sectionAllXML))
		case "/library/metadata/101", "/library/metadata/102":
			key := r.URL.Path[len("/library/metadata/"):]
			_, _ = w.Write([]byte(metadataXML(key)))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestMovieSectionsFiltersMovieType(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	client := NewClient(server.URL, "secret", "den", "client-id", time.Second)
	sections, err := client.MovieSections(context.Background())
	if err != nil {
		t.Fatalf("MovieSections failed: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 movie sections, got %d", len(sections))
	}
	if sections[0].Key != "1" || sections[1].Key != "3" {
		t.Errorf("unexpected section keys: %+v", sections)
	}
}

func TestSectionMoviesFetchesFullMetadata(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	client := NewClient(server.URL, "secret", "den", "client-id", time.Second)
	movies, err := client.SectionMovies(context.Background(), Section{Key: "1", Title: "Movies"})
	if err != nil {
		t.Fatalf("SectionMovies failed: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(movies))
	}

	inception := movies[0]
	if inception.Title != "Inception" || inception.Year != 2010 {
		t.Errorf("unexpected movie: %+v", inception)
	}
	if inception.Server != "den" {
		t.Errorf("server = %q, want den", inception.Server)
	}
	if len(inception.Actors) != 2 || inception.Actors[0] != "Leonardo DiCaprio" {
		t.Errorf("actors = %v", inception.Actors)
	}
	if len(inception.Genres) != 2 {
		t.Errorf("genres = %v", inception.Genres)
	}
	if len(inception.Directors) != 1 || inception.Directors[0] != "Christopher Nolan" {
		t.Errorf("directors = %v", inception.Directors)
	}
	if inception.Rating != 8.7 {
		t.Errorf("rating = %v, want 8.7", inception.Rating)
	}
}

func TestClientUnauthorizedMapsToAuthorizationError(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	client := NewClient(server.URL, "wrong-token", "den", "client-id", time.Second)
	_, err := client.MovieSections(context.Background())
	if !errors.Is(err, services.ErrAuthorization) {
		t.Fatalf("expected ErrAuthorization, got %v", err)
	}
}

func TestClientNetworkFailureMapsToConnectionError(t *testing.T) {
	server := newTestServer(t)
	server.Close() // refuse connections

	client := NewClient(server.URL, "secret", "den", "client-id", time.Second)
	_, err := client.MovieSections(context.Background())
	if !errors.Is(err, services.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}
