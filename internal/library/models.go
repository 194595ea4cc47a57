package library

import (
	"strings"
	"time"
)

// Movie is one harvested movie record. Records are immutable between
// harvests; a harvest replaces the whole set.
type Movie struct {
	RatingKey     string    `json:"rating_key"`
	Server        string    `json:"server"`
	Title         string    `json:"title"`
	Year          int       `json:"year,omitempty"`
	Studio        string    `json:"studio,omitempty"`
	ContentRating string    `json:"content_rating,omitempty"`
	Rating        float64   `json:"rating,omitempty"`
	Actors        []string  `json:"actors,omitempty"`
	Directors     []string  `json:"directors,omitempty"`
	Writers       []string  `json:"writers,omitempty"`
	Genres        []string  `json:"genres,omitempty"`
	HarvestedAt   time.Time `json:"harvested_at"`
}

// Key uniquely identifies a movie across servers.
func (m Movie) Key() string {
	return m.Server + "/" + m.RatingKey
}

// Attribute returns the named attribute values ("actor", "director",
// "writer", or "genre").
func (m Movie) Attribute(name string) []string {
	switch strings.ToLower(name) {
	case "actor":
		return m.Actors
	case "director":
		return m.Directors
	case "writer":
		return m.Writers
	case "genre":
		return m.Genres
	default:
		return nil
	}
}

// Rated reports whether the movie carries a critic rating.
func (m Movie) Rated() bool {
	return m.Rating > 0
}
