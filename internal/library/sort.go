package library

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortMovies orders movies by title using English collation so that output
// ordering matches what a person scanning the list expects, regardless of
// case or accents.
func SortMovies(movies []Movie) {
	c := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(movies, func(i, j int) bool {
		if cmp := c.CompareString(movies[i].Title, movies[j].Title); cmp != 0 {
			return cmp < 0
		}
		return movies[i].Year < movies[j].Year
	})
}

// SortNames orders people or genre names with English collation.
func SortNames(names []string) {
	c := collate.New(language.English, collate.IgnoreCase)
	c.SortStrings(names)
}
