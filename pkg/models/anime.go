package models

import "strings"

// Anime is the normalized, internal form of an anime entry used by the
// sampler, comparator and game engine.
//
// All external catalogs (Jikan, AniList, Shikimori) are mapped into this
// structure first; games never see provider-specific shapes.
//
// Popularity, Score, Year and Episodes are pointers on purpose: catalogs
// routinely omit them, and a missing value must stay missing. Coercing to
// zero would corrupt the comparator's ordering verdicts.
type Anime struct {
	ID            int      `json:"id"` // canonical ID = MAL id
	Title         string   `json:"title"`
	TitleEnglish  string   `json:"title_english,omitempty"`
	TitleJapanese string   `json:"title_japanese,omitempty"`
	Synonyms      []string `json:"synonyms,omitempty"`
	Popularity    *int     `json:"popularity,omitempty"` // MAL popularity rank, 1 = most popular
	Score         *float64 `json:"score,omitempty"`
	Year          *int     `json:"year,omitempty"`
	Episodes      *int     `json:"episodes,omitempty"`
	Format        string   `json:"format,omitempty"` // TV, Movie, OVA, ...
	Source        string   `json:"source,omitempty"` // Manga, Light novel, Original, ...
	Season        string   `json:"season,omitempty"` // Winter, Spring, Summer, Fall
	Genres        []string `json:"genres,omitempty"` // primary tag set
	Tags          []string `json:"tags,omitempty"`   // secondary tag set
	Studios       []string `json:"studios,omitempty"`
	Image         string   `json:"image,omitempty"`
	Synopsis      string   `json:"synopsis,omitempty"`
}

// AllTitles returns every title variant usable for name matching.
func (a Anime) AllTitles() []string {
	titles := make([]string, 0, 3+len(a.Synonyms))
	for _, t := range append([]string{a.Title, a.TitleEnglish, a.TitleJapanese}, a.Synonyms...) {
		if t = strings.TrimSpace(t); t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// ImageCategory classifies a screenshot asset for stage composition.
type ImageCategory string

const (
	ImageStill    ImageCategory = "still"    // per-episode screenshot
	ImageBackdrop ImageCategory = "backdrop" // poster / generic art
)

// ImageAsset is one screenshot or backdrop usable in a reveal stage.
type ImageAsset struct {
	Original string        `json:"original"`
	Medium   string        `json:"medium,omitempty"`
	Small    string        `json:"small,omitempty"`
	Category ImageCategory `json:"-"`
}

// DisplayURL prefers the medium size and falls back to the original.
func (a ImageAsset) DisplayURL() string {
	if a.Medium != "" {
		return a.Medium
	}
	return a.Original
}
