package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"aniguess/pkg/models"
)

const anilistBase = "https://graphql.anilist.co"

// AniList enriches canonical anime records with community tags. Jikan has
// no ranked tags, so the comparator's primary/secondary tag tiers come
// from here.
type AniList struct {
	Client  *http.Client
	BaseURL string
}

func NewAniList() *AniList {
	return &AniList{
		Client:  &http.Client{Timeout: 10 * time.Second},
		BaseURL: anilistBase,
	}
}

func (a *AniList) Name() string { return "anilist" }

const anilistTagQuery = `
query ($malId: Int) {
  Media(idMal: $malId, type: ANIME) {
    idMal
    genres
    tags {
      name
      rank
      isMediaSpoiler
    }
  }
}`

type anilistTag struct {
	Name         string `json:"name"`
	Rank         int    `json:"rank"`
	MediaSpoiler bool   `json:"isMediaSpoiler"`
}

// TagSets returns the primary and secondary tag sets for a MAL id.
// Non-spoiler tags are sorted by rank descending; the top five are
// primary, the next five secondary. A missing AniList entry returns
// empty sets, not an error; tag enrichment is best effort.
func (a *AniList) TagSets(ctx context.Context, malID int) (primary, secondary []string, err error) {
	payload, err := json.Marshal(map[string]any{
		"query":     anilistTagQuery,
		"variables": map[string]any{"malId": malID},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("anilist: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("anilist: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("anilist: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("anilist: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var res struct {
		Data struct {
			Media *struct {
				IDMal int          `json:"idMal"`
				Tags  []anilistTag `json:"tags"`
			} `json:"Media"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, nil, fmt.Errorf("anilist: decode: %w", err)
	}
	if len(res.Errors) > 0 || res.Data.Media == nil {
		return nil, nil, nil
	}

	tags := res.Data.Media.Tags[:0:0]
	for _, t := range res.Data.Media.Tags {
		if !t.MediaSpoiler && t.Name != "" {
			tags = append(tags, t)
		}
	}
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Rank > tags[j].Rank })

	for i, t := range tags {
		switch {
		case i < 5:
			primary = append(primary, t.Name)
		case i < 10:
			secondary = append(secondary, t.Name)
		}
	}
	return primary, secondary, nil
}

// Enrich overlays AniList tag sets onto an anime record in place.
// Jikan's theme/demographic tags are kept when AniList has nothing.
func (a *AniList) Enrich(ctx context.Context, anime *models.Anime) error {
	primary, secondary, err := a.TagSets(ctx, anime.ID)
	if err != nil {
		return err
	}
	if len(primary) > 0 {
		anime.Genres = mergeUnique(anime.Genres, primary)
	}
	if len(secondary) > 0 {
		anime.Tags = mergeUnique(anime.Tags, secondary)
	}
	return nil
}

func mergeUnique(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, v := range append(append([]string{}, base...), extra...) {
		if _, dup := seen[v]; dup || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
