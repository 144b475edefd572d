package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"aniguess/pkg/models"
)

const animeThemesBase = "https://api.animethemes.moe"

// AnimeThemes serves OP/ED media: a webm video per theme entry plus a
// separately hosted audio track. Looked up by MAL id directly.
type AnimeThemes struct {
	Client  *http.Client
	BaseURL string
}

func NewAnimeThemes() *AnimeThemes {
	return &AnimeThemes{
		Client:  &http.Client{Timeout: 15 * time.Second},
		BaseURL: animeThemesBase,
	}
}

func (t *AnimeThemes) Name() string { return "animethemes" }

// ThemesByMALID returns the openings and endings for one anime. Both the
// audio and video link must exist for a theme to be usable; themes missing
// either are dropped rather than degraded. An anime unknown to
// AnimeThemes returns two empty slices.
func (t *AnimeThemes) ThemesByMALID(ctx context.Context, malID int) (ops, eds []models.ThemeAsset, err error) {
	q := url.Values{}
	q.Set("filter[has]", "resources")
	q.Set("filter[site]", "MyAnimeList")
	q.Set("filter[external_id]", strconv.Itoa(malID))
	q.Set("include", "animethemes.song.artists,animethemes.animethemeentries.videos.audio")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL+"/anime?"+q.Encode(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("animethemes: build request: %w", err)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("animethemes: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("animethemes: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var res struct {
		Anime []struct {
			Name   string `json:"name"`
			Themes []struct {
				Slug string `json:"slug"` // e.g. "OP1", "ED2"
				Type string `json:"type"` // "OP" or "ED"
				Song *struct {
					Title   string `json:"title"`
					Artists []struct {
						Name string `json:"name"`
					} `json:"artists"`
				} `json:"song"`
				Entries []struct {
					Videos []struct {
						Link       string `json:"link"`
						Resolution int    `json:"resolution"`
						Audio      *struct {
							Link string `json:"link"`
						} `json:"audio"`
					} `json:"videos"`
				} `json:"animethemeentries"`
			} `json:"animethemes"`
		} `json:"anime"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, nil, fmt.Errorf("animethemes: decode: %w", err)
	}
	if len(res.Anime) == 0 {
		return nil, nil, nil
	}

	for _, theme := range res.Anime[0].Themes {
		videoURL, audioURL := "", ""
		for _, entry := range theme.Entries {
			for _, v := range entry.Videos {
				if v.Link == "" {
					continue
				}
				if videoURL == "" || v.Resolution == 1080 {
					videoURL = v.Link
					if v.Audio != nil {
						audioURL = v.Audio.Link
					}
				}
			}
		}
		if videoURL == "" || audioURL == "" {
			continue
		}

		asset := models.ThemeAsset{
			Slug:     theme.Slug,
			AudioURL: audioURL,
			VideoURL: videoURL,
		}
		if theme.Song != nil {
			asset.Title = theme.Song.Title
			if len(theme.Song.Artists) > 0 {
				asset.Artist = theme.Song.Artists[0].Name
			}
		}

		switch {
		case theme.Type == "OP" || strings.HasPrefix(theme.Slug, "OP"):
			ops = append(ops, asset)
		case theme.Type == "ED" || strings.HasPrefix(theme.Slug, "ED"):
			eds = append(eds, asset)
		}
	}
	return ops, eds, nil
}
