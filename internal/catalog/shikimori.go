package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"aniguess/pkg/models"
)

const shikimoriBase = "https://shikimori.one/api/graphql"

// Shikimori serves per-episode screenshots, which neither Jikan nor
// AniList carry. Looked up by Shikimori's own id (see IDs translator).
type Shikimori struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
}

func NewShikimori() *Shikimori {
	return &Shikimori{
		Client:    &http.Client{Timeout: 10 * time.Second},
		BaseURL:   shikimoriBase,
		UserAgent: "aniguess",
	}
}

func (s *Shikimori) Name() string { return "shikimori" }

const shikimoriScreenshotQuery = `
query ($ids: String!) {
  animes(ids: $ids) {
    id
    screenshots {
      originalUrl
      x332Url
      x166Url
    }
    poster {
      originalUrl
      mainUrl
    }
  }
}`

// Screenshots returns the image assets for one Shikimori anime id:
// per-episode stills plus the poster as a backdrop. An id unknown to
// Shikimori returns an empty slice, not an error.
func (s *Shikimori) Screenshots(ctx context.Context, shikimoriID int) ([]models.ImageAsset, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     shikimoriScreenshotQuery,
		"variables": map[string]any{"ids": fmt.Sprintf("%d", shikimoriID)},
	})
	if err != nil {
		return nil, fmt.Errorf("shikimori: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("shikimori: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shikimori: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shikimori: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var res struct {
		Data struct {
			Animes []struct {
				Screenshots []struct {
					OriginalURL string `json:"originalUrl"`
					X332URL     string `json:"x332Url"`
					X166URL     string `json:"x166Url"`
				} `json:"screenshots"`
				Poster *struct {
					OriginalURL string `json:"originalUrl"`
					MainURL     string `json:"mainUrl"`
				} `json:"poster"`
			} `json:"animes"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("shikimori: decode: %w", err)
	}
	if len(res.Errors) > 0 || len(res.Data.Animes) == 0 {
		return nil, nil
	}

	anime := res.Data.Animes[0]
	assets := make([]models.ImageAsset, 0, len(anime.Screenshots)+1)
	for _, ss := range anime.Screenshots {
		if ss.OriginalURL == "" {
			continue
		}
		assets = append(assets, models.ImageAsset{
			Original: ss.OriginalURL,
			Medium:   ss.X332URL,
			Small:    ss.X166URL,
			Category: models.ImageStill,
		})
	}
	if p := anime.Poster; p != nil {
		u := p.OriginalURL
		if u == "" {
			u = p.MainURL
		}
		if u != "" {
			assets = append(assets, models.ImageAsset{
				Original: u,
				Medium:   p.MainURL,
				Category: models.ImageBackdrop,
			})
		}
	}
	return assets, nil
}
