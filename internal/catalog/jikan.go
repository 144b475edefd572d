package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"aniguess/pkg/models"
)

// Jikan API base (public MyAnimeList mirror)
const jikanBase = "https://api.jikan.moe/v4"

// jikanPageSize is fixed by the API: popularity-ordered pages hold 25
// entries, so page N covers ranks roughly (N-1)*25..N*25.
const jikanPageSize = 25

// Jikan fetches anime and character data from the Jikan REST API.
type Jikan struct {
	Client  *http.Client
	BaseURL string

	// Jikan rate-limits aggressively; space requests out.
	mu       sync.Mutex
	lastCall time.Time
	minGap   time.Duration
}

func NewJikan() *Jikan {
	return &Jikan{
		Client:  &http.Client{Timeout: 15 * time.Second},
		BaseURL: jikanBase,
		minGap:  time.Second,
	}
}

func (j *Jikan) Name() string { return "jikan" }

func (j *Jikan) pace() {
	j.mu.Lock()
	wait := j.minGap - time.Since(j.lastCall)
	if wait > 0 {
		time.Sleep(wait)
	}
	j.lastCall = time.Now()
	j.mu.Unlock()
}

type jikanAnime struct {
	MalID         int      `json:"mal_id"`
	Title         string   `json:"title"`
	TitleEnglish  string   `json:"title_english"`
	TitleJapanese string   `json:"title_japanese"`
	TitleSynonyms []string `json:"title_synonyms"`
	Popularity    *int     `json:"popularity"`
	Score         *float64 `json:"score"`
	Episodes      *int     `json:"episodes"`
	Year          *int     `json:"year"`
	Type          string   `json:"type"`
	Source        string   `json:"source"`
	Season        string   `json:"season"`
	Synopsis      string   `json:"synopsis"`
	Aired         struct {
		From string `json:"from"`
	} `json:"aired"`
	Genres         []jikanNamed `json:"genres"`
	ExplicitGenres []jikanNamed `json:"explicit_genres"`
	Themes         []jikanNamed `json:"themes"`
	Demographics   []jikanNamed `json:"demographics"`
	Studios        []jikanNamed `json:"studios"`
	Images         jikanImages  `json:"images"`
}

type jikanNamed struct {
	Name string `json:"name"`
}

type jikanImages struct {
	JPG struct {
		ImageURL      string `json:"image_url"`
		LargeImageURL string `json:"large_image_url"`
	} `json:"jpg"`
}

func (j *Jikan) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	j.pace()

	u := j.BaseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("jikan: build request: %w", err)
	}

	resp, err := j.Client.Do(req)
	if err != nil {
		return fmt.Errorf("jikan: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jikan: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("jikan: decode: %w", err)
	}
	return nil
}

// RandomAnime draws one anime whose popularity rank falls inside
// [minRank, maxRank]. It samples a single popularity-ordered page and
// filters; exhausted or off-target pages yield (nil, nil) so the caller's
// bounded retry loop decides whether to draw again.
func (j *Jikan) RandomAnime(ctx context.Context, minRank, maxRank int) (*models.Anime, error) {
	startPage := minRank / jikanPageSize
	if startPage < 1 {
		startPage = 1
	}
	endPage := maxRank / jikanPageSize
	if endPage < startPage {
		endPage = startPage
	}

	page := startPage + rand.Intn(endPage-startPage+1)

	q := url.Values{}
	q.Set("order_by", "popularity")
	q.Set("sort", "asc")
	q.Set("limit", strconv.Itoa(jikanPageSize))
	q.Set("page", strconv.Itoa(page))
	q.Set("sfw", "true")

	var res struct {
		Data []jikanAnime `json:"data"`
	}
	if err := j.get(ctx, "/anime", q, &res); err != nil {
		return nil, err
	}

	inRange := make([]jikanAnime, 0, len(res.Data))
	for _, a := range res.Data {
		if a.Popularity == nil || *a.Popularity < minRank || *a.Popularity > maxRank {
			continue
		}
		if a.isAdult() {
			continue
		}
		inRange = append(inRange, a)
	}
	if len(inRange) == 0 {
		return nil, nil
	}

	picked := inRange[rand.Intn(len(inRange))]
	anime := picked.canonical()
	return &anime, nil
}

// SearchAnime resolves a free-text name to the single best matching anime.
func (j *Jikan) SearchAnime(ctx context.Context, query string) (*models.Anime, error) {
	q := url.Values{}
	q.Set("q", strings.TrimSpace(query))
	q.Set("limit", "1")

	var res struct {
		Data []jikanAnime `json:"data"`
	}
	if err := j.get(ctx, "/anime", q, &res); err != nil {
		return nil, err
	}
	if len(res.Data) == 0 {
		return nil, nil
	}
	anime := res.Data[0].canonical()
	return &anime, nil
}

// SearchResult is one autocomplete entry.
type SearchResult struct {
	Name  string `json:"name"`  // display name, may include year
	Value string `json:"value"` // raw title to submit as a guess
	ID    int    `json:"id"`
}

// SearchAnimeMulti returns autocomplete entries for a partial name.
func (j *Jikan) SearchAnimeMulti(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, nil
	}
	if limit <= 0 || limit > jikanPageSize {
		limit = jikanPageSize
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	var res struct {
		Data []jikanAnime `json:"data"`
	}
	if err := j.get(ctx, "/anime", q, &res); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(res.Data))
	for _, a := range res.Data {
		display := a.Title
		if y := a.year(); y != nil {
			display = fmt.Sprintf("%s (%d)", a.Title, *y)
		}
		results = append(results, SearchResult{
			Name:  truncate(display, 100),
			Value: truncate(a.Title, 100),
			ID:    a.MalID,
		})
	}
	return results, nil
}

// SearchCharacters returns deduplicated autocomplete entries for a
// partial character name.
func (j *Jikan) SearchCharacters(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, nil
	}
	if limit <= 0 || limit > jikanPageSize {
		limit = jikanPageSize
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	var res struct {
		Data []struct {
			MalID int    `json:"mal_id"`
			Name  string `json:"name"`
		} `json:"data"`
	}
	if err := j.get(ctx, "/characters", q, &res); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(res.Data))
	results := make([]SearchResult, 0, len(res.Data))
	for _, c := range res.Data {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, SearchResult{
			Name:  truncate(c.Name, 100),
			Value: truncate(c.Name, 100),
			ID:    c.MalID,
		})
	}
	return results, nil
}

// RandomCharacter picks a character with a portrait from one anime inside
// the given popularity bracket. Main-role characters are preferred, then
// supporting, then anyone. Returns (nil, nil, nil) when the drawn anime
// has no usable character.
func (j *Jikan) RandomCharacter(ctx context.Context, minRank, maxRank int) (*models.Character, *models.Anime, error) {
	anime, err := j.RandomAnime(ctx, minRank, maxRank)
	if err != nil {
		return nil, nil, err
	}
	if anime == nil {
		return nil, nil, nil
	}

	var res struct {
		Data []struct {
			Character struct {
				MalID  int         `json:"mal_id"`
				Name   string      `json:"name"`
				Images jikanImages `json:"images"`
			} `json:"character"`
			Role string `json:"role"`
		} `json:"data"`
	}
	if err := j.get(ctx, fmt.Sprintf("/anime/%d/characters", anime.ID), nil, &res); err != nil {
		return nil, nil, err
	}
	if len(res.Data) == 0 {
		return nil, nil, nil
	}

	for _, role := range []string{"Main", "Supporting", ""} {
		candidates := res.Data[:0:0]
		for _, entry := range res.Data {
			if role != "" && entry.Role != role {
				continue
			}
			if entry.Character.Images.JPG.ImageURL == "" {
				continue
			}
			candidates = append(candidates, entry)
		}
		if len(candidates) == 0 {
			continue
		}

		picked := candidates[rand.Intn(len(candidates))]
		ch := &models.Character{
			ID:    picked.Character.MalID,
			Name:  picked.Character.Name,
			Image: picked.Character.Images.JPG.ImageURL,
			Role:  picked.Role,
		}
		// The list endpoint has no kanji or nicknames; best effort only.
		if full, err := j.characterFull(ctx, ch.ID); err == nil && full != nil {
			ch.NameKanji = full.NameKanji
			ch.Nicknames = full.Nicknames
		}
		return ch, anime, nil
	}
	return nil, nil, nil
}

func (j *Jikan) characterFull(ctx context.Context, id int) (*models.Character, error) {
	var res struct {
		Data struct {
			MalID     int         `json:"mal_id"`
			Name      string      `json:"name"`
			NameKanji string      `json:"name_kanji"`
			Nicknames []string    `json:"nicknames"`
			Images    jikanImages `json:"images"`
		} `json:"data"`
	}
	if err := j.get(ctx, fmt.Sprintf("/characters/%d/full", id), nil, &res); err != nil {
		return nil, err
	}
	if res.Data.MalID == 0 {
		return nil, nil
	}
	return &models.Character{
		ID:        res.Data.MalID,
		Name:      res.Data.Name,
		NameKanji: res.Data.NameKanji,
		Nicknames: res.Data.Nicknames,
		Image:     res.Data.Images.JPG.ImageURL,
	}, nil
}

func (a jikanAnime) isAdult() bool {
	for _, set := range [][]jikanNamed{a.Genres, a.ExplicitGenres, a.Demographics} {
		for _, g := range set {
			if strings.EqualFold(g.Name, "hentai") {
				return true
			}
		}
	}
	return false
}

func (a jikanAnime) year() *int {
	if a.Year != nil {
		return a.Year
	}
	if len(a.Aired.From) >= 4 {
		if y, err := strconv.Atoi(a.Aired.From[:4]); err == nil {
			return &y
		}
	}
	return nil
}

func (a jikanAnime) canonical() models.Anime {
	genres := make([]string, 0, len(a.Genres))
	for _, g := range a.Genres {
		genres = append(genres, g.Name)
	}
	tags := make([]string, 0, len(a.Themes)+len(a.Demographics))
	for _, t := range a.Themes {
		tags = append(tags, t.Name)
	}
	for _, d := range a.Demographics {
		tags = append(tags, d.Name)
	}
	studios := make([]string, 0, len(a.Studios))
	for _, s := range a.Studios {
		studios = append(studios, s.Name)
	}

	season := a.Season
	if season != "" {
		season = strings.ToUpper(season[:1]) + strings.ToLower(season[1:])
	}

	image := a.Images.JPG.LargeImageURL
	if image == "" {
		image = a.Images.JPG.ImageURL
	}

	return models.Anime{
		ID:            a.MalID,
		Title:         a.Title,
		TitleEnglish:  a.TitleEnglish,
		TitleJapanese: a.TitleJapanese,
		Synonyms:      a.TitleSynonyms,
		Popularity:    a.Popularity,
		Score:         a.Score,
		Year:          a.year(),
		Episodes:      a.Episodes,
		Format:        a.Type,
		Source:        a.Source,
		Season:        season,
		Genres:        genres,
		Tags:          tags,
		Studios:       studios,
		Image:         image,
		Synopsis:      a.Synopsis,
	}
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
