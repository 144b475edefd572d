package game

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aniguess/internal/catalog"
	"aniguess/internal/live"
	"aniguess/internal/sampler"
	"aniguess/internal/session"
	"aniguess/pkg/config"
	"aniguess/pkg/models"
)

type fakeSampler struct {
	anime  *models.Anime
	stages []models.ImageAsset
	char   *models.Character
	theme  *models.ThemeAsset
	err    error
}

func (f *fakeSampler) SampleAnidle(ctx context.Context, difficulty string) (*models.Anime, error) {
	if f.err != nil {
		return nil, f.err
	}
	a := *f.anime
	return &a, nil
}

func (f *fakeSampler) SampleScreenshot(ctx context.Context, difficulty string) (*models.Anime, []models.ImageAsset, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	a := *f.anime
	return &a, f.stages, nil
}

func (f *fakeSampler) SampleCharacter(ctx context.Context, difficulty string) (*models.Character, *models.Anime, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	ch := *f.char
	a := *f.anime
	return &ch, &a, nil
}

func (f *fakeSampler) SampleTheme(ctx context.Context, difficulty string, kind models.ThemeKind) (*models.Anime, *models.ThemeAsset, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	a := *f.anime
	th := *f.theme
	return &a, &th, nil
}

type fakeSearch struct {
	byName map[string]*models.Anime
}

func (f *fakeSearch) SearchAnime(ctx context.Context, query string) (*models.Anime, error) {
	if a, ok := f.byName[query]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeSearch) SearchAnimeMulti(ctx context.Context, query string, limit int) ([]catalog.SearchResult, error) {
	return nil, nil
}

func (f *fakeSearch) SearchCharacters(ctx context.Context, query string, limit int) ([]catalog.SearchResult, error) {
	return nil, nil
}

type recordedStat struct {
	UserID string
	Game   string
	Won    bool
}

type fakeStats struct {
	recorded []recordedStat
}

func (f *fakeStats) Record(ctx context.Context, userID string, game string, won bool) error {
	f.recorded = append(f.recorded, recordedStat{UserID: userID, Game: game, Won: won})
	return nil
}

func target() *models.Anime {
	year := 2011
	return &models.Anime{
		ID:           9253,
		Title:        "Steins;Gate",
		TitleEnglish: "Steins;Gate",
		Year:         &year,
		Format:       "TV",
		Genres:       []string{"Sci-Fi"},
		Studios:      []string{"White Fox"},
	}
}

func testRouter(t *testing.T, smp TargetSampler, search Searcher) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.New[Session](time.Hour)
	h := NewHandler(store, smp, search, nil, nil, config.Default())

	r := gin.New()
	h.RegisterRoutes(r)
	return r, h
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestAnidleLifecycle(t *testing.T) {
	tgt := target()
	wrong := &models.Anime{ID: 1, Title: "Cowboy Bebop"}
	search := &fakeSearch{byName: map[string]*models.Anime{
		"steins gate":  tgt,
		"cowboy bebop": wrong,
	}}
	r, _ := testRouter(t, &fakeSampler{anime: tgt}, search)

	w, body := doJSON(t, r, http.MethodPost, "/anidle/start", gin.H{"difficulty": "normal"})
	require.Equal(t, http.StatusOK, w.Code)
	gameID := body["game_id"].(string)
	assert.Equal(t, float64(21), body["max_guesses"])

	w, body = doJSON(t, r, http.MethodPost, "/anidle/"+gameID+"/guess", gin.H{"anime_name": "cowboy bebop"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["is_correct"])
	assert.Equal(t, float64(20), body["guesses_remaining"])

	w, body = doJSON(t, r, http.MethodPost, "/anidle/"+gameID+"/guess", gin.H{"anime_name": "steins gate"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["is_won"])
	assert.NotNil(t, body["target"])
}

func TestAnidleHintEndpoint(t *testing.T) {
	r, _ := testRouter(t, &fakeSampler{anime: target()}, &fakeSearch{})

	w, body := doJSON(t, r, http.MethodPost, "/anidle/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	gameID := body["game_id"].(string)

	w, body = doJSON(t, r, http.MethodPost, "/anidle/"+gameID+"/hint", gin.H{"hint_type": "genre"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sci-Fi", body["hint_value"])
	assert.Equal(t, float64(18), body["guesses_remaining"])

	w, _ = doJSON(t, r, http.MethodPost, "/anidle/"+gameID+"/hint", gin.H{"hint_type": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartRejectsUnknownDifficulty(t *testing.T) {
	r, _ := testRouter(t, &fakeSampler{anime: target()}, &fakeSearch{})

	w, body := doJSON(t, r, http.MethodPost, "/anidle/start", gin.H{"difficulty": "nightmare"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_difficulty", body["code"])
}

func TestStartSamplingExhausted(t *testing.T) {
	smp := &fakeSampler{err: &sampler.Failure{Reason: sampler.ReasonNoCandidates, Attempts: 5}}
	r, _ := testRouter(t, smp, &fakeSearch{})

	w, body := doJSON(t, r, http.MethodPost, "/screenshot/start", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "sampling_exhausted", body["code"])
	assert.Equal(t, "no-candidates", body["reason"])
}

func TestUnknownSessionIs404(t *testing.T) {
	r, _ := testRouter(t, &fakeSampler{anime: target()}, &fakeSearch{})

	w, body := doJSON(t, r, http.MethodPost, "/anidle/nope/giveup", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "session_not_found", body["code"])
}

func TestGuessAgainstWrongGameTypeIs404(t *testing.T) {
	smp := &fakeSampler{anime: target(), stages: []models.ImageAsset{
		{Original: "a"}, {Original: "b"}, {Original: "c"}, {Original: "d"},
	}}
	r, _ := testRouter(t, smp, &fakeSearch{})

	w, body := doJSON(t, r, http.MethodPost, "/screenshot/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	gameID := body["game_id"].(string)

	w, _ = doJSON(t, r, http.MethodPost, "/anidle/"+gameID+"/guess", gin.H{"anime_name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScreenshotRevealAndGuess(t *testing.T) {
	smp := &fakeSampler{anime: target(), stages: []models.ImageAsset{
		{Original: "s1"}, {Original: "s2"}, {Original: "s3"},
		{Original: "b1", Category: models.ImageBackdrop},
	}}
	r, _ := testRouter(t, smp, &fakeSearch{})

	w, body := doJSON(t, r, http.MethodPost, "/screenshot/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	gameID := body["game_id"].(string)
	assert.Equal(t, "s1", body["current_screenshot"])
	assert.Equal(t, float64(5), body["total_stages"])

	w, body = doJSON(t, r, http.MethodPost, "/screenshot/"+gameID+"/reveal", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s2", body["current_screenshot"])

	// navigating back to a revealed stage
	w, body = doJSON(t, r, http.MethodPost, "/screenshot/"+gameID+"/navigate/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", body["current_screenshot"])

	// unrevealed stage is rejected
	w, _ = doJSON(t, r, http.MethodPost, "/screenshot/"+gameID+"/navigate/4", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = doJSON(t, r, http.MethodPost, "/screenshot/"+gameID+"/guess", gin.H{"anime_name": "Steins;Gate"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["is_won"])
	assert.NotNil(t, body["all_screenshots"])
}

func TestScreenshotNameHintAtFinalStage(t *testing.T) {
	smp := &fakeSampler{anime: target(), stages: []models.ImageAsset{
		{Original: "s1"}, {Original: "s2"}, {Original: "s3"}, {Original: "s4"},
	}}
	r, _ := testRouter(t, smp, &fakeSearch{})

	_, body := doJSON(t, r, http.MethodPost, "/screenshot/start", nil)
	gameID := body["game_id"].(string)

	for i := 0; i < 3; i++ {
		w, b := doJSON(t, r, http.MethodPost, "/screenshot/"+gameID+"/reveal", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, b["name_hint_revealed"], fmt.Sprintf("reveal %d", i+1))
	}

	w, body := doJSON(t, r, http.MethodPost, "/screenshot/"+gameID+"/reveal", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["name_hint_revealed"])
	assert.NotNil(t, body["name_hint"])
	assert.Nil(t, body["current_screenshot"])
}

func TestCharacterBatchStartAndGuess(t *testing.T) {
	smp := &fakeSampler{
		anime: &models.Anime{ID: 1575, Title: "Code Geass"},
		char:  &models.Character{ID: 417, Name: "Lelouch Lamperouge", Image: "https://img"},
	}
	r, _ := testRouter(t, smp, &fakeSearch{})

	w, body := doJSON(t, r, http.MethodPost, "/character/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cards := body["cards"].([]any)
	require.Len(t, cards, 4)

	first := cards[0].(map[string]any)
	gameID := first["game_id"].(string)
	assert.Equal(t, "https://img", first["character_image"])

	w, body = doJSON(t, r, http.MethodPost, "/character/"+gameID+"/guess", gin.H{
		"character_name": "lelouch lamperouge",
		"anime_name":     "code geass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["character_correct"])
	assert.Equal(t, true, body["anime_correct"])
	assert.Equal(t, true, body["is_won"])
}

func TestCharacterHalfRightLoses(t *testing.T) {
	smp := &fakeSampler{
		anime: &models.Anime{ID: 1575, Title: "Code Geass"},
		char:  &models.Character{ID: 417, Name: "Lelouch Lamperouge", Image: "https://img"},
	}
	r, _ := testRouter(t, smp, &fakeSearch{})

	_, body := doJSON(t, r, http.MethodPost, "/character/start", nil)
	gameID := body["cards"].([]any)[0].(map[string]any)["game_id"].(string)

	w, body := doJSON(t, r, http.MethodPost, "/character/"+gameID+"/guess", gin.H{
		"character_name": "lelouch lamperouge",
		"anime_name":     "death note",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["character_correct"])
	assert.Equal(t, false, body["anime_correct"])
	assert.Equal(t, false, body["is_won"])
}

func TestThemeVideoHiddenUntilReveal(t *testing.T) {
	smp := &fakeSampler{
		anime: target(),
		theme: &models.ThemeAsset{Slug: "OP1", Title: "Hacking to the Gate", Artist: "Kanako Itou", AudioURL: "https://audio", VideoURL: "https://video"},
	}
	r, _ := testRouter(t, smp, &fakeSearch{})

	w, body := doJSON(t, r, http.MethodPost, "/theme/op/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	gameID := body["game_id"].(string)
	assert.Equal(t, "https://audio", body["audio_url"])

	w, body = doJSON(t, r, http.MethodGet, "/theme/"+gameID+"/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := body["theme"].(map[string]any)
	_, hasVideo := view["video_url"]
	assert.False(t, hasVideo)
	// song metadata would name the show
	_, hasTitle := view["title"]
	assert.False(t, hasTitle)

	w, body = doJSON(t, r, http.MethodPost, "/theme/"+gameID+"/reveal", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = body["theme"].(map[string]any)
	assert.Equal(t, "https://video", view["video_url"])

	w, body = doJSON(t, r, http.MethodPost, "/theme/"+gameID+"/guess", gin.H{"anime_name": "steins gate"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["is_won"])
	view = body["theme"].(map[string]any)
	assert.Equal(t, "Hacking to the Gate", view["title"])
}

func TestFinishedRecordsStatsAndEvents(t *testing.T) {
	tgt := target()
	r, h := testRouter(t, &fakeSampler{anime: tgt}, &fakeSearch{byName: map[string]*models.Anime{"steins gate": tgt}})

	stats := &fakeStats{}
	hub := live.NewHub()
	h.Stats = stats
	h.Events = hub

	_, body := doJSON(t, r, http.MethodPost, "/anidle/start", nil)
	gameID := body["game_id"].(string)

	// anonymous sessions record nothing
	w, _ := doJSON(t, r, http.MethodPost, "/anidle/"+gameID+"/guess", gin.H{"anime_name": "steins gate"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, stats.recorded)
}

func TestGiveUpRevealsTarget(t *testing.T) {
	r, _ := testRouter(t, &fakeSampler{anime: target()}, &fakeSearch{})

	_, body := doJSON(t, r, http.MethodPost, "/anidle/start", nil)
	gameID := body["game_id"].(string)

	w, body := doJSON(t, r, http.MethodPost, "/anidle/"+gameID+"/giveup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tgt := body["target"].(map[string]any)
	assert.Equal(t, "Steins;Gate", tgt["title"])

	// terminal sessions reject further guesses
	w, _ = doJSON(t, r, http.MethodPost, "/anidle/"+gameID+"/giveup", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
