package sampler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aniguess/pkg/config"
	"aniguess/pkg/models"
)

type fakeAnimeSource struct {
	calls   int
	animes  []*models.Anime // one per call, nil entries allowed
	chars   []*models.Character
	parents []*models.Anime
	err     error
}

func (f *fakeAnimeSource) RandomAnime(ctx context.Context, minRank, maxRank int) (*models.Anime, error) {
	i := f.calls
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if i < len(f.animes) {
		return f.animes[i], nil
	}
	return nil, nil
}

func (f *fakeAnimeSource) RandomCharacter(ctx context.Context, minRank, maxRank int) (*models.Character, *models.Anime, error) {
	i := f.calls
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	var ch *models.Character
	var an *models.Anime
	if i < len(f.chars) {
		ch = f.chars[i]
	}
	if i < len(f.parents) {
		an = f.parents[i]
	}
	return ch, an, nil
}

type fakeTranslator struct {
	id    int
	found bool
	err   error
}

func (f *fakeTranslator) ShikimoriID(ctx context.Context, malID int) (int, bool, error) {
	return f.id, f.found, f.err
}

type fakeScreenshots struct {
	assets []models.ImageAsset
	err    error
}

func (f *fakeScreenshots) Screenshots(ctx context.Context, shikimoriID int) ([]models.ImageAsset, error) {
	return f.assets, f.err
}

type fakeThemes struct {
	ops, eds []models.ThemeAsset
	err      error
}

func (f *fakeThemes) ThemesByMALID(ctx context.Context, malID int) ([]models.ThemeAsset, []models.ThemeAsset, error) {
	return f.ops, f.eds, f.err
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Global.MaxRetries = 3
	return cfg
}

func stills(urls ...string) []models.ImageAsset {
	out := make([]models.ImageAsset, 0, len(urls))
	for _, u := range urls {
		out = append(out, models.ImageAsset{Original: u, Category: models.ImageStill})
	}
	return out
}

func TestSampleAnidle_FirstDrawWins(t *testing.T) {
	src := &fakeAnimeSource{animes: []*models.Anime{{ID: 1, Title: "A"}}}
	s := New(src, nil, nil, nil, nil, testConfig())

	anime, err := s.SampleAnidle(context.Background(), "normal")
	require.NoError(t, err)
	assert.Equal(t, 1, anime.ID)
	assert.Equal(t, 1, src.calls)
}

func TestSampleAnidle_RetriesThenSucceeds(t *testing.T) {
	src := &fakeAnimeSource{animes: []*models.Anime{nil, nil, {ID: 7}}}
	s := New(src, nil, nil, nil, nil, testConfig())

	anime, err := s.SampleAnidle(context.Background(), "normal")
	require.NoError(t, err)
	assert.Equal(t, 7, anime.ID)
	assert.Equal(t, 3, src.calls)
}

func TestSampleAnidle_ExhaustsAtCeiling(t *testing.T) {
	src := &fakeAnimeSource{}
	s := New(src, nil, nil, nil, nil, testConfig())

	_, err := s.SampleAnidle(context.Background(), "normal")
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, ReasonNoCandidates, f.Reason)
	assert.Equal(t, 3, f.Attempts)
	assert.Equal(t, 3, src.calls)
}

func TestSampleAnidle_TransientErrorConsumesAttempt(t *testing.T) {
	src := &fakeAnimeSource{err: errors.New("upstream down")}
	s := New(src, nil, nil, nil, nil, testConfig())

	_, err := s.SampleAnidle(context.Background(), "normal")
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, 3, src.calls)
}

func TestSampleScreenshot_Success(t *testing.T) {
	cfg := testConfig()
	n := cfg.Games.Screenshot.Stages - 1
	urls := make([]string, 0, n+1)
	for i := 0; i < n+1; i++ {
		urls = append(urls, string(rune('a'+i)))
	}

	src := &fakeAnimeSource{animes: []*models.Anime{{ID: 10, Title: "B"}}}
	s := New(src, nil, &fakeTranslator{id: 99, found: true}, &fakeScreenshots{assets: stills(urls...)}, nil, cfg)

	anime, stages, err := s.SampleScreenshot(context.Background(), "hard")
	require.NoError(t, err)
	assert.Equal(t, 10, anime.ID)
	assert.Len(t, stages, n)
}

func TestSampleScreenshot_NoMapping(t *testing.T) {
	src := &fakeAnimeSource{animes: []*models.Anime{{ID: 10}, {ID: 11}, {ID: 12}}}
	s := New(src, nil, &fakeTranslator{found: false}, &fakeScreenshots{}, nil, testConfig())

	_, _, err := s.SampleScreenshot(context.Background(), "normal")
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, ReasonNoMapping, f.Reason)
}

func TestSampleScreenshot_InsufficientAssets(t *testing.T) {
	src := &fakeAnimeSource{animes: []*models.Anime{{ID: 10}, {ID: 11}, {ID: 12}}}
	s := New(src, nil, &fakeTranslator{id: 99, found: true}, &fakeScreenshots{assets: stills("only-one")}, nil, testConfig())

	_, _, err := s.SampleScreenshot(context.Background(), "normal")
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, ReasonInsufficientAssets, f.Reason)
}

func TestSampleCharacter_RequiresPortrait(t *testing.T) {
	noImage := &models.Character{ID: 1, Name: "X"}
	withImage := &models.Character{ID: 2, Name: "Y", Image: "https://img"}
	parent := &models.Anime{ID: 5, Title: "Show"}

	src := &fakeAnimeSource{
		chars:   []*models.Character{noImage, withImage},
		parents: []*models.Anime{parent, parent},
	}
	s := New(src, nil, nil, nil, nil, testConfig())

	ch, anime, err := s.SampleCharacter(context.Background(), "easy")
	require.NoError(t, err)
	assert.Equal(t, 2, ch.ID)
	assert.Equal(t, 5, anime.ID)
	assert.Equal(t, 2, src.calls)
}

func TestSampleTheme_KindPoolEmpty(t *testing.T) {
	src := &fakeAnimeSource{animes: []*models.Anime{{ID: 1}, {ID: 2}, {ID: 3}}}
	themes := &fakeThemes{ops: []models.ThemeAsset{{Slug: "OP1", AudioURL: "a", VideoURL: "v"}}}
	s := New(src, nil, nil, nil, themes, testConfig())

	// openings exist, endings were asked for
	_, _, err := s.SampleTheme(context.Background(), "normal", models.ThemeEnding)
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, ReasonInsufficientAssets, f.Reason)
}

func TestSampleTheme_Success(t *testing.T) {
	src := &fakeAnimeSource{animes: []*models.Anime{{ID: 1, Title: "C"}}}
	themes := &fakeThemes{ops: []models.ThemeAsset{{Slug: "OP1", AudioURL: "a", VideoURL: "v"}}}
	s := New(src, nil, nil, nil, themes, testConfig())

	anime, theme, err := s.SampleTheme(context.Background(), "normal", models.ThemeOpening)
	require.NoError(t, err)
	assert.Equal(t, 1, anime.ID)
	assert.Equal(t, "OP1", theme.Slug)
}

func TestComposeStages_PrefersStillsThenBackdropFinale(t *testing.T) {
	assets := []models.ImageAsset{
		{Original: "s1", Category: models.ImageStill},
		{Original: "s2", Category: models.ImageStill},
		{Original: "s3", Category: models.ImageStill},
		{Original: "b1", Category: models.ImageBackdrop},
	}

	stages := ComposeStages(assets, 4)
	require.Len(t, stages, 4)
	assert.Equal(t, "s1", stages[0].Original)
	assert.Equal(t, "s2", stages[1].Original)
	assert.Equal(t, "s3", stages[2].Original)
	assert.Equal(t, "b1", stages[3].Original)
}

func TestComposeStages_DeterministicForSameInput(t *testing.T) {
	assets := stills("a", "b", "c", "d", "e")
	first := ComposeStages(assets, 4)
	second := ComposeStages(assets, 4)
	assert.Equal(t, first, second)
}

func TestComposeStages_DuplicatesCountOnce(t *testing.T) {
	assets := stills("a", "a", "a", "b")
	assert.Nil(t, ComposeStages(assets, 3))

	stages := ComposeStages(assets, 2)
	require.Len(t, stages, 2)
}

func TestComposeStages_TooFewAssets(t *testing.T) {
	assert.Nil(t, ComposeStages(stills("a"), 2))
	assert.Nil(t, ComposeStages(nil, 1))
}
