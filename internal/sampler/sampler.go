// Package sampler picks playable targets for the games.
//
// External catalogs do not guarantee asset availability, so every game
// start is a bounded probabilistic search: draw a candidate inside the
// difficulty's popularity bracket, check the game type's asset contract,
// and resample on failure up to a fixed ceiling. Rejected candidates are
// never retried verbatim. The sampler only reads; it touches no shared
// state and is safe to call concurrently.
package sampler

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"aniguess/internal/catalog"
	"aniguess/pkg/config"
	"aniguess/pkg/models"
)

// Reason codes a sampling failure so the caller can surface the right
// user-facing error.
type Reason string

const (
	ReasonNoCandidates       Reason = "no-candidates"
	ReasonNoMapping          Reason = "no-mapping"
	ReasonInsufficientAssets Reason = "insufficient-assets"
)

// Failure is returned when the attempt ceiling is exhausted without a
// playable candidate. It is a routine condition, not a server fault.
type Failure struct {
	Reason   Reason
	Attempts int
}

func (f *Failure) Error() string {
	return fmt.Sprintf("sampling exhausted after %d attempts: %s", f.Attempts, f.Reason)
}

// AnimeSource draws candidates and characters from the primary catalog.
type AnimeSource interface {
	RandomAnime(ctx context.Context, minRank, maxRank int) (*models.Anime, error)
	RandomCharacter(ctx context.Context, minRank, maxRank int) (*models.Character, *models.Anime, error)
}

// TagEnricher overlays ranked tag sets onto a candidate.
type TagEnricher interface {
	Enrich(ctx context.Context, anime *models.Anime) error
}

// Translator maps canonical ids into the screenshot provider's namespace.
type Translator interface {
	ShikimoriID(ctx context.Context, malID int) (id int, found bool, err error)
}

// ScreenshotSource fetches image assets by provider-native id.
type ScreenshotSource interface {
	Screenshots(ctx context.Context, shikimoriID int) ([]models.ImageAsset, error)
}

// ThemeSource fetches OP/ED assets, resolving the canonical id itself.
type ThemeSource interface {
	ThemesByMALID(ctx context.Context, malID int) (ops, eds []models.ThemeAsset, err error)
}

// Sampler runs the difficulty-bracketed candidate search.
type Sampler struct {
	Anime       AnimeSource
	Tags        TagEnricher
	Translator  Translator
	Screenshots ScreenshotSource
	Themes      ThemeSource
	Config      config.Config
}

func New(anime AnimeSource, tags TagEnricher, tr Translator, ss ScreenshotSource, th ThemeSource, cfg config.Config) *Sampler {
	return &Sampler{
		Anime:       anime,
		Tags:        tags,
		Translator:  tr,
		Screenshots: ss,
		Themes:      th,
		Config:      cfg,
	}
}

func (s *Sampler) ceiling() int {
	if n := s.Config.Global.MaxRetries; n > 0 {
		return n
	}
	return 5
}

// draw fetches one candidate inside the difficulty's rank bracket.
// Transient errors are logged and reported as a nil candidate so they
// consume one attempt instead of aborting the whole sample.
func (s *Sampler) draw(ctx context.Context, difficulty string) *models.Anime {
	minRank, maxRank := s.Config.RankRange(difficulty)
	anime, err := s.Anime.RandomAnime(ctx, minRank, maxRank)
	if err != nil {
		log.Printf("[sampler] draw failed (rank %d-%d): %v", minRank, maxRank, err)
		return nil
	}
	return anime
}

// SampleAnidle picks a target for the attribute-guess game. The contract
// is metadata only; tag enrichment is best effort and never rejects the
// candidate.
func (s *Sampler) SampleAnidle(ctx context.Context, difficulty string) (*models.Anime, error) {
	ceiling := s.ceiling()
	for attempt := 0; attempt < ceiling; attempt++ {
		anime := s.draw(ctx, difficulty)
		if anime == nil {
			continue
		}
		if s.Tags != nil {
			if err := s.Tags.Enrich(ctx, anime); err != nil {
				log.Printf("[sampler] tag enrichment failed for %d: %v", anime.ID, err)
			}
		}
		return anime, nil
	}
	return nil, &Failure{Reason: ReasonNoCandidates, Attempts: ceiling}
}

// SampleScreenshot picks a target with composed reveal stages. The
// contract: the canonical id must translate into the screenshot
// provider's namespace, and the provider must hold enough distinct
// images to fill every image stage.
func (s *Sampler) SampleScreenshot(ctx context.Context, difficulty string) (*models.Anime, []models.ImageAsset, error) {
	ceiling := s.ceiling()
	stages := s.Config.Games.Screenshot.Stages - 1 // last stage is the name hint
	minAssets := s.Config.Games.Screenshot.MinScreenshots
	if stages < minAssets {
		stages = minAssets
	}

	reason := ReasonNoCandidates
	for attempt := 0; attempt < ceiling; attempt++ {
		anime := s.draw(ctx, difficulty)
		if anime == nil {
			continue
		}

		shikiID, found, err := s.Translator.ShikimoriID(ctx, anime.ID)
		if err != nil {
			log.Printf("[sampler] id translation failed for %d: %v", anime.ID, err)
			continue
		}
		if !found {
			reason = ReasonNoMapping
			continue
		}

		assets, err := s.Screenshots.Screenshots(ctx, shikiID)
		if err != nil {
			log.Printf("[sampler] screenshot fetch failed for %d: %v", shikiID, err)
			continue
		}
		composed := ComposeStages(assets, stages)
		if composed == nil {
			reason = ReasonInsufficientAssets
			continue
		}
		return anime, composed, nil
	}
	return nil, nil, &Failure{Reason: reason, Attempts: ceiling}
}

// SampleCharacter picks a character/parent-anime pair. The contract: the
// character must have a portrait and the parent anime a resolvable title.
func (s *Sampler) SampleCharacter(ctx context.Context, difficulty string) (*models.Character, *models.Anime, error) {
	ceiling := s.ceiling()

	reason := ReasonNoCandidates
	for attempt := 0; attempt < ceiling; attempt++ {
		minRank, maxRank := s.Config.RankRange(difficulty)
		ch, anime, err := s.Anime.RandomCharacter(ctx, minRank, maxRank)
		if err != nil {
			log.Printf("[sampler] character draw failed (rank %d-%d): %v", minRank, maxRank, err)
			continue
		}
		if ch == nil || anime == nil {
			continue
		}
		if ch.Image == "" || anime.Title == "" {
			reason = ReasonInsufficientAssets
			continue
		}
		return ch, anime, nil
	}
	return nil, nil, &Failure{Reason: reason, Attempts: ceiling}
}

// SampleTheme picks a target with one OP or ED asset. The contract: the
// candidate must resolve inside the theme provider's namespace and at
// least one theme of the requested kind must carry both audio and video.
// There is never a silent fallback to a degraded asset.
func (s *Sampler) SampleTheme(ctx context.Context, difficulty string, kind models.ThemeKind) (*models.Anime, *models.ThemeAsset, error) {
	ceiling := s.ceiling()

	reason := ReasonNoCandidates
	for attempt := 0; attempt < ceiling; attempt++ {
		anime := s.draw(ctx, difficulty)
		if anime == nil {
			continue
		}

		ops, eds, err := s.Themes.ThemesByMALID(ctx, anime.ID)
		if err != nil {
			log.Printf("[sampler] theme fetch failed for %d: %v", anime.ID, err)
			continue
		}
		if len(ops) == 0 && len(eds) == 0 {
			reason = ReasonNoMapping
			continue
		}

		pool := ops
		if kind == models.ThemeEnding {
			pool = eds
		}
		if len(pool) == 0 {
			reason = ReasonInsufficientAssets
			continue
		}

		theme := pool[rand.Intn(len(pool))]
		return anime, &theme, nil
	}
	return nil, nil, &Failure{Reason: reason, Attempts: ceiling}
}

var _ AnimeSource = (*catalog.Jikan)(nil)
var _ TagEnricher = (*catalog.AniList)(nil)
var _ Translator = (*catalog.IDs)(nil)
var _ ScreenshotSource = (*catalog.Shikimori)(nil)
var _ ThemeSource = (*catalog.AnimeThemes)(nil)
