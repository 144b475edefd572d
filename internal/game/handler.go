package game

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"aniguess/internal/auth"
	"aniguess/internal/catalog"
	"aniguess/internal/compare"
	"aniguess/internal/live"
	"aniguess/internal/sampler"
	"aniguess/internal/session"
	"aniguess/pkg/config"
	"aniguess/pkg/models"
)

// TargetSampler picks playable targets; satisfied by *sampler.Sampler.
type TargetSampler interface {
	SampleAnidle(ctx context.Context, difficulty string) (*models.Anime, error)
	SampleScreenshot(ctx context.Context, difficulty string) (*models.Anime, []models.ImageAsset, error)
	SampleCharacter(ctx context.Context, difficulty string) (*models.Character, *models.Anime, error)
	SampleTheme(ctx context.Context, difficulty string, kind models.ThemeKind) (*models.Anime, *models.ThemeAsset, error)
}

// Searcher resolves guessed names; satisfied by *catalog.Jikan.
type Searcher interface {
	SearchAnime(ctx context.Context, query string) (*models.Anime, error)
	SearchAnimeMulti(ctx context.Context, query string, limit int) ([]catalog.SearchResult, error)
	SearchCharacters(ctx context.Context, query string, limit int) ([]catalog.SearchResult, error)
}

// Enricher overlays tag sets onto resolved guesses so the comparator can
// grade tags; satisfied by *catalog.AniList.
type Enricher interface {
	Enrich(ctx context.Context, anime *models.Anime) error
}

// StatsRecorder bumps per-user aggregate counters on completion.
type StatsRecorder interface {
	Record(ctx context.Context, userID string, game string, won bool) error
}

// EventSink receives lifecycle events; satisfied by *live.Hub.
type EventSink interface {
	Publish(ev live.Event)
}

// Handler serves the four games over HTTP. Request parsing and response
// shaping live here, game rules in the state machines.
type Handler struct {
	Store   *session.Store[Session]
	Sampler TargetSampler
	Search  Searcher
	Tags    Enricher
	Cache   *catalog.Cache
	Config  config.Config
	Events  EventSink
	Stats   StatsRecorder
}

func NewHandler(store *session.Store[Session], smp TargetSampler, search Searcher, tags Enricher, cache *catalog.Cache, cfg config.Config) *Handler {
	return &Handler{
		Store:   store,
		Sampler: smp,
		Search:  search,
		Tags:    tags,
		Cache:   cache,
		Config:  cfg,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	an := r.Group("/anidle")
	an.POST("/start", h.anidleStart)
	an.POST("/:id/guess", h.anidleGuess)
	an.POST("/:id/hint", h.anidleHint)
	an.POST("/:id/giveup", h.anidleGiveUp)
	an.GET("/:id/status", h.anidleStatus)
	an.GET("/search", h.searchAnime)

	sc := r.Group("/screenshot")
	sc.POST("/start", h.screenshotStart)
	sc.POST("/:id/guess", h.screenshotGuess)
	sc.POST("/:id/reveal", h.screenshotReveal)
	sc.POST("/:id/navigate/:stage", h.screenshotNavigate)
	sc.POST("/:id/giveup", h.screenshotGiveUp)
	sc.GET("/:id/status", h.screenshotStatus)
	sc.GET("/search", h.searchAnime)

	ch := r.Group("/character")
	ch.POST("/start", h.characterStart)
	ch.POST("/:id/guess", h.characterGuess)
	ch.POST("/:id/giveup", h.characterGiveUp)
	ch.GET("/search", h.searchCharacters)
	ch.GET("/search-anime", h.searchAnime)

	th := r.Group("/theme")
	th.POST("/op/start", h.themeStartOP)
	th.POST("/ed/start", h.themeStartED)
	th.POST("/:id/guess", h.themeGuess)
	th.POST("/:id/reveal", h.themeReveal)
	th.POST("/:id/giveup", h.themeGiveUp)
	th.GET("/:id/status", h.themeStatus)
	th.GET("/search", h.searchAnime)
}

type startReq struct {
	Difficulty string `json:"difficulty"`
}

func (h *Handler) bindStart(c *gin.Context) (startReq, bool) {
	var req startReq
	// empty body is fine, difficulty defaults to normal
	_ = c.ShouldBindJSON(&req)
	if req.Difficulty == "" {
		req.Difficulty = "normal"
	}
	if !config.IsDifficulty(req.Difficulty) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown difficulty", "code": "invalid_difficulty"})
		return req, false
	}
	return req, true
}

func newGameID() string { return uuid.NewString() }

// userID comes from the optional bearer token; anonymous play is fine,
// it just records no stats.
func userID(c *gin.Context) string {
	if claims := auth.MustGetClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func (h *Handler) created(c *gin.Context, sess *Session) {
	if h.Events != nil {
		h.Events.Publish(live.Event{
			Type:       live.EventGameStarted,
			GameType:   string(sess.Type),
			GameID:     sess.ID,
			Difficulty: sess.Difficulty,
		})
	}
}

// finished fires once per session when it reaches a terminal state.
func (h *Handler) finished(sess *Session) {
	won := sess.Status() == StatusWon
	if h.Events != nil {
		h.Events.Publish(live.Event{
			Type:       live.EventGameFinished,
			GameType:   string(sess.Type),
			GameID:     sess.ID,
			Difficulty: sess.Difficulty,
			Won:        &won,
		})
	}
	if h.Stats != nil && sess.UserID != "" {
		// the request context may be gone by the time this lands
		if err := h.Stats.Record(context.Background(), sess.UserID, string(sess.Type), won); err != nil {
			log.Printf("[game] stats record failed for %s: %v", sess.UserID, err)
		}
	}
}

// respondError maps domain and sampling failures onto stable HTTP codes.
func respondError(c *gin.Context, err error) {
	var de *models.DomainError
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		switch de.Code {
		case models.CodeSessionNotFound:
			status = http.StatusNotFound
		case models.CodeSamplingExhausted:
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": de.Message, "code": string(de.Code)})
		return
	}

	var sf *sampler.Failure
	if errors.As(err, &sf) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":  "no playable candidate found, try again",
			"code":   string(models.CodeSamplingExhausted),
			"reason": string(sf.Reason),
		})
		return
	}

	log.Printf("[game] internal error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal"})
}

// cachedSearch serves autocomplete queries through the sqlite cache.
func (h *Handler) cachedSearch(c *gin.Context, kind string, fetch func(ctx context.Context, q string, limit int) ([]catalog.SearchResult, error)) {
	q := strings.TrimSpace(c.Query("q"))
	if len(q) < 2 {
		c.JSON(http.StatusOK, []catalog.SearchResult{})
		return
	}
	limit := h.Config.Global.SearchLimit
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	key := kind + ":" + strconv.Itoa(limit) + ":" + compare.Norm(q)
	if results, ok := h.Cache.GetSearch(c.Request.Context(), key); ok {
		c.JSON(http.StatusOK, results)
		return
	}

	results, err := fetch(c.Request.Context(), q, limit)
	if err != nil {
		log.Printf("[game] search failed: %v", err)
		c.JSON(http.StatusOK, []catalog.SearchResult{})
		return
	}
	if results == nil {
		results = []catalog.SearchResult{}
	}
	if err := h.Cache.PutSearch(c.Request.Context(), key, results); err != nil {
		log.Printf("[game] search cache write failed: %v", err)
	}
	c.JSON(http.StatusOK, results)
}

func (h *Handler) searchAnime(c *gin.Context) {
	h.cachedSearch(c, "anime", h.Search.SearchAnimeMulti)
}

func (h *Handler) searchCharacters(c *gin.Context) {
	h.cachedSearch(c, "character", h.Search.SearchCharacters)
}

// animeSummary is the target-safe view of a guessed anime.
func animeSummary(a models.Anime) gin.H {
	return gin.H{
		"id":     a.ID,
		"title":  a.Title,
		"year":   a.Year,
		"score":  a.Score,
		"image":  a.Image,
		"format": a.Format,
		"genres": a.Genres,
	}
}

var startTimeout = 60 * time.Second

// startCtx bounds the whole sampling loop for one start request.
func startCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), startTimeout)
}
