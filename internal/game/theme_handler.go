package game

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"aniguess/pkg/models"
)

func (h *Handler) themeStartOP(c *gin.Context) { h.themeStart(c, models.ThemeOpening) }
func (h *Handler) themeStartED(c *gin.Context) { h.themeStart(c, models.ThemeEnding) }

func (h *Handler) themeStart(c *gin.Context, kind models.ThemeKind) {
	req, ok := h.bindStart(c)
	if !ok {
		return
	}

	ctx, cancel := startCtx(c)
	defer cancel()

	target, theme, err := h.Sampler.SampleTheme(ctx, req.Difficulty, kind)
	if err != nil {
		respondError(c, err)
		return
	}

	sess := Session{
		ID:         newGameID(),
		Type:       TypeTheme,
		UserID:     userID(c),
		Difficulty: req.Difficulty,
		CreatedAt:  time.Now(),
		Theme:      NewThemeState(*target, *theme, kind),
	}
	h.Store.Create(sess.ID, sess.Clone())
	h.created(c, &sess)

	log.Printf("[theme] started %s kind=%s difficulty=%s target=%d slug=%s", sess.ID, kind, req.Difficulty, target.ID, theme.Slug)
	c.JSON(http.StatusOK, gin.H{
		"game_id":            sess.ID,
		"kind":               kind,
		"difficulty":         req.Difficulty,
		"stage":              sess.Theme.Stage,
		"audio_url":          theme.AudioURL,
		"attempts_remaining": sess.Theme.Attempts,
	})
}

func (h *Handler) themeGuess(c *gin.Context) {
	var req nameGuessReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.AnimeName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anime_name required", "code": "invalid_json"})
		return
	}

	id := c.Param("id")
	var (
		correct bool
		out     Session
	)
	err := h.Store.Update(id, func(sess *Session) error {
		if sess.Type != TypeTheme {
			return models.ErrSessionNotFound
		}
		var gerr error
		correct, gerr = sess.Theme.Guess(req.AnimeName)
		out = sess.Clone()
		return gerr
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.finished(&out)
	st := out.Theme
	c.JSON(http.StatusOK, gin.H{
		"guess":      req.AnimeName,
		"is_correct": correct,
		"is_won":     out.Status() == StatusWon,
		"target":     st.Target,
		"theme":      h.themeView(st),
		"duration":   out.Duration(),
	})
}

func (h *Handler) themeReveal(c *gin.Context) {
	id := c.Param("id")
	var out Session
	err := h.Store.Update(id, func(sess *Session) error {
		if sess.Type != TypeTheme {
			return models.ErrSessionNotFound
		}
		if rerr := sess.Theme.Reveal(); rerr != nil {
			return rerr
		}
		out = sess.Clone()
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stage": out.Theme.Stage,
		"theme": h.themeView(out.Theme),
	})
}

func (h *Handler) themeGiveUp(c *gin.Context) {
	id := c.Param("id")
	var out Session
	err := h.Store.Update(id, func(sess *Session) error {
		if sess.Type != TypeTheme {
			return models.ErrSessionNotFound
		}
		if gerr := sess.Theme.GiveUp(); gerr != nil {
			return gerr
		}
		out = sess.Clone()
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.finished(&out)
	st := out.Theme
	c.JSON(http.StatusOK, gin.H{
		"target":   st.Target,
		"theme":    h.themeView(st),
		"duration": out.Duration(),
	})
}

func (h *Handler) themeStatus(c *gin.Context) {
	sess, err := h.Store.Get(c.Param("id"))
	if err != nil || sess.Type != TypeTheme {
		respondError(c, models.ErrSessionNotFound)
		return
	}

	st := sess.Theme
	resp := gin.H{
		"game_id":            sess.ID,
		"kind":               st.Kind,
		"stage":              st.Stage,
		"attempts_remaining": st.Attempts,
		"is_complete":        sess.Complete(),
		"is_won":             sess.Status() == StatusWon,
		"difficulty":         sess.Difficulty,
		"duration":           sess.Duration(),
		"theme":              h.themeView(st),
	}
	if sess.Complete() {
		resp["target"] = st.Target
	}
	c.JSON(http.StatusOK, resp)
}

// themeView shapes the theme asset for responses. The video URL, and the
// song metadata that names the show, stay hidden until the video stage
// or completion.
func (h *Handler) themeView(st *ThemeState) gin.H {
	v := gin.H{
		"kind":      st.Kind,
		"audio_url": st.Theme.AudioURL,
	}
	if st.VideoRevealed() {
		v["video_url"] = st.Theme.VideoURL
	}
	if st.Status != StatusActive {
		v["slug"] = st.Theme.Slug
		v["title"] = st.Theme.Title
		v["artist"] = st.Theme.Artist
	}
	return v
}
