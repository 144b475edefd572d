package game

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"aniguess/pkg/models"
)

type anidleGuessReq struct {
	AnimeName string `json:"anime_name"`
}

type anidleHintReq struct {
	HintType string `json:"hint_type"`
}

func (h *Handler) anidleStart(c *gin.Context) {
	req, ok := h.bindStart(c)
	if !ok {
		return
	}

	ctx, cancel := startCtx(c)
	defer cancel()

	target, err := h.Sampler.SampleAnidle(ctx, req.Difficulty)
	if err != nil {
		respondError(c, err)
		return
	}

	sess := Session{
		ID:         newGameID(),
		Type:       TypeAnidle,
		UserID:     userID(c),
		Difficulty: req.Difficulty,
		CreatedAt:  time.Now(),
		Anidle: &AnidleState{
			Target:     *target,
			MaxGuesses: h.Config.Games.Anidle.MaxGuesses,
			Status:     StatusActive,
		},
	}
	h.Store.Create(sess.ID, sess.Clone())
	h.created(c, &sess)

	log.Printf("[anidle] started %s difficulty=%s target=%d", sess.ID, req.Difficulty, target.ID)
	c.JSON(http.StatusOK, gin.H{
		"game_id":           sess.ID,
		"max_guesses":       sess.Anidle.MaxGuesses,
		"guesses_remaining": sess.Anidle.Remaining(),
		"difficulty":        req.Difficulty,
	})
}

func (h *Handler) anidleGuess(c *gin.Context) {
	var req anidleGuessReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.AnimeName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anime_name required", "code": "invalid_json"})
		return
	}

	// Resolve the name before touching the session: no store lock is
	// held while the catalog round-trips.
	guess, err := h.Search.SearchAnime(c.Request.Context(), req.AnimeName)
	if err != nil {
		respondError(c, err)
		return
	}
	if guess == nil {
		respondError(c, models.ErrInvalidGuess)
		return
	}
	if h.Tags != nil {
		if err := h.Tags.Enrich(c.Request.Context(), guess); err != nil {
			log.Printf("[anidle] guess enrichment failed for %d: %v", guess.ID, err)
		}
	}

	id := c.Param("id")
	var (
		comp models.Comparison
		out  Session
	)
	err = h.Store.Update(id, func(sess *Session) error {
		if sess.Type != TypeAnidle {
			return models.ErrSessionNotFound
		}
		var gerr error
		comp, gerr = sess.Anidle.Guess(*guess)
		out = sess.Clone()
		return gerr
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"guess":             animeSummary(*guess),
		"comparison":        comp,
		"is_correct":        out.Status() == StatusWon,
		"is_complete":       out.Complete(),
		"is_won":            out.Status() == StatusWon,
		"guesses_remaining": out.Anidle.Remaining(),
		"guess_count":       len(out.Anidle.Guesses),
	}
	if out.Complete() {
		resp["target"] = out.Anidle.Target
		resp["duration"] = out.Duration()
		h.finished(&out)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) anidleHint(c *gin.Context) {
	var req anidleHintReq
	if err := c.ShouldBindJSON(&req); err != nil || req.HintType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hint_type required", "code": "invalid_json"})
		return
	}

	cost, ok := h.Config.HintCost(req.HintType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hint type", "code": "invalid_hint"})
		return
	}

	id := c.Param("id")
	var (
		value string
		out   Session
	)
	err := h.Store.Update(id, func(sess *Session) error {
		if sess.Type != TypeAnidle {
			return models.ErrSessionNotFound
		}
		var herr error
		value, herr = sess.Anidle.Hint(req.HintType, cost)
		out = sess.Clone()
		return herr
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"hint_type":         req.HintType,
		"hint_value":        value,
		"guesses_remaining": out.Anidle.Remaining(),
		"is_complete":       out.Complete(),
	}
	if out.Complete() {
		resp["target"] = out.Anidle.Target
		h.finished(&out)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) anidleGiveUp(c *gin.Context) {
	id := c.Param("id")
	var out Session
	err := h.Store.Update(id, func(sess *Session) error {
		if sess.Type != TypeAnidle {
			return models.ErrSessionNotFound
		}
		if gerr := sess.Anidle.GiveUp(); gerr != nil {
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
	c.JSON(http.StatusOK, gin.H{
		"target":      out.Anidle.Target,
		"guess_count": len(out.Anidle.Guesses),
		"duration":    out.Duration(),
	})
}

func (h *Handler) anidleStatus(c *gin.Context) {
	sess, err := h.Store.Get(c.Param("id"))
	if err != nil || sess.Type != TypeAnidle {
		respondError(c, models.ErrSessionNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"game_id":           sess.ID,
		"guess_count":       len(sess.Anidle.Guesses),
		"guesses_remaining": sess.Anidle.Remaining(),
		"guesses":           sess.Anidle.Guesses,
		"is_complete":       sess.Complete(),
		"is_won":            sess.Status() == StatusWon,
		"difficulty":        sess.Difficulty,
		"duration":          sess.Duration(),
	})
}
