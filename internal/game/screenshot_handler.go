package game

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"aniguess/pkg/models"
)

type nameGuessReq struct {
	AnimeName string `json:"anime_name"`
}

func (h *Handler) screenshotStart(c *gin.Context) {
	req, ok := h.bindStart(c)
	if !ok {
		return
	}

	ctx, cancel := startCtx(c)
	defer cancel()

	target, stages, err := h.Sampler.SampleScreenshot(ctx, req.Difficulty)
	if err != nil {
		respondError(c, err)
		return
	}

	sess := Session{
		ID:         newGameID(),
		Type:       TypeScreenshot,
		UserID:     userID(c),
		Difficulty: req.Difficulty,
		CreatedAt:  time.Now(),
		Screenshot: NewScreenshotState(*target, stages),
	}
	h.Store.Create(sess.ID, sess.Clone())
	h.created(c, &sess)

	st := sess.Screenshot
	log.Printf("[screenshot] started %s difficulty=%s target=%d stages=%d", sess.ID, req.Difficulty, target.ID, st.TotalStages)
	c.JSON(http.StatusOK, gin.H{
		"game_id":            sess.ID,
		"difficulty":         req.Difficulty,
		"total_stages":       st.TotalStages,
		"revealed_stages":    st.Revealed,
		"current_stage":      st.Current,
		"current_screenshot": st.CurrentImage().DisplayURL(),
		"attempts_remaining": st.Attempts,
	})
}

func (h *Handler) screenshotGuess(c *gin.Context) {
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
		if sess.Type != TypeScreenshot {
			return models.ErrSessionNotFound
		}
		var gerr error
		correct, gerr = sess.Screenshot.Guess(req.AnimeName)
		out = sess.Clone()
		return gerr
	})
	if err != nil {
		respondError(c, err)
		return
	}

	st := out.Screenshot
	resp := gin.H{
		"guess":              req.AnimeName,
		"is_correct":         correct,
		"is_complete":        out.Complete(),
		"is_won":             out.Status() == StatusWon,
		"attempts_remaining": st.Attempts,
		"revealed_stages":    st.Revealed,
		"current_stage":      st.Current,
		"guess_count":        len(st.Guesses),
	}
	if out.Complete() {
		resp["target"] = st.Target
		resp["duration"] = out.Duration()
		resp["all_screenshots"] = stageURLs(st.StageImages)
		resp["name_hint"] = st.NameHint()
		h.finished(&out)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) screenshotReveal(c *gin.Context) {
	id := c.Param("id")
	var out Session
	err := h.Store.Update(id, func(sess *Session) error {
		if sess.Type != TypeScreenshot {
			return models.ErrSessionNotFound
		}
		if rerr := sess.Screenshot.Reveal(); rerr != nil {
			return rerr
		}
		out = sess.Clone()
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.screenshotStageView(out.Screenshot))
}

func (h *Handler) screenshotNavigate(c *gin.Context) {
	stage, err := strconv.Atoi(c.Param("stage"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stage", "code": "invalid_stage"})
		return
	}

	id := c.Param("id")
	var out Session
	uerr := h.Store.Update(id, func(sess *Session) error {
		if sess.Type != TypeScreenshot {
			return models.ErrSessionNotFound
		}
		if nerr := sess.Screenshot.Navigate(stage); nerr != nil {
			return nerr
		}
		out = sess.Clone()
		return nil
	})
	if uerr != nil {
		respondError(c, uerr)
		return
	}

	c.JSON(http.StatusOK, h.screenshotStageView(out.Screenshot))
}

// screenshotStageView shapes the stage-pointer responses shared by
// reveal and navigate. The name hint appears only once stage N is
// reached; unrevealed images never leak.
func (h *Handler) screenshotStageView(st *ScreenshotState) gin.H {
	resp := gin.H{
		"revealed_stages":    st.Revealed,
		"current_stage":      st.Current,
		"name_hint_revealed": st.NameHintRevealed(),
	}
	if img := st.CurrentImage(); img != nil {
		resp["current_screenshot"] = img.DisplayURL()
	}
	if st.NameHintRevealed() {
		resp["name_hint"] = st.NameHint()
	}
	return resp
}

func (h *Handler) screenshotGiveUp(c *gin.Context) {
	id := c.Param("id")
	var out Session
	err := h.Store.Update(id, func(sess *Session) error {
		if sess.Type != TypeScreenshot {
			return models.ErrSessionNotFound
		}
		if gerr := sess.Screenshot.GiveUp(); gerr != nil {
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
	st := out.Screenshot
	c.JSON(http.StatusOK, gin.H{
		"target":          st.Target,
		"guess_count":     len(st.Guesses),
		"duration":        out.Duration(),
		"all_screenshots": stageURLs(st.StageImages),
		"name_hint":       st.NameHint(),
	})
}

func (h *Handler) screenshotStatus(c *gin.Context) {
	sess, err := h.Store.Get(c.Param("id"))
	if err != nil || sess.Type != TypeScreenshot {
		respondError(c, models.ErrSessionNotFound)
		return
	}

	st := sess.Screenshot
	resp := gin.H{
		"game_id":            sess.ID,
		"total_stages":       st.TotalStages,
		"revealed_stages":    st.Revealed,
		"current_stage":      st.Current,
		"attempts_remaining": st.Attempts,
		"is_complete":        sess.Complete(),
		"is_won":             sess.Status() == StatusWon,
		"difficulty":         sess.Difficulty,
		"duration":           sess.Duration(),
	}
	if img := st.CurrentImage(); img != nil {
		resp["current_screenshot"] = img.DisplayURL()
	}
	c.JSON(http.StatusOK, resp)
}

func stageURLs(images []models.ImageAsset) []string {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.DisplayURL())
	}
	return urls
}
