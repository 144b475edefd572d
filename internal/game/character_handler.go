package game

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"aniguess/pkg/models"
)

type characterGuessReq struct {
	CharacterName string `json:"character_name"`
	AnimeName     string `json:"anime_name"`
}

// characterStart samples one card per slot and creates an independent
// session for each. Cards that fail to sample are skipped; the round
// fails only when no card could be produced at all.
func (h *Handler) characterStart(c *gin.Context) {
	req, ok := h.bindStart(c)
	if !ok {
		return
	}

	ctx, cancel := startCtx(c)
	defer cancel()

	cards := h.Config.Games.Character.Cards
	out := make([]gin.H, 0, cards)
	var lastErr error
	for i := 0; i < cards; i++ {
		ch, anime, err := h.Sampler.SampleCharacter(ctx, req.Difficulty)
		if err != nil {
			log.Printf("[character] card %d/%d sample failed: %v", i+1, cards, err)
			lastErr = err
			continue
		}

		sess := Session{
			ID:         newGameID(),
			Type:       TypeCharacter,
			UserID:     userID(c),
			Difficulty: req.Difficulty,
			CreatedAt:  time.Now(),
			Character:  NewCharacterState(*ch, *anime),
		}
		h.Store.Create(sess.ID, sess.Clone())
		h.created(c, &sess)
		out = append(out, gin.H{
			"game_id":         sess.ID,
			"character_image": ch.Image,
		})
	}

	if len(out) == 0 {
		respondError(c, lastErr)
		return
	}

	log.Printf("[character] started round difficulty=%s cards=%d/%d", req.Difficulty, len(out), cards)
	c.JSON(http.StatusOK, gin.H{
		"difficulty": req.Difficulty,
		"cards":      out,
	})
}

func (h *Handler) characterGuess(c *gin.Context) {
	var req characterGuessReq
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.CharacterName) == "" || strings.TrimSpace(req.AnimeName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "character_name and anime_name required", "code": "invalid_json"})
		return
	}

	id := c.Param("id")
	var out Session
	err := h.Store.Update(id, func(sess *Session) error {
		if sess.Type != TypeCharacter {
			return models.ErrSessionNotFound
		}
		if gerr := sess.Character.Guess(req.CharacterName, req.AnimeName); gerr != nil {
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
	st := out.Character
	c.JSON(http.StatusOK, gin.H{
		"character_correct": st.CharacterCorrect,
		"anime_correct":     st.AnimeCorrect,
		"is_won":            out.Status() == StatusWon,
		"character":         st.Character,
		"anime":             animeSummary(st.Anime),
		"duration":          out.Duration(),
	})
}

func (h *Handler) characterGiveUp(c *gin.Context) {
	id := c.Param("id")
	var out Session
	err := h.Store.Update(id, func(sess *Session) error {
		if sess.Type != TypeCharacter {
			return models.ErrSessionNotFound
		}
		if gerr := sess.Character.GiveUp(); gerr != nil {
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
	st := out.Character
	c.JSON(http.StatusOK, gin.H{
		"character": st.Character,
		"anime":     animeSummary(st.Anime),
		"duration":  out.Duration(),
	})
}
