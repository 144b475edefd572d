package stats

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"aniguess/internal/auth"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me/stats", h.myStats)
}

func (h *Handler) myStats(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	list, err := h.Repo.ForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		log.Printf("[stats] list failed for %s: %v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	if list == nil {
		list = []GameStats{}
	}

	played, won := 0, 0
	for _, s := range list {
		played += s.Played
		won += s.Won
	}

	c.JSON(http.StatusOK, gin.H{
		"games":        list,
		"total_played": played,
		"total_won":    won,
	})
}
