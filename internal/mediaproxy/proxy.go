package mediaproxy

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// allowedHosts limits the proxy to the catalog CDNs. An open proxy on a
// public endpoint is an SSRF hole.
var allowedHosts = []string{
	"cdn.myanimelist.net",
	"shikimori.one",
	"desu.shikimori.one",
	"animethemes.moe",
	"s4.anilist.co",
}

type Handler struct {
	Client *http.Client
}

func NewHandler() *Handler {
	return &Handler{Client: &http.Client{Timeout: 30 * time.Second}}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/proxy", h.proxy)
}

// proxy streams a catalog asset through our origin so browser clients
// avoid upstream CORS and hotlink limits.
func (h *Handler) proxy(c *gin.Context) {
	raw := c.Query("url")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url required"})
		return
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || !hostAllowed(u.Host) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url not allowed"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, u.String(), nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url not allowed"})
		return
	}
	if rng := c.GetHeader("Range"); rng != "" {
		req.Header.Set("Range", rng)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		log.Printf("[mediaproxy] fetch %s: %v", u.Host, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
		return
	}

	header := c.Writer.Header()
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		header.Set("Content-Type", ct)
	}
	for _, k := range []string{"Content-Length", "Content-Range", "Accept-Ranges"} {
		if v := resp.Header.Get(k); v != "" {
			header.Set(k, v)
		}
	}
	header.Set("Cache-Control", "public, max-age=86400")

	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		log.Printf("[mediaproxy] stream %s: %v", u.Host, err)
	}
}

func hostAllowed(host string) bool {
	host = strings.ToLower(host)
	for _, allowed := range allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
