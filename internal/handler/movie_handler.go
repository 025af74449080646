package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lanprime/internal/service"
)

// MovieHandler proxies TMDB catalog data. Upstream responses are relayed
// verbatim so the front end renders TMDB's own shapes.
type MovieHandler struct {
	catalog *service.CatalogService
}

func NewMovieHandler(catalog *service.CatalogService) *MovieHandler {
	return &MovieHandler{catalog: catalog}
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (h *MovieHandler) TrendingMovies(c *gin.Context) {
	data, err := h.catalog.Trending(c.Request.Context(), "movie", pageParam(c))
	if err != nil {
		log.Printf("[MOVIES] trending movies: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "failed to fetch trending movies"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (h *MovieHandler) TrendingTV(c *gin.Context) {
	data, err := h.catalog.Trending(c.Request.Context(), "tv", pageParam(c))
	if err != nil {
		log.Printf("[MOVIES] trending tv: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "failed to fetch trending tv shows"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (h *MovieHandler) Discover(c *gin.Context) {
	data, err := h.catalog.DiscoverMovies(c.Request.Context(), pageParam(c))
	if err != nil {
		log.Printf("[MOVIES] discover: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "failed to fetch movies"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (h *MovieHandler) Details(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid movie id"})
		return
	}
	data, err := h.catalog.MovieDetails(c.Request.Context(), id)
	if err != nil {
		log.Printf("[MOVIES] details id=%d: %v", id, err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "failed to fetch movie details"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (h *MovieHandler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "query parameter required"})
		return
	}
	data, err := h.catalog.SearchMovies(c.Request.Context(), query, pageParam(c))
	if err != nil {
		log.Printf("[MOVIES] search %q: %v", query, err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "failed to search movies"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}
