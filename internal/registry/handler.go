package registry

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"libhub/internal/ingest"
)

// AvailabilityChecker asks the secondary source whether a linked
// library holds a given book.
type AvailabilityChecker interface {
	BookExists(ctx context.Context, libCode int64, isbn13 string) (ingest.Availability, error)
}

type Handler struct {
	Repo   *Repo
	Search *SearchService
	Books  AvailabilityChecker
}

func NewHandler(repo *Repo, search *SearchService, books AvailabilityChecker) *Handler {
	return &Handler{Repo: repo, Search: search, Books: books}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/libraries", h.list)
	rg.GET("/libraries/:id", h.getOne)
	rg.GET("/libraries/:id/availability", h.availability)
	rg.GET("/search/nearby", h.nearby)
}

func (h *Handler) list(c *gin.Context) {
	search := strings.TrimSpace(c.Query("q"))
	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	records, total, err := h.Repo.List(c.Request.Context(), search, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  records,
	})
}

func (h *Handler) getOne(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid library id"})
		return
	}

	rec, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) availability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid library id"})
		return
	}

	isbn := strings.TrimSpace(c.Query("isbn"))
	if isbn == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isbn required"})
		return
	}

	rec, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if !rec.HasD4LCode() {
		c.JSON(http.StatusConflict, gin.H{"error": "library has no availability source"})
		return
	}

	avail, err := h.Books.BookExists(c.Request.Context(), *rec.D4LCode, isbn)
	if err != nil {
		// fall back closed: an upstream failure reads as "not available"
		log.Printf("[registry] availability lookup for library %d failed: %v", rec.ID, err)
		avail = ingest.Availability{}
	}

	c.JSON(http.StatusOK, gin.H{
		"library_id":   rec.ID,
		"isbn":         isbn,
		"availability": avail,
	})
}

func (h *Handler) nearby(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon required"})
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	radius := 5.0
	if v := strings.TrimSpace(c.Query("radius_km")); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 || r > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radius_km must be in (0, 100]"})
			return
		}
		radius = r
	}

	results, err := h.Search.Nearby(c.Request.Context(), lat, lon, radius)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(results),
		"radius_km": radius,
		"items":     results,
	})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
