package favorites

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"libhub/internal/auth"
	"libhub/internal/registry"
)

type Handler struct {
	Repo      *Repo
	Libraries *registry.Repo
}

func NewHandler(repo *Repo, libraries *registry.Repo) *Handler {
	return &Handler{Repo: repo, Libraries: libraries}
}

// RegisterRoutes expects rg to already carry the auth middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/favorites", h.list)
	rg.POST("/favorites/:library_id", h.add)
	rg.DELETE("/favorites/:library_id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"items": items,
	})
}

func (h *Handler) add(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	libraryID, err := strconv.ParseInt(c.Param("library_id"), 10, 64)
	if err != nil || libraryID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid library id"})
		return
	}

	rec, err := h.Libraries.GetByID(c.Request.Context(), libraryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "library not found"})
		return
	}

	saved, err := h.Repo.Exists(c.Request.Context(), claims.UserID, libraryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if saved {
		c.JSON(http.StatusConflict, gin.H{"error": "already saved"})
		return
	}

	if err := h.Repo.Add(c.Request.Context(), claims.UserID, libraryID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "saved"})
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	libraryID, err := strconv.ParseInt(c.Param("library_id"), 10, 64)
	if err != nil || libraryID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid library id"})
		return
	}

	ok, err := h.Repo.Remove(c.Request.Context(), claims.UserID, libraryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed"})
}
