package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bravo-deck-backend/internal/model"
)

// ListLabware handles GET /api/labware.
func (h *Handler) ListLabware(c *gin.Context) {
	entries, err := h.store.ListLabware(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"labware": entries})
}

// GetLabware handles GET /api/labware/{name}.
func (h *Handler) GetLabware(c *gin.Context) {
	entry, err := h.store.GetLabware(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "labware not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, entry)
}

// UpsertLabware handles PUT /api/labware.
func (h *Handler) UpsertLabware(c *gin.Context) {
	var entry model.LabwareEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.UpsertLabware(c.Request.Context(), &entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// DeleteLabware handles DELETE /api/labware/{name}.
func (h *Handler) DeleteLabware(c *gin.Context) {
	if err := h.store.DeleteLabware(c.Request.Context(), c.Param("name")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type cloneLabwareRequest struct {
	NewName string `json:"new_name" binding:"required"`
}

// CloneLabware handles POST /api/labware/{name}/clone.
func (h *Handler) CloneLabware(c *gin.Context) {
	var req cloneLabwareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := h.store.CloneLabware(c.Request.Context(), c.Param("name"), req.NewName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "labware not found"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, entry)
}
