package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// nestParam parses the nest_id path parameter. A non-numeric id is a 400;
// whether the numeric id is on the deck is decided by the core, which
// reports it as a soft failure we map to 404.
func nestParam(c *gin.Context) (int, bool) {
	nestID, err := strconv.Atoi(c.Param("nest_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid nest ID"})
		return 0, false
	}
	return nestID, true
}

func nestNotFound(c *gin.Context, nestID int) {
	c.JSON(http.StatusNotFound, gin.H{"error": "nest not found", "nest_id": nestID})
}

// GetDeckSummary handles GET /api/deck.
func (h *Handler) GetDeckSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.GetDeckSummary())
}

// ExportDeckState handles GET /api/deck/export.
func (h *Handler) ExportDeckState(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.ExportState())
}

// ResetDeck handles POST /api/deck/reset.
func (h *Handler) ResetDeck(c *gin.Context) {
	h.state.ResetAllNests()
	c.JSON(http.StatusOK, h.state.GetDeckSummary())
}

// GetNests handles GET /api/nests. With no query parameters it returns every
// nest view; the filters return matching nest ids only.
func (h *Handler) GetNests(c *gin.Context) {
	switch {
	case c.Query("empty") == "true":
		c.JSON(http.StatusOK, gin.H{"nests": h.state.FindEmptyNests()})
	case c.Query("tips") == "true":
		c.JSON(http.StatusOK, gin.H{"nests": h.state.GetNestsWithTips()})
	case c.Query("labware_type") != "":
		c.JSON(http.StatusOK, gin.H{"nests": h.state.FindNestsByLabwareType(c.Query("labware_type"))})
	default:
		views := make(map[int]any, h.state.NumNests())
		for nestID := 1; nestID <= h.state.NumNests(); nestID++ {
			if view := h.state.GetNest(nestID); view != nil {
				views[nestID] = view
			}
		}
		c.JSON(http.StatusOK, gin.H{"nests": views})
	}
}

// GetNest handles GET /api/nests/{nest_id}.
func (h *Handler) GetNest(c *gin.Context) {
	nestID, ok := nestParam(c)
	if !ok {
		return
	}
	view := h.state.GetNest(nestID)
	if view == nil {
		nestNotFound(c, nestID)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetActiveOperations handles GET /api/operations.
func (h *Handler) GetActiveOperations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"operations": h.state.GetActiveOperations()})
}

type putNestLabwareRequest struct {
	LabwareType string `json:"labware_type" binding:"required"`
	LabwareName string `json:"labware_name"`
}

// PutNestLabware handles PUT /api/nests/{nest_id}/labware.
func (h *Handler) PutNestLabware(c *gin.Context) {
	nestID, ok := nestParam(c)
	if !ok {
		return
	}
	var req putNestLabwareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.state.SetLabwareAtNest(nestID, req.LabwareType, req.LabwareName) {
		nestNotFound(c, nestID)
		return
	}
	c.JSON(http.StatusOK, h.state.GetNest(nestID))
}

type startOperationRequest struct {
	Operation string         `json:"operation" binding:"required"`
	Details   map[string]any `json:"details"`
}

// StartOperation handles POST /api/nests/{nest_id}/operations. The core
// rejects both unknown nests and unknown operation labels with the same
// soft failure, so disambiguate here for a useful status code.
func (h *Handler) StartOperation(c *gin.Context) {
	nestID, ok := nestParam(c)
	if !ok {
		return
	}
	var req startOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.state.GetNest(nestID) == nil {
		nestNotFound(c, nestID)
		return
	}
	if !h.state.StartOperationAtNest(nestID, req.Operation, req.Details) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown operation", "operation": req.Operation})
		return
	}
	c.JSON(http.StatusOK, h.state.GetNest(nestID))
}

// CompleteOperation handles POST /api/nests/{nest_id}/operations/complete.
func (h *Handler) CompleteOperation(c *gin.Context) {
	nestID, ok := nestParam(c)
	if !ok {
		return
	}
	if !h.state.CompleteOperationAtNest(nestID) {
		nestNotFound(c, nestID)
		return
	}
	c.JSON(http.StatusOK, h.state.GetNest(nestID))
}

type updateProgressRequest struct {
	Progress *float64 `json:"progress" binding:"required"`
}

// UpdateProgress handles POST /api/nests/{nest_id}/progress.
func (h *Handler) UpdateProgress(c *gin.Context) {
	nestID, ok := nestParam(c)
	if !ok {
		return
	}
	var req updateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.state.UpdateProgressAtNest(nestID, *req.Progress) {
		nestNotFound(c, nestID)
		return
	}
	c.JSON(http.StatusOK, h.state.GetNest(nestID))
}

type updateVolumeRequest struct {
	Aspirated float64 `json:"volume_aspirated"`
	Dispensed float64 `json:"volume_dispensed"`
}

// UpdateVolume handles POST /api/nests/{nest_id}/volume.
func (h *Handler) UpdateVolume(c *gin.Context) {
	nestID, ok := nestParam(c)
	if !ok {
		return
	}
	var req updateVolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.state.UpdateVolumeAtNest(nestID, req.Aspirated, req.Dispensed) {
		nestNotFound(c, nestID)
		return
	}
	c.JSON(http.StatusOK, h.state.GetNest(nestID))
}

type updateTipsRequest struct {
	TipsOn  *bool  `json:"tips_on" binding:"required"`
	TipType string `json:"tip_type"`
}

// UpdateTips handles POST /api/nests/{nest_id}/tips.
func (h *Handler) UpdateTips(c *gin.Context) {
	nestID, ok := nestParam(c)
	if !ok {
		return
	}
	var req updateTipsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.state.UpdateTipsAtNest(nestID, *req.TipsOn, req.TipType) {
		nestNotFound(c, nestID)
		return
	}
	c.JSON(http.StatusOK, h.state.GetNest(nestID))
}
