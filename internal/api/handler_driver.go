package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bravo-deck-backend/internal/driver"
)

func driverError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, driver.ErrNotConnected):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, driver.ErrInvalidVolume):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, driver.ErrInvalidNest):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// DriverConnect handles POST /api/driver/connect.
func (h *Handler) DriverConnect(c *gin.Context) {
	if err := h.sim.Connect(); err != nil {
		driverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true})
}

// DriverDisconnect handles POST /api/driver/disconnect.
func (h *Handler) DriverDisconnect(c *gin.Context) {
	h.sim.Disconnect()
	c.JSON(http.StatusOK, gin.H{"connected": false})
}

type liquidCommandRequest struct {
	Nest   int     `json:"nest" binding:"required"`
	Volume float64 `json:"volume"`
	Cycles int     `json:"cycles"`
}

func (h *Handler) runLiquidCommand(c *gin.Context, run func(req liquidCommandRequest) error) {
	var req liquidCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := run(req); err != nil {
		driverError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.state.GetNest(req.Nest))
}

// DriverAspirate handles POST /api/driver/aspirate.
func (h *Handler) DriverAspirate(c *gin.Context) {
	h.runLiquidCommand(c, func(req liquidCommandRequest) error {
		return h.sim.Aspirate(req.Nest, req.Volume)
	})
}

// DriverDispense handles POST /api/driver/dispense.
func (h *Handler) DriverDispense(c *gin.Context) {
	h.runLiquidCommand(c, func(req liquidCommandRequest) error {
		return h.sim.Dispense(req.Nest, req.Volume)
	})
}

// DriverMix handles POST /api/driver/mix.
func (h *Handler) DriverMix(c *gin.Context) {
	h.runLiquidCommand(c, func(req liquidCommandRequest) error {
		return h.sim.Mix(req.Nest, req.Volume, req.Cycles)
	})
}

// DriverWash handles POST /api/driver/wash.
func (h *Handler) DriverWash(c *gin.Context) {
	h.runLiquidCommand(c, func(req liquidCommandRequest) error {
		return h.sim.Wash(req.Nest, req.Volume, req.Cycles)
	})
}

type tipsOnRequest struct {
	Nest    int    `json:"nest" binding:"required"`
	TipType string `json:"tip_type"`
}

// DriverTipsOn handles POST /api/driver/tips_on.
func (h *Handler) DriverTipsOn(c *gin.Context) {
	var req tipsOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sim.TipsOn(req.Nest, req.TipType); err != nil {
		driverError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.state.GetNest(req.Nest))
}

type nestRequest struct {
	Nest int `json:"nest" binding:"required"`
}

// DriverTipsOff handles POST /api/driver/tips_off.
func (h *Handler) DriverTipsOff(c *gin.Context) {
	var req nestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sim.TipsOff(req.Nest); err != nil {
		driverError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.state.GetNest(req.Nest))
}

// DriverMove handles POST /api/driver/move.
func (h *Handler) DriverMove(c *gin.Context) {
	var req nestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sim.MoveToLocation(req.Nest); err != nil {
		driverError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.state.GetNest(req.Nest))
}

type pickAndPlaceRequest struct {
	From int `json:"from" binding:"required"`
	To   int `json:"to" binding:"required"`
}

// DriverPickAndPlace handles POST /api/driver/pick_and_place.
func (h *Handler) DriverPickAndPlace(c *gin.Context) {
	var req pickAndPlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sim.PickAndPlace(req.From, req.To); err != nil {
		driverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"from": h.state.GetNest(req.From),
		"to":   h.state.GetNest(req.To),
	})
}
