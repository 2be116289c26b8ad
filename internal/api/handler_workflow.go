package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pallet-cubing-backend/internal/workflow"
)

type loginRequest struct {
	TerminalID string `json:"terminal_id"`
	ReceiverID string `json:"receiver_id"`
}

type trailerRequest struct {
	Trailer string `json:"trailer"`
}

type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

type restartProRequest struct {
	workflow.ProHeaderInput
	Confirm bool `json:"confirm"`
}

type discardProRequest struct {
	Pro     string `json:"pro"`
	Confirm bool   `json:"confirm"`
}

type scanResponse struct {
	Pro       string `json:"pro"`
	Symbology string `json:"symbology"`
}

// bindJSON decodes the request body into req. An empty body leaves req at its
// zero value.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	return true
}

func respond(c *gin.Context, v workflow.View, err error) {
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// GetSession returns the screen the UI should land on.
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.workflow.Landing(c.Request.Context()))
}

// Login handles POST /api/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.workflow.Login(c.Request.Context(), req.TerminalID, req.ReceiverID)
	respond(c, v, err)
}

// SignOut handles POST /api/signout.
func (h *Handler) SignOut(c *gin.Context) {
	var req confirmRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.workflow.SignOut(c.Request.Context(), req.Confirm)
	respond(c, v, err)
}

// EnterTrailer handles POST /api/trailer.
func (h *Handler) EnterTrailer(c *gin.Context) {
	var req trailerRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.workflow.EnterTrailer(c.Request.Context(), req.Trailer)
	respond(c, v, err)
}

// CancelTrailer handles POST /api/trailer/cancel.
func (h *Handler) CancelTrailer(c *gin.Context) {
	var req confirmRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.workflow.CancelTrailer(c.Request.Context(), req.Confirm)
	respond(c, v, err)
}

// StartPro handles POST /api/pro.
func (h *Handler) StartPro(c *gin.Context) {
	var req workflow.ProHeaderInput
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.workflow.StartPro(c.Request.Context(), req)
	respond(c, v, err)
}

// ContinuePro handles POST /api/pro/continue.
func (h *Handler) ContinuePro(c *gin.Context) {
	var req workflow.ProHeaderInput
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.workflow.ContinuePro(c.Request.Context(), req)
	respond(c, v, err)
}

// RestartPro handles POST /api/pro/restart.
func (h *Handler) RestartPro(c *gin.Context) {
	var req restartProRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.workflow.RestartPro(c.Request.Context(), req.ProHeaderInput, req.Confirm)
	respond(c, v, err)
}

// DiscardPro handles POST /api/pro/discard.
func (h *Handler) DiscardPro(c *gin.Context) {
	var req discardProRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.workflow.DiscardPro(c.Request.Context(), req.Pro, req.Confirm)
	respond(c, v, err)
}

// Scan handles POST /api/scan. The body is the scanner broadcast extras.
func (h *Handler) Scan(c *gin.Context) {
	extras := map[string]string{}
	if !bindJSON(c, &extras) {
		return
	}
	pro, scan, err := h.workflow.AcceptScan(extras)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, scanResponse{Pro: pro, Symbology: scan.Symbology})
}

// GetProgress handles GET /api/pallets/progress.
func (h *Handler) GetProgress(c *gin.Context) {
	v, err := h.workflow.Progress(c.Request.Context())
	respond(c, v, err)
}

// SavePallet handles POST /api/pallets.
func (h *Handler) SavePallet(c *gin.Context) {
	var req workflow.PalletInput
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.workflow.SavePallet(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// AbandonPro handles POST /api/pallets/abandon.
func (h *Handler) AbandonPro(c *gin.Context) {
	var req confirmRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.workflow.AbandonPro(c.Request.Context(), req.Confirm)
	respond(c, v, err)
}

// BackFromPallets handles POST /api/pallets/back.
func (h *Handler) BackFromPallets(c *gin.Context) {
	var req confirmRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.workflow.BackFromPalletDetail(c.Request.Context(), req.Confirm)
	respond(c, v, err)
}
