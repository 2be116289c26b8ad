package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetSummary handles GET /api/trailers/:trailer/summary. ?all=true lists
// every PRO.
func (h *Handler) GetSummary(c *gin.Context) {
	all, _ := strconv.ParseBool(c.Query("all"))
	v, err := h.workflow.Summary(c.Request.Context(), c.Param("trailer"), all)
	respond(c, v, err)
}

// NextPro handles POST /api/trailers/:trailer/next-pro.
func (h *Handler) NextPro(c *gin.Context) {
	v, err := h.workflow.AddAnotherPro(c.Request.Context(), c.Param("trailer"))
	respond(c, v, err)
}

// ExportTrailer handles POST /api/trailers/:trailer/export. The export runs
// in the background; poll GET /api/exports/:id for the result.
func (h *Handler) ExportTrailer(c *gin.Context) {
	job, err := h.workflow.Export(c.Request.Context(), c.Param("trailer"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("Location", "/api/exports/"+job.ID)
	c.JSON(http.StatusAccepted, job)
}

// GetExport handles GET /api/exports/:id.
func (h *Handler) GetExport(c *gin.Context) {
	job, ok := h.workflow.ExportStatus(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "export not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// DeleteTrailer handles POST /api/trailers/:trailer/delete.
func (h *Handler) DeleteTrailer(c *gin.Context) {
	var req confirmRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.workflow.DeleteTrailerAndStartNew(c.Request.Context(), c.Param("trailer"), req.Confirm)
	respond(c, v, err)
}
