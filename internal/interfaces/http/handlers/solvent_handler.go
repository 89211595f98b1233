package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akash-acog/sol/internal/application/prediction"
	"github.com/akash-acog/sol/pkg/errors"
	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

// SolventHandler serves the solvent catalogue and the solvent screening
// endpoint.
type SolventHandler struct {
	svc prediction.Service
}

func NewSolventHandler(svc prediction.Service) *SolventHandler {
	return &SolventHandler{svc: svc}
}

// List handles GET /api/v1/solvents.
func (h *SolventHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"solvents": h.svc.Solvents()})
}

// Analyze handles POST /api/v1/solvents/analyze: ranks every catalogue
// solvent for the solute and returns the temperature heatmap grid.
func (h *SolventHandler) Analyze(c *gin.Context) {
	var req ptypes.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidParam("malformed request body").WithCause(err))
		return
	}

	resp, err := h.svc.AnalyzeSolvents(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
