package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/akash-acog/sol/internal/application/prediction"
	"github.com/akash-acog/sol/pkg/errors"
	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

// HistoryReader serves stored predictions. Implemented by the postgres
// prediction repository; nil disables the history endpoint.
type HistoryReader interface {
	ListBySolute(ctx context.Context, soluteSMILES string, limit int) ([]ptypes.Event, error)
}

// PredictionHandler serves the prediction endpoints.
type PredictionHandler struct {
	svc     prediction.Service
	history HistoryReader
}

func NewPredictionHandler(svc prediction.Service, history HistoryReader) *PredictionHandler {
	return &PredictionHandler{svc: svc, history: history}
}

// Predict handles POST /api/v1/predict: one solute/solvent/temperature
// triple in, one LogS value out.
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req ptypes.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidParam("malformed request body").WithCause(err))
		return
	}

	resps, err := h.svc.PredictBatch(c.Request.Context(), []ptypes.Request{req})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resps[0])
}

type batchRequest struct {
	Requests []ptypes.Request `json:"requests"`
}

type batchResponse struct {
	Results []ptypes.Response `json:"results"`
}

// PredictBatch handles POST /api/v1/predict/batch. The whole batch shares
// one forward pass; any invalid entry rejects the batch.
func (h *PredictionHandler) PredictBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidParam("malformed request body").WithCause(err))
		return
	}

	resps, err := h.svc.PredictBatch(c.Request.Context(), req.Requests)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batchResponse{Results: resps})
}

// History handles GET /api/v1/predictions?solute=<SMILES>&limit=<n>.
func (h *PredictionHandler) History(c *gin.Context) {
	if h.history == nil {
		respondError(c, errors.New(errors.ErrCodeNotImplemented, "prediction history is not enabled"))
		return
	}

	solute := c.Query("solute")
	if solute == "" {
		respondError(c, errors.InvalidParam("query parameter 'solute' is required"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.history.ListBySolute(c.Request.Context(), solute, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if events == nil {
		events = []ptypes.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"predictions": events})
}
