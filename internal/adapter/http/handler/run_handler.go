package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/artistpay/settler/internal/adapter/http/dto"
	"github.com/artistpay/settler/internal/usecase"
)

// RunHandler handles batch run HTTP requests.
type RunHandler struct {
	batchUC *usecase.BatchUseCase
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(batchUC *usecase.BatchUseCase) *RunHandler {
	return &RunHandler{batchUC: batchUC}
}

// Create executes a settlement batch over the submitted ledgers.
func (h *RunHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	run, err := h.batchUC.Run(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to run batch", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.RunFromDomain(run))
}

// Get retrieves a persisted run by ID.
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing run ID", "")
		return
	}

	run, err := h.batchUC.GetRun(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get run", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RunFromDomain(run))
}

// GetSettlement retrieves one artist's settlement from a persisted run.
func (h *RunHandler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	artist := chi.URLParam(r, "artist")
	if runID == "" || artist == "" {
		writeError(w, http.StatusBadRequest, "missing run ID or artist", "")
		return
	}

	settlement, err := h.batchUC.GetSettlement(r.Context(), runID, artist)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get settlement", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(settlement))
}
