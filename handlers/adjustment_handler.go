package handlers

import (
	"net/http"

	"github.com/Dosada05/betting-system/middleware"
	"github.com/Dosada05/betting-system/services"
)

type AdjustmentHandler struct {
	adjustmentService services.AdjustmentService
}

func NewAdjustmentHandler(adjustmentService services.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustmentService: adjustmentService}
}

func (h *AdjustmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	adminID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.CreateAdjustmentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	adjustment, err := h.adjustmentService.Create(r.Context(), adminID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"adjustment": adjustment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdjustmentHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	adjustments, err := h.adjustmentService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"adjustments": adjustments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
