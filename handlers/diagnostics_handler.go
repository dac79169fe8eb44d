package handlers

import (
	"net/http"

	"github.com/Dosada05/betting-system/metrics"
	"github.com/Dosada05/betting-system/services"
)

type DiagnosticsHandler struct {
	diagnosticsService services.DiagnosticsService
}

func NewDiagnosticsHandler(diagnosticsService services.DiagnosticsService) *DiagnosticsHandler {
	return &DiagnosticsHandler{diagnosticsService: diagnosticsService}
}

// AuditTournament godoc
// @Summary Сверка начисленных очков турнира
// @Description Только чтение: расхождения отражаются в отчёте, но не исправляются.
// @Tags diagnostics
// @Produce json
// @Param tournamentID path int true "ID турнира"
// @Success 200 {object} services.AuditReport
// @Security ApiKeyAuth
// @Router /admin/tournaments/{tournamentID}/audit [get]
func (h *DiagnosticsHandler) AuditTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.diagnosticsService.AuditTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	metrics.AuditRuns.Inc()
	metrics.AuditDiscrepancies.Add(float64(len(report.Discrepancies)))
	if err := writeJSON(w, http.StatusOK, report, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DiagnosticsHandler) AuditActive(w http.ResponseWriter, r *http.Request) {
	reports, err := h.diagnosticsService.AuditActiveTournaments(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	metrics.AuditRuns.Inc()
	for _, report := range reports {
		metrics.AuditDiscrepancies.Add(float64(len(report.Discrepancies)))
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"reports": reports}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
