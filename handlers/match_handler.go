package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/betting-system/metrics"
	"github.com/Dosada05/betting-system/models"
	"github.com/Dosada05/betting-system/services"
)

type MatchHandler struct {
	matchService       services.MatchService
	progressionService services.ProgressionService
}

func NewMatchHandler(matchService services.MatchService, progressionService services.ProgressionService) *MatchHandler {
	return &MatchHandler{
		matchService:       matchService,
		progressionService: progressionService,
	}
}

func (h *MatchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByTournament godoc
// @Summary Матчи турнира
// @Tags matches
// @Produce json
// @Param tournamentID path int true "ID турнира"
// @Param side query string false "Раздел сетки (groups|upper|lower|main|grand_final)"
// @Param round query int false "Номер раунда"
// @Success 200 {array} models.Match
// @Router /tournaments/{tournamentID}/matches [get]
func (h *MatchHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var side *models.BracketSide
	if raw := r.URL.Query().Get("side"); raw != "" {
		s := models.BracketSide(raw)
		side = &s
	}
	var round *int
	if raw := r.URL.Query().Get("round"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequestResponse(w, r, errors.New("invalid round parameter"))
			return
		}
		round = &n
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID, side, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinalizeResult godoc
// @Summary Ввести итоговый счёт матча
// @Description Записывает результат, продвигает исход по сетке и пересчитывает
// @Description очки по ставкам в одной транзакции. Повторный ввод — исправление.
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "ID матча"
// @Success 200 {object} services.FinalizeResultPayload
// @Security ApiKeyAuth
// @Router /matches/{matchID}/result [post]
func (h *MatchHandler) FinalizeResult(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		ScoreA int `json:"score_a"`
		ScoreB int `json:"score_b"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	payload, err := h.matchService.FinalizeResult(r.Context(), id, input.ScoreA, input.ScoreB)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	metrics.MatchesFinalized.Inc()
	metrics.BetsScored.Add(float64(payload.ScoredBets))
	metrics.SlotsPropagated.Add(float64(len(payload.Propagation.UpdatedMatchIDs)))

	if err := writeJSON(w, http.StatusOK, payload, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.ReopenMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) SetBettingEnabled(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Enabled bool `json:"enabled"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.SetBettingEnabled(r.Context(), id, input.Enabled); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match_id": id, "betting_enabled": input.Enabled}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Reconcile запускает массовый ремонт продвижения по всей сетке турнира
// в топологическом порядке.
func (h *MatchHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.progressionService.ReconcileTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	metrics.SlotsPropagated.Add(float64(len(result.UpdatedMatchIDs)))
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
