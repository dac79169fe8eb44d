package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/betting-system/middleware"
	"github.com/Dosada05/betting-system/services"
)

type BetHandler struct {
	betService services.BetService
}

func NewBetHandler(betService services.BetService) *BetHandler {
	return &BetHandler{betService: betService}
}

// Place godoc
// @Summary Сделать или заменить ставку
// @Description Одна ставка на пару пользователь+матч; повторная заменяет прогноз.
// @Tags bets
// @Accept json
// @Produce json
// @Param input body services.PlaceBetInput true "Прогноз"
// @Success 201 {object} models.Bet
// @Security ApiKeyAuth
// @Router /bets [post]
func (h *BetHandler) Place(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.PlaceBetInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bet, err := h.betService.PlaceBet(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bet": bet}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BetHandler) GetOwnForMatch(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	matchID, err := readIDParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bet, err := h.betService.GetOwn(r.Context(), userID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bet": bet}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BetHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var tournamentID *int
	if raw := r.URL.Query().Get("tournament_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			badRequestResponse(w, r, errors.New("invalid tournament_id parameter"))
			return
		}
		tournamentID = &id
	}

	bets, err := h.betService.ListByUser(r.Context(), userID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bets": bets}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
