package handlers

import (
	"net/http"

	"github.com/champions4change/tournament-engine/models"
	"github.com/champions4change/tournament-engine/repositories"
	"github.com/champions4change/tournament-engine/services"
	"github.com/go-chi/chi/v5"
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

// List godoc
// @Summary List a tournament's matches
// @Tags matches
// @Produce json
// @Param id path int true "tournament id"
// @Param stage query int false "filter by stage"
// @Param bracket query string false "filter by bracket tag"
// @Success 200 {array} models.Match
// @Router /tournaments/{id}/matches [get]
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var filter repositories.ListMatchesFilter
	if raw := r.URL.Query().Get("bracket"); raw != "" {
		filter.Bracket = &raw
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.MatchStatus(raw)
		filter.Status = &status
	}

	matches, err := h.matchService.ListMatches(r.Context(), tournamentID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary Get a single match
// @Tags matches
// @Produce json
// @Param matchID path string true "match id"
// @Success 200 {object} models.Match
// @Router /matches/{matchID} [get]
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, match, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Start godoc
// @Summary Move an upcoming match into play
// @Tags matches
// @Produce json
// @Param matchID path string true "match id"
// @Success 200 {object} models.Match
// @Router /matches/{matchID}/start [post]
func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	match, err := h.progressionService.StartMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, match, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type liveScoreRequest struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

// LiveScore godoc
// @Summary Push a live score tick for a match in progress
// @Tags matches
// @Accept json
// @Param matchID path string true "match id"
// @Param request body liveScoreRequest true "current score"
// @Success 202
// @Router /matches/{matchID}/score [post]
func (h *MatchHandler) LiveScore(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	var req liveScoreRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.progressionService.UpdateLiveScore(r.Context(), matchID, req.Score1, req.Score2); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type submitResultRequest struct {
	Score1   *int           `json:"score1,omitempty"`
	Score2   *int           `json:"score2,omitempty"`
	Winner   *string        `json:"winner,omitempty"`
	IsDraw   bool           `json:"is_draw,omitempty"`
	Forfeit  *string        `json:"forfeit,omitempty"`
	Rankings map[string]int `json:"rankings,omitempty"`
}

// SubmitResult godoc
// @Summary Finalize a match and advance the bracket
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path string true "match id"
// @Param request body submitResultRequest true "final result"
// @Success 200 {object} models.Match
// @Failure 422 {object} map[string]string
// @Router /matches/{matchID}/result [post]
func (h *MatchHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	var req submitResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.progressionService.SubmitResult(r.Context(), services.SubmitResultInput{
		MatchID:  matchID,
		Score1:   req.Score1,
		Score2:   req.Score2,
		Winner:   req.Winner,
		IsDraw:   req.IsDraw,
		Forfeit:  req.Forfeit,
		Rankings: req.Rankings,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, match, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LiveScores godoc
// @Summary Current live scores for a tournament
// @Tags matches
// @Produce json
// @Param id path int true "tournament id"
// @Success 200 {object} map[string]live.ScoreSnapshot
// @Router /tournaments/{id}/live [get]
func (h *MatchHandler) LiveScores(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	scores, err := h.matchService.LiveScores(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"scores": scores}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
