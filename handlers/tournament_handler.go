package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/champions4change/tournament-engine/middleware"
	"github.com/champions4change/tournament-engine/models"
	"github.com/champions4change/tournament-engine/repositories"
	"github.com/champions4change/tournament-engine/services"
	"github.com/champions4change/tournament-engine/storage"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	uploader          storage.FileUploader
}

func NewTournamentHandler(tournamentService services.TournamentService, uploader storage.FileUploader) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		uploader:          uploader,
	}
}

type createTournamentRequest struct {
	Config       models.TournamentConfig `json:"config"`
	Participants []string                `json:"participants"`
}

// Create godoc
// @Summary Create a tournament and generate its opening stage
// @Tags tournaments
// @Accept json
// @Produce json
// @Param request body createTournamentRequest true "tournament config and participants"
// @Success 201 {object} models.Tournament
// @Failure 422 {object} map[string]string
// @Router /tournaments [post]
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	organizerID, ok := middleware.GetOrganizerIDFromContext(r.Context())
	if !ok {
		errorResponse(w, r, http.StatusUnauthorized, "missing organizer identity")
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), services.CreateTournamentInput{
		Config:       req.Config,
		Participants: req.Participants,
		OrganizerID:  organizerID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary Full tournament data: matches, pools, swiss rounds
// @Tags tournaments
// @Produce json
// @Param id path int true "tournament id"
// @Success 200 {object} models.Tournament
// @Router /tournaments/{id} [get]
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournamentData(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if tournament.ArchiveKey != nil && h.uploader != nil {
		url := h.uploader.GetPublicURL(*tournament.ArchiveKey)
		tournament.ArchiveURL = &url
	}

	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List godoc
// @Summary List tournaments
// @Tags tournaments
// @Produce json
// @Param status query string false "filter by status"
// @Param organizer_id query int false "filter by organizer"
// @Success 200 {array} models.Tournament
// @Router /tournaments [get]
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListTournamentsFilter

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.TournamentStatus(raw)
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("organizer_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			badRequestResponse(w, r, errors.New("invalid organizer_id query parameter"))
			return
		}
		filter.OrganizerID = &id
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
