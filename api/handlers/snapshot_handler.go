package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	fielddb "github.com/openlems/lems-backend/app/modules/field/infrastructure/repositories"
	judgingdb "github.com/openlems/lems-backend/app/modules/judging/infrastructure/repositories"
	scoringdb "github.com/openlems/lems-backend/app/modules/scoring/infrastructure/repositories"
)

// SnapshotHandler serves consistent reads outside the command path. A
// client resyncing after a missed broadcast fetches the snapshot, then
// resumes its event stream.
type SnapshotHandler struct {
	fieldDB   fielddb.FieldDB
	judgingDB judgingdb.JudgingDB
	scoringDB scoringdb.ScoringDB
	logger    *slog.Logger
}

func NewSnapshotHandler(fieldDB fielddb.FieldDB, judgingDB judgingdb.JudgingDB, scoringDB scoringdb.ScoringDB, logger *slog.Logger) *SnapshotHandler {
	return &SnapshotHandler{fieldDB: fieldDB, judgingDB: judgingDB, scoringDB: scoringDB, logger: logger}
}

func (h *SnapshotHandler) Routes(r chi.Router) {
	r.Get("/divisions/{divisionID}/state", h.GetDivisionState)
	r.Get("/divisions/{divisionID}/matches", h.ListMatches)
	r.Get("/divisions/{divisionID}/sessions", h.ListSessions)
	r.Get("/divisions/{divisionID}/scoresheets", h.ListScoresheets)
}

func (h *SnapshotHandler) GetDivisionState(w http.ResponseWriter, r *http.Request) {
	divisionID, ok := divisionParam(w, r)
	if !ok {
		return
	}

	state, err := h.fieldDB.GetDivisionState(r.Context(), divisionID)
	if errors.Is(err, fielddb.ErrDivisionStateNotFound) {
		http.Error(w, "division not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Failed to load division state", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, state)
}

func (h *SnapshotHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	divisionID, ok := divisionParam(w, r)
	if !ok {
		return
	}

	matches, err := h.fieldDB.ListMatches(r.Context(), divisionID)
	if err != nil {
		h.logger.Error("Failed to list matches", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, matches)
}

func (h *SnapshotHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	divisionID, ok := divisionParam(w, r)
	if !ok {
		return
	}

	sessions, err := h.judgingDB.ListSessions(r.Context(), divisionID)
	if err != nil {
		h.logger.Error("Failed to list sessions", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, sessions)
}

func (h *SnapshotHandler) ListScoresheets(w http.ResponseWriter, r *http.Request) {
	divisionID, ok := divisionParam(w, r)
	if !ok {
		return
	}

	sheets, err := h.scoringDB.ListScoresheets(r.Context(), divisionID)
	if err != nil {
		h.logger.Error("Failed to list scoresheets", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, sheets)
}

func divisionParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	divisionID, err := uuid.Parse(chi.URLParam(r, "divisionID"))
	if err != nil {
		writeBadRequest(w, "invalid division id")
		return uuid.Nil, false
	}
	return divisionID, true
}
