package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	fieldservice "github.com/openlems/lems-backend/app/modules/field/application"
	fieldtypes "github.com/openlems/lems-backend/app/modules/field/domain/types"
	"github.com/openlems/lems-backend/app/shared/results"
	"github.com/openlems/lems-backend/internal/commandbus"
	"github.com/openlems/lems-backend/pkg/jwt"
)

// FieldHandler exposes the match state machine as command endpoints. Every
// mutation goes through the dispatcher so operations for one division
// never interleave.
type FieldHandler struct {
	dispatcher *commandbus.Dispatcher
	service    fieldservice.Service
	logger     *slog.Logger
}

func NewFieldHandler(dispatcher *commandbus.Dispatcher, service fieldservice.Service, logger *slog.Logger) *FieldHandler {
	return &FieldHandler{dispatcher: dispatcher, service: service, logger: logger}
}

func (h *FieldHandler) Routes(r chi.Router) {
	r.Post("/divisions/{divisionID}/matches/{matchID}/load", h.LoadMatch)
	r.Post("/divisions/{divisionID}/matches/{matchID}/start", h.StartMatch)
	r.Post("/divisions/{divisionID}/matches/{matchID}/abort", h.AbortMatch)
	r.Post("/divisions/{divisionID}/matches/{matchID}/called", h.UpdateMatchCalled)
	r.Post("/divisions/{divisionID}/matches/{matchID}/teams", h.UpdateMatchTeams)
	r.Post("/divisions/{divisionID}/matches/{matchID}/switch", h.SwitchMatchTeams)
	r.Post("/divisions/{divisionID}/matches/{matchID}/participants/{teamID}", h.UpdateParticipant)
	r.Post("/divisions/{divisionID}/audience-display", h.UpdateAudienceDisplay)
}

func (h *FieldHandler) LoadMatch(w http.ResponseWriter, r *http.Request) {
	h.matchCommand(w, r, "LoadMatch", h.service.LoadMatch)
}

func (h *FieldHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	h.matchCommand(w, r, "StartMatch", h.service.StartMatch)
}

func (h *FieldHandler) AbortMatch(w http.ResponseWriter, r *http.Request) {
	h.matchCommand(w, r, "AbortMatch", h.service.AbortMatch)
}

// matchCommand runs one (division, match) scoped operation on the
// serialized command path.
func (h *FieldHandler) matchCommand(w http.ResponseWriter, r *http.Request, name string, op func(ctx context.Context, divisionID, matchID uuid.UUID) (results.OperationResult, error)) {
	divisionID, matchID, ok := matchParams(w, r)
	if !ok {
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), divisionID, name, func(ctx context.Context) (results.OperationResult, error) {
		return op(ctx, divisionID, matchID)
	})
	writeResult(w, h.logger, result, err)
}

func (h *FieldHandler) UpdateMatchCalled(w http.ResponseWriter, r *http.Request) {
	divisionID, matchID, ok := matchParams(w, r)
	if !ok {
		return
	}

	var body struct {
		Called bool `json:"called"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), divisionID, "UpdateMatchCalled", func(ctx context.Context) (results.OperationResult, error) {
		return h.service.UpdateMatchCalled(ctx, divisionID, matchID, body.Called)
	})
	writeResult(w, h.logger, result, err)
}

func (h *FieldHandler) UpdateMatchTeams(w http.ResponseWriter, r *http.Request) {
	divisionID, matchID, ok := matchParams(w, r)
	if !ok {
		return
	}

	var body struct {
		Assignments []fieldtypes.TeamAssignment `json:"assignments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), divisionID, "UpdateMatchTeams", func(ctx context.Context) (results.OperationResult, error) {
		return h.service.UpdateMatchTeams(ctx, divisionID, matchID, body.Assignments)
	})
	writeResult(w, h.logger, result, err)
}

func (h *FieldHandler) SwitchMatchTeams(w http.ResponseWriter, r *http.Request) {
	divisionID, matchID, ok := matchParams(w, r)
	if !ok {
		return
	}

	var body struct {
		ToMatchID uuid.UUID `json:"to_match_id"`
		Slot      int       `json:"slot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), divisionID, "SwitchMatchTeams", func(ctx context.Context) (results.OperationResult, error) {
		return h.service.SwitchMatchTeams(ctx, divisionID, matchID, body.ToMatchID, body.Slot)
	})
	writeResult(w, h.logger, result, err)
}

func (h *FieldHandler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	divisionID, matchID, ok := matchParams(w, r)
	if !ok {
		return
	}
	teamID, err := uuid.Parse(chi.URLParam(r, "teamID"))
	if err != nil {
		writeBadRequest(w, "invalid team id")
		return
	}

	var update fieldservice.ParticipantUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), divisionID, "UpdateParticipant", func(ctx context.Context) (results.OperationResult, error) {
		return h.service.UpdateParticipant(ctx, divisionID, matchID, teamID, update)
	})
	writeResult(w, h.logger, result, err)
}

// UpdateAudienceDisplay switches the division's audience display; the
// caller's role travels from the bearer token claims into the service,
// which makes the final call.
func (h *FieldHandler) UpdateAudienceDisplay(w http.ResponseWriter, r *http.Request) {
	divisionID, err := uuid.Parse(chi.URLParam(r, "divisionID"))
	if err != nil {
		writeBadRequest(w, "invalid division id")
		return
	}

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing operator claims", http.StatusUnauthorized)
		return
	}
	role := jwt.Role(claims.Role)

	var body struct {
		Screen fieldtypes.AudienceDisplayScreen `json:"screen"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), divisionID, "UpdateAudienceDisplay", func(ctx context.Context) (results.OperationResult, error) {
		return h.service.UpdateAudienceDisplay(ctx, divisionID, body.Screen, role)
	})
	writeResult(w, h.logger, result, err)
}

func matchParams(w http.ResponseWriter, r *http.Request) (divisionID, matchID uuid.UUID, ok bool) {
	divisionID, err := uuid.Parse(chi.URLParam(r, "divisionID"))
	if err != nil {
		writeBadRequest(w, "invalid division id")
		return uuid.Nil, uuid.Nil, false
	}
	matchID, err = uuid.Parse(chi.URLParam(r, "matchID"))
	if err != nil {
		writeBadRequest(w, "invalid match id")
		return uuid.Nil, uuid.Nil, false
	}
	return divisionID, matchID, true
}
