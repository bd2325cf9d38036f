package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	scoringservice "github.com/openlems/lems-backend/app/modules/scoring/application"
	scoringtypes "github.com/openlems/lems-backend/app/modules/scoring/domain/types"
	"github.com/openlems/lems-backend/app/shared/results"
	"github.com/openlems/lems-backend/internal/commandbus"
	"github.com/openlems/lems-backend/pkg/jwt"
)

// ScoringHandler exposes the scoresheet workflow.
type ScoringHandler struct {
	dispatcher *commandbus.Dispatcher
	service    scoringservice.Service
	logger     *slog.Logger
}

func NewScoringHandler(dispatcher *commandbus.Dispatcher, service scoringservice.Service, logger *slog.Logger) *ScoringHandler {
	return &ScoringHandler{dispatcher: dispatcher, service: service, logger: logger}
}

func (h *ScoringHandler) Routes(r chi.Router) {
	r.Post("/divisions/{divisionID}/scoresheets/{sheetID}/clause", h.UpdateClause)
	r.Post("/divisions/{divisionID}/scoresheets/{sheetID}/gp", h.UpdateGP)
	r.Post("/divisions/{divisionID}/scoresheets/{sheetID}/submit", h.Submit)
	r.Post("/divisions/{divisionID}/scoresheets/{sheetID}/escalate", h.Escalate)
	r.Post("/divisions/{divisionID}/scoresheets/{sheetID}/resolve", h.Resolve)
}

func (h *ScoringHandler) UpdateClause(w http.ResponseWriter, r *http.Request) {
	divisionID, sheetID, ok := sheetParams(w, r)
	if !ok {
		return
	}

	var body struct {
		MissionID   string             `json:"mission_id"`
		ClauseIndex int                `json:"clause_index"`
		Value       scoringtypes.Value `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), divisionID, "UpdateScoresheetClause", func(ctx context.Context) (results.OperationResult, error) {
		return h.service.UpdateScoresheetClause(ctx, divisionID, sheetID, body.MissionID, body.ClauseIndex, body.Value)
	})
	writeResult(w, h.logger, result, err)
}

func (h *ScoringHandler) UpdateGP(w http.ResponseWriter, r *http.Request) {
	divisionID, sheetID, ok := sheetParams(w, r)
	if !ok {
		return
	}

	var body struct {
		GP int `json:"gp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), divisionID, "UpdateGPRating", func(ctx context.Context) (results.OperationResult, error) {
		return h.service.UpdateGPRating(ctx, divisionID, sheetID, body.GP)
	})
	writeResult(w, h.logger, result, err)
}

func (h *ScoringHandler) Submit(w http.ResponseWriter, r *http.Request) {
	divisionID, sheetID, ok := sheetParams(w, r)
	if !ok {
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), divisionID, "SubmitScoresheet", func(ctx context.Context) (results.OperationResult, error) {
		return h.service.SubmitScoresheet(ctx, divisionID, sheetID)
	})
	writeResult(w, h.logger, result, err)
}

func (h *ScoringHandler) Escalate(w http.ResponseWriter, r *http.Request) {
	divisionID, sheetID, ok := sheetParams(w, r)
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), divisionID, "EscalateScoresheet", func(ctx context.Context) (results.OperationResult, error) {
		return h.service.EscalateScoresheet(ctx, divisionID, sheetID, body.Reason)
	})
	writeResult(w, h.logger, result, err)
}

// Resolve requires the head-referee role; the role travels from the bearer
// token claims into the service, which makes the final call.
func (h *ScoringHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	divisionID, sheetID, ok := sheetParams(w, r)
	if !ok {
		return
	}

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing operator claims", http.StatusUnauthorized)
		return
	}
	role := jwt.Role(claims.Role)

	result, err := h.dispatcher.Dispatch(r.Context(), divisionID, "ResolveScoresheet", func(ctx context.Context) (results.OperationResult, error) {
		return h.service.ResolveScoresheet(ctx, divisionID, sheetID, role)
	})
	writeResult(w, h.logger, result, err)
}

func sheetParams(w http.ResponseWriter, r *http.Request) (divisionID, sheetID uuid.UUID, ok bool) {
	divisionID, err := uuid.Parse(chi.URLParam(r, "divisionID"))
	if err != nil {
		writeBadRequest(w, "invalid division id")
		return uuid.Nil, uuid.Nil, false
	}
	sheetID, err = uuid.Parse(chi.URLParam(r, "sheetID"))
	if err != nil {
		writeBadRequest(w, "invalid scoresheet id")
		return uuid.Nil, uuid.Nil, false
	}
	return divisionID, sheetID, true
}
