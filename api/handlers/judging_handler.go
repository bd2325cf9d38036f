package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	judgingservice "github.com/openlems/lems-backend/app/modules/judging/application"
	"github.com/openlems/lems-backend/app/shared/results"
	"github.com/openlems/lems-backend/internal/commandbus"
)

// JudgingHandler exposes the judging session state machine and the room
// assistance channel.
type JudgingHandler struct {
	dispatcher *commandbus.Dispatcher
	service    judgingservice.Service
	logger     *slog.Logger
}

func NewJudgingHandler(dispatcher *commandbus.Dispatcher, service judgingservice.Service, logger *slog.Logger) *JudgingHandler {
	return &JudgingHandler{dispatcher: dispatcher, service: service, logger: logger}
}

func (h *JudgingHandler) Routes(r chi.Router) {
	r.Post("/divisions/{divisionID}/sessions/{sessionID}/start", h.StartSession)
	r.Post("/divisions/{divisionID}/sessions/{sessionID}/finish", h.FinishSessionEarly)
	r.Post("/divisions/{divisionID}/sessions/{sessionID}/abort", h.AbortSession)
	r.Post("/divisions/{divisionID}/sessions/{sessionID}/flags", h.UpdateSessionFlags)
	r.Post("/divisions/{divisionID}/rooms/{roomID}/assistance", h.RequestAssistance)
}

func (h *JudgingHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	divisionID, sessionID, ok := sessionParams(w, r)
	if !ok {
		return
	}

	var body struct {
		RoomID uuid.UUID `json:"room_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), divisionID, "StartSession", func(ctx context.Context) (results.OperationResult, error) {
		return h.service.StartSession(ctx, divisionID, body.RoomID, sessionID)
	})
	writeResult(w, h.logger, result, err)
}

func (h *JudgingHandler) FinishSessionEarly(w http.ResponseWriter, r *http.Request) {
	h.sessionCommand(w, r, "FinishSessionEarly", h.service.FinishSessionEarly)
}

func (h *JudgingHandler) AbortSession(w http.ResponseWriter, r *http.Request) {
	h.sessionCommand(w, r, "AbortSession", h.service.AbortSession)
}

func (h *JudgingHandler) sessionCommand(w http.ResponseWriter, r *http.Request, name string, op func(ctx context.Context, divisionID, sessionID uuid.UUID) (results.OperationResult, error)) {
	divisionID, sessionID, ok := sessionParams(w, r)
	if !ok {
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), divisionID, name, func(ctx context.Context) (results.OperationResult, error) {
		return op(ctx, divisionID, sessionID)
	})
	writeResult(w, h.logger, result, err)
}

func (h *JudgingHandler) UpdateSessionFlags(w http.ResponseWriter, r *http.Request) {
	divisionID, sessionID, ok := sessionParams(w, r)
	if !ok {
		return
	}

	var body struct {
		Called bool `json:"called"`
		Queued bool `json:"queued"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), divisionID, "UpdateSessionFlags", func(ctx context.Context) (results.OperationResult, error) {
		return h.service.UpdateSessionFlags(ctx, divisionID, sessionID, body.Called, body.Queued)
	})
	writeResult(w, h.logger, result, err)
}

// RequestAssistance is notification-only and does not touch durable state,
// so it bypasses the dispatcher.
func (h *JudgingHandler) RequestAssistance(w http.ResponseWriter, r *http.Request) {
	divisionID, err := uuid.Parse(chi.URLParam(r, "divisionID"))
	if err != nil {
		writeBadRequest(w, "invalid division id")
		return
	}
	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		writeBadRequest(w, "invalid room id")
		return
	}

	result, err := h.service.RequestAssistance(r.Context(), divisionID, roomID)
	writeResult(w, h.logger, result, err)
}

func sessionParams(w http.ResponseWriter, r *http.Request) (divisionID, sessionID uuid.UUID, ok bool) {
	divisionID, err := uuid.Parse(chi.URLParam(r, "divisionID"))
	if err != nil {
		writeBadRequest(w, "invalid division id")
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, err = uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeBadRequest(w, "invalid session id")
		return uuid.Nil, uuid.Nil, false
	}
	return divisionID, sessionID, true
}
