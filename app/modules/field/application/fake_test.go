package fieldservice

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	fieldtypes "github.com/openlems/lems-backend/app/modules/field/domain/types"
	fielddb "github.com/openlems/lems-backend/app/modules/field/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
)

// ------------------------
// Fake Field Repo
// ------------------------

// FakeFieldDB provides a programmable stub for the fielddb.FieldDB
// interface.
type FakeFieldDB struct {
	trace []string

	GetMatchFunc                func(ctx context.Context, matchID uuid.UUID) (*fieldtypes.Match, error)
	ListMatchesFunc             func(ctx context.Context, divisionID uuid.UUID) ([]fieldtypes.Match, error)
	ListRoundMatchesFunc        func(ctx context.Context, divisionID uuid.UUID, stage fieldtypes.Stage, round int) ([]fieldtypes.Match, error)
	NextUnstartedMatchFunc      func(ctx context.Context, divisionID uuid.UUID, stage fieldtypes.Stage) (*fieldtypes.Match, error)
	UpdateMatchStatusFunc       func(ctx context.Context, matchID uuid.UUID, status fieldtypes.Status, startTime *time.Time) error
	UpdateMatchCalledFunc       func(ctx context.Context, matchID uuid.UUID, called bool) error
	UpdateMatchParticipantsFunc func(ctx context.Context, matchID uuid.UUID, participants []fieldtypes.Participant) error
	GetDivisionStateFunc        func(ctx context.Context, divisionID uuid.UUID) (*fieldtypes.DivisionState, error)
	UpdateDivisionStateFunc     func(ctx context.Context, state *fieldtypes.DivisionState) error
}

func NewFakeFieldDB() *FakeFieldDB {
	return &FakeFieldDB{trace: []string{}}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeFieldDB) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeFieldDB) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeFieldDB) GetMatch(ctx context.Context, matchID uuid.UUID) (*fieldtypes.Match, error) {
	f.record("GetMatch")
	if f.GetMatchFunc != nil {
		return f.GetMatchFunc(ctx, matchID)
	}
	return nil, fielddb.ErrMatchNotFound
}

func (f *FakeFieldDB) ListMatches(ctx context.Context, divisionID uuid.UUID) ([]fieldtypes.Match, error) {
	f.record("ListMatches")
	if f.ListMatchesFunc != nil {
		return f.ListMatchesFunc(ctx, divisionID)
	}
	return nil, nil
}

func (f *FakeFieldDB) ListRoundMatches(ctx context.Context, divisionID uuid.UUID, stage fieldtypes.Stage, round int) ([]fieldtypes.Match, error) {
	f.record("ListRoundMatches")
	if f.ListRoundMatchesFunc != nil {
		return f.ListRoundMatchesFunc(ctx, divisionID, stage, round)
	}
	return nil, nil
}

func (f *FakeFieldDB) NextUnstartedMatch(ctx context.Context, divisionID uuid.UUID, stage fieldtypes.Stage) (*fieldtypes.Match, error) {
	f.record("NextUnstartedMatch")
	if f.NextUnstartedMatchFunc != nil {
		return f.NextUnstartedMatchFunc(ctx, divisionID, stage)
	}
	return nil, nil
}

func (f *FakeFieldDB) UpdateMatchStatus(ctx context.Context, matchID uuid.UUID, status fieldtypes.Status, startTime *time.Time) error {
	f.record("UpdateMatchStatus")
	if f.UpdateMatchStatusFunc != nil {
		return f.UpdateMatchStatusFunc(ctx, matchID, status, startTime)
	}
	return nil
}

func (f *FakeFieldDB) UpdateMatchCalled(ctx context.Context, matchID uuid.UUID, called bool) error {
	f.record("UpdateMatchCalled")
	if f.UpdateMatchCalledFunc != nil {
		return f.UpdateMatchCalledFunc(ctx, matchID, called)
	}
	return nil
}

func (f *FakeFieldDB) UpdateMatchParticipants(ctx context.Context, matchID uuid.UUID, participants []fieldtypes.Participant) error {
	f.record("UpdateMatchParticipants")
	if f.UpdateMatchParticipantsFunc != nil {
		return f.UpdateMatchParticipantsFunc(ctx, matchID, participants)
	}
	return nil
}

func (f *FakeFieldDB) GetDivisionState(ctx context.Context, divisionID uuid.UUID) (*fieldtypes.DivisionState, error) {
	f.record("GetDivisionState")
	if f.GetDivisionStateFunc != nil {
		return f.GetDivisionStateFunc(ctx, divisionID)
	}
	return nil, fielddb.ErrDivisionStateNotFound
}

func (f *FakeFieldDB) UpdateDivisionState(ctx context.Context, state *fieldtypes.DivisionState) error {
	f.record("UpdateDivisionState")
	if f.UpdateDivisionStateFunc != nil {
		return f.UpdateDivisionStateFunc(ctx, state)
	}
	return nil
}

var _ fielddb.FieldDB = (*FakeFieldDB)(nil)

// ------------------------
// Fake Event Bus
// ------------------------

type publishedEvent struct {
	DivisionID uuid.UUID
	Audiences  []eventbus.Audience
	EventType  string
	Payload    interface{}
}

// FakeEventBus records every publish for assertion.
type FakeEventBus struct {
	mu     sync.Mutex
	events []publishedEvent

	PublishFunc func(ctx context.Context, divisionID uuid.UUID, audiences []eventbus.Audience, eventType string, payload interface{}) error
}

func NewFakeEventBus() *FakeEventBus {
	return &FakeEventBus{}
}

func (f *FakeEventBus) Publish(ctx context.Context, divisionID uuid.UUID, audiences []eventbus.Audience, eventType string, payload interface{}) error {
	f.mu.Lock()
	f.events = append(f.events, publishedEvent{DivisionID: divisionID, Audiences: audiences, EventType: eventType, Payload: payload})
	f.mu.Unlock()
	if f.PublishFunc != nil {
		return f.PublishFunc(ctx, divisionID, audiences, eventType, payload)
	}
	return nil
}

func (f *FakeEventBus) Subscribe(ctx context.Context, divisionID uuid.UUID, audience eventbus.Audience) (<-chan *message.Message, error) {
	return nil, nil
}

func (f *FakeEventBus) Close() error { return nil }

// Events returns the published events in order.
func (f *FakeEventBus) Events() []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]publishedEvent, len(f.events))
	copy(out, f.events)
	return out
}

// EventTypes returns just the event type of each publish, in order.
func (f *FakeEventBus) EventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, len(f.events))
	for i, e := range f.events {
		types[i] = e.EventType
	}
	return types
}

var _ eventbus.EventBus = (*FakeEventBus)(nil)

// ------------------------
// Fake Scheduler
// ------------------------

type scheduledCompletion struct {
	DivisionID uuid.UUID
	MatchID    uuid.UUID
	At         time.Time
}

// FakeScheduler records scheduled and canceled completion jobs.
type FakeScheduler struct {
	Scheduled []scheduledCompletion
	Canceled  []uuid.UUID

	ScheduleFunc func(ctx context.Context, divisionID, matchID uuid.UUID, at time.Time) error
	CancelFunc   func(ctx context.Context, matchID uuid.UUID) error
}

func (f *FakeScheduler) ScheduleMatchCompletion(ctx context.Context, divisionID, matchID uuid.UUID, at time.Time) error {
	f.Scheduled = append(f.Scheduled, scheduledCompletion{DivisionID: divisionID, MatchID: matchID, At: at})
	if f.ScheduleFunc != nil {
		return f.ScheduleFunc(ctx, divisionID, matchID, at)
	}
	return nil
}

func (f *FakeScheduler) CancelMatchCompletion(ctx context.Context, matchID uuid.UUID) error {
	f.Canceled = append(f.Canceled, matchID)
	if f.CancelFunc != nil {
		return f.CancelFunc(ctx, matchID)
	}
	return nil
}

var _ CompletionScheduler = (*FakeScheduler)(nil)

// ------------------------
// Fake Escalator
// ------------------------

type escalatedSheet struct {
	DivisionID uuid.UUID
	MatchID    uuid.UUID
	TeamID     uuid.UUID
}

// FakeEscalator records cross-module no-show escalations.
type FakeEscalator struct {
	Escalated []escalatedSheet

	EscalateFunc func(ctx context.Context, divisionID, matchID, teamID uuid.UUID) error
}

func (f *FakeEscalator) EscalateNoShow(ctx context.Context, divisionID, matchID, teamID uuid.UUID) error {
	f.Escalated = append(f.Escalated, escalatedSheet{DivisionID: divisionID, MatchID: matchID, TeamID: teamID})
	if f.EscalateFunc != nil {
		return f.EscalateFunc(ctx, divisionID, matchID, teamID)
	}
	return nil
}

var _ ScoresheetEscalator = (*FakeEscalator)(nil)
