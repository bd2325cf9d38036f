package scoringservice

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	scoringtypes "github.com/openlems/lems-backend/app/modules/scoring/domain/types"
	scoringdb "github.com/openlems/lems-backend/app/modules/scoring/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
)

// ------------------------
// Fake Scoring Repo
// ------------------------

// FakeScoringDB provides a programmable stub for the scoringdb.ScoringDB
// interface.
type FakeScoringDB struct {
	trace []string

	GetScoresheetFunc          func(ctx context.Context, sheetID uuid.UUID) (*scoringtypes.Scoresheet, error)
	GetMatchTeamScoresheetFunc func(ctx context.Context, matchID, teamID uuid.UUID) (*scoringtypes.Scoresheet, error)
	ListScoresheetsFunc        func(ctx context.Context, divisionID uuid.UUID) ([]scoringtypes.Scoresheet, error)
	UpdateScoresheetFunc       func(ctx context.Context, sheet *scoringtypes.Scoresheet) error
}

func NewFakeScoringDB() *FakeScoringDB {
	return &FakeScoringDB{trace: []string{}}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeScoringDB) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeScoringDB) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeScoringDB) GetScoresheet(ctx context.Context, sheetID uuid.UUID) (*scoringtypes.Scoresheet, error) {
	f.record("GetScoresheet")
	if f.GetScoresheetFunc != nil {
		return f.GetScoresheetFunc(ctx, sheetID)
	}
	return nil, scoringdb.ErrScoresheetNotFound
}

func (f *FakeScoringDB) GetMatchTeamScoresheet(ctx context.Context, matchID, teamID uuid.UUID) (*scoringtypes.Scoresheet, error) {
	f.record("GetMatchTeamScoresheet")
	if f.GetMatchTeamScoresheetFunc != nil {
		return f.GetMatchTeamScoresheetFunc(ctx, matchID, teamID)
	}
	return nil, scoringdb.ErrScoresheetNotFound
}

func (f *FakeScoringDB) ListScoresheets(ctx context.Context, divisionID uuid.UUID) ([]scoringtypes.Scoresheet, error) {
	f.record("ListScoresheets")
	if f.ListScoresheetsFunc != nil {
		return f.ListScoresheetsFunc(ctx, divisionID)
	}
	return nil, nil
}

func (f *FakeScoringDB) UpdateScoresheet(ctx context.Context, sheet *scoringtypes.Scoresheet) error {
	f.record("UpdateScoresheet")
	if f.UpdateScoresheetFunc != nil {
		return f.UpdateScoresheetFunc(ctx, sheet)
	}
	return nil
}

var _ scoringdb.ScoringDB = (*FakeScoringDB)(nil)

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
