package judgingservice

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	judgingtypes "github.com/openlems/lems-backend/app/modules/judging/domain/types"
	judgingdb "github.com/openlems/lems-backend/app/modules/judging/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
)

// ------------------------
// Fake Judging Repo
// ------------------------

// FakeJudgingDB provides a programmable stub for the judgingdb.JudgingDB
// interface.
type FakeJudgingDB struct {
	trace []string

	GetSessionFunc          func(ctx context.Context, sessionID uuid.UUID) (*judgingtypes.Session, error)
	ListSessionsFunc        func(ctx context.Context, divisionID uuid.UUID) ([]judgingtypes.Session, error)
	ListRoomSessionsFunc    func(ctx context.Context, roomID uuid.UUID) ([]judgingtypes.Session, error)
	UpdateSessionStatusFunc func(ctx context.Context, sessionID uuid.UUID, status judgingtypes.Status, startTime *time.Time) error
	UpdateSessionFlagsFunc  func(ctx context.Context, sessionID uuid.UUID, called, queued bool) error
}

func NewFakeJudgingDB() *FakeJudgingDB {
	return &FakeJudgingDB{trace: []string{}}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeJudgingDB) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeJudgingDB) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeJudgingDB) GetSession(ctx context.Context, sessionID uuid.UUID) (*judgingtypes.Session, error) {
	f.record("GetSession")
	if f.GetSessionFunc != nil {
		return f.GetSessionFunc(ctx, sessionID)
	}
	return nil, judgingdb.ErrSessionNotFound
}

func (f *FakeJudgingDB) ListSessions(ctx context.Context, divisionID uuid.UUID) ([]judgingtypes.Session, error) {
	f.record("ListSessions")
	if f.ListSessionsFunc != nil {
		return f.ListSessionsFunc(ctx, divisionID)
	}
	return nil, nil
}

func (f *FakeJudgingDB) ListRoomSessions(ctx context.Context, roomID uuid.UUID) ([]judgingtypes.Session, error) {
	f.record("ListRoomSessions")
	if f.ListRoomSessionsFunc != nil {
		return f.ListRoomSessionsFunc(ctx, roomID)
	}
	return nil, nil
}

func (f *FakeJudgingDB) UpdateSessionStatus(ctx context.Context, sessionID uuid.UUID, status judgingtypes.Status, startTime *time.Time) error {
	f.record("UpdateSessionStatus")
	if f.UpdateSessionStatusFunc != nil {
		return f.UpdateSessionStatusFunc(ctx, sessionID, status, startTime)
	}
	return nil
}

func (f *FakeJudgingDB) UpdateSessionFlags(ctx context.Context, sessionID uuid.UUID, called, queued bool) error {
	f.record("UpdateSessionFlags")
	if f.UpdateSessionFlagsFunc != nil {
		return f.UpdateSessionFlagsFunc(ctx, sessionID, called, queued)
	}
	return nil
}

var _ judgingdb.JudgingDB = (*FakeJudgingDB)(nil)

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
	SessionID  uuid.UUID
	StartedAt  time.Time
	At         time.Time
}

// FakeScheduler records scheduled completion jobs.
type FakeScheduler struct {
	Scheduled []scheduledCompletion

	ScheduleFunc func(ctx context.Context, divisionID, sessionID uuid.UUID, startedAt, at time.Time) error
}

func (f *FakeScheduler) ScheduleSessionCompletion(ctx context.Context, divisionID, sessionID uuid.UUID, startedAt time.Time, at time.Time) error {
	f.Scheduled = append(f.Scheduled, scheduledCompletion{DivisionID: divisionID, SessionID: sessionID, StartedAt: startedAt, At: at})
	if f.ScheduleFunc != nil {
		return f.ScheduleFunc(ctx, divisionID, sessionID, startedAt, at)
	}
	return nil
}

var _ CompletionScheduler = (*FakeScheduler)(nil)

// ------------------------
// Fake Session Counter
// ------------------------

type counterBump struct {
	DivisionID uuid.UUID
	Number     int
}

// FakeSessionCounter records counter bumps.
type FakeSessionCounter struct {
	Bumps []counterBump

	BumpFunc func(ctx context.Context, divisionID uuid.UUID, number int) (*int, error)
}

func (f *FakeSessionCounter) BumpCurrentSession(ctx context.Context, divisionID uuid.UUID, number int) (*int, error) {
	f.Bumps = append(f.Bumps, counterBump{DivisionID: divisionID, Number: number})
	if f.BumpFunc != nil {
		return f.BumpFunc(ctx, divisionID, number)
	}
	return &number, nil
}

var _ SessionCounter = (*FakeSessionCounter)(nil)
