package judgingdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	judgingtypes "github.com/openlems/lems-backend/app/modules/judging/domain/types"
)

// JudgingDB is the durable record store boundary for the judging module.
type JudgingDB interface {
	GetSession(ctx context.Context, sessionID uuid.UUID) (*judgingtypes.Session, error)
	ListSessions(ctx context.Context, divisionID uuid.UUID) ([]judgingtypes.Session, error)
	ListRoomSessions(ctx context.Context, roomID uuid.UUID) ([]judgingtypes.Session, error)

	UpdateSessionStatus(ctx context.Context, sessionID uuid.UUID, status judgingtypes.Status, startTime *time.Time) error
	UpdateSessionFlags(ctx context.Context, sessionID uuid.UUID, called, queued bool) error
}
