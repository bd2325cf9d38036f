package judgingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	judgingtypes "github.com/openlems/lems-backend/app/modules/judging/domain/types"
)

// JudgingDBImpl is the bun-backed implementation of JudgingDB.
type JudgingDBImpl struct {
	DB *bun.DB
}

var _ JudgingDB = (*JudgingDBImpl)(nil)

func (db *JudgingDBImpl) GetSession(ctx context.Context, sessionID uuid.UUID) (*judgingtypes.Session, error) {
	session := new(Session)
	err := db.DB.NewSelect().
		Model(session).
		Where("id = ?", sessionID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	return session.toDomain(), nil
}

func (db *JudgingDBImpl) ListSessions(ctx context.Context, divisionID uuid.UUID) ([]judgingtypes.Session, error) {
	var models []Session
	err := db.DB.NewSelect().
		Model(&models).
		Where("division_id = ?", divisionID).
		Order("scheduled_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sessions := make([]judgingtypes.Session, len(models))
	for i := range models {
		sessions[i] = *models[i].toDomain()
	}
	return sessions, nil
}

func (db *JudgingDBImpl) ListRoomSessions(ctx context.Context, roomID uuid.UUID) ([]judgingtypes.Session, error) {
	var models []Session
	err := db.DB.NewSelect().
		Model(&models).
		Where("room_id = ?", roomID).
		Order("scheduled_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list room sessions: %w", err)
	}
	sessions := make([]judgingtypes.Session, len(models))
	for i := range models {
		sessions[i] = *models[i].toDomain()
	}
	return sessions, nil
}

func (db *JudgingDBImpl) UpdateSessionStatus(ctx context.Context, sessionID uuid.UUID, status judgingtypes.Status, startTime *time.Time) error {
	res, err := db.DB.NewUpdate().
		Model((*Session)(nil)).
		Set("status = ?", status).
		Set("start_time = ?", startTime).
		Set("updated_at = current_timestamp").
		Where("id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return requireRow(res)
}

func (db *JudgingDBImpl) UpdateSessionFlags(ctx context.Context, sessionID uuid.UUID, called, queued bool) error {
	res, err := db.DB.NewUpdate().
		Model((*Session)(nil)).
		Set("called = ?", called).
		Set("queued = ?", queued).
		Set("updated_at = current_timestamp").
		Where("id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update session flags: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
