package scoringservice

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	scoringtypes "github.com/openlems/lems-backend/app/modules/scoring/domain/types"
	scoringevents "github.com/openlems/lems-backend/app/modules/scoring/events"
	"github.com/openlems/lems-backend/app/shared/results"
	"github.com/openlems/lems-backend/pkg/jwt"
)

func newTestService(db *FakeScoringDB, bus *FakeEventBus) Service {
	logger := slog.New(slog.DiscardHandler)
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewScoringService(db, bus, logger, tracer, scoringtypes.SeasonSchema)
}

func rejection(t *testing.T, result results.OperationResult) *results.Rejection {
	t.Helper()
	rej, ok := result.Failure.(*results.Rejection)
	require.True(t, ok, "expected a rejection, got %+v", result)
	return rej
}

func freshSheet(divisionID uuid.UUID, status scoringtypes.SheetStatus) *scoringtypes.Scoresheet {
	sheet := &scoringtypes.Scoresheet{
		ID:         uuid.New(),
		DivisionID: divisionID,
		MatchID:    uuid.New(),
		TeamID:     uuid.New(),
		Stage:      "ranking",
		Round:      1,
		Status:     status,
		Missions:   scoringtypes.SeasonSchema.DefaultMissions(),
	}
	result := scoringtypes.SeasonSchema.Calculate(sheet.Missions)
	sheet.Score = result.Score
	sheet.MissionErrors = result.MissionErrors
	sheet.ValidatorErrors = result.ValidatorErrors
	return sheet
}

func TestUpdateScoresheetClause(t *testing.T) {
	divisionID := uuid.New()

	t.Run("writes the value and recomputes in one commit", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetNotStarted)
		baseline := sheet.Score

		var persisted *scoringtypes.Scoresheet
		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		db.UpdateScoresheetFunc = func(_ context.Context, s *scoringtypes.Scoresheet) error {
			persisted = s
			return nil
		}
		bus := NewFakeEventBus()
		svc := newTestService(db, bus)

		result, err := svc.UpdateScoresheetClause(context.Background(), divisionID, sheet.ID, "m05", 0, scoringtypes.Boolean(true))
		require.NoError(t, err)
		require.NotNil(t, result.Success)

		require.NotNil(t, persisted)
		assert.Equal(t, baseline+30, persisted.Score)
		assert.Equal(t, scoringtypes.SheetInProgress, persisted.Status)
		assert.Equal(t, []string{scoringevents.ScoresheetUpdatedV1}, bus.EventTypes())
	})

	t.Run("dependency violation is recorded, not blocked", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetInProgress)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		svc := newTestService(db, NewFakeEventBus())

		result, err := svc.UpdateScoresheetClause(context.Background(), divisionID, sheet.ID, "m03", 1, scoringtypes.Boolean(true))
		require.NoError(t, err)
		require.NotNil(t, result.Success)

		require.Len(t, sheet.MissionErrors, 1)
		assert.Equal(t, "m03-e1", sheet.MissionErrors[0].Code)
	})

	t.Run("rejects a value that does not fit the clause", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetInProgress)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		svc := newTestService(db, NewFakeEventBus())

		result, err := svc.UpdateScoresheetClause(context.Background(), divisionID, sheet.ID, "m02", 0, scoringtypes.Option("9"))
		require.NoError(t, err)
		assert.Equal(t, results.CodeInvalidState, rejection(t, result).Code)
		assert.NotContains(t, db.Trace(), "UpdateScoresheet")
	})

	t.Run("rejects an unknown mission", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetInProgress)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		svc := newTestService(db, NewFakeEventBus())

		result, err := svc.UpdateScoresheetClause(context.Background(), divisionID, sheet.ID, "m99", 0, scoringtypes.Boolean(true))
		require.NoError(t, err)
		assert.Equal(t, results.CodeNotFound, rejection(t, result).Code)
	})

	t.Run("rejects a clause index out of range", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetInProgress)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		svc := newTestService(db, NewFakeEventBus())

		result, err := svc.UpdateScoresheetClause(context.Background(), divisionID, sheet.ID, "m05", 3, scoringtypes.Boolean(true))
		require.NoError(t, err)
		assert.Equal(t, results.CodeNotFound, rejection(t, result).Code)
	})

	t.Run("completed sheet rejects edits", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetCompleted)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		svc := newTestService(db, NewFakeEventBus())

		result, err := svc.UpdateScoresheetClause(context.Background(), divisionID, sheet.ID, "m05", 0, scoringtypes.Boolean(true))
		require.NoError(t, err)
		assert.Equal(t, results.CodeInvalidState, rejection(t, result).Code)
	})

	t.Run("sheet under review stays editable", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetWaitingHeadRef)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		svc := newTestService(db, NewFakeEventBus())

		result, err := svc.UpdateScoresheetClause(context.Background(), divisionID, sheet.ID, "m05", 0, scoringtypes.Boolean(true))
		require.NoError(t, err)
		require.NotNil(t, result.Success)
		assert.Equal(t, scoringtypes.SheetWaitingHeadRef, sheet.Status, "editing does not leave the review state")
	})

	t.Run("scopes lookups to the division", func(t *testing.T) {
		sheet := freshSheet(uuid.New(), scoringtypes.SheetInProgress)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		svc := newTestService(db, NewFakeEventBus())

		result, err := svc.UpdateScoresheetClause(context.Background(), divisionID, sheet.ID, "m05", 0, scoringtypes.Boolean(true))
		require.NoError(t, err)
		assert.Equal(t, results.CodeNotFound, rejection(t, result).Code)
	})
}

func TestUpdateGPRating(t *testing.T) {
	divisionID := uuid.New()

	t.Run("records the rating", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetNotStarted)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		bus := NewFakeEventBus()
		svc := newTestService(db, bus)

		result, err := svc.UpdateGPRating(context.Background(), divisionID, sheet.ID, 3)
		require.NoError(t, err)
		require.NotNil(t, result.Success)

		require.NotNil(t, sheet.GP)
		assert.Equal(t, 3, *sheet.GP)
		assert.Equal(t, scoringtypes.SheetInProgress, sheet.Status)
	})

	t.Run("rejects a rating out of range", func(t *testing.T) {
		for _, gp := range []int{0, 1, 5} {
			sheet := freshSheet(divisionID, scoringtypes.SheetInProgress)

			db := NewFakeScoringDB()
			db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
			svc := newTestService(db, NewFakeEventBus())

			result, err := svc.UpdateGPRating(context.Background(), divisionID, sheet.ID, gp)
			require.NoError(t, err)
			assert.Equal(t, results.CodeInvalidState, rejection(t, result).Code)
			assert.Nil(t, sheet.GP)
		}
	})
}

func TestSubmitScoresheet(t *testing.T) {
	divisionID := uuid.New()

	t.Run("completes a clean in-progress sheet", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetInProgress)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		bus := NewFakeEventBus()
		svc := newTestService(db, bus)

		result, err := svc.SubmitScoresheet(context.Background(), divisionID, sheet.ID)
		require.NoError(t, err)
		require.NotNil(t, result.Success)
		assert.Equal(t, scoringtypes.SheetCompleted, sheet.Status)
		assert.Equal(t, []string{scoringevents.ScoresheetUpdatedV1}, bus.EventTypes())
	})

	t.Run("rejects while errors are unresolved", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetInProgress)
		sheet.Missions["m03"] = []scoringtypes.Value{scoringtypes.Boolean(false), scoringtypes.Boolean(true)}
		recomputed := scoringtypes.SeasonSchema.Calculate(sheet.Missions)
		sheet.MissionErrors = recomputed.MissionErrors

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		svc := newTestService(db, NewFakeEventBus())

		result, err := svc.SubmitScoresheet(context.Background(), divisionID, sheet.ID)
		require.NoError(t, err)
		assert.Equal(t, results.CodeInvalidState, rejection(t, result).Code)
		assert.Equal(t, scoringtypes.SheetInProgress, sheet.Status)
	})

	t.Run("rejects a sheet that never started", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetNotStarted)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		svc := newTestService(db, NewFakeEventBus())

		result, err := svc.SubmitScoresheet(context.Background(), divisionID, sheet.ID)
		require.NoError(t, err)
		assert.Equal(t, results.CodeInvalidState, rejection(t, result).Code)
	})
}

func TestEscalateScoresheet(t *testing.T) {
	divisionID := uuid.New()

	t.Run("escalates an in-progress sheet with the reason", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetInProgress)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		bus := NewFakeEventBus()
		svc := newTestService(db, bus)

		result, err := svc.EscalateScoresheet(context.Background(), divisionID, sheet.ID, "disputed m08 call")
		require.NoError(t, err)
		require.NotNil(t, result.Success)
		assert.Equal(t, scoringtypes.SheetWaitingHeadRef, sheet.Status)

		events := bus.Events()
		require.Len(t, events, 1)
		assert.Equal(t, scoringevents.ScoresheetEscalatedV1, events[0].EventType)
		payload, ok := events[0].Payload.(scoringevents.ScoresheetPayload)
		require.True(t, ok)
		assert.Equal(t, "disputed m08 call", payload.Reason)
	})

	t.Run("a completed sheet can be reopened by escalation", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetCompleted)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		svc := newTestService(db, NewFakeEventBus())

		result, err := svc.EscalateScoresheet(context.Background(), divisionID, sheet.ID, "score protest")
		require.NoError(t, err)
		require.NotNil(t, result.Success)
		assert.Equal(t, scoringtypes.SheetWaitingHeadRef, sheet.Status)
	})

	t.Run("rejects a sheet that was never worked on", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetNotStarted)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		svc := newTestService(db, NewFakeEventBus())

		result, err := svc.EscalateScoresheet(context.Background(), divisionID, sheet.ID, "too early")
		require.NoError(t, err)
		assert.Equal(t, results.CodeInvalidState, rejection(t, result).Code)
	})
}

func TestResolveScoresheet(t *testing.T) {
	divisionID := uuid.New()

	t.Run("head referee resolves a waiting sheet", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetWaitingHeadRef)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		bus := NewFakeEventBus()
		svc := newTestService(db, bus)

		result, err := svc.ResolveScoresheet(context.Background(), divisionID, sheet.ID, jwt.RoleHeadReferee)
		require.NoError(t, err)
		require.NotNil(t, result.Success)
		assert.Equal(t, scoringtypes.SheetCompleted, sheet.Status)
		assert.Equal(t, []string{scoringevents.ScoresheetResolvedV1}, bus.EventTypes())
	})

	t.Run("other roles are forbidden", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetWaitingHeadRef)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		svc := newTestService(db, NewFakeEventBus())

		result, err := svc.ResolveScoresheet(context.Background(), divisionID, sheet.ID, jwt.RoleReferee)
		require.NoError(t, err)
		assert.Equal(t, results.CodeForbidden, rejection(t, result).Code)
		assert.Equal(t, scoringtypes.SheetWaitingHeadRef, sheet.Status)
	})

	t.Run("rejects a sheet that is not waiting", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetInProgress)

		db := NewFakeScoringDB()
		db.GetScoresheetFunc = func(_ context.Context, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		svc := newTestService(db, NewFakeEventBus())

		result, err := svc.ResolveScoresheet(context.Background(), divisionID, sheet.ID, jwt.RoleHeadReferee)
		require.NoError(t, err)
		assert.Equal(t, results.CodeInvalidState, rejection(t, result).Code)
	})
}

func TestEscalateNoShow(t *testing.T) {
	divisionID := uuid.New()
	matchID := uuid.New()
	teamID := uuid.New()

	t.Run("routes the sheet to head-referee review", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetCompleted)
		sheet.MatchID = matchID
		sheet.TeamID = teamID

		db := NewFakeScoringDB()
		db.GetMatchTeamScoresheetFunc = func(_ context.Context, _, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		bus := NewFakeEventBus()
		svc := newTestService(db, bus)

		require.NoError(t, svc.EscalateNoShow(context.Background(), divisionID, matchID, teamID))

		assert.Equal(t, scoringtypes.SheetWaitingHeadRef, sheet.Status)
		assert.Equal(t, []string{scoringevents.ScoresheetEscalatedV1}, bus.EventTypes())
	})

	t.Run("idempotent when the sheet is already waiting", func(t *testing.T) {
		sheet := freshSheet(divisionID, scoringtypes.SheetWaitingHeadRef)
		before := sheet.UpdatedAt

		db := NewFakeScoringDB()
		db.GetMatchTeamScoresheetFunc = func(_ context.Context, _, _ uuid.UUID) (*scoringtypes.Scoresheet, error) { return sheet, nil }
		bus := NewFakeEventBus()
		svc := newTestService(db, bus)

		require.NoError(t, svc.EscalateNoShow(context.Background(), divisionID, matchID, teamID))
		assert.Equal(t, before, sheet.UpdatedAt)
		assert.Empty(t, bus.EventTypes())
		assert.NotContains(t, db.Trace(), "UpdateScoresheet")
	})

	t.Run("missing sheet is logged, not an error", func(t *testing.T) {
		svc := newTestService(NewFakeScoringDB(), NewFakeEventBus())
		require.NoError(t, svc.EscalateNoShow(context.Background(), divisionID, matchID, teamID))
	})
}
