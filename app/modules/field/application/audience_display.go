package fieldservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	fieldtypes "github.com/openlems/lems-backend/app/modules/field/domain/types"
	fieldevents "github.com/openlems/lems-backend/app/modules/field/events"
	"github.com/openlems/lems-backend/app/shared/eventbus"
	"github.com/openlems/lems-backend/app/shared/results"
	"github.com/openlems/lems-backend/pkg/jwt"
)

// UpdateAudienceDisplay switches what the division's audience display is
// showing. Only the scorekeeper drives the display.
func (s *FieldService) UpdateAudienceDisplay(ctx context.Context, divisionID uuid.UUID, screen fieldtypes.AudienceDisplayScreen, role jwt.Role) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "UpdateAudienceDisplay", func(ctx context.Context) (results.OperationResult, error) {
		s.logger.InfoContext(ctx, "Updating audience display",
			slog.String("division_id", divisionID.String()),
			slog.String("screen", string(screen)),
		)

		if role != jwt.RoleScorekeeper {
			return results.Reject(results.CodeForbidden, fmt.Sprintf("role %q may not drive the audience display", role)), nil
		}

		if !screen.IsValid() {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("unknown audience display screen %q", screen)), nil
		}

		state, err := s.FieldDB.GetDivisionState(ctx, divisionID)
		if err != nil {
			return results.OperationResult{}, err
		}

		state.AudienceDisplay = screen
		if err := s.FieldDB.UpdateDivisionState(ctx, state); err != nil {
			return results.OperationResult{}, err
		}

		payload := fieldevents.AudienceDisplayPayload{DivisionState: state}
		if err := s.EventBus.Publish(ctx, divisionID, []eventbus.Audience{eventbus.AudienceField, eventbus.AudienceAudienceDisplay},
			fieldevents.AudienceDisplayUpdatedV1, payload); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish audience display event",
				slog.String("division_id", divisionID.String()),
				slog.Any("error", err),
			)
		}

		return results.Succeed(&payload), nil
	})
}
