package services

import (
	"context"

	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	"github.com/kaustubhdw/user_auth_app/internal/dto"
)

// ActivitySvcFacade records and lists append-only audit entries.
type ActivitySvcFacade interface {
	// Record appends one audit entry. Best-effort: persistence failures are
	// logged and swallowed so they never alter the primary operation's outcome.
	Record(ctx context.Context, userID *string, action domain.ActivityAction, meta dto.RequestMeta, metadata map[string]any)

	// ListActivities retrieves a paginated view of the audit log, newest first.
	ListActivities(ctx context.Context, params dto.ListActivitiesParams) (*dto.ListActivitiesResponse, error)
}
