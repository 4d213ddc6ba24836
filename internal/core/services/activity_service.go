package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	portsrepo "github.com/kaustubhdw/user_auth_app/internal/core/ports/repositories"
	portssvc "github.com/kaustubhdw/user_auth_app/internal/core/ports/services"
	"github.com/kaustubhdw/user_auth_app/internal/dto"
	"github.com/kaustubhdw/user_auth_app/internal/middleware"
)

// activityService implements ActivitySvcFacade over the append-only audit log.
type activityService struct {
	activityRepo portsrepo.ActivityRepository
}

// NewActivityService creates a new instance of activityService.
func NewActivityService(activityRepo portsrepo.ActivityRepository) portssvc.ActivitySvcFacade {
	return &activityService{activityRepo: activityRepo}
}

// Record appends one audit entry. Persistence failures are logged and
// swallowed: an audit write must never change the outcome of the operation
// being audited.
func (s *activityService) Record(ctx context.Context, userID *string, action domain.ActivityAction, meta dto.RequestMeta, metadata map[string]any) {
	activity := domain.Activity{
		ActivityID: uuid.NewString(),
		UserID:     userID,
		Action:     action,
		IPAddress:  meta.IPAddress,
		Device:     meta.Device,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}

	if err := s.activityRepo.SaveActivity(ctx, activity); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to record activity",
			slog.String("action", string(action)), slog.String("error", err.Error()))
	}
}

// ListActivities retrieves a paginated view of the audit log, newest first.
func (s *activityService) ListActivities(ctx context.Context, params dto.ListActivitiesParams) (*dto.ListActivitiesResponse, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	activities, err := s.activityRepo.FindActivities(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	total, err := s.activityRepo.CountActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count activities: %w", err)
	}

	responses := make([]dto.ActivityResponse, len(activities))
	for i, a := range activities {
		responses[i] = dto.ToActivityResponse(a)
	}

	return &dto.ListActivitiesResponse{
		Activities: responses,
		Pagination: dto.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pageCount(total, limit),
		},
	}, nil
}

// pageCount returns the number of pages needed for total rows at the given
// page size.
func pageCount(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
