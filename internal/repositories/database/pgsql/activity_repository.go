package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	portsrepo "github.com/kaustubhdw/user_auth_app/internal/core/ports/repositories"
	"github.com/kaustubhdw/user_auth_app/internal/models"
	"github.com/kaustubhdw/user_auth_app/internal/utils/mapping"
)

type PgxActivityRepository struct {
	BaseRepository
}

func newPgxActivityRepository(db *pgxpool.Pool) portsrepo.ActivityRepository {
	return &PgxActivityRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.ActivityRepository = (*PgxActivityRepository)(nil)

const (
	insertActivityQuery = `
		INSERT INTO activities (activity_id, user_id, action, ip_address, device, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	selectActivityFields = `activity_id, user_id, action, ip_address, device, metadata, created_at`
)

func (r *PgxActivityRepository) SaveActivity(ctx context.Context, activity domain.Activity) error {
	m, err := mapping.ToModelActivity(activity)
	if err != nil {
		return fmt.Errorf("failed to encode activity metadata: %w", err)
	}
	_, err = r.Pool.Exec(ctx, insertActivityQuery,
		m.ActivityID, m.UserID, m.Action, m.IPAddress, m.Device, m.Metadata, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}
	return nil
}

func (r *PgxActivityRepository) FindActivities(ctx context.Context, limit, offset int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + selectActivityFields + ` FROM activities ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		var m models.Activity
		if err := rows.Scan(&m.ActivityID, &m.UserID, &m.Action, &m.IPAddress, &m.Device, &m.Metadata, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		activities = append(activities, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", rows.Err())
	}
	return mapping.ToDomainActivitySlice(activities), nil
}

func (r *PgxActivityRepository) CountActivities(ctx context.Context) (int64, error) {
	var count int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM activities`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}
