package mapping

import (
	"encoding/json"

	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	"github.com/kaustubhdw/user_auth_app/internal/models"
)

// ToModelActivity converts a domain Activity to a model Activity, serializing
// the free-form metadata to JSONB bytes.
func ToModelActivity(d domain.Activity) (models.Activity, error) {
	var metadata []byte
	if len(d.Metadata) > 0 {
		raw, err := json.Marshal(d.Metadata)
		if err != nil {
			return models.Activity{}, err
		}
		metadata = raw
	}
	return models.Activity{
		ActivityID: d.ActivityID,
		UserID:     d.UserID,
		Action:     string(d.Action),
		IPAddress:  d.IPAddress,
		Device:     d.Device,
		Metadata:   metadata,
		CreatedAt:  d.CreatedAt,
	}, nil
}

// ToDomainActivity converts a model Activity to a domain Activity. Metadata
// that fails to decode is dropped rather than failing the read.
func ToDomainActivity(m models.Activity) domain.Activity {
	var metadata map[string]any
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &metadata)
	}
	return domain.Activity{
		ActivityID: m.ActivityID,
		UserID:     m.UserID,
		Action:     domain.ActivityAction(m.Action),
		IPAddress:  m.IPAddress,
		Device:     m.Device,
		Metadata:   metadata,
		CreatedAt:  m.CreatedAt,
	}
}

// ToDomainActivitySlice converts a slice of model Activities.
func ToDomainActivitySlice(ms []models.Activity) []domain.Activity {
	ds := make([]domain.Activity, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainActivity(m)
	}
	return ds
}
