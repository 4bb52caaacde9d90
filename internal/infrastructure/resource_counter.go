package infrastructure

import (
	"context"

	appErrors "Parking/internal/errors"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// OccupancyCounter answers the counting queries behind lot occupancy.
type OccupancyCounter struct {
	DB *gorm.DB
}

func (r *OccupancyCounter) CountSpots(ctx context.Context, lotID ulid.ULID) (int64, int64, error) {
	var counts struct {
		Total    int64
		Occupied int64
	}
	err := r.DB.WithContext(ctx).Table("parking_spots").
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE is_occupied) AS occupied").
		Where("lot_id = ? AND is_active = ?", lotID.String(), true).
		Scan(&counts).Error
	if err != nil {
		return 0, 0, appErrors.NewDatabaseError(err)
	}
	return counts.Total, counts.Occupied, nil
}

func (r *OccupancyCounter) CountActiveSessions(ctx context.Context, lotID ulid.ULID) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Table("parking_sessions").
		Where("lot_id = ? AND status = ?", lotID.String(), "ACTIVE").
		Count(&count).Error
	if err != nil {
		return 0, appErrors.NewDatabaseError(err)
	}
	return count, nil
}
