package infrastructure

import (
	"context"
	"errors"
	"time"

	"Parking/internal/domain/reservation"
	"Parking/internal/domain/shared"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository struct {
	DB *gorm.DB
}

type reservationDB struct {
	Id              string    `gorm:"type:varchar(26);primaryKey"`
	LotId           string    `gorm:"type:varchar(26);not null;index:idx_reservations_lot"`
	SpotId          *string   `gorm:"type:varchar(26);index:idx_reservations_spot_window"`
	PlateNumber     string    `gorm:"type:varchar(20);not null;index:idx_reservations_plate"`
	VehicleType     string    `gorm:"type:varchar(20);not null"`
	StartTime       time.Time `gorm:"not null;index:idx_reservations_spot_window"`
	EndTime         time.Time `gorm:"not null;index:idx_reservations_spot_window"`
	Status          string    `gorm:"type:varchar(20);not null"`
	EstimatedAmount int64     `gorm:"not null;default:0"`
	Description     string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime;not null"`
}

func (reservationDB) TableName() string {
	return "reservations"
}

func toDomainReservation(rdb *reservationDB) (*reservation.Reservation, error) {
	id, err := pkg.ParseID(rdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	lotID, err := pkg.ParseID(rdb.LotId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &reservation.Reservation{
		Id:              id,
		LotId:           lotID,
		SpotId:          pkg.ParseIDColumn(rdb.SpotId),
		PlateNumber:     rdb.PlateNumber,
		VehicleType:     shared.VehicleType(rdb.VehicleType),
		StartTime:       rdb.StartTime,
		EndTime:         rdb.EndTime,
		Status:          reservation.Status(rdb.Status),
		EstimatedAmount: rdb.EstimatedAmount,
		Description:     rdb.Description,
		CreatedAt:       rdb.CreatedAt,
		UpdatedAt:       rdb.UpdatedAt,
	}, nil
}

func toDBReservation(r *reservation.Reservation) *reservationDB {
	return &reservationDB{
		Id:              r.Id.String(),
		LotId:           r.LotId.String(),
		SpotId:          pkg.IDPtrString(r.SpotId),
		PlateNumber:     r.PlateNumber,
		VehicleType:     string(r.VehicleType),
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Status:          string(r.Status),
		EstimatedAmount: r.EstimatedAmount,
		Description:     r.Description,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

var holdingStatuses = []string{string(reservation.StatusPending), string(reservation.StatusConfirmed)}

// CreateWithNoOverlap locks the spot row first so concurrent bookings of the
// same spot serialize, then checks for a holding reservation in the window.
func (r *ReservationRepository) CreateWithNoOverlap(ctx context.Context, res *reservation.Reservation) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := toDBReservation(res)
		if row.SpotId != nil {
			var spot spotDB
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", *row.SpotId).
				Take(&spot).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return appErrors.ErrSpotNotFound.WithError(err)
				}
				return appErrors.NewDatabaseError(err)
			}

			var existing reservationDB
			err = tx.Model(&reservationDB{}).
				Where("spot_id = ? AND status IN ?", *row.SpotId, holdingStatuses).
				Where("start_time < ? AND end_time > ?", row.EndTime, row.StartTime).
				Take(&existing).Error
			if err == nil {
				return appErrors.ErrSpotUnavailable.WithDetails(map[string]interface{}{
					"conflicting_reservation": existing.Id,
				})
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return appErrors.NewDatabaseError(err)
			}
		}
		if err := tx.Create(row).Error; err != nil {
			return appErrors.NewDatabaseError(err)
		}
		return nil
	})
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id ulid.ULID, status reservation.Status, at time.Time) (*reservation.Reservation, error) {
	var out *reservation.Reservation
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row reservationDB
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id.String()).
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return appErrors.ErrReservationNotFound.WithError(err)
			}
			return appErrors.NewDatabaseError(err)
		}
		from := reservation.Status(row.Status)
		if !reservation.CanTransition(from, status) {
			return appErrors.ErrInvalidTransition.WithDetails(map[string]interface{}{
				"from": string(from),
				"to":   string(status),
			})
		}
		err = tx.Model(&reservationDB{}).
			Where("id = ?", row.Id).
			Updates(map[string]interface{}{"status": string(status), "updated_at": at}).Error
		if err != nil {
			return appErrors.NewDatabaseError(err)
		}
		row.Status = string(status)
		row.UpdatedAt = at
		out, err = toDomainReservation(&row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id ulid.ULID) (*reservation.Reservation, error) {
	var rdb reservationDB
	if err := r.DB.WithContext(ctx).Where("id = ?", id.String()).First(&rdb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrReservationNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainReservation(&rdb)
}

func (r *ReservationRepository) List(ctx context.Context, filter reservation.Filter, page query.Page) (*query.Result[*reservation.Reservation], error) {
	q := query.New[reservationDB](r.DB, "reservations").Context(ctx)
	if filter.LotId != nil {
		q.Where("lot_id = ?", filter.LotId.String())
	}
	if filter.SpotId != nil {
		q.Where("spot_id = ?", filter.SpotId.String())
	}
	q.EqualIf("plate_number", filter.PlateNumber)
	if filter.Status != nil {
		q.Where("status = ?", string(*filter.Status))
	}
	// windows touching [From, To)
	if filter.From != nil {
		q.Where("end_time > ?", *filter.From)
	}
	if filter.To != nil {
		q.Where("start_time < ?", *filter.To)
	}
	q.Order("start_time ASC")

	res, err := query.Paginate(q, page, toDomainReservation)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}
