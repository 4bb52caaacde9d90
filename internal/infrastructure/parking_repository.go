package infrastructure

import (
	"context"
	"errors"
	"time"

	"Parking/internal/domain/parking"
	"Parking/internal/domain/shared"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type ParkingRepository struct {
	DB *gorm.DB
}

type lotDB struct {
	Id        string    `gorm:"type:varchar(26);primaryKey"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Address   string    `gorm:"type:text"`
	Capacity  int       `gorm:"not null;default:0"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

func (lotDB) TableName() string {
	return "parking_lots"
}

type spotDB struct {
	Id          string    `gorm:"type:varchar(26);primaryKey"`
	LotId       string    `gorm:"type:varchar(26);not null;uniqueIndex:idx_spots_lot_code"`
	Code        string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_spots_lot_code"`
	VehicleType string    `gorm:"type:varchar(20)"`
	IsOccupied  bool      `gorm:"not null;default:false"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;not null"`
}

func (spotDB) TableName() string {
	return "parking_spots"
}

func toDomainLot(ldb *lotDB) (*parking.Lot, error) {
	id, err := pkg.ParseID(ldb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &parking.Lot{
		Id:        id,
		Name:      ldb.Name,
		Address:   ldb.Address,
		Capacity:  ldb.Capacity,
		IsActive:  ldb.IsActive,
		CreatedAt: ldb.CreatedAt,
		UpdatedAt: ldb.UpdatedAt,
	}, nil
}

func toDBLot(l *parking.Lot) *lotDB {
	return &lotDB{
		Id:        l.Id.String(),
		Name:      l.Name,
		Address:   l.Address,
		Capacity:  l.Capacity,
		IsActive:  l.IsActive,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func toDomainSpot(sdb *spotDB) (*parking.Spot, error) {
	id, err := pkg.ParseID(sdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	lotID, err := pkg.ParseID(sdb.LotId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &parking.Spot{
		Id:          id,
		LotId:       lotID,
		Code:        sdb.Code,
		VehicleType: shared.VehicleType(sdb.VehicleType),
		IsOccupied:  sdb.IsOccupied,
		IsActive:    sdb.IsActive,
		CreatedAt:   sdb.CreatedAt,
		UpdatedAt:   sdb.UpdatedAt,
	}, nil
}

func toDBSpot(s *parking.Spot) *spotDB {
	return &spotDB{
		Id:          s.Id.String(),
		LotId:       s.LotId.String(),
		Code:        s.Code,
		VehicleType: string(s.VehicleType),
		IsOccupied:  s.IsOccupied,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (r *ParkingRepository) CreateLot(ctx context.Context, lot *parking.Lot) error {
	if err := r.DB.WithContext(ctx).Create(toDBLot(lot)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *ParkingRepository) UpdateLot(ctx context.Context, lot *parking.Lot) error {
	ldb := toDBLot(lot)
	if err := r.DB.WithContext(ctx).Model(&lotDB{}).Where("id = ?", ldb.Id).Select("*").Omit("created_at").Updates(ldb).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

// DeleteLot removes the lot together with its spots.
func (r *ParkingRepository) DeleteLot(ctx context.Context, id ulid.ULID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lot_id = ?", id.String()).Delete(&spotDB{}).Error; err != nil {
			return appErrors.NewDatabaseError(err)
		}
		result := tx.Where("id = ?", id.String()).Delete(&lotDB{})
		if result.Error != nil {
			return appErrors.NewDatabaseError(result.Error)
		}
		if result.RowsAffected == 0 {
			return appErrors.ErrLotNotFound
		}
		return nil
	})
}

func (r *ParkingRepository) GetLot(ctx context.Context, id ulid.ULID) (*parking.Lot, error) {
	var ldb lotDB
	if err := r.DB.WithContext(ctx).Where("id = ?", id.String()).First(&ldb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrLotNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainLot(&ldb)
}

func (r *ParkingRepository) ListLots(ctx context.Context, page query.Page) (*query.Result[*parking.Lot], error) {
	q := query.New[lotDB](r.DB, "parking_lots").Context(ctx).Order("name ASC")
	res, err := query.Paginate(q, page, toDomainLot)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}

func (r *ParkingRepository) CreateSpot(ctx context.Context, spot *parking.Spot) error {
	if err := r.DB.WithContext(ctx).Create(toDBSpot(spot)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *ParkingRepository) UpdateSpot(ctx context.Context, spot *parking.Spot) error {
	sdb := toDBSpot(spot)
	if err := r.DB.WithContext(ctx).Model(&spotDB{}).Where("id = ?", sdb.Id).Select("*").Omit("created_at").Updates(sdb).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *ParkingRepository) GetSpot(ctx context.Context, id ulid.ULID) (*parking.Spot, error) {
	var sdb spotDB
	if err := r.DB.WithContext(ctx).Where("id = ?", id.String()).First(&sdb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrSpotNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainSpot(&sdb)
}

func (r *ParkingRepository) ListSpots(ctx context.Context, lotID ulid.ULID) ([]*parking.Spot, error) {
	q := query.New[spotDB](r.DB, "parking_spots").Context(ctx).
		Where("lot_id = ?", lotID.String()).
		Order("code ASC")
	rows, err := query.All(q, toDomainSpot)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return rows, nil
}

// Occupy is a compare-and-set on is_occupied so two gates cannot claim the same spot.
func (r *ParkingRepository) Occupy(ctx context.Context, spotID ulid.ULID) error {
	result := r.DB.WithContext(ctx).Model(&spotDB{}).
		Where("id = ? AND is_active = ? AND is_occupied = ?", spotID.String(), true, false).
		Update("is_occupied", true)
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrSpotUnavailable
	}
	return nil
}

func (r *ParkingRepository) Release(ctx context.Context, spotID ulid.ULID) error {
	err := r.DB.WithContext(ctx).Model(&spotDB{}).
		Where("id = ?", spotID.String()).
		Update("is_occupied", false).Error
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}
