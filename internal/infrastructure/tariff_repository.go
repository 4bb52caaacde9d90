package infrastructure

import (
	"context"
	"errors"
	"time"

	"Parking/internal/domain/shared"
	"Parking/internal/domain/tariff"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type TariffRepository struct {
	DB *gorm.DB
}

type tariffDB struct {
	Id            string     `gorm:"type:varchar(26);primaryKey"`
	Name          string     `gorm:"type:varchar(100);not null"`
	Description   string     `gorm:"type:text"`
	VehicleType   string     `gorm:"type:varchar(20);not null;index:idx_tariffs_vehicle_active"`
	EntranceFee   int64      `gorm:"not null;default:0"`
	FreeMinutes   int        `gorm:"not null;default:0"`
	HourlyRate    int64      `gorm:"not null;default:0"`
	DailyRate     int64      `gorm:"not null;default:0"`
	NightlyRate   int64      `gorm:"not null;default:0"`
	DailyCap      *int64     `gorm:""`
	NightlyCap    *int64     `gorm:""`
	WeeklyCap     *int64     `gorm:""`
	MonthlyCap    *int64     `gorm:""`
	IsHolidayRate bool       `gorm:"not null;default:false"`
	IsWeekendRate bool       `gorm:"not null;default:false"`
	ValidFrom     time.Time  `gorm:"not null"`
	ValidTo       *time.Time `gorm:""`
	IsActive      bool       `gorm:"not null;default:true;index:idx_tariffs_vehicle_active"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;not null"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime;not null"`
}

func (tariffDB) TableName() string {
	return "tariffs"
}

func toDomainTariff(tdb *tariffDB) (*tariff.Tariff, error) {
	id, err := pkg.ParseID(tdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}

	return &tariff.Tariff{
		Id:            id,
		Name:          tdb.Name,
		Description:   tdb.Description,
		VehicleType:   shared.VehicleType(tdb.VehicleType),
		EntranceFee:   tdb.EntranceFee,
		FreeMinutes:   tdb.FreeMinutes,
		HourlyRate:    tdb.HourlyRate,
		DailyRate:     tdb.DailyRate,
		NightlyRate:   tdb.NightlyRate,
		DailyCap:      tdb.DailyCap,
		NightlyCap:    tdb.NightlyCap,
		WeeklyCap:     tdb.WeeklyCap,
		MonthlyCap:    tdb.MonthlyCap,
		IsHolidayRate: tdb.IsHolidayRate,
		IsWeekendRate: tdb.IsWeekendRate,
		ValidFrom:     tdb.ValidFrom,
		ValidTo:       tdb.ValidTo,
		IsActive:      tdb.IsActive,
		CreatedAt:     tdb.CreatedAt,
		UpdatedAt:     tdb.UpdatedAt,
	}, nil
}

func toDBTariff(t *tariff.Tariff) *tariffDB {
	return &tariffDB{
		Id:            t.Id.String(),
		Name:          t.Name,
		Description:   t.Description,
		VehicleType:   string(t.VehicleType),
		EntranceFee:   t.EntranceFee,
		FreeMinutes:   t.FreeMinutes,
		HourlyRate:    t.HourlyRate,
		DailyRate:     t.DailyRate,
		NightlyRate:   t.NightlyRate,
		DailyCap:      t.DailyCap,
		NightlyCap:    t.NightlyCap,
		WeeklyCap:     t.WeeklyCap,
		MonthlyCap:    t.MonthlyCap,
		IsHolidayRate: t.IsHolidayRate,
		IsWeekendRate: t.IsWeekendRate,
		ValidFrom:     t.ValidFrom,
		ValidTo:       t.ValidTo,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (r *TariffRepository) Create(ctx context.Context, t *tariff.Tariff) error {
	if err := r.DB.WithContext(ctx).Create(toDBTariff(t)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *TariffRepository) Update(ctx context.Context, t *tariff.Tariff) error {
	tdb := toDBTariff(t)
	if err := r.DB.WithContext(ctx).Model(&tariffDB{}).Where("id = ?", tdb.Id).Select("*").Omit("created_at").Updates(tdb).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *TariffRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result := r.DB.WithContext(ctx).Where("id = ?", id.String()).Delete(&tariffDB{})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrTariffNotFound
	}
	return nil
}

func (r *TariffRepository) GetByID(ctx context.Context, id ulid.ULID) (*tariff.Tariff, error) {
	var tdb tariffDB
	if err := r.DB.WithContext(ctx).Where("id = ?", id.String()).First(&tdb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrTariffNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainTariff(&tdb)
}

func (r *TariffRepository) List(ctx context.Context, filter tariff.Filter, page query.Page) (*query.Result[*tariff.Tariff], error) {
	q := query.New[tariffDB](r.DB, "tariffs").Context(ctx)
	if filter.VehicleType != nil {
		q.Where("vehicle_type = ?", string(*filter.VehicleType))
	}
	q.WhereIf(filter.IsActive != nil, "is_active = ?", deref(filter.IsActive))
	q.WhereIf(filter.IsHolidayRate != nil, "is_holiday_rate = ?", deref(filter.IsHolidayRate))
	q.WhereIf(filter.IsWeekendRate != nil, "is_weekend_rate = ?", deref(filter.IsWeekendRate))
	if filter.Search != nil && *filter.Search != "" {
		q.Where("name ILIKE ?", "%"+*filter.Search+"%")
	}
	q.Order("created_at DESC")

	res, err := query.Paginate(q, page, toDomainTariff)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}

func (r *TariffRepository) ListActive(ctx context.Context) ([]*tariff.Tariff, error) {
	q := query.New[tariffDB](r.DB, "tariffs").Context(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC")
	rows, err := query.All(q, toDomainTariff)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return rows, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
