package infrastructure

import (
	"context"
	"errors"
	"time"

	"Parking/internal/domain/holiday"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type HolidayRepository struct {
	DB *gorm.DB
}

type holidayDB struct {
	Id          string    `gorm:"type:varchar(26);primaryKey"`
	Date        time.Time `gorm:"type:date;not null;index:idx_holidays_date"`
	Name        string    `gorm:"type:varchar(100);not null"`
	Type        string    `gorm:"type:varchar(20);not null"`
	IsRecurring bool      `gorm:"not null;default:false"`
	IsActive    bool      `gorm:"not null;default:true"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;not null"`
}

func (holidayDB) TableName() string {
	return "holidays"
}

func toDomainHoliday(hdb *holidayDB) (*holiday.Holiday, error) {
	id, err := pkg.ParseID(hdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &holiday.Holiday{
		Id:          id,
		Date:        hdb.Date,
		Name:        hdb.Name,
		Type:        holiday.Type(hdb.Type),
		IsRecurring: hdb.IsRecurring,
		IsActive:    hdb.IsActive,
		Description: hdb.Description,
		CreatedAt:   hdb.CreatedAt,
		UpdatedAt:   hdb.UpdatedAt,
	}, nil
}

func toDBHoliday(h *holiday.Holiday) *holidayDB {
	// a date column keeps only the calendar components
	y, m, d := h.Date.Date()
	return &holidayDB{
		Id:          h.Id.String(),
		Date:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Name:        h.Name,
		Type:        string(h.Type),
		IsRecurring: h.IsRecurring,
		IsActive:    h.IsActive,
		Description: h.Description,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

func (r *HolidayRepository) Create(ctx context.Context, h *holiday.Holiday) error {
	if err := r.DB.WithContext(ctx).Create(toDBHoliday(h)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *HolidayRepository) Update(ctx context.Context, h *holiday.Holiday) error {
	hdb := toDBHoliday(h)
	if err := r.DB.WithContext(ctx).Model(&holidayDB{}).Where("id = ?", hdb.Id).Select("*").Omit("created_at").Updates(hdb).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *HolidayRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result := r.DB.WithContext(ctx).Where("id = ?", id.String()).Delete(&holidayDB{})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrHolidayNotFound
	}
	return nil
}

func (r *HolidayRepository) GetByID(ctx context.Context, id ulid.ULID) (*holiday.Holiday, error) {
	var hdb holidayDB
	if err := r.DB.WithContext(ctx).Where("id = ?", id.String()).First(&hdb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrHolidayNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainHoliday(&hdb)
}

func (r *HolidayRepository) List(ctx context.Context, filter holiday.Filter, page query.Page) (*query.Result[*holiday.Holiday], error) {
	q := query.New[holidayDB](r.DB, "holidays").Context(ctx)
	if filter.Type != nil {
		q.Where("type = ?", string(*filter.Type))
	}
	q.WhereIf(filter.IsActive != nil, "is_active = ?", deref(filter.IsActive))
	q.Between("date", filter.From, filter.To)
	q.Order("date ASC")

	res, err := query.Paginate(q, page, toDomainHoliday)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}

func (r *HolidayRepository) ListActive(ctx context.Context) ([]*holiday.Holiday, error) {
	q := query.New[holidayDB](r.DB, "holidays").Context(ctx).Where("is_active = ?", true)
	rows, err := query.All(q, toDomainHoliday)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return rows, nil
}
