package infrastructure

import (
	"context"
	"errors"
	"time"

	"Parking/internal/domain/shared"
	"Parking/internal/domain/vehicle"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type VehicleRepository struct {
	DB *gorm.DB
}

type vehicleDB struct {
	Id              string    `gorm:"type:varchar(26);primaryKey"`
	PlateNumber     string    `gorm:"type:varchar(20);uniqueIndex:idx_vehicles_plate;not null"`
	VehicleType     string    `gorm:"type:varchar(20);not null"`
	OwnerName       string    `gorm:"type:varchar(100)"`
	OwnerPhone      string    `gorm:"type:varchar(20)"`
	CreditAccountId *string   `gorm:"type:varchar(26);index:idx_vehicles_account"`
	IsBlacklisted   bool      `gorm:"not null;default:false"`
	Description     string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime;not null"`
}

func (vehicleDB) TableName() string {
	return "vehicles"
}

func toDomainVehicle(vdb *vehicleDB) (*vehicle.Vehicle, error) {
	id, err := pkg.ParseID(vdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	accountID, err := pkg.ParseIDPtr(vdb.CreditAccountId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &vehicle.Vehicle{
		Id:              id,
		PlateNumber:     vdb.PlateNumber,
		VehicleType:     shared.VehicleType(vdb.VehicleType),
		OwnerName:       vdb.OwnerName,
		OwnerPhone:      vdb.OwnerPhone,
		CreditAccountId: accountID,
		IsBlacklisted:   vdb.IsBlacklisted,
		Description:     vdb.Description,
		CreatedAt:       vdb.CreatedAt,
		UpdatedAt:       vdb.UpdatedAt,
	}, nil
}

func toDBVehicle(v *vehicle.Vehicle) *vehicleDB {
	return &vehicleDB{
		Id:              v.Id.String(),
		PlateNumber:     v.PlateNumber,
		VehicleType:     string(v.VehicleType),
		OwnerName:       v.OwnerName,
		OwnerPhone:      v.OwnerPhone,
		CreditAccountId: pkg.IDPtrString(v.CreditAccountId),
		IsBlacklisted:   v.IsBlacklisted,
		Description:     v.Description,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func (r *VehicleRepository) Create(ctx context.Context, v *vehicle.Vehicle) error {
	if err := r.DB.WithContext(ctx).Create(toDBVehicle(v)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *VehicleRepository) Update(ctx context.Context, v *vehicle.Vehicle) error {
	vdb := toDBVehicle(v)
	if err := r.DB.WithContext(ctx).Model(&vehicleDB{}).Where("id = ?", vdb.Id).Select("*").Omit("created_at").Updates(vdb).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *VehicleRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result := r.DB.WithContext(ctx).Where("id = ?", id.String()).Delete(&vehicleDB{})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrVehicleNotFound
	}
	return nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id ulid.ULID) (*vehicle.Vehicle, error) {
	return r.first(ctx, "id = ?", id.String())
}

func (r *VehicleRepository) GetByPlate(ctx context.Context, plate string) (*vehicle.Vehicle, error) {
	return r.first(ctx, "plate_number = ?", plate)
}

func (r *VehicleRepository) first(ctx context.Context, cond string, arg interface{}) (*vehicle.Vehicle, error) {
	var vdb vehicleDB
	if err := r.DB.WithContext(ctx).Where(cond, arg).First(&vdb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrVehicleNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainVehicle(&vdb)
}

func (r *VehicleRepository) List(ctx context.Context, filter vehicle.Filter, page query.Page) (*query.Result[*vehicle.Vehicle], error) {
	q := query.New[vehicleDB](r.DB, "vehicles").Context(ctx)
	if filter.VehicleType != nil {
		q.Where("vehicle_type = ?", string(*filter.VehicleType))
	}
	q.WhereIf(filter.IsBlacklisted != nil, "is_blacklisted = ?", deref(filter.IsBlacklisted))
	if filter.Search != nil && *filter.Search != "" {
		like := "%" + *filter.Search + "%"
		q.Where("plate_number ILIKE ? OR owner_name ILIKE ?", like, like)
	}
	q.Order("created_at DESC")

	res, err := query.Paginate(q, page, toDomainVehicle)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}
