package infrastructure

import (
	"context"
	"errors"
	"time"

	"Parking/internal/domain/session"
	"Parking/internal/domain/shared"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

type sessionDB struct {
	Id              string     `gorm:"type:varchar(26);primaryKey"`
	PlateNumber     string     `gorm:"type:varchar(20);not null;index:idx_sessions_plate"`
	VehicleType     string     `gorm:"type:varchar(20);not null"`
	VehicleId       *string    `gorm:"type:varchar(26)"`
	EntryTime       time.Time  `gorm:"not null;index:idx_sessions_entry"`
	ExitTime        *time.Time `gorm:"index:idx_sessions_exit"`
	DurationMinutes int        `gorm:"not null;default:0"`
	TariffId        *string    `gorm:"type:varchar(26)"`
	TotalAmount     int64      `gorm:"not null;default:0"`
	PaidAmount      int64      `gorm:"not null;default:0"`
	Status          string     `gorm:"type:varchar(20);not null;index:idx_sessions_status"`
	PaymentMethod   string     `gorm:"type:varchar(20)"`
	CreditAccountId *string    `gorm:"type:varchar(26);index:idx_sessions_account"`
	LotId           *string    `gorm:"type:varchar(26);index:idx_sessions_lot"`
	SpotId          *string    `gorm:"type:varchar(26)"`
	EntryCamera     string     `gorm:"type:varchar(50)"`
	ExitCamera      string     `gorm:"type:varchar(50)"`
	Description     string     `gorm:"type:text"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;not null"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime;not null"`
}

func (sessionDB) TableName() string {
	return "parking_sessions"
}

func toDomainSession(sdb *sessionDB) (*session.Session, error) {
	id, err := pkg.ParseID(sdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &session.Session{
		Id:              id,
		PlateNumber:     sdb.PlateNumber,
		VehicleType:     shared.VehicleType(sdb.VehicleType),
		VehicleId:       pkg.ParseIDColumn(sdb.VehicleId),
		EntryTime:       sdb.EntryTime,
		ExitTime:        sdb.ExitTime,
		DurationMinutes: sdb.DurationMinutes,
		TariffId:        pkg.ParseIDColumn(sdb.TariffId),
		TotalAmount:     sdb.TotalAmount,
		PaidAmount:      sdb.PaidAmount,
		Status:          session.Status(sdb.Status),
		PaymentMethod:   session.PaymentMethod(sdb.PaymentMethod),
		CreditAccountId: pkg.ParseIDColumn(sdb.CreditAccountId),
		LotId:           pkg.ParseIDColumn(sdb.LotId),
		SpotId:          pkg.ParseIDColumn(sdb.SpotId),
		EntryCamera:     sdb.EntryCamera,
		ExitCamera:      sdb.ExitCamera,
		Description:     sdb.Description,
		CreatedAt:       sdb.CreatedAt,
		UpdatedAt:       sdb.UpdatedAt,
	}, nil
}

func toDBSession(s *session.Session) *sessionDB {
	return &sessionDB{
		Id:              s.Id.String(),
		PlateNumber:     s.PlateNumber,
		VehicleType:     string(s.VehicleType),
		VehicleId:       pkg.IDPtrString(s.VehicleId),
		EntryTime:       s.EntryTime,
		ExitTime:        s.ExitTime,
		DurationMinutes: s.DurationMinutes,
		TariffId:        pkg.IDPtrString(s.TariffId),
		TotalAmount:     s.TotalAmount,
		PaidAmount:      s.PaidAmount,
		Status:          string(s.Status),
		PaymentMethod:   string(s.PaymentMethod),
		CreditAccountId: pkg.IDPtrString(s.CreditAccountId),
		LotId:           pkg.IDPtrString(s.LotId),
		SpotId:          pkg.IDPtrString(s.SpotId),
		EntryCamera:     s.EntryCamera,
		ExitCamera:      s.ExitCamera,
		Description:     s.Description,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	if err := r.DB.WithContext(ctx).Create(toDBSession(s)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

// Transition writes s only while the stored row still has status from and
// reports whether this call made the write.
func (r *SessionRepository) Transition(ctx context.Context, s *session.Session, from session.Status) (bool, error) {
	sdb := toDBSession(s)
	result := r.DB.WithContext(ctx).Model(&sessionDB{}).
		Where("id = ? AND status = ?", sdb.Id, string(from)).
		Select("*").Omit("created_at").
		Updates(sdb)
	if result.Error != nil {
		return false, appErrors.NewDatabaseError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id ulid.ULID) (*session.Session, error) {
	var sdb sessionDB
	if err := r.DB.WithContext(ctx).Where("id = ?", id.String()).First(&sdb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrSessionNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainSession(&sdb)
}

func (r *SessionRepository) FindActiveByPlate(ctx context.Context, plate string) (*session.Session, error) {
	var sdb sessionDB
	err := r.DB.WithContext(ctx).
		Where("plate_number = ? AND status = ?", plate, string(session.StatusActive)).
		Order("entry_time DESC").
		First(&sdb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainSession(&sdb)
}

func (r *SessionRepository) List(ctx context.Context, filter session.Filter, page query.Page) (*query.Result[*session.Session], error) {
	q := query.New[sessionDB](r.DB, "parking_sessions").Context(ctx)
	if filter.Status != nil {
		q.Where("status = ?", string(*filter.Status))
	}
	q.EqualIf("plate_number", filter.PlateNumber)
	if filter.VehicleType != nil {
		q.Where("vehicle_type = ?", string(*filter.VehicleType))
	}
	if filter.PaymentMethod != nil {
		q.Where("payment_method = ?", string(*filter.PaymentMethod))
	}
	if filter.LotId != nil {
		q.Where("lot_id = ?", filter.LotId.String())
	}
	q.Between("entry_time", filter.From, filter.To)
	q.Order("entry_time DESC")

	res, err := query.Paginate(q, page, toDomainSession)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}
