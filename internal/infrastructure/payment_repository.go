package infrastructure

import (
	"context"
	"errors"
	"time"

	"Parking/internal/domain/payment"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	DB *gorm.DB
}

type paymentDB struct {
	Id             string     `gorm:"type:varchar(26);primaryKey"`
	SessionId      *string    `gorm:"type:varchar(26);index:idx_payments_session"`
	AccountId      *string    `gorm:"type:varchar(26);index:idx_payments_account"`
	Amount         int64      `gorm:"not null"`
	Currency       string     `gorm:"type:varchar(3);not null"`
	Status         string     `gorm:"type:varchar(10);not null;index:idx_payments_status"`
	Gateway        string     `gorm:"type:varchar(20);not null"`
	Authority      string     `gorm:"type:varchar(100);uniqueIndex:idx_payments_authority"`
	RedirectURL    string     `gorm:"type:text"`
	ReferenceId    string     `gorm:"type:varchar(100)"`
	GatewayMessage string     `gorm:"type:text"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;not null"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime;not null"`
	PaidAt         *time.Time `gorm:""`
	AppliedAt      *time.Time `gorm:""`
}

func (paymentDB) TableName() string {
	return "payments"
}

func toDomainPayment(pdb *paymentDB) (*payment.Payment, error) {
	id, err := pkg.ParseID(pdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &payment.Payment{
		Id:             id,
		SessionId:      pkg.ParseIDColumn(pdb.SessionId),
		AccountId:      pkg.ParseIDColumn(pdb.AccountId),
		Amount:         pdb.Amount,
		Currency:       pdb.Currency,
		Status:         payment.Status(pdb.Status),
		Gateway:        pdb.Gateway,
		Authority:      pdb.Authority,
		RedirectURL:    pdb.RedirectURL,
		ReferenceId:    pdb.ReferenceId,
		GatewayMessage: pdb.GatewayMessage,
		CreatedAt:      pdb.CreatedAt,
		UpdatedAt:      pdb.UpdatedAt,
		PaidAt:         pdb.PaidAt,
		AppliedAt:      pdb.AppliedAt,
	}, nil
}

func toDBPayment(p *payment.Payment) *paymentDB {
	return &paymentDB{
		Id:             p.Id.String(),
		SessionId:      pkg.IDPtrString(p.SessionId),
		AccountId:      pkg.IDPtrString(p.AccountId),
		Amount:         p.Amount,
		Currency:       p.Currency,
		Status:         string(p.Status),
		Gateway:        p.Gateway,
		Authority:      p.Authority,
		RedirectURL:    p.RedirectURL,
		ReferenceId:    p.ReferenceId,
		GatewayMessage: p.GatewayMessage,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		PaidAt:         p.PaidAt,
		AppliedAt:      p.AppliedAt,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if err := r.DB.WithContext(ctx).Create(toDBPayment(p)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id ulid.ULID) (*payment.Payment, error) {
	return r.first(ctx, "id = ?", id.String())
}

func (r *PaymentRepository) GetByAuthority(ctx context.Context, authority string) (*payment.Payment, error) {
	return r.first(ctx, "authority = ?", authority)
}

func (r *PaymentRepository) first(ctx context.Context, cond string, arg interface{}) (*payment.Payment, error) {
	var pdb paymentDB
	if err := r.DB.WithContext(ctx).Where(cond, arg).First(&pdb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrPaymentNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainPayment(&pdb)
}

// Settle only touches rows still PENDING, so a second callback for the same
// authority reports false and leaves the stored verdict alone.
func (r *PaymentRepository) Settle(ctx context.Context, p *payment.Payment) (bool, error) {
	result := r.DB.WithContext(ctx).Model(&paymentDB{}).
		Where("id = ? AND status = ?", p.Id.String(), string(payment.StatusPending)).
		Updates(map[string]interface{}{
			"status":          string(p.Status),
			"reference_id":    p.ReferenceId,
			"gateway_message": p.GatewayMessage,
			"paid_at":         p.PaidAt,
			"updated_at":      p.UpdatedAt,
		})
	if result.Error != nil {
		return false, appErrors.NewDatabaseError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *PaymentRepository) ClaimApply(ctx context.Context, id ulid.ULID, at time.Time) (bool, error) {
	result := r.DB.WithContext(ctx).Model(&paymentDB{}).
		Where("id = ? AND status = ? AND applied_at IS NULL", id.String(), string(payment.StatusPaid)).
		Updates(map[string]interface{}{"applied_at": at, "updated_at": at})
	if result.Error != nil {
		return false, appErrors.NewDatabaseError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *PaymentRepository) ReleaseApply(ctx context.Context, id ulid.ULID) error {
	err := r.DB.WithContext(ctx).Model(&paymentDB{}).
		Where("id = ?", id.String()).
		Update("applied_at", nil).Error
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *PaymentRepository) List(ctx context.Context, filter payment.Filter, page query.Page) (*query.Result[*payment.Payment], error) {
	q := query.New[paymentDB](r.DB, "payments").Context(ctx)
	if filter.SessionId != nil {
		q.Where("session_id = ?", filter.SessionId.String())
	}
	if filter.AccountId != nil {
		q.Where("account_id = ?", filter.AccountId.String())
	}
	if filter.Status != nil {
		q.Where("status = ?", string(*filter.Status))
	}
	q.Between("created_at", filter.From, filter.To)
	q.Order("created_at DESC")

	res, err := query.Paginate(q, page, toDomainPayment)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}
