package infrastructure

import (
	"context"
	"errors"
	"time"

	"Parking/internal/domain/credit"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type creditAccountDB struct {
	Id             string     `gorm:"type:varchar(26);primaryKey"`
	OwnerName      string     `gorm:"type:varchar(100);not null"`
	PlateNumber    string     `gorm:"type:varchar(20);index:idx_credit_accounts_plate"`
	Phone          string     `gorm:"type:varchar(20)"`
	Email          string     `gorm:"type:varchar(100)"`
	Balance        int64      `gorm:"not null;default:0"`
	MonthlyLimit   int64      `gorm:"not null;default:0"`
	CreditLimit    int64      `gorm:"not null;default:0"`
	IsActive       bool       `gorm:"not null;default:true;index:idx_credit_accounts_active"`
	AutoCharge     bool       `gorm:"not null;default:false"`
	LastChargedAt  *time.Time `gorm:""`
	NextChargeDate *time.Time `gorm:""`
	Description    string     `gorm:"type:text"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;not null"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime;not null"`
}

func (creditAccountDB) TableName() string { return "credit_accounts" }

type creditSettingsDB struct {
	AccountId            string    `gorm:"type:varchar(26);primaryKey"`
	LowBalanceThreshold  int64     `gorm:"not null"`
	WarningThreshold1    int64     `gorm:"not null"`
	WarningThreshold2    int64     `gorm:"not null"`
	CriticalThreshold    int64     `gorm:"not null"`
	AutoMonthlyCharge    bool      `gorm:"not null;default:false"`
	MonthlyChargeAmount  int64     `gorm:"not null;default:0"`
	ChargeDayOfMonth     int       `gorm:"not null;default:1"`
	EmailEnabled         bool      `gorm:"not null;default:false"`
	SmsEnabled           bool      `gorm:"not null;default:false"`
	InAppEnabled         bool      `gorm:"not null;default:true"`
	SuspendOnZeroBalance bool      `gorm:"not null;default:false"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime;not null"`
}

func (creditSettingsDB) TableName() string { return "credit_account_settings" }

type creditTransactionDB struct {
	Id            string    `gorm:"type:varchar(26);primaryKey"`
	AccountId     string    `gorm:"type:varchar(26);not null;index:idx_credit_transactions_account_created"`
	Amount        int64     `gorm:"not null"`
	Type          string    `gorm:"type:varchar(20);not null;index:idx_credit_transactions_type"`
	BalanceBefore int64     `gorm:"not null"`
	BalanceAfter  int64     `gorm:"not null"`
	Description   string    `gorm:"type:text"`
	ReferenceId   string    `gorm:"type:varchar(64);index:idx_credit_transactions_reference"`
	CreatedAt     time.Time `gorm:"not null;index:idx_credit_transactions_account_created"`
}

func (creditTransactionDB) TableName() string { return "credit_transactions" }

type creditNotificationDB struct {
	Id        string     `gorm:"type:varchar(26);primaryKey"`
	AccountId string     `gorm:"type:varchar(26);not null;index:idx_credit_notifications_dedup"`
	Type      string     `gorm:"type:varchar(40);not null;index:idx_credit_notifications_dedup"`
	Title     string     `gorm:"type:varchar(200);not null"`
	Message   string     `gorm:"type:text"`
	Severity  string     `gorm:"type:varchar(10);not null;index:idx_credit_notifications_dedup"`
	IsRead    bool       `gorm:"not null;default:false"`
	IsSent    bool       `gorm:"not null;default:false"`
	SentAt    *time.Time `gorm:""`
	ReadAt    *time.Time `gorm:""`
	CreatedAt time.Time  `gorm:"not null;index:idx_credit_notifications_dedup"`
}

func (creditNotificationDB) TableName() string { return "credit_notifications" }

type monthlyChargeDB struct {
	Id            string     `gorm:"type:varchar(26);primaryKey"`
	AccountId     string     `gorm:"type:varchar(26);not null;index:idx_monthly_charges_account_month"`
	Amount        int64      `gorm:"not null"`
	Status        string     `gorm:"type:varchar(20);not null"`
	TransactionId *string    `gorm:"type:varchar(26)"`
	ErrorMessage  string     `gorm:"type:text"`
	ChargedFor    string     `gorm:"type:varchar(7);not null;index:idx_monthly_charges_account_month"`
	CreatedAt     time.Time  `gorm:"not null"`
	CompletedAt   *time.Time `gorm:""`
}

func (monthlyChargeDB) TableName() string { return "credit_monthly_charges" }

func toDomainCreditAccount(row *creditAccountDB) (*credit.Account, error) {
	id, err := pkg.ParseID(row.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &credit.Account{
		Id:             id,
		OwnerName:      row.OwnerName,
		PlateNumber:    row.PlateNumber,
		Phone:          row.Phone,
		Email:          row.Email,
		Balance:        row.Balance,
		MonthlyLimit:   row.MonthlyLimit,
		CreditLimit:    row.CreditLimit,
		IsActive:       row.IsActive,
		AutoCharge:     row.AutoCharge,
		LastChargedAt:  row.LastChargedAt,
		NextChargeDate: row.NextChargeDate,
		Description:    row.Description,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

func toDBCreditAccount(a *credit.Account) *creditAccountDB {
	return &creditAccountDB{
		Id:             a.Id.String(),
		OwnerName:      a.OwnerName,
		PlateNumber:    a.PlateNumber,
		Phone:          a.Phone,
		Email:          a.Email,
		Balance:        a.Balance,
		MonthlyLimit:   a.MonthlyLimit,
		CreditLimit:    a.CreditLimit,
		IsActive:       a.IsActive,
		AutoCharge:     a.AutoCharge,
		LastChargedAt:  a.LastChargedAt,
		NextChargeDate: a.NextChargeDate,
		Description:    a.Description,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func toDomainCreditSettings(row *creditSettingsDB) (*credit.Settings, error) {
	id, err := pkg.ParseID(row.AccountId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &credit.Settings{
		AccountId:            id,
		LowBalanceThreshold:  row.LowBalanceThreshold,
		WarningThreshold1:    row.WarningThreshold1,
		WarningThreshold2:    row.WarningThreshold2,
		CriticalThreshold:    row.CriticalThreshold,
		AutoMonthlyCharge:    row.AutoMonthlyCharge,
		MonthlyChargeAmount:  row.MonthlyChargeAmount,
		ChargeDayOfMonth:     row.ChargeDayOfMonth,
		EmailEnabled:         row.EmailEnabled,
		SmsEnabled:           row.SmsEnabled,
		InAppEnabled:         row.InAppEnabled,
		SuspendOnZeroBalance: row.SuspendOnZeroBalance,
		UpdatedAt:            row.UpdatedAt,
	}, nil
}

func toDBCreditSettings(s *credit.Settings) *creditSettingsDB {
	return &creditSettingsDB{
		AccountId:            s.AccountId.String(),
		LowBalanceThreshold:  s.LowBalanceThreshold,
		WarningThreshold1:    s.WarningThreshold1,
		WarningThreshold2:    s.WarningThreshold2,
		CriticalThreshold:    s.CriticalThreshold,
		AutoMonthlyCharge:    s.AutoMonthlyCharge,
		MonthlyChargeAmount:  s.MonthlyChargeAmount,
		ChargeDayOfMonth:     s.ChargeDayOfMonth,
		EmailEnabled:         s.EmailEnabled,
		SmsEnabled:           s.SmsEnabled,
		InAppEnabled:         s.InAppEnabled,
		SuspendOnZeroBalance: s.SuspendOnZeroBalance,
		UpdatedAt:            s.UpdatedAt,
	}
}

func toDomainCreditTransaction(row *creditTransactionDB) (*credit.Transaction, error) {
	id, err := pkg.ParseID(row.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	accountID, err := pkg.ParseID(row.AccountId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &credit.Transaction{
		Id:            id,
		AccountId:     accountID,
		Amount:        row.Amount,
		Type:          credit.TransactionType(row.Type),
		BalanceBefore: row.BalanceBefore,
		BalanceAfter:  row.BalanceAfter,
		Description:   row.Description,
		ReferenceId:   row.ReferenceId,
		CreatedAt:     row.CreatedAt,
	}, nil
}

func toDomainCreditNotification(row *creditNotificationDB) (*credit.Notification, error) {
	id, err := pkg.ParseID(row.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	accountID, err := pkg.ParseID(row.AccountId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &credit.Notification{
		Id:        id,
		AccountId: accountID,
		Type:      credit.NotificationType(row.Type),
		Title:     row.Title,
		Message:   row.Message,
		Severity:  credit.Severity(row.Severity),
		IsRead:    row.IsRead,
		IsSent:    row.IsSent,
		SentAt:    row.SentAt,
		ReadAt:    row.ReadAt,
		CreatedAt: row.CreatedAt,
	}, nil
}

func toDBMonthlyCharge(mc *credit.MonthlyCharge) *monthlyChargeDB {
	return &monthlyChargeDB{
		Id:            mc.Id.String(),
		AccountId:     mc.AccountId.String(),
		Amount:        mc.Amount,
		Status:        string(mc.Status),
		TransactionId: pkg.IDPtrString(mc.TransactionId),
		ErrorMessage:  mc.ErrorMessage,
		ChargedFor:    mc.ChargedFor,
		CreatedAt:     mc.CreatedAt,
		CompletedAt:   mc.CompletedAt,
	}
}

// creditStore runs credit queries against either the pool or an open transaction.
type creditStore struct {
	DB *gorm.DB
}

func (s *creditStore) CreateAccount(ctx context.Context, acc *credit.Account, settings *credit.Settings) error {
	db := s.DB.WithContext(ctx)
	if err := db.Create(toDBCreditAccount(acc)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	if settings != nil {
		if err := db.Create(toDBCreditSettings(settings)).Error; err != nil {
			return appErrors.NewDatabaseError(err)
		}
	}
	return nil
}

func (s *creditStore) LockAccount(ctx context.Context, id ulid.ULID) (*credit.Account, error) {
	var row creditAccountDB
	err := s.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id.String()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrCreditAccountNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainCreditAccount(&row)
}

func (s *creditStore) GetSettings(ctx context.Context, accountID ulid.ULID) (*credit.Settings, error) {
	var row creditSettingsDB
	err := s.DB.WithContext(ctx).Where("account_id = ?", accountID.String()).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainCreditSettings(&row)
}

func (s *creditStore) SaveAccount(ctx context.Context, acc *credit.Account) error {
	row := toDBCreditAccount(acc)
	err := s.DB.WithContext(ctx).Model(&creditAccountDB{}).
		Where("id = ?", row.Id).
		Select("*").Omit("created_at").
		Updates(row).Error
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (s *creditStore) CreateTransaction(ctx context.Context, tx *credit.Transaction) error {
	row := &creditTransactionDB{
		Id:            tx.Id.String(),
		AccountId:     tx.AccountId.String(),
		Amount:        tx.Amount,
		Type:          string(tx.Type),
		BalanceBefore: tx.BalanceBefore,
		BalanceAfter:  tx.BalanceAfter,
		Description:   tx.Description,
		ReferenceId:   tx.ReferenceId,
		CreatedAt:     tx.CreatedAt,
	}
	if err := s.DB.WithContext(ctx).Create(row).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (s *creditStore) CreateNotifications(ctx context.Context, notes []*credit.Notification) error {
	if len(notes) == 0 {
		return nil
	}
	rows := make([]*creditNotificationDB, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, &creditNotificationDB{
			Id:        n.Id.String(),
			AccountId: n.AccountId.String(),
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			Severity:  string(n.Severity),
			IsRead:    n.IsRead,
			IsSent:    n.IsSent,
			SentAt:    n.SentAt,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		})
	}
	if err := s.DB.WithContext(ctx).Create(&rows).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (s *creditStore) HasRecentNotification(ctx context.Context, accountID ulid.ULID, typ credit.NotificationType, severity credit.Severity, since time.Time) (bool, error) {
	exists, err := query.New[creditNotificationDB](s.DB, "credit_notifications").Context(ctx).
		Where("account_id = ? AND type = ? AND severity = ?", accountID.String(), string(typ), string(severity)).
		Where("created_at >= ?", since).
		Exists()
	if err != nil {
		return false, appErrors.NewDatabaseError(err)
	}
	return exists, nil
}

func (s *creditStore) DeleteTransactions(ctx context.Context, accountID ulid.ULID, ids []ulid.ULID) (int64, error) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}
	result := s.DB.WithContext(ctx).
		Where("account_id = ? AND id IN ?", accountID.String(), keys).
		Delete(&creditTransactionDB{})
	if result.Error != nil {
		return 0, appErrors.NewDatabaseError(result.Error)
	}
	return result.RowsAffected, nil
}

func (s *creditStore) LatestTransaction(ctx context.Context, accountID ulid.ULID) (*credit.Transaction, error) {
	var row creditTransactionDB
	err := s.DB.WithContext(ctx).
		Where("account_id = ?", accountID.String()).
		Order("created_at DESC, id DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainCreditTransaction(&row)
}

type CreditRepository struct {
	creditStore
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{creditStore{DB: db}}
}

// Transaction runs fn against a Store bound to one database transaction.
// Rows taken with LockAccount stay locked until fn returns.
func (r *CreditRepository) Transaction(ctx context.Context, fn func(credit.Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&creditStore{DB: tx})
	})
}

func (r *CreditRepository) CreateAccount(ctx context.Context, acc *credit.Account, settings *credit.Settings) error {
	return r.Transaction(ctx, func(st credit.Store) error {
		return st.CreateAccount(ctx, acc, settings)
	})
}

func (r *CreditRepository) GetAccount(ctx context.Context, id ulid.ULID) (*credit.Account, error) {
	var row creditAccountDB
	if err := r.DB.WithContext(ctx).Where("id = ?", id.String()).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrCreditAccountNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainCreditAccount(&row)
}

func (r *CreditRepository) ListAccounts(ctx context.Context, filter credit.AccountFilter, page query.Page) (*query.Result[*credit.Account], error) {
	q := query.New[creditAccountDB](r.DB, "credit_accounts").Context(ctx)
	if filter.Search != nil && *filter.Search != "" {
		like := "%" + *filter.Search + "%"
		q.Where("owner_name ILIKE ? OR plate_number ILIKE ? OR phone ILIKE ?", like, like, like)
	}
	q.WhereIf(filter.IsActive != nil, "is_active = ?", deref(filter.IsActive))
	q.WhereIf(filter.AutoCharge != nil, "auto_charge = ?", deref(filter.AutoCharge))
	q.Order("created_at DESC")

	res, err := query.Paginate(q, page, toDomainCreditAccount)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}

func (r *CreditRepository) ListAutoChargeAccounts(ctx context.Context) ([]*credit.Account, error) {
	q := query.New[creditAccountDB](r.DB, "credit_accounts").Context(ctx).
		Where("is_active = ? AND auto_charge = ?", true, true).
		Order("id ASC")
	rows, err := query.All(q, toDomainCreditAccount)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return rows, nil
}

func (r *CreditRepository) ListActiveAccounts(ctx context.Context) ([]*credit.Account, error) {
	q := query.New[creditAccountDB](r.DB, "credit_accounts").Context(ctx).
		Where("is_active = ?", true).
		Order("id ASC")
	rows, err := query.All(q, toDomainCreditAccount)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return rows, nil
}

func (r *CreditRepository) SaveSettings(ctx context.Context, settings *credit.Settings) error {
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "account_id"}}, UpdateAll: true}).
		Create(toDBCreditSettings(settings)).Error
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *CreditRepository) ListTransactions(ctx context.Context, filter credit.TransactionFilter, page query.Page) (*query.Result[*credit.Transaction], error) {
	q := query.New[creditTransactionDB](r.DB, "credit_transactions").Context(ctx)
	if filter.AccountId != nil {
		q.Where("account_id = ?", filter.AccountId.String())
	}
	if filter.Type != nil {
		q.Where("type = ?", string(*filter.Type))
	}
	q.Between("created_at", filter.From, filter.To)
	q.Order("created_at DESC, id DESC")

	res, err := query.Paginate(q, page, toDomainCreditTransaction)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}

func (r *CreditRepository) ListNotifications(ctx context.Context, filter credit.NotificationFilter, page query.Page) (*query.Result[*credit.Notification], error) {
	q := query.New[creditNotificationDB](r.DB, "credit_notifications").Context(ctx)
	if filter.AccountId != nil {
		q.Where("account_id = ?", filter.AccountId.String())
	}
	if filter.Type != nil {
		q.Where("type = ?", string(*filter.Type))
	}
	if filter.Severity != nil {
		q.Where("severity = ?", string(*filter.Severity))
	}
	q.WhereIf(filter.Unread, "is_read = ?", false)
	q.Order("created_at DESC")

	res, err := query.Paginate(q, page, toDomainCreditNotification)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}

func (r *CreditRepository) GetNotification(ctx context.Context, id ulid.ULID) (*credit.Notification, error) {
	var row creditNotificationDB
	if err := r.DB.WithContext(ctx).Where("id = ?", id.String()).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrNotificationNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainCreditNotification(&row)
}

func (r *CreditRepository) MarkNotificationRead(ctx context.Context, id ulid.ULID, at time.Time) error {
	result := r.DB.WithContext(ctx).Model(&creditNotificationDB{}).
		Where("id = ?", id.String()).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrNotificationNotFound
	}
	return nil
}

func (r *CreditRepository) MarkNotificationsSent(ctx context.Context, ids []ulid.ULID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}
	err := r.DB.WithContext(ctx).Model(&creditNotificationDB{}).
		Where("id IN ?", keys).
		Updates(map[string]interface{}{"is_sent": true, "sent_at": at}).Error
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *CreditRepository) CreateMonthlyCharge(ctx context.Context, mc *credit.MonthlyCharge) error {
	if err := r.DB.WithContext(ctx).Create(toDBMonthlyCharge(mc)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *CreditRepository) UpdateMonthlyCharge(ctx context.Context, mc *credit.MonthlyCharge) error {
	row := toDBMonthlyCharge(mc)
	err := r.DB.WithContext(ctx).Model(&monthlyChargeDB{}).
		Where("id = ?", row.Id).
		Select("status", "transaction_id", "error_message", "completed_at").
		Updates(row).Error
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *CreditRepository) HasCompletedMonthlyCharge(ctx context.Context, accountID ulid.ULID, month string) (bool, error) {
	exists, err := query.New[monthlyChargeDB](r.DB, "credit_monthly_charges").Context(ctx).
		Where("account_id = ? AND charged_for = ? AND status = ?", accountID.String(), month, string(credit.MonthlyChargeCompleted)).
		Exists()
	if err != nil {
		return false, appErrors.NewDatabaseError(err)
	}
	return exists, nil
}
