package infrastructure

import (
	"context"
	"fmt"

	"Parking/config"
	"Parking/internal/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func NewDb(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{}
	if cfg.IsProduction() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
	if err != nil {
		logger.Error().
			Err(err).
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.DBName).
			Msg("failed to connect to database")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error().Err(err).Msg("failed to obtain database handle")
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	logger.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.DBName).
		Msg("database connection established")

	if cfg.Database.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// DatabasePinger backs the health endpoint.
type DatabasePinger struct {
	DB *gorm.DB
}

func (p *DatabasePinger) Ping(ctx context.Context) error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type migration struct {
	name  string
	model interface{}
}

var migrations = []migration{
	{"users", &userDB{}},
	{"tariffs", &tariffDB{}},
	{"holidays", &holidayDB{}},
	{"vehicles", &vehicleDB{}},
	{"parking_lots", &lotDB{}},
	{"parking_spots", &spotDB{}},
	{"parking_sessions", &sessionDB{}},
	{"reservations", &reservationDB{}},
	{"credit_accounts", &creditAccountDB{}},
	{"credit_account_settings", &creditSettingsDB{}},
	{"credit_transactions", &creditTransactionDB{}},
	{"credit_notifications", &creditNotificationDB{}},
	{"credit_monthly_charges", &monthlyChargeDB{}},
	{"payments", &paymentDB{}},
}

// Indexes gorm tags cannot express.
var rawIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_active_plate ON parking_sessions (plate_number) WHERE status = 'ACTIVE'`,
	`CREATE INDEX IF NOT EXISTS idx_credit_accounts_auto_charge ON credit_accounts (next_charge_date) WHERE auto_charge AND is_active`,
}

// Migrate brings the schema up to date. Safe to run repeatedly.
func Migrate(db *gorm.DB) error {
	logger.Info().Msg("running migrations")

	for _, m := range migrations {
		if err := db.AutoMigrate(m.model); err != nil {
			logger.Error().
				Err(err).
				Str("table", m.name).
				Msg("migration failed")
			return fmt.Errorf("migrate %s: %w", m.name, err)
		}
	}

	for _, stmt := range rawIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			logger.Error().Err(err).Str("statement", stmt).Msg("index creation failed")
			return fmt.Errorf("create index: %w", err)
		}
	}

	logger.Info().Int("tables", len(migrations)).Msg("migrations completed")
	return nil
}
