package fx

import (
	"context"

	"Parking/config"
	"Parking/internal/infrastructure"
	"Parking/internal/logger"
	"Parking/internal/notifier"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var InfrastructureModule = fx.Module("infrastructure",
	fx.Provide(
		newDatabase,
		newUserRepository,
		newTariffRepository,
		newHolidayRepository,
		newVehicleRepository,
		newParkingRepository,
		newOccupancyCounter,
		newSessionRepository,
		newReservationRepository,
		newPaymentRepository,
		newReportRepository,
		infrastructure.NewCreditRepository,
		newDatabasePinger,
		infrastructure.NewPaymentGateway,
		newPublisher,
		newNotifier,
	),
)

func newDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := infrastructure.NewDb(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return db, nil
}

func newUserRepository(db *gorm.DB) *infrastructure.UserRepository {
	return &infrastructure.UserRepository{DB: db}
}

func newTariffRepository(db *gorm.DB) *infrastructure.TariffRepository {
	return &infrastructure.TariffRepository{DB: db}
}

func newHolidayRepository(db *gorm.DB) *infrastructure.HolidayRepository {
	return &infrastructure.HolidayRepository{DB: db}
}

func newVehicleRepository(db *gorm.DB) *infrastructure.VehicleRepository {
	return &infrastructure.VehicleRepository{DB: db}
}

func newParkingRepository(db *gorm.DB) *infrastructure.ParkingRepository {
	return &infrastructure.ParkingRepository{DB: db}
}

func newOccupancyCounter(db *gorm.DB) *infrastructure.OccupancyCounter {
	return &infrastructure.OccupancyCounter{DB: db}
}

func newSessionRepository(db *gorm.DB) *infrastructure.SessionRepository {
	return &infrastructure.SessionRepository{DB: db}
}

func newReservationRepository(db *gorm.DB) *infrastructure.ReservationRepository {
	return &infrastructure.ReservationRepository{DB: db}
}

func newPaymentRepository(db *gorm.DB) *infrastructure.PaymentRepository {
	return &infrastructure.PaymentRepository{DB: db}
}

func newReportRepository(db *gorm.DB) *infrastructure.ReportRepository {
	return &infrastructure.ReportRepository{DB: db}
}

func newDatabasePinger(db *gorm.DB) *infrastructure.DatabasePinger {
	return &infrastructure.DatabasePinger{DB: db}
}

// newPublisher connects to RabbitMQ when the amqp driver is selected and
// falls back to logging otherwise.
func newPublisher(lc fx.Lifecycle, cfg *config.Config) (notifier.Publisher, error) {
	if cfg.Notifier.Driver != "amqp" {
		return notifier.LogPublisher{}, nil
	}
	pub, err := notifier.NewAMQPPublisher(cfg.Notifier.AMQPURL, cfg.Notifier.Exchange)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("exchange", cfg.Notifier.Exchange).Msg("amqp publisher connected")
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return pub.Close()
		},
	})
	return pub, nil
}

func newNotifier(cfg *config.Config, pub notifier.Publisher) notifier.Notifier {
	var sender notifier.Sender = notifier.ConsoleSender{}
	if cfg.Notifier.Driver == "amqp" {
		sender = &notifier.AMQPSender{Publisher: pub}
	}
	return notifier.NewDispatcher(sender)
}
