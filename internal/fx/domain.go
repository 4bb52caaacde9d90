package fx

import (
	"time"

	"Parking/config"
	"Parking/internal/domain/auth"
	"Parking/internal/domain/credit"
	"Parking/internal/domain/holiday"
	"Parking/internal/domain/parking"
	"Parking/internal/domain/payment"
	"Parking/internal/domain/report"
	"Parking/internal/domain/reservation"
	"Parking/internal/domain/session"
	"Parking/internal/domain/tariff"
	"Parking/internal/domain/user"
	"Parking/internal/domain/vehicle"
	"Parking/internal/infrastructure"
	"Parking/internal/logger"
	"Parking/internal/notifier"

	"go.uber.org/fx"
)

var DomainModule = fx.Module("domain",
	fx.Provide(
		newUserService,
		auth.NewService,
		newHolidayService,
		newTariffService,
		newCreditService,
		newVehicleService,
		newParkingService,
		newSessionService,
		newReservationService,
		newPaymentService,
		newReportService,
	),
	fx.Invoke(
		linkCalendarCache,
	),
)

func newUserService(repo *infrastructure.UserRepository) *user.Service {
	return user.NewService(repo)
}

func newHolidayService(repo *infrastructure.HolidayRepository, loc *time.Location) *holiday.Service {
	return holiday.NewService(repo, loc)
}

func newTariffService(repo *infrastructure.TariffRepository, holidays *holiday.Service) *tariff.Service {
	return tariff.NewService(repo, holidays)
}

// linkCalendarCache closes the loop between holidays and tariffs: the tariff
// snapshot embeds the calendar, so holiday writes must drop it.
func linkCalendarCache(holidays *holiday.Service, tariffs *tariff.Service) {
	holidays.Invalidator = tariffs
}

func newCreditService(repo *infrastructure.CreditRepository, n notifier.Notifier, loc *time.Location) *credit.Service {
	return credit.NewService(repo, n, loc)
}

func newVehicleService(repo *infrastructure.VehicleRepository) *vehicle.Service {
	return vehicle.NewService(repo)
}

func newParkingService(repo *infrastructure.ParkingRepository, counter *infrastructure.OccupancyCounter) *parking.Service {
	return parking.NewService(repo, counter)
}

func newSessionService(
	repo *infrastructure.SessionRepository,
	tariffs *tariff.Service,
	ledger *credit.Service,
	vehicles *vehicle.Service,
	spots *parking.Service,
) *session.Service {
	return session.NewService(repo, tariffs, ledger, vehicles, spots)
}

func newReservationService(
	repo *infrastructure.ReservationRepository,
	tariffs *tariff.Service,
	lots *parking.Service,
	events notifier.Publisher,
) *reservation.Service {
	return reservation.NewService(repo, tariffs, lots, events)
}

func newPaymentService(
	cfg *config.Config,
	repo *infrastructure.PaymentRepository,
	gw payment.Gateway,
	sessions *session.Service,
	ledger *credit.Service,
) *payment.Service {
	logger.Info().Str("gateway", gw.Name()).Msg("payment gateway ready")
	currency := cfg.Payment.Currency
	if currency == "" {
		currency = cfg.App.Currency
	}
	return payment.NewService(repo, gw, sessions, ledger, currency)
}

func newReportService(repo *infrastructure.ReportRepository, loc *time.Location) *report.Service {
	return report.NewService(repo, loc)
}
