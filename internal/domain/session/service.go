package session

import (
	"context"
	"strings"
	"time"

	"Parking/internal/domain/credit"
	"Parking/internal/domain/shared"
	"Parking/internal/domain/tariff"
	"Parking/internal/domain/vehicle"
	appErrors "Parking/internal/errors"
	"Parking/internal/logger"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
)

type Pricer interface {
	Calculate(ctx context.Context, entry, exit time.Time, vt shared.VehicleType) (*tariff.Quote, error)
}

type CreditLedger interface {
	Deduct(ctx context.Context, accountID ulid.ULID, in credit.DeductInput) (*credit.Outcome, error)
}

type VehicleFinder interface {
	GetByPlate(ctx context.Context, plate string) (*vehicle.Vehicle, error)
}

type SpotManager interface {
	Admit(ctx context.Context, lotID ulid.ULID, spotID *ulid.ULID, vt shared.VehicleType) error
	Release(ctx context.Context, spotID ulid.ULID) error
}

type Service struct {
	Repository Repository
	Pricer     Pricer
	Credit     CreditLedger
	Vehicles   VehicleFinder
	Spots      SpotManager
	Clock      func() time.Time
}

func NewService(repo Repository, pricer Pricer, ledger CreditLedger, vehicles VehicleFinder, spots SpotManager) *Service {
	return &Service{
		Repository: repo,
		Pricer:     pricer,
		Credit:     ledger,
		Vehicles:   vehicles,
		Spots:      spots,
		Clock:      time.Now,
	}
}

type EntryRequest struct {
	PlateNumber     string
	VehicleType     shared.VehicleType
	EntryTime       *time.Time
	LotId           *ulid.ULID
	SpotId          *ulid.ULID
	CreditAccountId *ulid.ULID
	Camera          string
	Description     string
}

type ExitRequest struct {
	ExitTime      *time.Time
	PaymentMethod PaymentMethod
	// PaidAmount is what the cashier collected; defaults to the full fee.
	PaidAmount    *int64
	AllowNegative bool
	Camera        string
}

func (s *Service) Entry(ctx context.Context, req *EntryRequest) (*Session, error) {
	plate := shared.NormalizePlate(req.PlateNumber)
	if plate == "" {
		return nil, appErrors.NewValidationError("plate_number", "is required")
	}

	vt := req.VehicleType
	accountID := req.CreditAccountId
	var vehicleID *ulid.ULID

	if s.Vehicles != nil {
		v, err := s.Vehicles.GetByPlate(ctx, plate)
		switch {
		case err == nil:
			if v.IsBlacklisted {
				return nil, appErrors.ErrVehicleBlacklisted.WithDetails(map[string]interface{}{"plate_number": plate})
			}
			if vt == "" {
				vt = v.VehicleType
			}
			if accountID == nil {
				accountID = v.CreditAccountId
			}
			vehicleID = &v.Id
		case appErrors.HasCode(err, appErrors.ErrVehicleNotFound.Code):
		default:
			return nil, err
		}
	}
	if !vt.IsValid() {
		return nil, appErrors.NewValidationError("vehicle_type", "is invalid")
	}

	active, err := s.Repository.FindActiveByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, appErrors.NewConflictError("active session for plate").WithDetails(map[string]interface{}{
			"plate_number": plate,
			"session_id":   active.Id.String(),
		})
	}

	if req.SpotId != nil && req.LotId == nil {
		return nil, appErrors.NewValidationError("lot_id", "is required when spot_id is set")
	}
	if req.LotId != nil && s.Spots != nil {
		if err := s.Spots.Admit(ctx, *req.LotId, req.SpotId, vt); err != nil {
			return nil, err
		}
	}

	now := s.now()
	entry := now
	if req.EntryTime != nil {
		entry = *req.EntryTime
	}

	sess := &Session{
		Id:              pkg.NewID(),
		PlateNumber:     plate,
		VehicleType:     vt,
		VehicleId:       vehicleID,
		EntryTime:       entry,
		Status:          StatusActive,
		CreditAccountId: accountID,
		LotId:           req.LotId,
		SpotId:          req.SpotId,
		EntryCamera:     strings.TrimSpace(req.Camera),
		Description:     strings.TrimSpace(req.Description),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repository.Create(ctx, sess); err != nil {
		s.releaseSpot(ctx, sess)
		if shared.IsUniqueConstraintError(err) {
			return nil, appErrors.NewConflictError("active session for plate")
		}
		return nil, err
	}

	logger.Info().
		Str("session_id", sess.Id.String()).
		Str("plate_number", plate).
		Str("vehicle_type", string(vt)).
		Msg("vehicle entered")
	return sess, nil
}

// Exit prices a session, settles it with the chosen payment method and
// completes it. The session is claimed before any credit is deducted, so a
// repeated exit for the same session fails with ErrSessionNotActive. A failed
// credit deduction reopens the session.
func (s *Service) Exit(ctx context.Context, id ulid.ULID, req *ExitRequest) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusActive {
		return nil, notActive(sess.Status)
	}
	if !req.PaymentMethod.IsValid() {
		return nil, appErrors.NewValidationError("payment_method", "is invalid")
	}
	if req.PaymentMethod == PaymentCredit && sess.CreditAccountId == nil {
		return nil, appErrors.NewValidationError("payment_method", "session has no linked credit account")
	}

	now := s.now()
	exit := now
	if req.ExitTime != nil {
		exit = *req.ExitTime
	}
	if exit.Before(sess.EntryTime) {
		return nil, appErrors.NewValidationError("exit_time", "must not be before entry_time")
	}

	quote, err := s.Pricer.Calculate(ctx, sess.EntryTime, exit, sess.VehicleType)
	if err != nil {
		return nil, err
	}
	amount := quote.Fee.Amount

	var paid int64
	switch req.PaymentMethod {
	case PaymentCredit:
		paid = amount
	case PaymentCash, PaymentCard:
		paid = amount
		if req.PaidAmount != nil {
			if *req.PaidAmount < 0 {
				return nil, appErrors.NewValidationError("paid_amount", "must not be negative")
			}
			paid = *req.PaidAmount
		}
	case PaymentOnline:
		paid = 0
	}

	active := *sess
	tariffID := quote.Tariff.Id
	sess.ExitTime = &exit
	sess.DurationMinutes = quote.Fee.DurationMinutes
	sess.TariffId = &tariffID
	sess.TotalAmount = amount
	sess.PaidAmount = paid
	sess.PaymentMethod = req.PaymentMethod
	sess.ExitCamera = strings.TrimSpace(req.Camera)
	sess.Status = StatusCompleted
	sess.UpdatedAt = now

	won, err := s.Repository.Transition(ctx, sess, StatusActive)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, notActive(StatusCompleted)
	}

	if req.PaymentMethod == PaymentCredit && amount > 0 {
		if _, err := s.Credit.Deduct(ctx, *sess.CreditAccountId, credit.DeductInput{
			Amount:        amount,
			Description:   "پارکینگ " + sess.PlateNumber,
			ReferenceId:   sess.Id.String(),
			AllowNegative: req.AllowNegative,
		}); err != nil {
			s.reopen(ctx, sess, &active)
			return nil, err
		}
	}
	s.releaseSpot(ctx, sess)

	logger.Info().
		Str("session_id", sess.Id.String()).
		Str("plate_number", sess.PlateNumber).
		Int("duration_minutes", sess.DurationMinutes).
		Int64("amount", amount).
		Str("payment_method", string(req.PaymentMethod)).
		Msg("vehicle exited")
	return sess, nil
}

func (s *Service) Cancel(ctx context.Context, id ulid.ULID) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusActive {
		return nil, notActive(sess.Status)
	}
	sess.Status = StatusCancelled
	sess.UpdatedAt = s.now()
	won, err := s.Repository.Transition(ctx, sess, StatusActive)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, notActive(StatusCompleted)
	}
	s.releaseSpot(ctx, sess)
	return sess, nil
}

// MarkPaid records an online payment against a completed session.
func (s *Service) MarkPaid(ctx context.Context, id ulid.ULID, amount int64) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusCompleted {
		return nil, notActive(sess.Status)
	}
	sess.PaidAmount += amount
	sess.UpdatedAt = s.now()
	won, err := s.Repository.Transition(ctx, sess, StatusCompleted)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, appErrors.ErrInvalidTransition.WithDetails(map[string]interface{}{"session_id": sess.Id.String()})
	}
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id ulid.ULID) (*Session, error) {
	sess, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		if appErrors.IsAppError(err) {
			return nil, err
		}
		return nil, appErrors.ErrSessionNotFound.WithError(err)
	}
	return sess, nil
}

func (s *Service) List(ctx context.Context, filter Filter, page query.Page) (*query.Result[*Session], error) {
	if filter.PlateNumber != nil {
		plate := shared.NormalizePlate(*filter.PlateNumber)
		filter.PlateNumber = &plate
	}
	return s.Repository.List(ctx, filter, page)
}

// reopen puts a claimed session back to active after its credit deduction failed.
func (s *Service) reopen(ctx context.Context, claimed, active *Session) {
	active.UpdatedAt = s.now()
	won, err := s.Repository.Transition(ctx, active, StatusCompleted)
	if err == nil && won {
		return
	}
	logger.Error().
		Err(err).
		Str("session_id", claimed.Id.String()).
		Int64("amount", claimed.TotalAmount).
		Msg("failed to reopen session after credit deduction failure")
}

func notActive(status Status) error {
	return appErrors.ErrSessionNotActive.WithDetails(map[string]interface{}{"status": string(status)})
}

func (s *Service) releaseSpot(ctx context.Context, sess *Session) {
	if sess.SpotId == nil || s.Spots == nil {
		return
	}
	if err := s.Spots.Release(ctx, *sess.SpotId); err != nil {
		logger.Warn().Err(err).Str("spot_id", sess.SpotId.String()).Msg("failed to release spot")
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}
