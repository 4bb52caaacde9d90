package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = NewAppError("NOT_FOUND", "resource not found", http.StatusNotFound)
	ErrUnauthorized       = NewAppError("UNAUTHORIZED", "unauthorized", http.StatusUnauthorized)
	ErrForbidden          = NewAppError("FORBIDDEN", "access denied", http.StatusForbidden)
	ErrBadRequest         = NewAppError("BAD_REQUEST", "invalid request", http.StatusBadRequest)
	ErrInternalServer     = NewAppError("INTERNAL_SERVER_ERROR", "internal server error", http.StatusInternalServerError)
	ErrConflict           = NewAppError("CONFLICT", "resource conflict", http.StatusConflict)
	ErrValidation         = NewAppError("VALIDATION_ERROR", "validation failed", http.StatusBadRequest)
	ErrDatabase           = NewAppError("DATABASE_ERROR", "database error", http.StatusInternalServerError)
	ErrInvalidCredentials = NewAppError("INVALID_CREDENTIALS", "invalid credentials", http.StatusUnauthorized)
	ErrEmailAlreadyExists = NewAppError("EMAIL_ALREADY_EXISTS", "email already registered", http.StatusConflict)
	ErrUserNotFound       = NewAppError("USER_NOT_FOUND", "user not found", http.StatusNotFound)

	ErrTariffNotFound        = NewAppError("TARIFF_NOT_FOUND", "tariff not found", http.StatusNotFound)
	ErrHolidayNotFound       = NewAppError("HOLIDAY_NOT_FOUND", "holiday not found", http.StatusNotFound)
	ErrSessionNotFound       = NewAppError("SESSION_NOT_FOUND", "parking session not found", http.StatusNotFound)
	ErrCreditAccountNotFound = NewAppError("CREDIT_ACCOUNT_NOT_FOUND", "credit account not found", http.StatusNotFound)
	ErrNotificationNotFound  = NewAppError("NOTIFICATION_NOT_FOUND", "notification not found", http.StatusNotFound)
	ErrVehicleNotFound       = NewAppError("VEHICLE_NOT_FOUND", "vehicle not found", http.StatusNotFound)
	ErrLotNotFound           = NewAppError("LOT_NOT_FOUND", "parking lot not found", http.StatusNotFound)
	ErrSpotNotFound          = NewAppError("SPOT_NOT_FOUND", "parking spot not found", http.StatusNotFound)
	ErrReservationNotFound   = NewAppError("RESERVATION_NOT_FOUND", "reservation not found", http.StatusNotFound)
	ErrPaymentNotFound       = NewAppError("PAYMENT_NOT_FOUND", "payment not found", http.StatusNotFound)

	ErrInactiveAccount     = NewAppError("INACTIVE_ACCOUNT", "credit account is not active", http.StatusConflict)
	ErrInsufficientBalance = NewAppError("INSUFFICIENT_BALANCE", "insufficient balance", http.StatusPaymentRequired)
	ErrNoApplicableTariff  = NewAppError("NO_APPLICABLE_TARIFF", "no applicable tariff for this vehicle and time", http.StatusUnprocessableEntity)
	ErrSessionNotActive    = NewAppError("SESSION_NOT_ACTIVE", "parking session is not active", http.StatusConflict)
	ErrSpotUnavailable     = NewAppError("SPOT_UNAVAILABLE", "parking spot is not available for this window", http.StatusConflict)
	ErrPlateAlreadyExists  = NewAppError("PLATE_ALREADY_EXISTS", "plate number already registered", http.StatusConflict)
	ErrLotFull             = NewAppError("LOT_FULL", "parking lot is at capacity", http.StatusConflict)
	ErrVehicleBlacklisted  = NewAppError("VEHICLE_BLACKLISTED", "vehicle is blacklisted", http.StatusForbidden)
	ErrInvalidTransition   = NewAppError("INVALID_STATUS_TRANSITION", "status transition not allowed", http.StatusConflict)
	ErrPaymentGateway      = NewAppError("PAYMENT_GATEWAY_ERROR", "payment gateway error", http.StatusBadGateway)
)

type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Details    map[string]interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so sentinel comparisons survive WithError/WithDetails clones.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	clone := e.clone()
	if details == nil {
		clone.Details = make(map[string]interface{})
		return clone
	}
	clone.Details = make(map[string]interface{}, len(details))
	for k, v := range details {
		clone.Details[k] = v
	}
	return clone
}

func (e *AppError) WithError(err error) *AppError {
	clone := e.clone()
	clone.Err = err
	return clone
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func WrapError(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
		Details:    make(map[string]interface{}),
	}
}

func (e *AppError) clone() *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Details != nil {
		clone.Details = make(map[string]interface{}, len(e.Details))
		for k, v := range e.Details {
			clone.Details[k] = v
		}
	} else {
		clone.Details = make(map[string]interface{})
	}
	return &clone
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func FromError(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound.WithError(err)
	}

	if errors.Is(err, context.Canceled) {
		return WrapError(err, "REQUEST_CANCELED", "request canceled by client", http.StatusRequestTimeout)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return WrapError(err, "REQUEST_TIMEOUT", "request timed out", http.StatusGatewayTimeout)
	}

	return WrapError(err, "UNKNOWN_ERROR", "unknown error", http.StatusInternalServerError)
}

func NewAuthError(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Details:    make(map[string]interface{}),
	}
}

func NewValidationError(field, message string) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    fmt.Sprintf("%s %s", field, message),
		StatusCode: http.StatusBadRequest,
		Details: map[string]interface{}{
			"field": field,
		},
	}
}

func NewDatabaseError(err error) *AppError {
	return WrapError(err, "DATABASE_ERROR", "database operation failed", http.StatusInternalServerError)
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
		Details: map[string]interface{}{
			"resource": resource,
		},
	}
}

func NewConflictError(resource string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    fmt.Sprintf("%s already exists", resource),
		StatusCode: http.StatusConflict,
		Details: map[string]interface{}{
			"resource": resource,
		},
	}
}

func ParseValidationErrors(err error) *AppError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return ErrBadRequest.WithError(err)
	}

	fieldErrors := make([]map[string]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fieldErrors = append(fieldErrors, map[string]string{
			"field":   toSnakeCase(fieldErr.Field()),
			"message": translateValidationError(fieldErr),
		})
	}

	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "request fields failed validation",
		StatusCode: http.StatusBadRequest,
		Details: map[string]interface{}{
			"fields": fieldErrors,
		},
	}
}

func toSnakeCase(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func translateValidationError(fe validator.FieldError) string {
	field := toSnakeCase(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "invalid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", field, toSnakeCase(fe.Param()))
	case "ne":
		return fmt.Sprintf("%s must differ from %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a valid date/time", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "alphanum":
		return fmt.Sprintf("%s must contain only letters and digits", field)
	default:
		return fmt.Sprintf("validation '%s' failed for %s", fe.Tag(), field)
	}
}
