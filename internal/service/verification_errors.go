package service

import (
	"errors"
	"fmt"
)

// Verification flow errors. Handlers map them to HTTP status with errors.Is.
var (
	ErrVerificationNotFound         = errors.New("verification_not_found")
	ErrVerificationExpired          = errors.New("verification_expired")
	ErrVerificationAttemptsExceeded = errors.New("verification_attempts_exceeded")
	ErrInvalidVerificationCode      = errors.New("invalid_verification_code")

	ErrInvalidEmailRequest = errors.New("invalid_email_request")
	ErrEmailDelivery       = errors.New("email_delivery_failed")
)

// InvalidCodeError is returned on a code mismatch. It matches ErrInvalidVerificationCode.
type InvalidCodeError struct {
	Remaining int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("%s: %d attempts remaining", ErrInvalidVerificationCode, e.Remaining)
}

func (e *InvalidCodeError) Is(target error) bool {
	return target == ErrInvalidVerificationCode
}
