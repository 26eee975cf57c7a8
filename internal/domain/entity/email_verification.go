package entity

import (
	"strings"
	"time"
)

// VerificationPurpose tells which of the two registration addresses a code was issued for.
type VerificationPurpose string

const (
	PurposeEdu      VerificationPurpose = "edu"
	PurposePersonal VerificationPurpose = "personal"
)

// MaxVerificationAttempts is the number of wrong codes accepted before a record locks.
const MaxVerificationAttempts = 5

// EmailVerification is the single outstanding code for an email address.
// A new issue for the same address replaces the row.
type EmailVerification struct {
	Email     string              `gorm:"primaryKey;size:255" json:"email"`
	Code      string              `gorm:"size:6;not null" json:"-"`
	Purpose   VerificationPurpose `gorm:"size:16;not null" json:"purpose"`
	Attempts  int                 `gorm:"not null" json:"attempts"`
	CreatedAt time.Time           `gorm:"not null" json:"created_at"`
	ExpiresAt time.Time           `gorm:"not null;index" json:"expires_at"`
}

func (EmailVerification) TableName() string {
	return "email_verifications"
}

// IsExpired reports whether now is strictly after the expiry instant.
func (e *EmailVerification) IsExpired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// IsLocked reports whether the attempt ceiling has been reached.
func (e *EmailVerification) IsLocked() bool {
	return e.Attempts >= MaxVerificationAttempts
}

// AttemptsRemaining returns how many wrong codes are still accepted.
func (e *EmailVerification) AttemptsRemaining() int {
	left := MaxVerificationAttempts - e.Attempts
	if left < 0 {
		return 0
	}
	return left
}

// NormalizeEmail lower-cases and trims an address. Every store access goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
