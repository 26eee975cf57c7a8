package dto

// ClearVerificationRequest drops any outstanding code for an email.
type ClearVerificationRequest struct {
	Email string `json:"email" binding:"required"`
}

// TestEmailRequest sends a sample email. Type is "verification" or "welcome".
type TestEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Type  string `json:"type"`
}

// DebugAuthRequest signs in with a password to inspect the account.
type DebugAuthRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// InstitutionCoursesRequest selects one institution.
type InstitutionCoursesRequest struct {
	InstitutionID string `json:"institutionId" binding:"required"`
}

// UpdateProfileRequest is the editable academic profile.
type UpdateProfileRequest struct {
	CurrentInstitution      string `json:"current_institution" binding:"omitempty,max=255"`
	CurrentMajor            string `json:"current_major" binding:"omitempty,max=255"`
	TargetInstitution       string `json:"target_institution" binding:"omitempty,max=255"`
	ExpectedTransferYear    *int   `json:"expected_transfer_year" binding:"omitempty,min=2000,max=2100"`
	ExpectedTransferQuarter string `json:"expected_transfer_quarter" binding:"omitempty,oneof=fall winter spring summer"`
}
