package dto

// SendEduVerificationRequest starts verification of a student address.
type SendEduVerificationRequest struct {
	EduEmail  string `json:"eduEmail" binding:"required,email"`
	FirstName string `json:"firstName" binding:"omitempty,max=100"`
}

// SendPersonalVerificationRequest starts verification of a personal address.
type SendPersonalVerificationRequest struct {
	PersonalEmail string `json:"personalEmail" binding:"required,email"`
	FirstName     string `json:"firstName" binding:"omitempty,max=100"`
}

// VerifyEduCodeRequest submits the code sent to a student address.
type VerifyEduCodeRequest struct {
	EduEmail string `json:"eduEmail" binding:"required,email"`
	Code     string `json:"code" binding:"required"`
}

// VerifyPersonalCodeRequest submits the code sent to a personal address.
type VerifyPersonalCodeRequest struct {
	PersonalEmail string `json:"personalEmail" binding:"required,email"`
	Code          string `json:"code" binding:"required"`
}

// SendWelcomeEmailRequest asks for the welcome or dual-verification-complete email.
type SendWelcomeEmailRequest struct {
	PersonalEmail string `json:"personalEmail" binding:"required,email"`
	FirstName     string `json:"firstName" binding:"required,max=100"`
	EduEmail      string `json:"eduEmail" binding:"omitempty,email"`
	EmailType     string `json:"emailType" binding:"omitempty"`
}

// SendVerificationResponse acknowledges an issued code.
type SendVerificationResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ExpiresIn int    `json:"expiresIn"`
}

// VerifyCodeResponse acknowledges a consumed code.
type VerifyCodeResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Verified bool   `json:"verified"`
}

// EmailSentResponse acknowledges a delivered email.
type EmailSentResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

// PasswordResetRequest asks for a recovery email.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// FixEduVerificationRequest forces the edu verification flag of an account.
type FixEduVerificationRequest struct {
	Email    string `json:"email" binding:"required,email"`
	EduEmail string `json:"eduEmail" binding:"omitempty,email"`
}

// RegisterRequest creates a users row for a student.
type RegisterRequest struct {
	Email          string `json:"email"`
	FirstName      string `json:"firstName" binding:"max=100"`
	LastName       string `json:"lastName" binding:"max=100"`
	EduEmail       string `json:"eduEmail"`
	University     string `json:"university" binding:"max=255"`
	Major          string `json:"major" binding:"max=255"`
	GraduationYear *int   `json:"graduationYear"`
}

// RegisteredUser is the public view of a new users row.
type RegisteredUser struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	EduEmail         string `json:"eduEmail"`
	EduEmailVerified bool   `json:"eduEmailVerified"`
	University       string `json:"university"`
	Major            string `json:"major"`
	GraduationYear   *int   `json:"graduationYear"`
}

// RegisterResponse acknowledges a registration.
type RegisterResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    RegisteredUser `json:"user"`
}

// AccountEmailRequest names an account by its login email.
type AccountEmailRequest struct {
	Email string `json:"email" binding:"required"`
}
