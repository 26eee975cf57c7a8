package entity

import "time"

// Metadata keys written by the verification flow. Other keys are owned by the client.
const (
	MetaEduEmail           = "edu_email"
	MetaEduEmailVerified   = "edu_email_verified"
	MetaEduEmailVerifiedAt = "edu_email_verified_at"
	MetaFullName           = "full_name"
	MetaName               = "name"
)

// Account is a user of the identity platform as seen by this service.
type Account struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	Metadata         map[string]interface{} `json:"user_metadata"`
	EmailConfirmedAt *time.Time             `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// MetaString returns a metadata value as a string, or "" when absent or not a string.
func (a *Account) MetaString(key string) string {
	if a == nil || a.Metadata == nil {
		return ""
	}
	s, _ := a.Metadata[key].(string)
	return s
}

// EduEmailVerified reports the stored verification flag.
func (a *Account) EduEmailVerified() bool {
	if a == nil || a.Metadata == nil {
		return false
	}
	v, _ := a.Metadata[MetaEduEmailVerified].(bool)
	return v
}

// DisplayName picks full_name, then name, then the local part of the login email.
func (a *Account) DisplayName() string {
	if n := a.MetaString(MetaFullName); n != "" {
		return n
	}
	if n := a.MetaString(MetaName); n != "" {
		return n
	}
	for i := 0; i < len(a.Email); i++ {
		if a.Email[i] == '@' {
			return a.Email[:i]
		}
	}
	if a.Email != "" {
		return a.Email
	}
	return "User"
}

// MergeMetadata returns a copy of base with updates applied on top. base is not modified.
func MergeMetadata(base, updates map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(updates))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	return merged
}

// Session is the result of a password sign-in.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         *Account `json:"user"`
}
