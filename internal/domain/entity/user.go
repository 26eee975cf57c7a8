package entity

import "time"

// User is the application's own row for a registered student. The identity
// platform keeps credentials; this table keeps registration details.
type User struct {
	ID                 string     `gorm:"type:uuid;primaryKey" json:"id"`
	Email              string     `gorm:"size:255;not null" json:"email"`
	FirstName          string     `gorm:"size:100;not null" json:"first_name"`
	LastName           string     `gorm:"size:100;not null" json:"last_name"`
	EduEmail           string     `gorm:"size:255;not null" json:"edu_email"`
	EduEmailVerified   bool       `gorm:"not null" json:"edu_email_verified"`
	EduEmailVerifiedAt *time.Time `json:"edu_email_verified_at"`
	University         string     `gorm:"size:255;not null" json:"university"`
	Major              string     `gorm:"size:255;not null" json:"major"`
	GraduationYear     *int       `json:"graduation_year"`
	IsActive           bool       `gorm:"not null;default:true" json:"is_active"`
	IsVerified         bool       `gorm:"not null" json:"is_verified"`
	LastLogin          *time.Time `json:"last_login"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
