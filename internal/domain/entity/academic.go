package entity

import "time"

// Institution is a college or university in the transfer catalog.
type Institution struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	ShortName     string    `gorm:"size:100;not null" json:"short_name"`
	Type          string    `gorm:"size:50;not null" json:"type"`
	SystemName    string    `gorm:"size:100" json:"system_name"`
	State         string    `gorm:"size:2" json:"state"`
	AssistOrgName string    `gorm:"size:255" json:"assist_org_name"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Institution) TableName() string {
	return "institutions"
}

// Major is an academic program.
type Major struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Category     string    `gorm:"size:100" json:"category"`
	TypicalUnits int       `json:"typical_units"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Major) TableName() string {
	return "majors"
}

// Course is a catalog course offered by one institution.
type Course struct {
	ID              string      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseCode      string      `gorm:"size:50;not null" json:"course_code"`
	CourseName      string      `gorm:"size:255;not null" json:"course_name"`
	Description     string      `gorm:"type:text" json:"description"`
	Units           float64     `gorm:"not null" json:"units"`
	InstitutionID   string      `gorm:"type:uuid;not null;index" json:"institution_id"`
	InstitutionName string      `gorm:"size:255" json:"institution_name"`
	Category        string      `gorm:"size:100" json:"category"`
	SubjectArea     string      `gorm:"size:20" json:"subject_area"`
	Prerequisites   StringArray `gorm:"type:jsonb;not null" json:"prerequisites"`
	Transferable    bool        `gorm:"not null;default:false" json:"transferable"`
	TypicalQuarters StringArray `gorm:"type:jsonb;not null" json:"typical_quarters"`
	CreatedAt       time.Time   `json:"created_at"`

	Institution *Institution `gorm:"foreignKey:InstitutionID" json:"institutions,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// AcademicProfile holds a student's transfer plan inputs.
type AcademicProfile struct {
	ID                      string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                  string    `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CurrentInstitutionName  string    `gorm:"size:255" json:"current_institution_name"`
	CurrentMajorName        string    `gorm:"size:255" json:"current_major_name"`
	CurrentGPA              *float64  `gorm:"column:current_gpa;type:numeric(3,2)" json:"current_gpa"`
	TargetInstitutionName   string    `gorm:"size:255" json:"target_institution_name"`
	TargetMajorName         string    `gorm:"size:255" json:"target_major_name"`
	ExpectedTransferYear    *int      `json:"expected_transfer_year"`
	ExpectedTransferQuarter string    `gorm:"size:20" json:"expected_transfer_quarter"`
	IsComplete              bool      `gorm:"not null;default:false" json:"is_complete"`
	MaxUnitsPerQuarter      int       `gorm:"not null;default:16" json:"max_units_per_quarter"`
	PreferredStudyIntensity string    `gorm:"size:20;not null;default:moderate" json:"preferred_study_intensity"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func (AcademicProfile) TableName() string {
	return "academic_profiles"
}

// Default planning preferences for newly created profiles.
const (
	DefaultMaxUnitsPerQuarter = 16
	DefaultStudyIntensity     = "moderate"
)
