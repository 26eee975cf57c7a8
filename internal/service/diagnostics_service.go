package service

import (
	"context"
	"time"

	"github.com/yourusername/univio-api/internal/domain/repository"
	"go.uber.org/zap"
)

// DiagnosticTables are probed by TableStatus.
var DiagnosticTables = []string{"email_verifications", "institutions", "majors", "courses", "academic_profiles", "users"}

// NamedSample is a short institution or major sample.
type NamedSample struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Category string `json:"category,omitempty"`
}

// EntitySummary counts a table and shows a few rows.
type EntitySummary struct {
	Count  int64         `json:"count"`
	Sample []NamedSample `json:"sample"`
}

// DatabaseReport is the result of CheckDatabase.
type DatabaseReport struct {
	Institutions EntitySummary `json:"institutions"`
	Majors       EntitySummary `json:"majors"`
	// Cleanup carries expiredCodesDeleted: the deleted count, or "failed".
	Cleanup   map[string]interface{} `json:"cleanup"`
	CheckedAt time.Time              `json:"-"`
}

// DatabaseCheckError names the step that failed.
type DatabaseCheckError struct {
	Step string
	Err  error
}

func (e *DatabaseCheckError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

func (e *DatabaseCheckError) Unwrap() error {
	return e.Err
}

// TableStatus is the probe result of one table.
type TableStatus struct {
	Exists      bool   `json:"exists"`
	SampleCount int64  `json:"sample_count,omitempty"`
	Error       string `json:"error,omitempty"`
}

type DiagnosticsService struct {
	health       repository.HealthRepository
	catalog      repository.CatalogRepository
	verification *VerificationService
	log          *zap.Logger
}

func NewDiagnosticsService(
	health repository.HealthRepository,
	catalog repository.CatalogRepository,
	verification *VerificationService,
	log *zap.Logger,
) *DiagnosticsService {
	return &DiagnosticsService{health: health, catalog: catalog, verification: verification, log: log.Named("diagnostics")}
}

// Ping checks database connectivity.
func (s *DiagnosticsService) Ping(ctx context.Context) error {
	return s.health.Ping(ctx)
}

// CheckDatabase reads institutions and majors and runs a cleanup pass.
// A cleanup failure is reported in the result rather than returned.
func (s *DiagnosticsService) CheckDatabase(ctx context.Context) (*DatabaseReport, error) {
	report := &DatabaseReport{CheckedAt: time.Now().UTC()}

	count, err := s.catalog.CountInstitutions(ctx)
	if err != nil {
		return nil, &DatabaseCheckError{Step: "institutions", Err: err}
	}
	institutions, err := s.catalog.ListInstitutions(ctx, 3)
	if err != nil {
		return nil, &DatabaseCheckError{Step: "institutions", Err: err}
	}
	report.Institutions = EntitySummary{Count: count, Sample: make([]NamedSample, 0, len(institutions))}
	for _, i := range institutions {
		report.Institutions.Sample = append(report.Institutions.Sample, NamedSample{Name: i.Name, Type: i.Type})
	}

	count, err = s.catalog.CountMajors(ctx)
	if err != nil {
		return nil, &DatabaseCheckError{Step: "majors", Err: err}
	}
	majors, err := s.catalog.ListMajors(ctx, 3)
	if err != nil {
		return nil, &DatabaseCheckError{Step: "majors", Err: err}
	}
	report.Majors = EntitySummary{Count: count, Sample: make([]NamedSample, 0, len(majors))}
	for _, m := range majors {
		report.Majors.Sample = append(report.Majors.Sample, NamedSample{Name: m.Name, Category: m.Category})
	}

	deleted, err := s.verification.CleanupExpired(ctx)
	if err != nil {
		s.log.Warn("cleanup during database check failed", zap.Error(err))
		report.Cleanup = map[string]interface{}{"expiredCodesDeleted": "failed"}
	} else {
		report.Cleanup = map[string]interface{}{"expiredCodesDeleted": deleted}
	}
	return report, nil
}

// TableStatus probes every diagnostic table.
func (s *DiagnosticsService) TableStatus(ctx context.Context) map[string]TableStatus {
	out := make(map[string]TableStatus, len(DiagnosticTables))
	for _, table := range DiagnosticTables {
		count, err := s.health.ProbeTable(ctx, table)
		if err != nil {
			out[table] = TableStatus{Exists: false, Error: err.Error()}
			continue
		}
		out[table] = TableStatus{Exists: true, SampleCount: count}
	}
	return out
}
