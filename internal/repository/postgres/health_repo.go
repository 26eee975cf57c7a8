package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// probeTables lists the tables the diagnostics are allowed to count.
var probeTables = map[string]struct{}{
	"email_verifications": {},
	"institutions":        {},
	"majors":              {},
	"courses":             {},
	"academic_profiles":   {},
	"users":               {},
}

type HealthRepo struct {
	db *gorm.DB
}

func NewHealthRepo(db *gorm.DB) *HealthRepo {
	return &HealthRepo{db: db}
}

func (r *HealthRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *HealthRepo) ProbeTable(ctx context.Context, table string) (int64, error) {
	if _, ok := probeTables[table]; !ok {
		return 0, fmt.Errorf("table %q is not probeable", table)
	}
	var count int64
	if err := r.db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to probe table %s: %w", table, err)
	}
	return count, nil
}
