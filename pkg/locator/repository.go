package locator

import (
	"context"

	"github.com/chi-bristol/icca-curation/pkg/common/models"
	"gorm.io/gorm"
)

// Repository searches the D_Intervention definition table on the reporting
// replica. Both queries are plain substring matches; relevance judgement
// stays with the analyst.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

const (
	longLabelQuery = `SELECT "interventionId" AS intervention_id, "longLabel" AS long_label, "shortLabel" AS short_label ` +
		`FROM "D_Intervention" WHERE lower("longLabel") LIKE lower(?) ORDER BY "interventionId" LIMIT ?`

	shortLabelQuery = `SELECT "interventionId" AS intervention_id, "longLabel" AS long_label, "shortLabel" AS short_label ` +
		`FROM "D_Intervention" WHERE lower("shortLabel") LIKE lower(?) ORDER BY "interventionId" LIMIT ?`
)

func (r *Repository) SearchLongLabel(ctx context.Context, pattern string, limit int) ([]models.InterventionMatch, error) {
	return r.search(ctx, longLabelQuery, pattern, limit)
}

func (r *Repository) SearchShortLabel(ctx context.Context, pattern string, limit int) ([]models.InterventionMatch, error) {
	return r.search(ctx, shortLabelQuery, pattern, limit)
}

func (r *Repository) search(ctx context.Context, query, pattern string, limit int) ([]models.InterventionMatch, error) {
	var rows []models.InterventionMatch
	if err := r.db.WithContext(ctx).Raw(query, pattern, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
