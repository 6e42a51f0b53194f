package resolver

import (
	"context"
	"fmt"

	"github.com/chi-bristol/icca-curation/pkg/common/models"
	"gorm.io/gorm"
)

// Params describes one resolver run. FactTable must already be canonical;
// the repository trusts its caller to have gone through the allowlist.
type Params struct {
	FactTable       string
	InterventionIDs []int64
	ClinicalUnitID  *int64
	Limit           int
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ResolveAttributes joins attribute definitions to fact records and counts
// distinct encounters per (intervention, attribute) pair. MIN over the
// label columns picks one representative string per group. Ordering by
// count descending puts the heavily used pairs, the ones most likely to be
// the variable the analyst wants, at the top.
func (r *Repository) ResolveAttributes(ctx context.Context, params Params) ([]models.AttributeUsage, error) {
	query := fmt.Sprintf(`SELECT f."interventionId" AS intervention_id, f."attributeId" AS attribute_id, `+
		`MIN(d."longLabel") AS intervention_label, MIN(a."shortLabel") AS attribute_label, `+
		`MIN(a."conceptLabel") AS concept_label, COUNT(DISTINCT f."encounterId") AS encounter_count `+
		`FROM %q f `+
		`JOIN "D_Attribute" a ON a."attributeId" = f."attributeId" AND a."interventionId" = f."interventionId" `+
		`JOIN "D_Intervention" d ON d."interventionId" = f."interventionId" `+
		`WHERE f."interventionId" IN ?`, params.FactTable)

	args := []interface{}{params.InterventionIDs}
	if params.ClinicalUnitID != nil {
		query += ` AND f."clinicalUnitId" = ?`
		args = append(args, *params.ClinicalUnitID)
	}
	query += ` GROUP BY f."interventionId", f."attributeId" ORDER BY encounter_count DESC LIMIT ?`
	args = append(args, params.Limit)

	var rows []models.AttributeUsage
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
