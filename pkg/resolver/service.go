package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/chi-bristol/icca-curation/pkg/audit"
	"github.com/chi-bristol/icca-curation/pkg/common/models"
)

var (
	ErrNoInterventions  = errors.New("at least one intervention id is required")
	ErrUnknownFactTable = errors.New("fact table is not on the allowlist")
	ErrQueryTimeout     = errors.New("reporting query exceeded the configured timeout")
)

// defaultMaxRows caps resolution when no row cap is configured, so the
// aggregation never runs with LIMIT 0.
const defaultMaxRows = 500

type usageResolver interface {
	ResolveAttributes(ctx context.Context, params Params) ([]models.AttributeUsage, error)
}

type Service struct {
	repo    usageResolver
	timeout time.Duration
	maxRows int
	auditor *audit.Publisher
}

func NewService(repo *Repository, timeout time.Duration, maxRows int, opts ...Option) *Service {
	svc := &Service{repo: repo, timeout: timeout, maxRows: maxRows}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Resolve runs the attribute-usage aggregation for a set of located
// interventions. The join is the one unbounded query in the workflow, so it
// always runs under a deadline rather than relying on someone watching it.
func (s *Service) Resolve(ctx context.Context, req models.ResolveRequest) (models.ResolveResult, error) {
	if len(req.InterventionIDs) == 0 {
		return models.ResolveResult{}, ErrNoInterventions
	}
	table, ok := CanonicalFactTable(req.FactTable)
	if !ok {
		return models.ResolveResult{}, ErrUnknownFactTable
	}

	maxRows := s.maxRows
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}
	limit := req.Limit
	if limit <= 0 || limit > maxRows {
		limit = maxRows
	}

	queryCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// Fetch one extra row to detect truncation.
	rows, err := s.repo.ResolveAttributes(queryCtx, Params{
		FactTable:       table,
		InterventionIDs: req.InterventionIDs,
		ClinicalUnitID:  req.ClinicalUnitID,
		Limit:           limit + 1,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(queryCtx.Err(), context.DeadlineExceeded) {
			return models.ResolveResult{}, ErrQueryTimeout
		}
		return models.ResolveResult{}, err
	}

	truncated := false
	if len(rows) > limit {
		rows = rows[:limit]
		truncated = true
	}

	s.auditor.Record(ctx, audit.OpResolve, map[string]interface{}{
		"fact_table":    table,
		"interventions": req.InterventionIDs,
		"rows":          len(rows),
		"truncated":     truncated,
	})

	return models.ResolveResult{FactTable: table, Rows: rows, Truncated: truncated}, nil
}

type Option func(*Service)

func WithAudit(publisher *audit.Publisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}
