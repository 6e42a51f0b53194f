package harmonization

import (
	"context"
	"errors"
	"sort"

	"github.com/chi-bristol/icca-curation/pkg/audit"
	"github.com/chi-bristol/icca-curation/pkg/common/models"
)

var ErrEmptyCatalog = errors.New("no variables in catalog")

type attributeResolver interface {
	Resolve(ctx context.Context, req models.ResolveRequest) (models.ResolveResult, error)
}

type PlanRequest struct {
	ClinicalUnitID *int64 `json:"clinical_unit_id,omitempty"`
	Limit          int    `json:"limit"`
}

// PlanEntry maps one curated variable onto the definition pairs that feed
// it. EncounterCount sums the per-source counts; sources can share
// encounters, so it is an upper bound, not a distinct count.
type PlanEntry struct {
	Variable       string                  `json:"variable"`
	Display        string                  `json:"display"`
	FactTable      string                  `json:"fact_table"`
	Sources        []models.AttributeUsage `json:"sources"`
	EncounterCount int64                   `json:"encounter_count"`
}

// Plan carries the variable-to-source mapping plus the rows nothing
// claimed. Truncated is set when any per-table resolver run hit its row
// cap: rows beyond the cap are in neither Sources nor Unmapped, so the
// unmapped list is then incomplete.
type Plan struct {
	Entries   []PlanEntry             `json:"entries"`
	Unmapped  []models.AttributeUsage `json:"unmapped"`
	Truncated bool                    `json:"truncated"`
}

type tableGroup struct {
	interventions map[int64]struct{}
	variables     []string
}

type Planner struct {
	catalog  Catalog
	resolver attributeResolver
	auditor  *audit.Publisher
}

func NewPlanner(catalog Catalog, resolver attributeResolver, opts ...Option) *Planner {
	p := &Planner{catalog: catalog, resolver: resolver}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Plan resolves attribute usage for every catalog variable and assigns the
// rows to variables. Rows no variable claims come back as unmapped so the
// analyst can see what the catalog is missing.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (Plan, error) {
	if len(p.catalog.Variables) == 0 {
		return Plan{}, ErrEmptyCatalog
	}

	// One resolver run per fact table, covering every variable that reads it.
	groups := make(map[string]*tableGroup)
	for _, name := range p.catalog.Names() {
		variable := p.catalog.Variables[name]
		group, ok := groups[variable.FactTable]
		if !ok {
			group = &tableGroup{interventions: make(map[int64]struct{})}
			groups[variable.FactTable] = group
		}
		group.variables = append(group.variables, name)
		for _, id := range variable.Interventions {
			group.interventions[id] = struct{}{}
		}
	}

	plan := Plan{}
	for _, table := range sortedKeys(groups) {
		group := groups[table]
		ids := make([]int64, 0, len(group.interventions))
		for id := range group.interventions {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		if len(ids) == 0 {
			// Catalog variables without pinned interventions cannot be
			// resolved; surface them as empty entries.
			for _, name := range group.variables {
				variable := p.catalog.Variables[name]
				plan.Entries = append(plan.Entries, PlanEntry{
					Variable:  name,
					Display:   variable.Display,
					FactTable: table,
				})
			}
			continue
		}

		result, err := p.resolver.Resolve(ctx, models.ResolveRequest{
			InterventionIDs: ids,
			FactTable:       table,
			ClinicalUnitID:  req.ClinicalUnitID,
			Limit:           req.Limit,
		})
		if err != nil {
			return Plan{}, err
		}
		if result.Truncated {
			plan.Truncated = true
		}

		claimed := make([]bool, len(result.Rows))
		for _, name := range group.variables {
			variable := p.catalog.Variables[name]
			entry := PlanEntry{Variable: name, Display: variable.Display, FactTable: table}
			for i, row := range result.Rows {
				if variable.Matches(row) {
					entry.Sources = append(entry.Sources, row)
					entry.EncounterCount += row.EncounterCount
					claimed[i] = true
				}
			}
			plan.Entries = append(plan.Entries, entry)
		}
		for i, row := range result.Rows {
			if !claimed[i] {
				plan.Unmapped = append(plan.Unmapped, row)
			}
		}
	}

	p.auditor.Record(ctx, audit.OpPlan, map[string]interface{}{
		"variables": len(plan.Entries),
		"unmapped":  len(plan.Unmapped),
		"truncated": plan.Truncated,
	})

	return plan, nil
}

func (p *Planner) Catalog() Catalog {
	return p.catalog
}

func sortedKeys(groups map[string]*tableGroup) []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

type Option func(*Planner)

func WithAudit(publisher *audit.Publisher) Option {
	return func(p *Planner) {
		p.auditor = publisher
	}
}
