package harmonization

import (
	"context"
	"testing"

	"github.com/chi-bristol/icca-curation/pkg/common/models"
)

type stubResolver struct {
	requests  []models.ResolveRequest
	rows      map[string][]models.AttributeUsage
	truncated bool
}

func (s *stubResolver) Resolve(ctx context.Context, req models.ResolveRequest) (models.ResolveResult, error) {
	s.requests = append(s.requests, req)
	return models.ResolveResult{FactTable: req.FactTable, Rows: s.rows[req.FactTable], Truncated: s.truncated}, nil
}

func TestPlanAssignsRowsAndReportsUnmapped(t *testing.T) {
	catalog := Catalog{Variables: map[string]Variable{
		"norad-rate": {
			Display:       "Noradrenaline infusion rate",
			FactTable:     "PtMedication",
			Interventions: []int64{5321},
			Attribute:     "Dose",
			Units:         []string{"mg/hr"},
		},
		"norad-bolus": {
			Display:       "Noradrenaline bolus",
			FactTable:     "PtMedication",
			Interventions: []int64{5321},
			Attribute:     "Dose",
			Units:         []string{"mg"},
		},
	}}

	stub := &stubResolver{rows: map[string][]models.AttributeUsage{
		"PtMedication": {
			{InterventionID: 5321, AttributeID: 1, AttributeLabel: "Dose", ConceptLabel: "Dose (mg/hr)", EncounterCount: 900},
			{InterventionID: 5321, AttributeID: 2, AttributeLabel: "Dose", ConceptLabel: "Dose (mg)", EncounterCount: 340},
			{InterventionID: 5321, AttributeID: 3, AttributeLabel: "Site", ConceptLabel: "Site", EncounterCount: 120},
		},
	}}

	planner := NewPlanner(catalog, stub)
	plan, err := planner.Plan(context.Background(), PlanRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stub.requests) != 1 {
		t.Fatalf("expected one resolver run for the shared fact table, got %d", len(stub.requests))
	}
	if len(plan.Entries) != 2 {
		t.Fatalf("expected 2 plan entries, got %d", len(plan.Entries))
	}

	byName := map[string]PlanEntry{}
	for _, entry := range plan.Entries {
		byName[entry.Variable] = entry
	}
	rate := byName["norad-rate"]
	if len(rate.Sources) != 1 || rate.Sources[0].AttributeID != 1 || rate.EncounterCount != 900 {
		t.Fatalf("unexpected rate entry: %+v", rate)
	}
	bolus := byName["norad-bolus"]
	if len(bolus.Sources) != 1 || bolus.Sources[0].AttributeID != 2 {
		t.Fatalf("unexpected bolus entry: %+v", bolus)
	}

	if len(plan.Unmapped) != 1 || plan.Unmapped[0].AttributeID != 3 {
		t.Fatalf("expected the Site row to stay unmapped, got %+v", plan.Unmapped)
	}
	if plan.Truncated {
		t.Fatal("plan must not report truncation when the resolver returned everything")
	}
}

// A capped resolver run means rows beyond the cap are in neither Sources
// nor Unmapped; the plan must say so rather than present itself as complete.
func TestPlanSurfacesResolverTruncation(t *testing.T) {
	catalog := Catalog{Variables: map[string]Variable{
		"norad-rate": {
			Display:       "Noradrenaline infusion rate",
			FactTable:     "PtMedication",
			Interventions: []int64{5321},
			Attribute:     "Dose",
			Units:         []string{"mg/hr"},
		},
	}}
	stub := &stubResolver{
		rows: map[string][]models.AttributeUsage{
			"PtMedication": {
				{InterventionID: 5321, AttributeID: 1, AttributeLabel: "Dose", ConceptLabel: "Dose (mg/hr)", EncounterCount: 900},
			},
		},
		truncated: true,
	}

	planner := NewPlanner(catalog, stub)
	plan, err := planner.Plan(context.Background(), PlanRequest{Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.Truncated {
		t.Fatal("expected plan to carry the resolver's truncation signal")
	}
}

func TestPlanEmptyCatalog(t *testing.T) {
	planner := NewPlanner(Catalog{}, &stubResolver{})
	if _, err := planner.Plan(context.Background(), PlanRequest{}); err != ErrEmptyCatalog {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestPlanVariableWithoutInterventions(t *testing.T) {
	catalog := Catalog{Variables: map[string]Variable{
		"unpinned": {Display: "Unpinned variable", FactTable: "PtAssessment", Attribute: "Dose"},
	}}
	stub := &stubResolver{}

	planner := NewPlanner(catalog, stub)
	plan, err := planner.Plan(context.Background(), PlanRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stub.requests) != 0 {
		t.Fatal("no resolver run expected without pinned interventions")
	}
	if len(plan.Entries) != 1 || len(plan.Entries[0].Sources) != 0 {
		t.Fatalf("expected one empty entry, got %+v", plan.Entries)
	}
}
