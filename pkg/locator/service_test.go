package locator

import (
	"context"
	"errors"
	"testing"

	"github.com/chi-bristol/icca-curation/pkg/common/models"
)

type stubSearcher struct {
	long   map[string][]models.InterventionMatch
	short  map[string][]models.InterventionMatch
	calls  []string
	limits []int
}

func (s *stubSearcher) SearchLongLabel(ctx context.Context, pattern string, limit int) ([]models.InterventionMatch, error) {
	s.calls = append(s.calls, "long:"+pattern)
	s.limits = append(s.limits, limit)
	return s.long[pattern], nil
}

func (s *stubSearcher) SearchShortLabel(ctx context.Context, pattern string, limit int) ([]models.InterventionMatch, error) {
	s.calls = append(s.calls, "short:"+pattern)
	s.limits = append(s.limits, limit)
	return s.short[pattern], nil
}

// Non-invasive blood pressure is the documented case where the long label
// finds nothing and only the abbreviated label locates the concept.
func TestSearchAutoFallsBackToShortLabel(t *testing.T) {
	nbpIDs := []int64{3363, 3779, 4001, 7794, 21039}
	matches := make([]models.InterventionMatch, 0, len(nbpIDs))
	for _, id := range nbpIDs {
		matches = append(matches, models.InterventionMatch{InterventionID: id, ShortLabel: "NBP"})
	}

	stub := &stubSearcher{
		long:  map[string][]models.InterventionMatch{},
		short: map[string][]models.InterventionMatch{"%nbp%": matches},
	}
	svc := &Service{repo: stub, maxRows: 100}

	result, err := svc.Search(context.Background(), models.SearchRequest{Pattern: "nbp", Field: models.FieldAuto})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FieldSearched != models.FieldShort {
		t.Fatalf("expected fallback to short label, searched %s", result.FieldSearched)
	}
	if len(result.Matches) != 5 {
		t.Fatalf("expected 5 matches, got %d", len(result.Matches))
	}
	for i, id := range nbpIDs {
		if result.Matches[i].InterventionID != id {
			t.Fatalf("expected intervention %d at position %d, got %d", id, i, result.Matches[i].InterventionID)
		}
	}
	if len(stub.calls) != 2 || stub.calls[0] != "long:%nbp%" || stub.calls[1] != "short:%nbp%" {
		t.Fatalf("expected long search then short search, got %v", stub.calls)
	}
}

func TestSearchAutoPrefersLongLabel(t *testing.T) {
	stub := &stubSearcher{
		long: map[string][]models.InterventionMatch{
			"%heart rate%": {{InterventionID: 1, LongLabel: "Heart Rate"}},
		},
		short: map[string][]models.InterventionMatch{},
	}
	svc := &Service{repo: stub, maxRows: 100}

	result, err := svc.Search(context.Background(), models.SearchRequest{Pattern: "heart rate"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FieldSearched != models.FieldLong {
		t.Fatalf("expected long-label search, got %s", result.FieldSearched)
	}
	if len(stub.calls) != 1 {
		t.Fatalf("short label should not be consulted when long label matches, calls: %v", stub.calls)
	}
}

func TestSearchWrapsBarePatterns(t *testing.T) {
	stub := &stubSearcher{long: map[string][]models.InterventionMatch{}, short: map[string][]models.InterventionMatch{}}
	svc := &Service{repo: stub, maxRows: 10}

	if _, err := svc.Search(context.Background(), models.SearchRequest{Pattern: "glucose", Field: models.FieldLong}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.calls[0] != "long:%glucose%" {
		t.Fatalf("expected pattern wrapped in wildcards, got %v", stub.calls)
	}

	stub.calls = nil
	if _, err := svc.Search(context.Background(), models.SearchRequest{Pattern: "%bp dia%", Field: models.FieldShort}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.calls[0] != "short:%bp dia%" {
		t.Fatalf("explicit wildcards must pass through unchanged, got %v", stub.calls)
	}
}

// With no configured row cap and no request limit, the query must still
// carry a positive LIMIT rather than LIMIT 0 returning nothing.
func TestSearchDefaultsLimitWhenUnconfigured(t *testing.T) {
	stub := &stubSearcher{long: map[string][]models.InterventionMatch{}, short: map[string][]models.InterventionMatch{}}
	svc := &Service{repo: stub}

	if _, err := svc.Search(context.Background(), models.SearchRequest{Pattern: "glucose", Field: models.FieldLong}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stub.limits) != 1 || stub.limits[0] != defaultMaxRows {
		t.Fatalf("expected default limit %d, got %v", defaultMaxRows, stub.limits)
	}
}

func TestSearchRejectsBadInput(t *testing.T) {
	svc := &Service{repo: &stubSearcher{}, maxRows: 10}

	if _, err := svc.Search(context.Background(), models.SearchRequest{Pattern: "  "}); !errors.Is(err, ErrEmptyPattern) {
		t.Fatalf("expected ErrEmptyPattern, got %v", err)
	}
	if _, err := svc.Search(context.Background(), models.SearchRequest{Pattern: "hr", Field: "fuzzy"}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}
