package locator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chi-bristol/icca-curation/pkg/audit"
	"github.com/chi-bristol/icca-curation/pkg/common/logger"
	"github.com/chi-bristol/icca-curation/pkg/common/models"
	"github.com/redis/go-redis/v9"
)

var (
	ErrEmptyPattern = errors.New("search pattern is empty")
	ErrUnknownField = errors.New("search field must be long, short or auto")
)

// defaultMaxRows caps searches when no row cap is configured, so a query
// never runs with LIMIT 0.
const defaultMaxRows = 500

type definitionSearcher interface {
	SearchLongLabel(ctx context.Context, pattern string, limit int) ([]models.InterventionMatch, error)
	SearchShortLabel(ctx context.Context, pattern string, limit int) ([]models.InterventionMatch, error)
}

type Service struct {
	repo     definitionSearcher
	cache    *redis.Client
	cacheTTL time.Duration
	auditor  *audit.Publisher
	maxRows  int
}

func NewService(repo *Repository, maxRows int, opts ...Option) *Service {
	svc := &Service{repo: repo, maxRows: maxRows}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Search runs the two-field location strategy. The long label is the
// primary search target; abbreviated short labels are overloaded ("hr" is
// both heart rate and hour) so they are only consulted on request or when
// the long-label search comes back empty.
func (s *Service) Search(ctx context.Context, req models.SearchRequest) (models.SearchResult, error) {
	pattern := strings.TrimSpace(req.Pattern)
	if pattern == "" {
		return models.SearchResult{}, ErrEmptyPattern
	}
	if !strings.Contains(pattern, "%") {
		pattern = "%" + pattern + "%"
	}

	field := strings.ToLower(strings.TrimSpace(req.Field))
	if field == "" {
		field = models.FieldAuto
	}

	maxRows := s.maxRows
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}
	limit := req.Limit
	if limit <= 0 || limit > maxRows {
		limit = maxRows
	}

	if cached, ok := s.fromCache(ctx, field, pattern, limit); ok {
		return cached, nil
	}

	result := models.SearchResult{Pattern: pattern}

	switch field {
	case models.FieldLong:
		matches, err := s.repo.SearchLongLabel(ctx, pattern, limit)
		if err != nil {
			return models.SearchResult{}, err
		}
		result.FieldSearched = models.FieldLong
		result.Matches = matches
	case models.FieldShort:
		matches, err := s.repo.SearchShortLabel(ctx, pattern, limit)
		if err != nil {
			return models.SearchResult{}, err
		}
		result.FieldSearched = models.FieldShort
		result.Matches = matches
	case models.FieldAuto:
		matches, err := s.repo.SearchLongLabel(ctx, pattern, limit)
		if err != nil {
			return models.SearchResult{}, err
		}
		result.FieldSearched = models.FieldLong
		result.Matches = matches
		if len(matches) == 0 {
			matches, err = s.repo.SearchShortLabel(ctx, pattern, limit)
			if err != nil {
				return models.SearchResult{}, err
			}
			result.FieldSearched = models.FieldShort
			result.Matches = matches
		}
	default:
		return models.SearchResult{}, ErrUnknownField
	}

	s.toCache(ctx, field, pattern, limit, result)

	s.auditor.Record(ctx, audit.OpLocate, map[string]interface{}{
		"pattern": pattern,
		"field":   result.FieldSearched,
		"matches": len(result.Matches),
	})

	return result, nil
}

func cacheKey(field, pattern string, limit int) string {
	return fmt.Sprintf("locator:%s:%s:%d", field, pattern, limit)
}

func (s *Service) fromCache(ctx context.Context, field, pattern string, limit int) (models.SearchResult, bool) {
	if s.cache == nil {
		return models.SearchResult{}, false
	}
	payload, err := s.cache.Get(ctx, cacheKey(field, pattern, limit)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).Debug("locator cache read failed")
		}
		return models.SearchResult{}, false
	}
	var result models.SearchResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return models.SearchResult{}, false
	}
	result.Cached = true
	return result, true
}

func (s *Service) toCache(ctx context.Context, field, pattern string, limit int, result models.SearchResult) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(field, pattern, limit), payload, s.cacheTTL).Err(); err != nil {
		logger.Log.WithError(err).Debug("locator cache write failed")
	}
}

type Option func(*Service)

// WithCache enables result caching. The locator is read-idempotent against
// an unchanged replica, so a short TTL only trades staleness after a
// definition refresh.
func WithCache(client *redis.Client, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = client
		s.cacheTTL = ttl
	}
}

func WithAudit(publisher *audit.Publisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}
