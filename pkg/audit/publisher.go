package audit

import (
	"context"
	"time"

	"github.com/chi-bristol/icca-curation/pkg/common/kafka"
	"github.com/chi-bristol/icca-curation/pkg/common/logger"
)

// Operation names recorded against the reporting replica. Information
// governance requires every patient-level query to leave a trail.
const (
	OpLocate  = "intervention.locate"
	OpResolve = "attribute.resolve"
	OpPlan    = "harmonization.plan"
)

type Publisher struct {
	producer *kafka.Producer
	source   string
}

func NewPublisher(producer *kafka.Producer, source string) *Publisher {
	return &Publisher{producer: producer, source: source}
}

// Record publishes a query-audit event. Failures are logged and swallowed:
// an unreachable broker must never block an analyst's query.
func (p *Publisher) Record(ctx context.Context, operation string, details map[string]interface{}) {
	if p == nil || p.producer == nil {
		return
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	details["operation"] = operation
	details["recorded_at"] = time.Now().UTC()

	if err := p.producer.PublishEvent(ctx, operation, p.source, details); err != nil {
		logger.Log.WithError(err).WithField("operation", operation).Warn("query audit event not published")
	}
}
