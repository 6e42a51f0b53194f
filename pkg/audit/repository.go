package audit

import (
	"context"
	"time"

	"github.com/chi-bristol/icca-curation/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Record struct {
	ID         string            `json:"id" gorm:"primaryKey;column:id"`
	EventType  string            `json:"event_type" gorm:"column:event_type"`
	Source     string            `json:"source" gorm:"column:source"`
	Details    datatypes.JSONMap `json:"details" gorm:"column:details"`
	OccurredAt time.Time         `json:"occurred_at" gorm:"column:occurred_at"`
	CreatedAt  time.Time         `json:"created_at" gorm:"column:created_at"`
}

func (Record) TableName() string {
	return "query_audit_events"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Record{})
}

func (r *Repository) Store(ctx context.Context, event models.Event) error {
	record := Record{
		ID:         event.ID,
		EventType:  event.Type,
		Source:     event.Source,
		Details:    datatypes.JSONMap(event.Data),
		OccurredAt: event.Timestamp,
		CreatedAt:  time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []Record
	err := r.db.WithContext(ctx).Order("occurred_at DESC").Limit(limit).Find(&records).Error
	return records, err
}
