package harmonization

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNoSnapshots = errors.New("no catalog snapshots stored")

// SnapshotRecord is one stored version of the variable catalog, taken when
// a plan is cut so the mapping a study used can be reproduced later.
type SnapshotRecord struct {
	ID        string            `json:"id" gorm:"primaryKey;column:id"`
	Variables datatypes.JSONMap `json:"variables" gorm:"column:variables"`
	CreatedAt time.Time         `json:"created_at" gorm:"column:created_at"`
}

func (SnapshotRecord) TableName() string {
	return "variable_catalog_snapshots"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&SnapshotRecord{})
}

// SaveSnapshot stores the catalog as it stands and returns the snapshot id.
func (r *Repository) SaveSnapshot(ctx context.Context, catalog Catalog) (string, error) {
	payload, err := json.Marshal(catalog.Variables)
	if err != nil {
		return "", err
	}
	var variables datatypes.JSONMap
	if err := json.Unmarshal(payload, &variables); err != nil {
		return "", err
	}

	record := SnapshotRecord{
		ID:        uuid.New().String(),
		Variables: variables,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", err
	}
	return record.ID, nil
}

// LatestSnapshot restores the most recently stored catalog.
func (r *Repository) LatestSnapshot(ctx context.Context) (Catalog, error) {
	var record SnapshotRecord
	err := r.db.WithContext(ctx).Order("created_at DESC").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Catalog{}, ErrNoSnapshots
		}
		return Catalog{}, err
	}

	payload, err := json.Marshal(record.Variables)
	if err != nil {
		return Catalog{}, err
	}
	var variables map[string]Variable
	if err := json.Unmarshal(payload, &variables); err != nil {
		return Catalog{}, err
	}
	return Catalog{Variables: variables}, nil
}
