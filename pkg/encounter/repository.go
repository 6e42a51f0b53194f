package encounter

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNoLinks = errors.New("no encounter links stored")

type CorrectionRecord struct {
	ErroneousID    int64     `gorm:"primaryKey;column:erroneous_id"`
	AdjustedID     int64     `gorm:"column:adjusted_id"`
	ClinicalUnitID int       `gorm:"column:clinical_unit_id"`
	Explanation    string    `gorm:"column:explanation"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (CorrectionRecord) TableName() string {
	return "encounter_corrections"
}

type LinkRecord struct {
	ICNARCNumber int64     `gorm:"primaryKey;column:icnarc_number"`
	EncounterID  int64     `gorm:"column:encounter_id"`
	UnitID       int       `gorm:"column:unit_id"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (LinkRecord) TableName() string {
	return "icnarc_encounter_links"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&CorrectionRecord{}, &LinkRecord{})
}

// ReplaceCorrections swaps the stored corrections list for a new curated
// one. The list is small; full replacement keeps it in step with the issue
// log it is transcribed from.
func (r *Repository) ReplaceCorrections(ctx context.Context, list CorrectionList) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&CorrectionRecord{}).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, c := range list.Corrections {
			record := CorrectionRecord{
				ErroneousID:    c.ErroneousID,
				AdjustedID:     c.AdjustedID,
				ClinicalUnitID: c.ClinicalUnitID,
				Explanation:    c.Explanation,
				CreatedAt:      now,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) ListCorrections(ctx context.Context) (CorrectionList, error) {
	var records []CorrectionRecord
	if err := r.db.WithContext(ctx).Order("erroneous_id").Find(&records).Error; err != nil {
		return CorrectionList{}, err
	}
	list := CorrectionList{Corrections: make([]Correction, 0, len(records))}
	for _, record := range records {
		list.Corrections = append(list.Corrections, Correction{
			ErroneousID:    record.ErroneousID,
			AdjustedID:     record.AdjustedID,
			ClinicalUnitID: record.ClinicalUnitID,
			Explanation:    record.Explanation,
		})
	}
	return list, nil
}

func (r *Repository) ReplaceLinks(ctx context.Context, records []IcnarcRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&LinkRecord{}).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, link := range records {
			record := LinkRecord{
				ICNARCNumber: link.ICNARCNumber,
				EncounterID:  link.CISPatientID,
				UnitID:       link.UnitID,
				CreatedAt:    now,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListLinks returns the stored ICNARC-to-encounter links in the shape the
// linker consumes.
func (r *Repository) ListLinks(ctx context.Context) ([]IcnarcRecord, error) {
	var records []LinkRecord
	if err := r.db.WithContext(ctx).Order("icnarc_number").Find(&records).Error; err != nil {
		return nil, err
	}
	links := make([]IcnarcRecord, 0, len(records))
	for _, record := range records {
		links = append(links, IcnarcRecord{
			ICNARCNumber: record.ICNARCNumber,
			UnitID:       record.UnitID,
			CISPatientID: record.EncounterID,
		})
	}
	return links, nil
}

func (r *Repository) CountLinks(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&LinkRecord{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
