package encounter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Correction records one known-bad Philips encounter id and the id it
// should have been. The list is curated by the ICU data team from the
// issue log, not inferred.
type Correction struct {
	ErroneousID    int64  `yaml:"erroneous_id" json:"erroneous_id"`
	AdjustedID     int64  `yaml:"adjusted_id" json:"adjusted_id"`
	ClinicalUnitID int    `yaml:"clinical_unit_id" json:"clinical_unit_id"`
	Explanation    string `yaml:"explanation" json:"explanation"`
}

type CorrectionList struct {
	Corrections []Correction `yaml:"corrections" json:"corrections"`
}

func LoadCorrections(path string) (CorrectionList, error) {
	if path == "" {
		return CorrectionList{}, nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return CorrectionList{}, err
	}
	var list CorrectionList
	if err := yaml.Unmarshal(content, &list); err != nil {
		return CorrectionList{}, err
	}
	return list, nil
}

type Cleaner struct {
	corrections map[int64]Correction
}

// NewCleaner indexes the corrections list, dropping entries specific to the
// cardiac unit, whose extract is cleaned separately.
func NewCleaner(list CorrectionList, cardiacUnitID int) *Cleaner {
	corrections := make(map[int64]Correction, len(list.Corrections))
	for _, c := range list.Corrections {
		if cardiacUnitID > 0 && c.ClinicalUnitID == cardiacUnitID {
			continue
		}
		corrections[c.ErroneousID] = c
	}
	return &Cleaner{corrections: corrections}
}

// Clean replaces known-erroneous encounter ids and leaves everything else
// untouched. Every output row keeps its original id for traceability.
func (c *Cleaner) Clean(stays []Stay) ([]CleanedStay, Summary) {
	cleaned := make([]CleanedStay, 0, len(stays))
	corrected := 0
	unique := make(map[int64]struct{})
	for _, stay := range stays {
		row := CleanedStay{Stay: stay, OriginalEncounterID: stay.EncounterID}
		if correction, ok := c.corrections[stay.EncounterID]; ok {
			row.EncounterID = correction.AdjustedID
			row.ErrorType = correction.Explanation
			corrected++
		}
		unique[row.EncounterID] = struct{}{}
		cleaned = append(cleaned, row)
	}
	summary := Summary{
		InputRows:     len(stays),
		CorrectedRows: corrected,
		UniqueIDs:     len(unique),
	}
	return cleaned, summary
}

// Combine folds rows that now share an encounter id into one logical stay:
// earliest admission, latest discharge, summed length of stay, minimum age.
func Combine(stays []CleanedStay) []CombinedStay {
	byID := make(map[int64]*CombinedStay)
	order := make([]int64, 0)
	for _, stay := range stays {
		combined, ok := byID[stay.EncounterID]
		if !ok {
			combined = &CombinedStay{
				EncounterID: stay.EncounterID,
				TNumber:     stay.TNumber,
				Age:         stay.Age,
				Gender:      stay.Gender,
				InTime:      stay.InTime,
				OutTime:     stay.OutTime,
			}
			byID[stay.EncounterID] = combined
			order = append(order, stay.EncounterID)
		}
		combined.OriginalEncounterIDs = append(combined.OriginalEncounterIDs, stay.OriginalEncounterID)
		combined.PtCensusIDs = append(combined.PtCensusIDs, stay.PtCensusID)
		combined.LengthOfStayMins += stay.LengthOfStayMins
		combined.SegmentCount++
		if stay.Age < combined.Age {
			combined.Age = stay.Age
		}
		if stay.InTime.Before(combined.InTime) {
			combined.InTime = stay.InTime
		}
		if stay.OutTime.After(combined.OutTime) {
			combined.OutTime = stay.OutTime
		}
		if combined.ErrorType == "" {
			combined.ErrorType = stay.ErrorType
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	result := make([]CombinedStay, 0, len(order))
	for _, id := range order {
		result = append(result, *byID[id])
	}
	return result
}

// LengthOfStayDays converts the summed minutes for display.
func LengthOfStayDays(mins float64) string {
	return fmt.Sprintf("%.2f", mins/float64(24*60))
}
