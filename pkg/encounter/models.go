package encounter

import "time"

// Stay is one row of a Philips encounter-summary extract.
type Stay struct {
	EncounterID      int64     `json:"encounter_id"`
	ClinicalUnitID   int       `json:"clinical_unit_id"`
	PtCensusID       int64     `json:"pt_census_id"`
	TNumber          string    `json:"t_number"`
	Age              int       `json:"age"`
	Gender           string    `json:"gender"`
	InTime           time.Time `json:"in_time"`
	OutTime          time.Time `json:"out_time"`
	LengthOfStayMins float64   `json:"length_of_stay_mins"`
}

// CleanedStay carries the corrected encounter id alongside the id the
// extract arrived with.
type CleanedStay struct {
	Stay
	OriginalEncounterID int64  `json:"original_encounter_id"`
	ErrorType           string `json:"error_type,omitempty"`
}

// CombinedStay is one logical ICU stay after rows sharing a corrected
// encounter id have been folded together.
type CombinedStay struct {
	EncounterID          int64     `json:"encounter_id"`
	OriginalEncounterIDs []int64   `json:"original_encounter_ids"`
	PtCensusIDs          []int64   `json:"pt_census_ids"`
	TNumber              string    `json:"t_number"`
	Age                  int       `json:"age"`
	Gender               string    `json:"gender"`
	InTime               time.Time `json:"in_time"`
	OutTime              time.Time `json:"out_time"`
	LengthOfStayMins     float64   `json:"length_of_stay_mins"`
	SegmentCount         int       `json:"segment_count"`
	ErrorType            string    `json:"error_type,omitempty"`
}

type Summary struct {
	InputRows     int `json:"input_rows"`
	CorrectedRows int `json:"corrected_rows"`
	CombinedStays int `json:"combined_stays"`
	UniqueIDs     int `json:"unique_ids"`
}
