package models

import "time"

// Event is the envelope published to and consumed from Kafka.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// Search fields for the intervention locator. FieldAuto searches the long
// label first and falls back to the short label when nothing matches.
const (
	FieldLong  = "long"
	FieldShort = "short"
	FieldAuto  = "auto"
)

type SearchRequest struct {
	Pattern string `json:"pattern"`
	Field   string `json:"field"`
	Limit   int    `json:"limit"`
}

type InterventionMatch struct {
	InterventionID int64  `json:"intervention_id"`
	LongLabel      string `json:"long_label"`
	ShortLabel     string `json:"short_label"`
}

type SearchResult struct {
	Pattern       string              `json:"pattern"`
	FieldSearched string              `json:"field_searched"`
	Matches       []InterventionMatch `json:"matches"`
	Cached        bool                `json:"cached"`
}

type ResolveRequest struct {
	InterventionIDs []int64 `json:"intervention_ids"`
	FactTable       string  `json:"fact_table"`
	ClinicalUnitID  *int64  `json:"clinical_unit_id,omitempty"`
	Limit           int     `json:"limit"`
}

// AttributeUsage is one row of the resolver output: a definition pair and
// how many distinct encounters carry at least one fact record for it.
type AttributeUsage struct {
	InterventionID    int64  `json:"intervention_id"`
	AttributeID       int64  `json:"attribute_id"`
	InterventionLabel string `json:"intervention_label"`
	AttributeLabel    string `json:"attribute_label"`
	ConceptLabel      string `json:"concept_label"`
	EncounterCount    int64  `json:"encounter_count"`
}

type ResolveResult struct {
	FactTable string           `json:"fact_table"`
	Rows      []AttributeUsage `json:"rows"`
	Truncated bool             `json:"truncated"`
}
