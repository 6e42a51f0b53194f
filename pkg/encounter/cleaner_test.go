package encounter

import (
	"testing"
	"time"
)

func day(d int, hour int) time.Time {
	return time.Date(2017, 3, d, hour, 0, 0, 0, time.UTC)
}

func TestCleanAppliesCorrections(t *testing.T) {
	list := CorrectionList{Corrections: []Correction{
		{ErroneousID: 9001, AdjustedID: 1001, ClinicalUnitID: 1, Explanation: "duplicate admission record"},
		{ErroneousID: 9002, AdjustedID: 1002, ClinicalUnitID: 8, Explanation: "cardiac-specific fix"},
	}}
	cleaner := NewCleaner(list, 8)

	stays := []Stay{
		{EncounterID: 9001, Age: 63},
		{EncounterID: 9002, Age: 70},
		{EncounterID: 1003, Age: 55},
	}
	cleaned, summary := cleaner.Clean(stays)

	if cleaned[0].EncounterID != 1001 || cleaned[0].OriginalEncounterID != 9001 {
		t.Fatalf("expected correction applied, got %+v", cleaned[0])
	}
	if cleaned[0].ErrorType != "duplicate admission record" {
		t.Fatalf("expected error type recorded, got %q", cleaned[0].ErrorType)
	}
	// Cardiac-unit corrections are excluded, so 9002 must pass through.
	if cleaned[1].EncounterID != 9002 {
		t.Fatalf("cardiac correction must not apply, got %+v", cleaned[1])
	}
	if cleaned[2].EncounterID != 1003 {
		t.Fatalf("unlisted id must pass through, got %+v", cleaned[2])
	}

	if summary.InputRows != 3 || summary.CorrectedRows != 1 || summary.UniqueIDs != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestCombineFoldsSplitStays(t *testing.T) {
	cleaned := []CleanedStay{
		{
			Stay: Stay{EncounterID: 1001, PtCensusID: 11, TNumber: "T100", Age: 64,
				Gender: "F", InTime: day(1, 9), OutTime: day(3, 12), LengthOfStayMins: 3060},
			OriginalEncounterID: 1001,
		},
		{
			Stay: Stay{EncounterID: 1001, PtCensusID: 12, TNumber: "T100", Age: 63,
				Gender: "F", InTime: day(3, 13), OutTime: day(5, 10), LengthOfStayMins: 2700},
			OriginalEncounterID: 9001, ErrorType: "duplicate admission record",
		},
		{
			Stay: Stay{EncounterID: 1003, PtCensusID: 13, TNumber: "T101", Age: 55,
				InTime: day(2, 8), OutTime: day(2, 20), LengthOfStayMins: 720},
			OriginalEncounterID: 1003,
		},
	}

	combined := Combine(cleaned)
	if len(combined) != 2 {
		t.Fatalf("expected 2 combined stays, got %d", len(combined))
	}

	stay := combined[0]
	if stay.EncounterID != 1001 {
		t.Fatalf("expected stays sorted by id, got %+v", combined)
	}
	if stay.SegmentCount != 2 {
		t.Fatalf("expected 2 segments, got %d", stay.SegmentCount)
	}
	if !stay.InTime.Equal(day(1, 9)) || !stay.OutTime.Equal(day(5, 10)) {
		t.Fatalf("expected earliest admission and latest discharge, got %v - %v", stay.InTime, stay.OutTime)
	}
	if stay.LengthOfStayMins != 5760 {
		t.Fatalf("expected summed length of stay, got %v", stay.LengthOfStayMins)
	}
	if stay.Age != 63 {
		t.Fatalf("expected minimum age, got %d", stay.Age)
	}
	if len(stay.OriginalEncounterIDs) != 2 || stay.OriginalEncounterIDs[1] != 9001 {
		t.Fatalf("expected original ids collected, got %v", stay.OriginalEncounterIDs)
	}
	if stay.ErrorType != "duplicate admission record" {
		t.Fatalf("expected error type carried over, got %q", stay.ErrorType)
	}
}

func TestLengthOfStayDays(t *testing.T) {
	if got := LengthOfStayDays(5760); got != "4.00" {
		t.Fatalf("expected 4.00 days, got %s", got)
	}
}
