package encounter

import "testing"

func TestCleanIcnarcRecords(t *testing.T) {
	records := []IcnarcRecord{
		{ICNARCNumber: 501, UnitID: 1, CISPatientID: 9001},
		{ICNARCNumber: 502, UnitID: 14, CISPatientID: 1002},
		{ICNARCNumber: 503, UnitID: 1, CISPatientID: 1003},
	}
	list := CorrectionList{Corrections: []Correction{
		{ErroneousID: 9001, AdjustedID: 1001, ClinicalUnitID: 1},
	}}

	cleaned := CleanIcnarcRecords(records, list, 14)
	if len(cleaned) != 2 {
		t.Fatalf("expected cardiac record dropped, got %d records", len(cleaned))
	}
	if cleaned[0].CISPatientID != 1001 {
		t.Fatalf("expected CIS id corrected, got %+v", cleaned[0])
	}
	if cleaned[1].CISPatientID != 1003 {
		t.Fatalf("expected unlisted id untouched, got %+v", cleaned[1])
	}
}

func TestLinkJoinsOnCleanedID(t *testing.T) {
	stays := []CombinedStay{
		{EncounterID: 1001},
		{EncounterID: 1003},
		{EncounterID: 1005},
	}
	records := []IcnarcRecord{
		{ICNARCNumber: 501, CISPatientID: 1001},
		{ICNARCNumber: 503, CISPatientID: 1003},
		{ICNARCNumber: 504, CISPatientID: 0},
		{ICNARCNumber: 505, CISPatientID: 7777},
	}

	linked, summary := Link(stays, records)
	if len(linked) != 2 {
		t.Fatalf("expected 2 linked stays, got %d", len(linked))
	}
	if linked[0].ICNARCNumber != 501 || linked[1].ICNARCNumber != 503 {
		t.Fatalf("unexpected link assignment: %+v", linked)
	}
	if summary.IcnarcRecords != 4 || summary.WithCISID != 3 || summary.Linked != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
