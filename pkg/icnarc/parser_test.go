package icnarc

import (
	"bytes"
	"strings"
	"testing"
)

const sampleXML = `<?xml version="1.0" encoding="utf-8"?>
<Dataset xmlns="urn:icnarc-cmp">
  <Patient>
    <RAICU1>123456</RAICU1>
    <CMPNO>H91</CMPNO>
    <CISID>1001</CISID>
    <AGE>63</AGE>
    <UNUSED>ignore me</UNUSED>
  </Patient>
  <Patient>
    <RAICU1>123457</RAICU1>
    <CMPNO>B16</CMPNO>
    <AGE>70</AGE>
  </Patient>
</Dataset>`

func sampleDictionary() Dictionary {
	return Dictionary{Codes: map[string]string{
		"RAICU1": "ICNARC Number",
		"CMPNO":  "ICNARC CMP Number",
		"CISID":  "CIS Patient ID",
		"AGE":    "Age at admission",
	}}
}

func TestParseConvertsCodesAndUnits(t *testing.T) {
	dataset, err := Parse(strings.NewReader(sampleXML), sampleDictionary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dataset.Patients) != 2 {
		t.Fatalf("expected 2 patients, got %d", len(dataset.Patients))
	}

	first := dataset.Patients[0]
	if first.ICNARCNumber != 123456 {
		t.Fatalf("expected ICNARC number parsed, got %d", first.ICNARCNumber)
	}
	if first.UnitID != 1 {
		t.Fatalf("expected H91 mapped to unit 1, got %d", first.UnitID)
	}
	if first.Fields["Age at admission"] != "63" {
		t.Fatalf("expected description-keyed fields, got %v", first.Fields)
	}
	if _, ok := first.Fields["UNUSED"]; ok {
		t.Fatal("codes missing from the dictionary must be dropped")
	}

	if dataset.Patients[1].UnitID != 14 {
		t.Fatalf("expected B16 mapped to unit 14, got %d", dataset.Patients[1].UnitID)
	}

	// Only data descriptions in use appear, sorted. The ICNARC and CMP
	// numbers are materialised as the parsed id and unit columns, so their
	// raw spellings must not reappear as data columns.
	want := []string{"Age at admission", "CIS Patient ID"}
	if len(dataset.Descriptions) != len(want) {
		t.Fatalf("unexpected descriptions: %v", dataset.Descriptions)
	}
	for i, description := range want {
		if dataset.Descriptions[i] != description {
			t.Fatalf("expected %s at %d, got %v", description, i, dataset.Descriptions)
		}
	}
}

func TestLinkRecordsRequireCISID(t *testing.T) {
	dataset, err := Parse(strings.NewReader(sampleXML), sampleDictionary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records := dataset.LinkRecords()
	if len(records) != 1 {
		t.Fatalf("expected 1 link record, got %d", len(records))
	}
	if records[0].ICNARCNumber != 123456 || records[0].CISPatientID != 1001 || records[0].UnitID != 1 {
		t.Fatalf("unexpected link record: %+v", records[0])
	}
}

func TestWriteCSVShape(t *testing.T) {
	dataset, err := Parse(strings.NewReader(sampleXML), sampleDictionary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, dataset); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "ICNARC number,Unit ID,Age at admission,CIS Patient ID" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if lines[1] != "123456,1,63,1001" {
		t.Fatalf("unexpected first row: %s", lines[1])
	}
	// The second patient has no CIS id: that cell stays empty.
	if lines[2] != "123457,14,70," {
		t.Fatalf("expected sparse row for second patient, got %s", lines[2])
	}
}
