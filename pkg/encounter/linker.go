package encounter

// IcnarcRecord is one row of the WardWatcher extract tying an ICNARC
// number to a CIS patient id (the Philips encounter id as WardWatcher
// knows it).
type IcnarcRecord struct {
	ICNARCNumber int64 `json:"icnarc_number"`
	UnitID       int   `json:"unit_id"`
	CISPatientID int64 `json:"cis_patient_id"`
}

type LinkedStay struct {
	CombinedStay
	ICNARCNumber int64 `json:"icnarc_number"`
}

type LinkSummary struct {
	IcnarcRecords int `json:"icnarc_records"`
	WithCISID     int `json:"with_cis_id"`
	Linked        int `json:"linked"`
}

// CleanIcnarcRecords applies CIS-id corrections and drops cardiac-unit
// rows, mirroring what the cleaner does on the Philips side.
func CleanIcnarcRecords(records []IcnarcRecord, list CorrectionList, cardiacUnitID int) []IcnarcRecord {
	corrections := make(map[int64]int64, len(list.Corrections))
	for _, c := range list.Corrections {
		if cardiacUnitID > 0 && c.ClinicalUnitID == cardiacUnitID {
			continue
		}
		corrections[c.ErroneousID] = c.AdjustedID
	}

	cleaned := make([]IcnarcRecord, 0, len(records))
	for _, record := range records {
		if cardiacUnitID > 0 && record.UnitID == cardiacUnitID {
			continue
		}
		if adjusted, ok := corrections[record.CISPatientID]; ok {
			record.CISPatientID = adjusted
		}
		cleaned = append(cleaned, record)
	}
	return cleaned
}

// Link joins combined stays to ICNARC records on the cleaned encounter id.
// The join is inner: stays without an ICNARC episode and episodes without
// a matching stay both drop out, and the summary reports how many.
func Link(stays []CombinedStay, records []IcnarcRecord) ([]LinkedStay, LinkSummary) {
	byCISID := make(map[int64]IcnarcRecord, len(records))
	withCIS := 0
	for _, record := range records {
		if record.CISPatientID == 0 {
			continue
		}
		withCIS++
		byCISID[record.CISPatientID] = record
	}

	linked := make([]LinkedStay, 0, len(stays))
	for _, stay := range stays {
		record, ok := byCISID[stay.EncounterID]
		if !ok {
			continue
		}
		linked = append(linked, LinkedStay{CombinedStay: stay, ICNARCNumber: record.ICNARCNumber})
	}

	summary := LinkSummary{
		IcnarcRecords: len(records),
		WithCISID:     withCIS,
		Linked:        len(linked),
	}
	return linked, summary
}
