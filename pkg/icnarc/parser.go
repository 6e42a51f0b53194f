package icnarc

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/chi-bristol/icca-curation/pkg/encounter"
)

// Field descriptions the importer treats specially.
const (
	fieldICNARCNumber = "ICNARC Number"
	fieldCMPNumber    = "ICNARC CMP Number"
	fieldCISPatientID = "CIS Patient ID"
)

type Patient struct {
	ICNARCNumber int64             `json:"icnarc_number"`
	UnitID       int               `json:"unit_id"`
	Fields       map[string]string `json:"fields"`
}

type Dataset struct {
	Patients     []Patient `json:"patients"`
	Descriptions []string  `json:"descriptions"`
}

type xmlExport struct {
	Patients []xmlPatient `xml:",any"`
}

type xmlPatient struct {
	Fields []xmlField `xml:",any"`
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// Parse reads the WardWatcher ICNARC XML export: one element per patient,
// one child element per CMP code. Codes missing from the dictionary are
// dropped; the CMP workbook is the authority on which codes exist.
func Parse(r io.Reader, dict Dictionary) (Dataset, error) {
	var export xmlExport
	if err := xml.NewDecoder(r).Decode(&export); err != nil {
		return Dataset{}, fmt.Errorf("parsing ICNARC xml: %w", err)
	}

	descriptions := make(map[string]struct{})
	patients := make([]Patient, 0, len(export.Patients))
	for _, raw := range export.Patients {
		patient := Patient{Fields: make(map[string]string, len(raw.Fields))}
		for _, field := range raw.Fields {
			code := field.XMLName.Local
			description, ok := dict.Describe(code)
			if !ok {
				continue
			}
			value := strings.TrimSpace(field.Value)
			if value == "" {
				continue
			}
			patient.Fields[description] = value
			// The ICNARC and CMP numbers come out as the parsed id and
			// unit columns; their raw spellings are not data columns.
			if description != fieldICNARCNumber && description != fieldCMPNumber {
				descriptions[description] = struct{}{}
			}
		}

		if number, err := strconv.ParseInt(patient.Fields[fieldICNARCNumber], 10, 64); err == nil {
			patient.ICNARCNumber = number
		}
		patient.UnitID = unitNumber(patient.Fields[fieldCMPNumber])
		patients = append(patients, patient)
	}

	sorted := make([]string, 0, len(descriptions))
	for description := range descriptions {
		sorted = append(sorted, description)
	}
	sort.Strings(sorted)

	return Dataset{Patients: patients, Descriptions: sorted}, nil
}

// unitNumber maps the ICNARC CMP number onto the clinical unit id
// WardWatcher uses: H91 is the general ICU, B16 the cardiac ICU.
func unitNumber(cmpNumber string) int {
	switch strings.ToUpper(strings.TrimSpace(cmpNumber)) {
	case "H91":
		return 1
	case "B16":
		return 14
	default:
		return 0
	}
}

// WriteCSV writes the dataset wide, one column per CMP description present
// anywhere in the export. Most cells are empty; that is the shape of the
// source data, not an error.
func WriteCSV(w io.Writer, ds Dataset) error {
	writer := csv.NewWriter(w)
	header := append([]string{"ICNARC number", "Unit ID"}, ds.Descriptions...)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, patient := range ds.Patients {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatInt(patient.ICNARCNumber, 10), strconv.Itoa(patient.UnitID))
		for _, description := range ds.Descriptions {
			row = append(row, patient.Fields[description])
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// LinkRecords extracts the ICNARC-to-encounter link rows for patients that
// carry a CIS patient id.
func (ds Dataset) LinkRecords() []encounter.IcnarcRecord {
	records := make([]encounter.IcnarcRecord, 0, len(ds.Patients))
	for _, patient := range ds.Patients {
		cisID, err := strconv.ParseInt(patient.Fields[fieldCISPatientID], 10, 64)
		if err != nil {
			continue
		}
		records = append(records, encounter.IcnarcRecord{
			ICNARCNumber: patient.ICNARCNumber,
			UnitID:       patient.UnitID,
			CISPatientID: cisID,
		})
	}
	return records
}
