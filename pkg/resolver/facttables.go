package resolver

import (
	"sort"
	"strings"
)

// Fact tables an analyst may resolve against. The table name is spliced
// into SQL, so only identifiers from this list are ever accepted.
var factTables = map[string]string{
	"ptassessment":  "PtAssessment",
	"ptmedication":  "PtMedication",
	"ptlabresult":   "PtLabResult",
	"ptdemographic": "PtDemographic",
}

// CanonicalFactTable maps a case-insensitive table name onto the canonical
// identifier, or returns false for anything outside the allowlist.
func CanonicalFactTable(name string) (string, bool) {
	ident, ok := factTables[strings.ToLower(strings.TrimSpace(name))]
	return ident, ok
}

func FactTables() []string {
	names := make([]string, 0, len(factTables))
	for _, ident := range factTables {
		names = append(names, ident)
	}
	sort.Strings(names)
	return names
}
