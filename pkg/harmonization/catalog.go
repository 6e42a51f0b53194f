package harmonization

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chi-bristol/icca-curation/pkg/common/models"
	"gopkg.in/yaml.v3"
)

// Variable is one curated study variable. Which attribute to retain and
// which unit spellings fold into the variable are expert decisions recorded
// in the catalog, not inferred: recording a dose in mg/hr and in mg are
// different clinical acts (infusion vs bolus) that only a domain expert can
// tell apart.
type Variable struct {
	Display       string   `yaml:"display" json:"display"`
	FactTable     string   `yaml:"fact_table" json:"fact_table"`
	Interventions []int64  `yaml:"interventions" json:"interventions"`
	Attribute     string   `yaml:"attribute" json:"attribute"`
	Units         []string `yaml:"units" json:"units"`
}

type Catalog struct {
	Variables map[string]Variable `yaml:"variables" json:"variables"`
}

func Load(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.Variables) == 0 {
		return Catalog{}, fmt.Errorf("variable catalog empty")
	}
	return cat, nil
}

func (c Catalog) Lookup(key string) (Variable, bool) {
	if c.Variables == nil {
		return Variable{}, false
	}
	variable, ok := c.Variables[strings.ToLower(key)]
	if ok {
		return variable, true
	}
	for k, v := range c.Variables {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return Variable{}, false
}

// Names returns catalog keys in a stable order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c.Variables))
	for name := range c.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Matches reports whether a resolver row belongs to this variable: the
// intervention must be one of the variable's, the retained attribute label
// must match, and when unit spellings are listed one of them must appear in
// the attribute or concept label.
func (v Variable) Matches(row models.AttributeUsage) bool {
	if len(v.Interventions) > 0 {
		found := false
		for _, id := range v.Interventions {
			if id == row.InterventionID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if v.Attribute != "" && !strings.EqualFold(v.Attribute, row.AttributeLabel) {
		return false
	}
	if len(v.Units) > 0 {
		for _, unit := range v.Units {
			if labelHasUnit(row.AttributeLabel, unit) || labelHasUnit(row.ConceptLabel, unit) {
				return true
			}
		}
		return false
	}
	return true
}

// labelHasUnit matches a unit as a whole token so that "mg" does not claim
// rows coded in "mg/hr". Labels code units either bare or parenthesised,
// e.g. "Dose (mg/hr)".
func labelHasUnit(label, unit string) bool {
	unit = strings.ToLower(strings.TrimSpace(unit))
	if unit == "" {
		return false
	}
	tokens := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return r == ' ' || r == '(' || r == ')' || r == ',' || r == ';'
	})
	for _, token := range tokens {
		if token == unit {
			return true
		}
	}
	return false
}

// DefaultCatalog carries the documented noradrenaline example: the same
// intervention records dose both as a rate and as a plain amount, which
// curate into two separate variables.
func DefaultCatalog() Catalog {
	return Catalog{Variables: map[string]Variable{
		"noradrenaline-infusion-rate": {
			Display:   "Noradrenaline infusion rate",
			FactTable: "PtMedication",
			Attribute: "Dose",
			Units:     []string{"mg/hr", "mcg/kg/min"},
		},
		"noradrenaline-bolus": {
			Display:   "Noradrenaline bolus / enteral dose",
			FactTable: "PtMedication",
			Attribute: "Dose",
			Units:     []string{"mg"},
		},
	}}
}
