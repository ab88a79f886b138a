// Package ontology maps user-facing tissue and organ labels to UBERON
// controlled-vocabulary identifiers. The table is static, validated once at
// process start, and read-only afterwards.
package ontology

import (
	"fmt"
	"regexp"
	"sort"
)

// UnknownLabelError is returned when a requested label is not in the table.
// Unknown labels are a hard error: silently dropping a tissue would change
// the scope of the analysis.
type UnknownLabelError struct {
	Label string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown tissue label %q", e.Label)
}

// termTable maps tissue/organ labels to UBERON identifiers.
var termTable = map[string]string{
	"Lung":                  "UBERON:0002048",
	"Brain":                 "UBERON:0000955",
	"Right liver lobe":      "UBERON:0001114",
	"Colon - Transverse":    "UBERON:0001157",
	"Cerebellum":            "UBERON:0002037",
	"Brainstem":             "UBERON:0002298",
	"Spinal cord":           "UBERON:0002240",
	"Eye":                   "UBERON:0000970",
	"Inner ear":             "UBERON:0006860",
	"Heart":                 "UBERON:0000948",
	"Trachea":               "UBERON:0003126",
	"Larynx":                "UBERON:0001737",
	"Pharynx":               "UBERON:0000340",
	"Stomach":               "UBERON:0000945",
	"Small intestine":       "UBERON:0002108",
	"Duodenum":              "UBERON:0002114",
	"Jejunum":               "UBERON:0002115",
	"Ileum":                 "UBERON:0002116",
	"Large intestine":       "UBERON:0000160",
	"Colon":                 "UBERON:0001155",
	"Rectum":                "UBERON:0001052",
	"Liver":                 "UBERON:0002107",
	"Gallbladder":           "UBERON:0002110",
	"Pancreas":              "UBERON:0001264",
	"Spleen":                "UBERON:0002106",
	"Kidney":                "UBERON:0002113",
	"Ureter":                "UBERON:0000056",
	"Urinary bladder":       "UBERON:0001255",
	"Urethra":               "UBERON:0000057",
	"Thyroid gland":         "UBERON:0001132",
	"Parathyroid gland":     "UBERON:0002260",
	"Adrenal gland":         "UBERON:0002369",
	"Pituitary gland":       "UBERON:0000007",
	"Thymus":                "UBERON:0001178",
	"Pineal gland":          "UBERON:0000986",
	"Ovary":                 "UBERON:0000992",
	"Uterus":                "UBERON:0000995",
	"Vagina":                "UBERON:0000996",
	"Testis":                "UBERON:0000473",
	"Prostate gland":        "UBERON:0002367",
	"Seminal vesicle":       "UBERON:0001049",
	"Penis":                 "UBERON:0000464",
	"Skin":                  "UBERON:0002097",
	"Bone organ":            "UBERON:0001474",
	"Skeletal muscle organ": "UBERON:0001134",
}

var uberonPattern = regexp.MustCompile(`^UBERON:\d{7}$`)

func init() {
	// A malformed table is a programming error, caught before any request.
	for label, id := range termTable {
		if !uberonPattern.MatchString(id) {
			panic(fmt.Sprintf("ontology: malformed identifier %q for label %q", id, label))
		}
	}
}

// Map translates labels to UBERON identifiers, preserving input order.
// Any unknown label fails the whole call with an UnknownLabelError.
func Map(labels []string) ([]string, error) {
	ids := make([]string, 0, len(labels))
	for _, label := range labels {
		id, ok := termTable[label]
		if !ok {
			return nil, &UnknownLabelError{Label: label}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Lookup returns the identifier for a single label.
func Lookup(label string) (string, error) {
	id, ok := termTable[label]
	if !ok {
		return "", &UnknownLabelError{Label: label}
	}
	return id, nil
}

// Labels returns all known labels in sorted order.
func Labels() []string {
	labels := make([]string, 0, len(termTable))
	for label := range termTable {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
