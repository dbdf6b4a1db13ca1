package compile

import (
	"strconv"

	"qdc/internal/dataset"
	"qdc/internal/remap"
)

// The key column is an identifier, never a category: it is renamed and
// preserved verbatim.
const (
	KeySource = "Paper DOI Link"
	KeyTarget = "doi"
)

// Kind selects how a column's raw values are normalized.
type Kind int

const (
	// Passthrough copies the cell unchanged (already coded at the source).
	Passthrough Kind = iota
	// Lookup resolves against a closed vocabulary of ordinal codes.
	Lookup
	// YesNo is the shared Yes→1 / No→0 lookup.
	YesNo
	// BitField ORs comma-separated multi-select options into one integer,
	// with each option's vocabulary entry naming its bit index.
	BitField
)

func (k Kind) String() string {
	switch k {
	case Passthrough:
		return "passthrough"
	case Lookup:
		return "lookup"
	case YesNo:
		return "yes/no"
	case BitField:
		return "bit field"
	}
	return "unknown"
}

// Column is one entry of the fixed output contract: a source column, its
// target name, and the remap rule applied to every cell.
type Column struct {
	Source     string
	Target     string
	Kind       Kind
	Vocabulary map[string]int // codes for Lookup, bit indexes for BitField
	Sentinel   int            // written for missing cells
}

// Columns returns the output contract in serialization order. The
// vocabularies are the published 74bzs coding and must not drift.
func Columns() []Column {
	return []Column{
		{
			Source: "Conference Proceedings",
			Target: "conference_proceedings",
			Kind:   Passthrough,
		},
		{
			Source: "Type",
			Target: "paper_type",
			Kind:   Lookup,
			Vocabulary: map[string]int{
				"Research Article": 1,
				"Short paper":      2,
				"Poster":           3,
			},
			Sentinel: remap.DefaultSentinel,
		},
		{
			Source:   "Misclassified",
			Target:   "acm_misclassified",
			Kind:     YesNo,
			Sentinel: remap.DefaultSentinel,
		},
		{
			Source: "Open Methodology",
			Target: "open_methodology",
			Kind:   Lookup,
			Vocabulary: map[string]int{
				"Public Access": 3,
				"Open Access":   2,
				"Available":     1,
				"No":            0,
			},
			Sentinel: remap.DefaultSentinel,
		},
		{
			Source: "Open Data",
			Target: "open_data",
			Kind:   Lookup,
			Vocabulary: map[string]int{
				"Yes":                       2,
				"Data Available on Request": 1,
				"No":                        0,
			},
			Sentinel: remap.DefaultSentinel,
		},
		{
			Source: "Data Documentation",
			Target: "data_documentation",
			Kind:   Lookup,
			Vocabulary: map[string]int{
				"Yes":     2,
				"Partial": 1,
				"No":      0,
			},
			Sentinel: remap.DefaultSentinel,
		},
		{
			Source: "Open Materials",
			Target: "open_materials",
			Kind:   Lookup,
			Vocabulary: map[string]int{
				"Full":       3,
				"Partial":    2,
				"On Request": 1,
				"No":         0,
			},
			Sentinel: remap.DefaultSentinel,
		},
		{
			Source: "Materials Documentation",
			Target: "materials_documentation",
			Kind:   Lookup,
			Vocabulary: map[string]int{
				"Full":    2,
				"Partial": 1,
				"No":      0,
			},
			Sentinel: remap.DefaultSentinel,
		},
		{
			Source:   "README",
			Target:   "readme",
			Kind:     YesNo,
			Sentinel: remap.DefaultSentinel,
		},
		{
			Source:   "License",
			Target:   "permissible_software_license",
			Kind:     YesNo,
			Sentinel: remap.DefaultSentinel,
		},
		{
			Source:   "Preregistration",
			Target:   "preregistration",
			Kind:     YesNo,
			Sentinel: remap.DefaultSentinel,
		},
		{
			Source:   "Reproducible",
			Target:   "reproducible",
			Kind:     YesNo,
			Sentinel: remap.DefaultSentinel,
		},
		{
			Source: "Reference Degradation",
			Target: "reference_degradation",
			Kind:   BitField,
			Vocabulary: map[string]int{
				"Open Methodology": 0,
				"Open Data":        1,
				"Open Materials":   2,
				"Preregistration":  3,
			},
			// A paper with no degraded references has an empty bit field,
			// not an out-of-band marker.
			Sentinel: 0,
		},
	}
}

// rule builds the remap.Rule for a non-passthrough column. BitField
// wraps the index vocabulary in a derived rule so the whole list value
// flows through the same ToInt entry point as scalar columns.
func (c Column) rule() remap.Rule {
	switch c.Kind {
	case YesNo:
		return remap.YesNoRule()
	case BitField:
		bits := remap.Table(c.Vocabulary)
		return remap.Func(func(values string) (int, error) {
			return remap.List(values, bits)
		})
	default:
		return remap.Table(c.Vocabulary)
	}
}

// Remap normalizes one cell under the column's rule.
func (c Column) Remap(cell dataset.Cell) (dataset.Cell, error) {
	if c.Kind == Passthrough {
		return cell, nil
	}

	value := remap.Missing()
	if cell.Present {
		value = remap.String(cell.Value)
	}
	code, err := remap.ToInt(value, c.rule(), c.Sentinel)
	if err != nil {
		return dataset.Cell{}, err
	}
	return dataset.Present(strconv.Itoa(code)), nil
}
