package models

// naMarkers are the cell texts treated as "no value", matching what
// spreadsheet exports and pandas-produced CSVs write for empty cells.
var naMarkers = map[string]struct{}{
	"":         {},
	"NA":       {},
	"N/A":      {},
	"n/a":      {},
	"NaN":      {},
	"nan":      {},
	"-NaN":     {},
	"-nan":     {},
	"NULL":     {},
	"null":     {},
	"None":     {},
	"<NA>":     {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
}

// Cell is a raw table value. It is the only representation of a missing
// value: a cell is missing when its text is empty or an NA marker.
type Cell string

// Missing reports whether the cell holds no value.
func (c Cell) Missing() bool {
	_, ok := naMarkers[string(c)]
	return ok
}

// String returns the cell text, or "" when the cell is missing.
func (c Cell) String() string {
	if c.Missing() {
		return ""
	}
	return string(c)
}

// Raw returns the text exactly as read from the file.
func (c Cell) Raw() string {
	return string(c)
}
