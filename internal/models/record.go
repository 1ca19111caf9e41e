package models

// Column names as they appear in the metadata spreadsheet header.
const (
	ColTitle             = "Title"
	ColAuthors           = "Authors"
	ColCategories        = "Categories"
	ColItemType          = "Item type"
	ColKeywords          = "Keywords"
	ColDescription       = "Description"
	ColLicense           = "License"
	ColDataSensitivity   = "Data Sensitivity"
	ColRDRProjectID      = "RDR Project ID"
	ColFunding           = "Funding"
	ColReferences        = "References"
	ColResourceTitle     = "Resource Title"
	ColResourceDOI       = "Resource DOI"
	ColFAIRRating        = "FAIR Self Assessment Rating"
	ColFAIRSummary       = "FAIR Self Assessment Summary"
	ColResearchProjectID = "Research Project ID"
	ColResearchURL       = "Research Project URL"
	ColQALog             = "Q/A Log"
)

// RequiredColumns must all be present in the header, and every row must
// carry a value for each of them. Order is the order violations are reported in.
var RequiredColumns = []string{
	ColTitle,
	ColAuthors,
	ColCategories,
	ColItemType,
	ColKeywords,
	ColDescription,
	ColLicense,
	ColDataSensitivity,
	ColRDRProjectID,
}

// Record is one metadata row. Columns missing from the file decode as
// missing cells.
type Record struct {
	Title             Cell `csv:"Title"`
	Authors           Cell `csv:"Authors"`
	Categories        Cell `csv:"Categories"`
	ItemType          Cell `csv:"Item type"`
	Keywords          Cell `csv:"Keywords"`
	Description       Cell `csv:"Description"`
	License           Cell `csv:"License"`
	DataSensitivity   Cell `csv:"Data Sensitivity"`
	RDRProjectID      Cell `csv:"RDR Project ID"`
	Funding           Cell `csv:"Funding"`
	References        Cell `csv:"References"`
	ResourceTitle     Cell `csv:"Resource Title"`
	ResourceDOI       Cell `csv:"Resource DOI"`
	FAIRRating        Cell `csv:"FAIR Self Assessment Rating"`
	FAIRSummary       Cell `csv:"FAIR Self Assessment Summary"`
	ResearchProjectID Cell `csv:"Research Project ID"`
	ResearchURL       Cell `csv:"Research Project URL"`
	QALog             Cell `csv:"Q/A Log"`
}

// Field returns the cell stored under a header name.
func (r *Record) Field(column string) (Cell, bool) {
	switch column {
	case ColTitle:
		return r.Title, true
	case ColAuthors:
		return r.Authors, true
	case ColCategories:
		return r.Categories, true
	case ColItemType:
		return r.ItemType, true
	case ColKeywords:
		return r.Keywords, true
	case ColDescription:
		return r.Description, true
	case ColLicense:
		return r.License, true
	case ColDataSensitivity:
		return r.DataSensitivity, true
	case ColRDRProjectID:
		return r.RDRProjectID, true
	case ColFunding:
		return r.Funding, true
	case ColReferences:
		return r.References, true
	case ColResourceTitle:
		return r.ResourceTitle, true
	case ColResourceDOI:
		return r.ResourceDOI, true
	case ColFAIRRating:
		return r.FAIRRating, true
	case ColFAIRSummary:
		return r.FAIRSummary, true
	case ColResearchProjectID:
		return r.ResearchProjectID, true
	case ColResearchURL:
		return r.ResearchURL, true
	case ColQALog:
		return r.QALog, true
	}
	return "", false
}

// Table is the loaded spreadsheet. It is not modified after loading.
type Table struct {
	// Path is the file the table was read from
	Path string

	// Columns is the header in file order
	Columns []string

	// Records holds the data rows in file order
	Records []Record
}

// HasColumn reports whether the header declares the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Records)
}
