// Package metadata checks spreadsheet rows and turns them into article
// payloads for the repository API.
package metadata

import (
	rdrerrors "rdrupload/internal/errors"
	"rdrupload/internal/models"
)

// Validate checks the header for every mandatory column, then walks the rows
// in order and returns on the first mandatory cell that is missing.
// A nil return means the table can be uploaded.
func Validate(table *models.Table) error {
	if err := ValidateColumns(table); err != nil {
		return err
	}

	for i := range table.Records {
		if err := ValidateRecord(&table.Records[i], i+1); err != nil {
			return err
		}
	}

	return nil
}

// ValidateColumns reports every mandatory heading absent from the table.
func ValidateColumns(table *models.Table) error {
	var missing []string
	for _, col := range models.RequiredColumns {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return &rdrerrors.MissingColumnsError{Columns: missing}
	}
	return nil
}

// ValidateRecord checks the mandatory cells of one row. row is 1-based.
func ValidateRecord(record *models.Record, row int) error {
	for _, col := range models.RequiredColumns {
		cell, _ := record.Field(col)
		if cell.Missing() {
			return rdrerrors.NewValidationError(col, row)
		}
	}
	return nil
}

// ValidateAll collects every violation instead of stopping at the first.
// Column problems are returned alone since row checks are meaningless without them.
func ValidateAll(table *models.Table) []error {
	if err := ValidateColumns(table); err != nil {
		return []error{err}
	}

	var errs []error
	for i := range table.Records {
		record := &table.Records[i]
		for _, col := range models.RequiredColumns {
			cell, _ := record.Field(col)
			if cell.Missing() {
				errs = append(errs, rdrerrors.NewValidationError(col, i+1))
			}
		}
		if record.Categories.Missing() {
			continue
		}
		if _, err := BuildArticle(record); err != nil {
			errs = append(errs, withRow(err, i+1))
		}
	}
	return errs
}
