package metadata

import (
	rdrerrors "rdrupload/internal/errors"
	"rdrupload/internal/models"
)

// Article is the request body for creating an article under a project.
type Article struct {
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Funding       string       `json:"funding"`
	Authors       []Author     `json:"authors"`
	Keywords      []string     `json:"keywords"`
	References    []string     `json:"references"`
	Categories    []int        `json:"categories"`
	ResourceDOI   string       `json:"resource_doi"`
	ResourceTitle string       `json:"resource_title"`
	CustomFields  CustomFields `json:"custom_fields"`
	DefinedType   string       `json:"defined_type"`
	License       string       `json:"license"`
}

// CustomFields are the institution-specific article fields. The service
// expects the rating and sensitivity as single-element lists.
type CustomFields struct {
	ResearchProjectID  string    `json:"Research Project ID"`
	QALog              []string  `json:"Q/A Log"`
	ResearchProjectURL string    `json:"Research Project URL"`
	DataSensitivity    [1]string `json:"Data Sensitivity"`
	FAIRRating         [1]string `json:"FAIR Self Assessment Rating"`
	FAIRSummary        string    `json:"FAIR Self Assessment Summary"`
}

// BuildArticle maps one validated row to its payload. Missing optional cells
// become "", never a null. It has no side effects.
func BuildArticle(record *models.Record) (Article, error) {
	categories, err := SplitCategories(record.Categories.String())
	if err != nil {
		return Article{}, err
	}

	return Article{
		Title:         record.Title.String(),
		Description:   record.Description.String(),
		Funding:       record.Funding.String(),
		Authors:       SplitAuthors(record.Authors.String()),
		Keywords:      SplitKeywords(record.Keywords.String()),
		References:    SplitReferences(record.References.String()),
		Categories:    categories,
		ResourceDOI:   record.ResourceDOI.String(),
		ResourceTitle: record.ResourceTitle.String(),
		CustomFields: CustomFields{
			// Text regardless of how the spreadsheet typed it.
			ResearchProjectID:  record.ResearchProjectID.String(),
			QALog:              SplitQALogs(record.QALog.String()),
			ResearchProjectURL: record.ResearchURL.String(),
			DataSensitivity:    [1]string{record.DataSensitivity.String()},
			FAIRRating:         [1]string{record.FAIRRating.String()},
			FAIRSummary:        record.FAIRSummary.String(),
		},
		DefinedType: record.ItemType.String(),
		License:     record.License.String(),
	}, nil
}

// BuildArticles builds every row's payload up front so a bad row is found
// before anything is sent. Errors carry the 1-based row number.
func BuildArticles(table *models.Table) ([]Article, error) {
	articles := make([]Article, 0, table.Len())
	for i := range table.Records {
		article, err := BuildArticle(&table.Records[i])
		if err != nil {
			return nil, withRow(err, i+1)
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// ProjectID returns the project a row targets.
func ProjectID(record *models.Record) string {
	return record.RDRProjectID.String()
}

func withRow(err error, row int) error {
	var fieldErr *rdrerrors.FieldError
	if rdrerrors.As(err, &fieldErr) {
		fe := *fieldErr
		fe.Row = row
		return &fe
	}
	return err
}
