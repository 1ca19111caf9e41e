package pipeline

import (
	"context"
	"time"

	"rdrupload/internal/csv"
	"rdrupload/internal/metadata"
	"rdrupload/internal/models"
	"rdrupload/internal/rdr"
)

// Row is one validated record ready to send.
type Row struct {
	// Index is the 1-based data row number
	Index int

	// ProjectID is the row's own RDR Project ID
	ProjectID string

	Article metadata.Article
}

// Batch is a validated table with its payloads built.
type Batch struct {
	Table *models.Table
	Rows  []Row
}

// Prepare loads, validates and builds payloads for every row. It performs
// no network I/O.
func Prepare(path string) (*Batch, error) {
	table, err := csv.NewParser(path).ParseTable()
	if err != nil {
		return nil, err
	}

	if err := metadata.Validate(table); err != nil {
		return nil, err
	}

	articles, err := metadata.BuildArticles(table)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(articles))
	for i := range articles {
		rows[i] = Row{
			Index:     i + 1,
			ProjectID: metadata.ProjectID(&table.Records[i]),
			Article:   articles[i],
		}
	}

	return &Batch{Table: table, Rows: rows}, nil
}

// Result is the outcome of one row that reached the service.
type Result struct {
	Row      Row
	Response *rdr.Response
	Outcome  models.Outcome
	Duration time.Duration
}

// Receipt converts the result for the receipt store.
func (r Result) Receipt(runID string) models.Receipt {
	return models.Receipt{
		RunID:      runID,
		Row:        r.Row.Index,
		ProjectID:  r.Row.ProjectID,
		Title:      r.Row.Article.Title,
		StatusCode: r.Response.StatusCode,
		Outcome:    r.Outcome,
		Response:   r.Response.String(),
		CreatedAt:  time.Now().UTC(),
	}
}

// UploadRow sends one row. It holds no state between calls, so rows may be
// dispatched by any caller in any order.
func UploadRow(ctx context.Context, s Submitter, row Row) (Result, error) {
	start := time.Now()

	resp, err := s.Submit(ctx, row.Article, row.ProjectID)
	if err != nil {
		return Result{Row: row, Outcome: models.OutcomeFailed, Duration: time.Since(start)}, err
	}

	outcome := models.OutcomeCreated
	if !resp.OK() {
		outcome = models.OutcomeRejected
	}

	return Result{
		Row:      row,
		Response: resp,
		Outcome:  outcome,
		Duration: time.Since(start),
	}, nil
}
