package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"rdrupload/internal/credential"
	rdrerrors "rdrupload/internal/errors"
	"rdrupload/internal/logging"
	"rdrupload/internal/metadata"
	"rdrupload/internal/models"
	"rdrupload/internal/rdr"

	"github.com/google/uuid"
)

// CompleteMarker is printed after the last row of a full run.
const CompleteMarker = "Complete!"

// Submitter sends one article to a project.
type Submitter interface {
	Submit(ctx context.Context, article metadata.Article, projectID string) (*rdr.Response, error)
}

// Recorder persists the outcome of each uploaded row.
type Recorder interface {
	Record(ctx context.Context, receipt models.Receipt) error
}

// Config holds pipeline configuration
type Config struct {
	// Credentials is asked for the token once, after validation
	Credentials credential.Source

	// NewClient builds the submitter from the token
	NewClient func(token credential.Token) Submitter

	// Recorder is optional
	Recorder Recorder

	// Out receives one response line per row and the completion marker
	Out io.Writer

	// Logger defaults to slog.Default()
	Logger *slog.Logger

	// RunID tags logs and receipts; generated when empty
	RunID string
}

// Pipeline drives load, validate, authenticate and upload for one file.
type Pipeline struct {
	config  Config
	logger  *slog.Logger
	summary *Summary
}

// New creates a pipeline, filling defaults for optional fields.
func New(config Config) *Pipeline {
	if config.Out == nil {
		config.Out = os.Stdout
	}
	if config.RunID == "" {
		config.RunID = uuid.NewString()
	}
	return &Pipeline{
		config:  config,
		logger:  config.Logger,
		summary: &Summary{},
	}
}

// RunID identifies this run in logs and receipts.
func (p *Pipeline) RunID() string {
	return p.config.RunID
}

// Summary returns the counts gathered by the last Run.
func (p *Pipeline) Summary() Summary {
	return *p.summary
}

// Run uploads every row of the file at path.
//
// Loading, validation and payload building all finish before the token is
// requested; any problem there means nothing is sent. During upload a
// transport failure stops the run at that row. Rejections from the service
// are printed like any other response and the run continues.
func (p *Pipeline) Run(ctx context.Context, path string) error {
	logger := logging.ForRun(p.logger, p.config.RunID, path)
	p.summary = &Summary{StartTime: time.Now()}

	batch, err := Prepare(path)
	if err != nil {
		return err
	}
	p.summary.TotalRecords = len(batch.Rows)
	logger.Info("metadata validated", "rows", len(batch.Rows))

	token, err := p.config.Credentials.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire API token: %w", err)
	}
	client := p.config.NewClient(token)

	for i, row := range batch.Rows {
		result, err := UploadRow(ctx, client, row)
		if err != nil {
			p.summary.Add(models.OutcomeFailed)
			p.record(ctx, logger, FailedReceipt(p.config.RunID, row, err))
			logger.Error("upload stopped", "row", row.Index, "project_id", row.ProjectID, "uploaded", i, "error", err)
			p.summary.Finalize()
			return &rdrerrors.UploadError{Row: row.Index, ProjectID: row.ProjectID, Uploaded: i, Err: err}
		}

		fmt.Fprintln(p.config.Out, result.Response.String())
		p.summary.Add(result.Outcome)
		p.record(ctx, logger, result.Receipt(p.config.RunID))

		if result.Outcome == models.OutcomeRejected {
			logger.Warn("row rejected by repository", "row", row.Index, "project_id", row.ProjectID, "status", result.Response.StatusCode)
		} else {
			logger.Debug("row uploaded", "row", row.Index, "project_id", row.ProjectID, "status", result.Response.StatusCode)
		}
	}

	p.summary.Finalize()
	fmt.Fprintln(p.config.Out)
	fmt.Fprintln(p.config.Out, CompleteMarker)

	logger.Info("upload finished",
		"rows", p.summary.TotalRecords,
		"created", p.summary.Created,
		"rejected", p.summary.Rejected,
		"duration", p.summary.Duration.Round(time.Millisecond))
	return nil
}

func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, receipt models.Receipt) {
	if p.config.Recorder == nil {
		return
	}
	if err := p.config.Recorder.Record(ctx, receipt); err != nil {
		logger.Warn("failed to record receipt", "row", receipt.Row, "error", err)
	}
}

// FailedReceipt records a row whose request got no response.
func FailedReceipt(runID string, row Row, err error) models.Receipt {
	return models.Receipt{
		RunID:     runID,
		Row:       row.Index,
		ProjectID: row.ProjectID,
		Title:     row.Article.Title,
		Outcome:   models.OutcomeFailed,
		Error:     err.Error(),
		CreatedAt: time.Now().UTC(),
	}
}
