package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rdrupload/internal/credential"
	rdrerrors "rdrupload/internal/errors"
	"rdrupload/internal/models"
	"rdrupload/internal/pipeline"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// maxVisibleLines caps the response lines shown while uploading.
const maxVisibleLines = 8

type UploadState int

const (
	UploadTokenState UploadState = iota
	UploadProgressState
	UploadResultState
)

// RowUploadedMsg carries one row's outcome back to the model.
type RowUploadedMsg struct {
	Result pipeline.Result
	Err    error
}

// UploadModel asks for the token and then sends rows one at a time. The
// next row is dispatched only after the previous RowUploadedMsg arrives.
type UploadModel struct {
	ctx        context.Context
	opts       Options
	logger     *slog.Logger
	state      UploadState
	tokenInput textinput.Model
	progress   progress.Model
	client     pipeline.Submitter
	next       int
	lines      []string
	summary    pipeline.Summary
	completed  bool
	err        error
	width      int
	height     int
}

func NewUploadModel(ctx context.Context, opts Options) *UploadModel {
	tokenInput := textinput.New()
	tokenInput.Placeholder = "paste token"
	tokenInput.EchoMode = textinput.EchoNone
	tokenInput.Prompt = "🔑 "
	tokenInput.Focus()

	progressBar := progress.New(
		progress.WithSolidFill(barFill),
		progress.WithoutPercentage(),
	)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &UploadModel{
		ctx:        ctx,
		opts:       opts,
		logger:     logger.With("run_id", opts.RunID, "file", opts.Batch.Table.Path),
		state:      UploadTokenState,
		tokenInput: tokenInput,
		progress:   progressBar,
		summary:    pipeline.Summary{TotalRecords: len(opts.Batch.Rows)},
	}
}

func (m *UploadModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *UploadModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case UploadTokenState:
			return m.updateTokenState(msg)
		case UploadProgressState:
			// No input during upload
			return m, nil
		case UploadResultState:
			if msg.String() == "enter" || msg.String() == "q" {
				return m, tea.Quit
			}
		}

	case RowUploadedMsg:
		return m.handleRow(msg)
	}

	return m, cmd
}

func (m *UploadModel) updateTokenState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		m.tokenInput, cmd = m.tokenInput.Update(msg)
		return m, cmd
	}

	token, err := credential.NewToken(m.tokenInput.Value())
	m.tokenInput.Reset()
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil

	return m.startUpload(token)
}

func (m *UploadModel) startUpload(token credential.Token) (tea.Model, tea.Cmd) {
	m.client = m.opts.NewClient(token)
	m.state = UploadProgressState
	m.summary.StartTime = time.Now()
	m.tokenInput.Blur()

	if len(m.opts.Batch.Rows) == 0 {
		return m.finish()
	}
	return m, m.uploadNext()
}

func (m *UploadModel) uploadNext() tea.Cmd {
	ctx, client, row := m.ctx, m.client, m.opts.Batch.Rows[m.next]
	recorder, runID := m.opts.Recorder, m.opts.RunID
	logger := m.logger

	return func() tea.Msg {
		result, err := pipeline.UploadRow(ctx, client, row)

		if recorder != nil {
			var receipt models.Receipt
			if err != nil {
				receipt = pipeline.FailedReceipt(runID, row, err)
			} else {
				receipt = result.Receipt(runID)
			}
			if rerr := recorder.Record(ctx, receipt); rerr != nil {
				logger.Warn("failed to record receipt", "row", row.Index, "error", rerr)
			}
		}

		return RowUploadedMsg{Result: result, Err: err}
	}
}

func (m *UploadModel) handleRow(msg RowUploadedMsg) (tea.Model, tea.Cmd) {
	row := msg.Result.Row

	if msg.Err != nil {
		m.summary.Add(models.OutcomeFailed)
		m.summary.Finalize()
		m.err = &rdrerrors.UploadError{Row: row.Index, ProjectID: row.ProjectID, Uploaded: m.next, Err: msg.Err}
		m.logger.Error("upload stopped", "row", row.Index, "project_id", row.ProjectID, "uploaded", m.next, "error", msg.Err)
		m.state = UploadResultState
		return m, nil
	}

	m.lines = append(m.lines, msg.Result.Response.String())
	m.summary.Add(msg.Result.Outcome)
	if msg.Result.Outcome == models.OutcomeRejected {
		m.logger.Warn("row rejected by repository", "row", row.Index, "project_id", row.ProjectID, "status", msg.Result.Response.StatusCode)
	}

	m.next++
	if m.next < len(m.opts.Batch.Rows) {
		return m, m.uploadNext()
	}
	return m.finish()
}

func (m *UploadModel) finish() (tea.Model, tea.Cmd) {
	m.summary.Finalize()
	m.completed = true
	m.state = UploadResultState
	m.logger.Info("upload finished",
		"rows", m.summary.TotalRecords,
		"created", m.summary.Created,
		"rejected", m.summary.Rejected)
	return m, nil
}

// Lines returns the response line for each row uploaded so far.
func (m *UploadModel) Lines() []string {
	return m.lines
}

// Completed reports whether every row was sent.
func (m *UploadModel) Completed() bool {
	return m.completed
}

// Err returns the error that stopped the run, if any.
func (m *UploadModel) Err() error {
	if m.state != UploadResultState {
		return nil
	}
	return m.err
}

func (m *UploadModel) Summary() pipeline.Summary {
	return m.summary
}

func (m *UploadModel) View() string {
	switch m.state {
	case UploadTokenState:
		return m.renderTokenForm()
	case UploadProgressState:
		return m.renderProgress()
	case UploadResultState:
		return m.renderResult()
	}
	return ""
}

func (m *UploadModel) renderTokenForm() string {
	f := newFrame(m.width)

	title := f.title.Render("🔑 Authenticate")

	body := promptStyle.Render(credential.PromptText) + "\n" + m.tokenInput.View()
	if m.err != nil {
		body += "\n\n" + failedStyle.Render(m.err.Error())
	}
	form := f.panel.Render(body)

	help := f.help.Render("Input is hidden • Enter: Start upload • Esc: Back")

	content := lipgloss.JoinVertical(lipgloss.Left, title, form, help)

	if m.width > 0 && m.height > 0 {
		content = lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Top,
			content,
		)
	}

	return content
}

func (m *UploadModel) renderProgress() string {
	f := newFrame(m.width)

	title := f.title.Render("📤 Uploading...")

	progressWidth := m.width - 10
	if progressWidth < 20 {
		progressWidth = 20
	}
	if progressWidth > 80 {
		progressWidth = 80
	}
	m.progress.Width = progressWidth

	total := len(m.opts.Batch.Rows)
	ratio := 0.0
	if total > 0 {
		ratio = float64(m.next) / float64(total)
	}

	progressText := fmt.Sprintf("Row %d of %d", m.next+1, total)
	content := barStyle.Render(m.progress.ViewAs(ratio) + "\n" + progressText)

	help := f.help.Render(m.tail())

	return lipgloss.JoinVertical(lipgloss.Left, title, content, help)
}

func (m *UploadModel) renderResult() string {
	f := newFrame(m.width)

	title := f.title.Render("📤 Upload finished")

	var status string
	switch {
	case m.err != nil:
		status = failedStyle.Render(fmt.Sprintf("❌ %v", m.err))
	case m.summary.Rejected > 0:
		status = outcomeStyle(models.OutcomeRejected).Render(fmt.Sprintf("⚠️  %s %d row(s) rejected", pipeline.CompleteMarker, m.summary.Rejected))
	default:
		status = outcomeStyle(models.OutcomeCreated).Render("✅ " + pipeline.CompleteMarker)
	}

	stats := fmt.Sprintf(
		"📊 Upload Statistics:\n"+
			"   Total rows: %d\n"+
			"   Created: %d\n"+
			"   Rejected: %d\n"+
			"   Failed: %d\n"+
			"   Duration: %s",
		m.summary.TotalRecords,
		m.summary.Created,
		m.summary.Rejected,
		m.summary.Failed,
		m.summary.Duration.Round(time.Millisecond),
	)

	help := f.help.Render("Enter/q: Quit and print responses")

	return lipgloss.JoinVertical(lipgloss.Left, title, status, stats, responseStyle.Render(m.tail()), help)
}

// tail returns the most recent response lines.
func (m *UploadModel) tail() string {
	lines := m.lines
	if len(lines) > maxVisibleLines {
		lines = lines[len(lines)-maxVisibleLines:]
	}
	return strings.Join(lines, "\n")
}
