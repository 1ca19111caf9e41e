package tui

import (
	"context"
	"log/slog"

	"rdrupload/internal/credential"
	"rdrupload/internal/pipeline"

	tea "github.com/charmbracelet/bubbletea"
)

type Screen int

const (
	ReviewScreen Screen = iota
	UploadScreen
)

// Options wires a validated batch to the upload screen.
type Options struct {
	Batch     *pipeline.Batch
	NewClient func(token credential.Token) pipeline.Submitter
	Recorder  pipeline.Recorder
	RunID     string
	Logger    *slog.Logger
}

type Model struct {
	currentScreen Screen
	reviewModel   *ReviewModel
	uploadModel   *UploadModel
	quitting      bool
	width         int
	height        int
}

func NewModel(ctx context.Context, opts Options) Model {
	return Model{
		currentScreen: ReviewScreen,
		reviewModel:   NewReviewModel(opts.Batch),
		uploadModel:   NewUploadModel(ctx, opts),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.reviewModel.SetSize(msg.Width, msg.Height)
		m.uploadModel.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			if m.currentScreen == UploadScreen && m.uploadModel.state == UploadTokenState {
				m.currentScreen = ReviewScreen
				return m, nil
			}
		}

	case ScreenChangeMsg:
		m.currentScreen = msg.Screen
		if msg.Screen == UploadScreen {
			return m, m.uploadModel.Init()
		}
		return m, nil
	}

	switch m.currentScreen {
	case ReviewScreen:
		_, cmd := m.reviewModel.Update(msg)
		return m, cmd
	case UploadScreen:
		_, cmd := m.uploadModel.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return "Upload interrupted.\n"
	}

	switch m.currentScreen {
	case ReviewScreen:
		return m.reviewModel.View()
	case UploadScreen:
		return m.uploadModel.View()
	}
	return ""
}

// Lines returns the response line for each uploaded row.
func (m Model) Lines() []string {
	return m.uploadModel.Lines()
}

// Completed reports whether every row was sent.
func (m Model) Completed() bool {
	return m.uploadModel.Completed()
}

// Err returns the error that stopped the upload, if any.
func (m Model) Err() error {
	return m.uploadModel.Err()
}

// Summary returns the upload counts.
func (m Model) Summary() pipeline.Summary {
	return m.uploadModel.Summary()
}

type ScreenChangeMsg struct {
	Screen Screen
}

func ChangeScreen(screen Screen) tea.Cmd {
	return func() tea.Msg {
		return ScreenChangeMsg{Screen: screen}
	}
}
