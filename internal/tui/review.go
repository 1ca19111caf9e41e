package tui

import (
	"fmt"
	"strings"

	"rdrupload/internal/pipeline"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// maxReviewRows caps how many rows the review screen lists.
const maxReviewRows = 10

// ReviewModel lists the validated rows and asks whether to continue.
type ReviewModel struct {
	batch   *pipeline.Batch
	choices []string
	cursor  int
	width   int
	height  int
}

func NewReviewModel(batch *pipeline.Batch) *ReviewModel {
	return &ReviewModel{
		batch: batch,
		choices: []string{
			"🔑 Enter API token and upload",
			"🚪 Exit",
		},
	}
}

func (m *ReviewModel) Init() tea.Cmd {
	return nil
}

func (m *ReviewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter", " ":
			return m, m.handleSelection()
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *ReviewModel) handleSelection() tea.Cmd {
	switch m.cursor {
	case 0:
		return ChangeScreen(UploadScreen)
	case 1:
		return tea.Quit
	}
	return nil
}

func (m *ReviewModel) View() string {
	f := newFrame(m.width)

	title := f.title.Render("📤 RDR Batch Upload")

	var rows strings.Builder
	rows.WriteString(promptStyle.Render(fmt.Sprintf("%s: %d row(s) validated", m.batch.Table.Path, len(m.batch.Rows))))
	rows.WriteString("\n\n")
	for i, row := range m.batch.Rows {
		if i == maxReviewRows {
			rows.WriteString(responseStyle.Render(fmt.Sprintf("… and %d more", len(m.batch.Rows)-maxReviewRows)))
			rows.WriteString("\n")
			break
		}
		fmt.Fprintf(&rows, "%3d  project %-8s %s\n", row.Index, row.ProjectID, row.Article.Title)
	}

	var menu string
	for i, choice := range m.choices {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
			choice = activeChoiceStyle.Render(choice)
		} else {
			choice = choiceStyle.Render(choice)
		}
		menu += fmt.Sprintf("%s %s\n", cursor, choice)
	}

	help := f.help.Render("Use ↑/↓ (or j/k) to navigate • Enter to select • q to quit")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		f.panel.Render(strings.TrimRight(rows.String(), "\n")),
		menu,
		help,
	)

	if m.width > 0 && m.height > 0 {
		content = lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Top,
			content,
		)
	}

	return content
}
