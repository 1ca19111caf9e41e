package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"rdrupload/internal/logging"
	"rdrupload/internal/pipeline"
	"rdrupload/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui <path-to-file>",
	Short: "Upload interactively with a progress bar",
	Long: `Validate the file, review its rows, then enter the API token in a
hidden field and watch each row upload.

Responses are printed to stdout once the interface closes, in the same
form as a plain upload.`,
	Args: usageArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	batch, err := pipeline.Prepare(args[0])
	if err != nil {
		return err
	}

	recorder, closeStore, err := openReceipts(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	model := tui.NewModel(ctx, tui.Options{
		Batch:     batch,
		NewClient: newSubmitter,
		Recorder:  recorder,
		RunID:     uuid.NewString(),
		// stderr is covered by the alternate screen
		Logger: logging.Discard(),
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	result := final.(tui.Model)
	out := cmd.OutOrStdout()
	for _, line := range result.Lines() {
		fmt.Fprintln(out, line)
	}
	if err := result.Err(); err != nil {
		return err
	}
	if !result.Completed() {
		if n := len(result.Lines()); n > 0 {
			return fmt.Errorf("upload interrupted after %d row(s)", n)
		}
		return nil
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, pipeline.CompleteMarker)
	return nil
}
