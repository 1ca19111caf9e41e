package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"rdrupload/internal/backup"
	"rdrupload/internal/database"
	"rdrupload/internal/models"

	"github.com/spf13/cobra"
)

var (
	outputDir    string
	exportFormat string
	historyRunID string
)

// receiptFinder looks up recorded receipts.
type receiptFinder interface {
	FindByRun(ctx context.Context, runID string) ([]models.Receipt, error)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Work with recorded upload receipts",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List upload receipts",
	Long:  "List recorded upload receipts in upload order, optionally for a single run",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export upload receipts",
	Long:  "Export recorded upload receipts to a BSON or JSON lines file, optionally for a single run",
	Args:  cobra.NoArgs,
	RunE:  runHistoryExport,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyRunID, "run", "", "Only receipts from this run id")

	historyExportCmd.Flags().StringVarP(&outputDir, "output", "o", "./exports", "Output directory for export files")
	historyExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: bson or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
}

// openHistory connects to the configured receipt store.
func openHistory() (*database.MongoDB, *database.ReceiptStore, error) {
	if !cfg.Receipts.Enabled() {
		return nil, nil, fmt.Errorf("no receipt store configured: set --receipts or RDR_RECEIPTS_URI")
	}

	db, err := database.NewMongoDB(cfg.Receipts.URI, cfg.Receipts.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Receipts(cfg.Receipts.Collection), nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	db, store, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	return listReceipts(cmd.Context(), store, historyRunID, cmd.OutOrStdout())
}

// listReceipts writes one aligned line per receipt.
func listReceipts(ctx context.Context, finder receiptFinder, runID string, w io.Writer) error {
	receipts, err := finder.FindByRun(ctx, runID)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tROW\tPROJECT\tOUTCOME\tSTATUS\tCREATED\tTITLE")
	for _, r := range receipts {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%s\t%s\n",
			r.RunID, r.Row, r.ProjectID, r.Outcome, r.StatusCode,
			r.CreatedAt.Format(time.RFC3339), r.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	slog.Debug("receipts listed", "run_id", runID, "receipts", len(receipts))
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	if err := backup.ValidateFormat(exportFormat); err != nil {
		return err
	}

	db, store, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	service := backup.NewService(store)

	slog.Info("exporting receipts", "collection", cfg.Receipts.Collection, "format", exportFormat, "run_id", historyRunID)
	path, count, err := service.ExportReceipts(cmd.Context(), cfg.Receipts.Collection, outputDir, exportFormat, historyRunID)
	if err != nil {
		return err
	}

	slog.Info("export completed", "file", path, "receipts", count)
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
