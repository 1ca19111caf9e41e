package cmd

import (
	"fmt"
	"log/slog"

	"rdrupload/internal/csv"
	"rdrupload/internal/metadata"

	"github.com/spf13/cobra"
)

var validateAll bool

var validateCmd = &cobra.Command{
	Use:   "validate <path-to-file>",
	Short: "Check a metadata file without uploading",
	Long: `Load the file, check its columns and mandatory values, and build every
payload, exactly as an upload would, without asking for a token or
contacting the RDR.

By default the first problem is reported. Use --all to list every problem.`,
	Args: usageArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVarP(&validateAll, "all", "a", false, "Report every problem instead of stopping at the first")
}

func runValidate(cmd *cobra.Command, args []string) error {
	table, err := csv.NewParser(args[0]).ParseTable()
	if err != nil {
		return err
	}

	if !validateAll {
		if err := metadata.Validate(table); err != nil {
			return err
		}
		if _, err := metadata.BuildArticles(table); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d row(s) OK\n", table.Path, table.Len())
		return nil
	}

	problems := metadata.ValidateAll(table)
	for _, p := range problems {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	slog.Debug("validation finished", "file", table.Path, "rows", table.Len(), "problems", len(problems))

	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s) found in %s", len(problems), table.Path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d row(s) OK\n", table.Path, table.Len())
	return nil
}
