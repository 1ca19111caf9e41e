package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"rdrupload/internal/config"
	"rdrupload/internal/credential"
	"rdrupload/internal/database"
	rdrerrors "rdrupload/internal/errors"
	"rdrupload/internal/logging"
	"rdrupload/internal/pipeline"
	"rdrupload/internal/rdr"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config

	baseURL     string
	logLevel    string
	logFormat   string
	receiptsURI string
)

const usageMessage = "You need to supply a .csv file"

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#dc322f", Dark: "#ff5555"}).
	Bold(true)

var rootCmd = &cobra.Command{
	Use:   "rdr-upload <path-to-file>",
	Short: "Upload a CSV of dataset metadata to the RDR",
	Long: `rdr-upload validates every row of a CSV metadata file, asks for your
RDR API token, and creates one article per row in the row's RDR project.

The token is read from the terminal with echo disabled. It is never taken
from flags or the environment.`,
	Args:              usageArgs,
	PersistentPreRunE: setup,
	RunE:              runUpload,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

// Execute runs the root command and exits non-zero on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+errorLine(err)))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&baseURL, "base-url", "", "RDR API base URL (env "+config.EnvBaseURL+")")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (env "+config.EnvLogLevel+")")
	flags.StringVar(&logFormat, "log-format", "", "Log format: text or json (env "+config.EnvLogFormat+")")
	flags.StringVar(&receiptsURI, "receipts", "", "MongoDB URI for upload receipts (env "+config.EnvReceiptsURI+")")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(historyCmd)
}

func initConfig() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}
}

// errorLine renders err as the single diagnostic line printed on exit.
// Usage errors drop the sentinel prefix and end with the usage form.
func errorLine(err error) string {
	if errors.Is(err, rdrerrors.ErrUsage) {
		return usageMessage + " (usage: " + rootCmd.UseLine() + ")"
	}
	return err.Error()
}

// usageArgs requires exactly one file argument.
func usageArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return fmt.Errorf("%w: %s", rdrerrors.ErrUsage, usageMessage)
	}
	return nil
}

// setup loads configuration, applies flag overrides and configures logging.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("base-url") {
		loaded.BaseURL = baseURL
	}
	if cmd.Flags().Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		loaded.LogFormat = logFormat
	}
	if cmd.Flags().Changed("receipts") {
		loaded.Receipts.URI = receiptsURI
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	cfg = loaded
	logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.Debug("configuration loaded", "config", cfg.String())
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	recorder, closeStore, err := openReceipts(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	p := pipeline.New(pipeline.Config{
		Credentials: credential.NewPrompt(),
		NewClient:   newSubmitter,
		Recorder:    recorder,
		Out:         cmd.OutOrStdout(),
		Logger:      slog.Default(),
	})

	return p.Run(ctx, args[0])
}

// newSubmitter leaves request timing to the default HTTP client.
func newSubmitter(token credential.Token) pipeline.Submitter {
	return rdr.NewClient(cfg.BaseURL, token, nil)
}

// openReceipts connects the receipt store when one is configured. The
// returned close function is always safe to call.
func openReceipts(ctx context.Context) (pipeline.Recorder, func(), error) {
	if !cfg.Receipts.Enabled() {
		return nil, func() {}, nil
	}

	db, err := database.NewMongoDB(cfg.Receipts.URI, cfg.Receipts.Database)
	if err != nil {
		return nil, nil, err
	}

	store := db.Receipts(cfg.Receipts.Collection)
	if err := store.EnsureIndexes(ctx); err != nil {
		slog.Warn("receipt index not created", "error", err)
	}

	return store, func() {
		if err := db.Close(); err != nil {
			slog.Warn("failed to close receipt store", "error", err)
		}
	}, nil
}
