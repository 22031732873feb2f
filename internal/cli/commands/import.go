package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/neteinstein/pickaname/internal/importer"
)

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load the name catalogue into the local store",
		Long: `Parse the seed resource and write every name into the local store.

The first read of an empty store imports automatically. Use this command
to import ahead of time, or with --force to re-import over existing data.
Existing ids are replaced, never duplicated.`,
		Example: `  # Import the bundled catalogue if the store is empty
  pickaname import

  # Re-import from a custom seed file
  pickaname import --force --seed ./database.data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Re-import even when the store is populated")
	return cmd
}

// importResult is the structured form of an import outcome.
type importResult struct {
	Skipped bool             `json:"skipped" yaml:"skipped"`
	Count   int64            `json:"count" yaml:"count"`
	Report  *importer.Report `json:"report,omitempty" yaml:"report,omitempty"`
}

func runImport(cmd *cobra.Command, force bool) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	r := cmdCtx.Renderer

	count, err := cmdCtx.Store.Count(ctx)
	if err != nil {
		return err
	}

	populated, err := cmdCtx.Importer.Populated(ctx)
	if err != nil {
		return err
	}

	result := importResult{Count: count}
	if populated && !force {
		result.Skipped = true
		if ok, err := r.Structured(result); ok {
			return err
		}
		r.Muted(fmt.Sprintf("Store already holds %d names; use --force to re-import", count))
		return nil
	}

	report, err := cmdCtx.Importer.Run(ctx)
	if err != nil {
		return fmt.Errorf("import from %s failed: %w", cmdCtx.Seed.Name(), err)
	}

	result.Report = report
	if result.Count, err = cmdCtx.Store.Count(ctx); err != nil {
		return err
	}
	if ok, err := r.Structured(result); ok {
		return err
	}

	r.Success(fmt.Sprintf("Imported %d names from %s", report.Succeeded, report.Source))
	if report.Failed > 0 {
		r.Warning(fmt.Sprintf("%d seed lines could not be parsed", report.Failed))
		if cmdCtx.Cfg.Verbose {
			for _, f := range report.Failures {
				r.Muted("  " + f.Error())
			}
		}
	}
	cmdCtx.Logger.Debug("import finished", slog.String("run_id", report.RunID), slog.Int("batches", report.Batches))
	return nil
}
