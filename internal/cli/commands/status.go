package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/neteinstein/pickaname/pkg/core"
)

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	var history int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the local store",
		Long: `Show whether the store is populated, how many names it holds and
the outcome of recent imports. Does not trigger an import.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, history)
		},
	}

	cmd.Flags().IntVarP(&history, "history", "n", 5, "Number of recent imports to list (0 to hide)")
	return cmd
}

type statusReport struct {
	StatePath        string            `json:"state_path" yaml:"state_path"`
	Seed             string            `json:"seed" yaml:"seed"`
	SearchMode       string            `json:"search_mode" yaml:"search_mode"`
	MigrationVersion int64             `json:"migration_version" yaml:"migration_version"`
	Populated        bool              `json:"populated" yaml:"populated"`
	Count            int64             `json:"count" yaml:"count"`
	LatestImport     *core.ImportRun   `json:"latest_import,omitempty" yaml:"latest_import,omitempty"`
	History          []*core.ImportRun `json:"history,omitempty" yaml:"history,omitempty"`
}

func runStatus(cmd *cobra.Command, history int) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	store := cmdCtx.Store

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	version, err := store.GetMigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	latest, err := store.GetLatestImportRun(ctx)
	if err != nil {
		return err
	}
	var runs []*core.ImportRun
	if history > 0 {
		runs, err = store.ListImportRuns(ctx, history)
		if err != nil {
			return err
		}
	}

	report := statusReport{
		StatePath:        store.Path(),
		Seed:             cmdCtx.Seed.Name(),
		SearchMode:       string(store.SearchMode()),
		MigrationVersion: version,
		Populated:        count > 0,
		Count:            count,
		LatestImport:     latest,
		History:          runs,
	}

	r := cmdCtx.Renderer
	if ok, err := r.Structured(report); ok {
		return err
	}

	r.Header(1, "Status")
	r.Printf("State:       %s\n", report.StatePath)
	r.Printf("Seed:        %s\n", report.Seed)
	r.Printf("Search mode: %s\n", report.SearchMode)
	r.Printf("Schema:      v%d\n", report.MigrationVersion)
	r.Printf("Names:       %d\n", report.Count)
	if !report.Populated {
		r.Muted("Store is empty; the next read will import the seed.")
	}

	if latest == nil {
		r.Muted("No imports recorded.")
		return nil
	}
	r.Println()
	r.Header(2, "Latest import")
	r.Printf("Run:         %s\n", latest.ID)
	r.Printf("Status:      %s\n", latest.Status)
	r.Printf("Started:     %s\n", latest.StartedAt.Local().Format(time.RFC3339))
	r.Printf("Succeeded:   %d\n", latest.Succeeded)
	r.Printf("Failed:      %d\n", latest.Failed)
	if latest.Error != "" {
		r.Printf("Error:       %s\n", latest.Error)
	}

	if len(runs) > 1 {
		r.Println()
		r.ImportRuns("Recent imports", runs)
	}
	return nil
}
