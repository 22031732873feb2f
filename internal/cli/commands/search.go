package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neteinstein/pickaname/pkg/core"
)

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find allowed names containing a substring",
		Long: `Find allowed names whose name contains the query, ignoring case.
Accents are significant: "jo" matches "João" but "joao" does not.

With --all the search runs in the store and also returns names that are
not allowed. Its case handling follows the search_mode setting.`,
		Example: `  pickaname search jo
  pickaname search --all ana -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runSearch(cmd, query, all)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include names that are not allowed")
	return cmd
}

func runSearch(cmd *cobra.Command, query string, all bool) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var found []core.Name
	if all {
		found, err = cmdCtx.Names.SearchAll(cmd.Context(), query)
	} else {
		found, err = cmdCtx.Names.Search(cmd.Context(), query)
	}
	if err != nil {
		return err
	}
	return cmdCtx.Renderer.Names(searchTitle(query), found)
}

func searchTitle(query string) string {
	if strings.TrimSpace(query) == "" {
		return "Names"
	}
	return fmt.Sprintf("Names matching %q", query)
}
