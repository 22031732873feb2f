package commands

import (
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all allowed names",
		Long: `List every allowed name in ascending id order.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # List names (auto-detect output format)
  pickaname list

  # List names as JSON
  pickaname list --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}
}

func runList(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	list, err := cmdCtx.Names.ListAllowed(cmd.Context())
	if err != nil {
		return err
	}
	return cmdCtx.Renderer.Names("Names", list)
}
