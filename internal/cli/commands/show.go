package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neteinstein/pickaname/internal/names"
)

// ErrInvalidID reports a name id argument that is not an integer.
var ErrInvalidID = errors.New("invalid name ID")

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the details of one name",
		Long: `Show the name, gender and notes of the name with the given id.
Names that are not allowed can still be shown by id.`,
		Example: `  pickaname show 18
  pickaname show 18 -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runShow(cmd, id)
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

func runShow(cmd *cobra.Command, id int64) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	name, found, err := cmdCtx.Names.GetByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: id %d", names.ErrNameNotFound, id)
	}
	return cmdCtx.Renderer.Name(name)
}
