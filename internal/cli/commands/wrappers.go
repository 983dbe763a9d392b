package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/schemascan/internal/cli/ui"
)

// NewWrappersCommand creates the wrappers command
func NewWrappersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wrappers",
		Short: "List the recognised wrapper shapes",
		Long: `Wrappers prints the built-in wrapper shapes together with those added
under wrappers.extra in the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, nil, false)
			if err != nil {
				return err
			}
			defer s.Close()

			table := ui.NewTable(s.out, s.noColor, "NAME", "ARITY", "KIND")
			for _, shape := range s.opts.Wrappers.Shapes() {
				table.AddRow(shape.Name, strconv.Itoa(shape.Arity), string(shape.Kind))
			}
			table.Render()
			return nil
		},
	}
}
