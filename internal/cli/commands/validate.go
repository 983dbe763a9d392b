package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/schemascan/internal/cli/config"
	"github.com/conduit-lang/schemascan/internal/cli/ui"
	"github.com/conduit-lang/schemascan/internal/engine"
	scanerrors "github.com/conduit-lang/schemascan/internal/errors"
	"github.com/conduit-lang/schemascan/internal/model"
	"github.com/conduit-lang/schemascan/internal/typegraph/graphfile"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	var strictTags, strictOverloads bool

	cmd := &cobra.Command{
		Use:   "validate <snapshot>",
		Short: "Check a type graph snapshot for defects",
		Long: `Validate checks the graph structure, then scans every root and reports
all errors and warnings instead of stopping at the first one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override := func(cfg *config.Config) {
				if cmd.Flags().Changed("strict-tags") {
					cfg.StrictTags = strictTags
				}
				if cmd.Flags().Changed("strict-overloads") {
					cfg.StrictOverloads = strictOverloads
				}
			}
			return runValidate(cmd, args[0], override)
		},
	}

	cmd.Flags().BoolVar(&strictTags, "strict-tags", false, "fail on equally ranked conflicting tags")
	cmd.Flags().BoolVar(&strictOverloads, "strict-overloads", false, "fail when several callables share a route")

	return cmd
}

func runValidate(cmd *cobra.Command, path string, override func(*config.Config)) error {
	s, err := newSession(cmd, override, false)
	if err != nil {
		return err
	}
	defer s.Close()

	g, err := graphfile.Load(path)
	if err != nil {
		return err
	}

	var found scanerrors.ErrorList
	seen := make(map[string]bool)
	add := func(e *scanerrors.ScanError) {
		key := string(e.Code) + "\x00" + e.Node + "\x00" + e.Message
		if !seen[key] {
			seen[key] = true
			found = append(found, e)
		}
	}

	for _, e := range g.Validate() {
		add(e)
	}

	roots := 0
	if !found.HasErrors() {
		scanner := engine.NewScanner(g, s.opts)
		for _, root := range scanner.Roots() {
			roots++
			m, err := scanner.Scan(root)
			if err != nil {
				se, ok := scanerrors.As(err)
				if !ok {
					return err
				}
				add(se)
				continue
			}
			for _, w := range m.Warnings {
				add(warningError(w))
			}
		}
	}

	s.logger.Info("validated snapshot", zap.String("path", path), zap.Int("types", g.Len()), zap.Int("roots", roots), zap.Int("findings", len(found)))

	if len(found) > 0 {
		ui.WriteErrorList(s.out, found, s.noColor)
	}
	if found.HasErrors() {
		return errReported
	}

	ui.WriteSuccess(s.out, fmt.Sprintf("%s: %d type(s), %d root(s) scanned", path, g.Len(), roots), s.noColor)
	return nil
}

// warningError lifts a model warning back into a ScanError for reporting
func warningError(w model.Warning) *scanerrors.ScanError {
	kind := scanerrors.KindUnsupportedWrapper
	if w.Code == string(scanerrors.ErrRouteConflict) {
		kind = scanerrors.KindRouteConflict
	}
	return &scanerrors.ScanError{
		Code:     scanerrors.ErrorCode(w.Code),
		Type:     "warning",
		Kind:     kind,
		Severity: scanerrors.SeverityWarning,
		Message:  w.Message,
		Node:     w.Node,
	}
}
