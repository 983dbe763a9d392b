package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/schemascan/internal/cache"
	"github.com/conduit-lang/schemascan/internal/cli/config"
	"github.com/conduit-lang/schemascan/internal/cli/ui"
	"github.com/conduit-lang/schemascan/internal/engine"
	"github.com/conduit-lang/schemascan/internal/model"
	"github.com/conduit-lang/schemascan/internal/typegraph/graphfile"
	"github.com/conduit-lang/schemascan/internal/watch"
)

type scanFlags struct {
	roots           []string
	format          string
	output          string
	naming          string
	strictTags      bool
	strictOverloads bool
	watch           bool
	refresh         bool
}

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	flags := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "scan <snapshot>",
		Short: "Scan a type graph snapshot into a schema model",
		Long: `Scan reads a type graph snapshot and prints the schema model of each root.

Without --root every type that can be scanned on its own is used as a root.

Examples:
  schemascan scan graph.yaml --root shop.Order
  schemascan scan graph.yaml --format table
  schemascan scan graph.yaml --format jsonschema --output order.schema.json
  schemascan scan graph.yaml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.roots, "root", "r", nil, "root type to scan (repeatable)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: json, jsonschema or table (default from config)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write output to a file instead of stdout")
	cmd.Flags().StringVar(&flags.naming, "naming", "", "naming strategy for properties without a rename")
	cmd.Flags().BoolVar(&flags.strictTags, "strict-tags", false, "fail on equally ranked conflicting tags")
	cmd.Flags().BoolVar(&flags.strictOverloads, "strict-overloads", false, "fail when several callables share a route")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rescan when the snapshot changes")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "drop cached models before scanning")

	return cmd
}

// apply copies explicitly set flags over the loaded configuration
func (f *scanFlags) apply(cmd *cobra.Command) func(*config.Config) {
	return func(cfg *config.Config) {
		if cmd.Flags().Changed("format") {
			cfg.Output.Format = f.format
		}
		if cmd.Flags().Changed("naming") {
			cfg.Naming = f.naming
		}
		if cmd.Flags().Changed("strict-tags") {
			cfg.StrictTags = f.strictTags
		}
		if cmd.Flags().Changed("strict-overloads") {
			cfg.StrictOverloads = f.strictOverloads
		}
	}
}

func runScan(cmd *cobra.Command, path string, flags *scanFlags) error {
	switch f := flags.format; f {
	case "", formatJSON, formatJSONSchema, formatTable:
	default:
		return fmt.Errorf("unknown format %q (expected json, jsonschema or table)", f)
	}

	s, err := newSession(cmd, flags.apply(cmd), true)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if flags.refresh && s.models != nil {
		if err := s.models.Invalidate(ctx); err != nil {
			return fmt.Errorf("failed to drop cached models: %w", err)
		}
		s.logger.Info("dropped cached models")
	}

	once := func() error {
		models, err := s.scanFile(ctx, path, flags.roots)
		if err != nil {
			return err
		}
		for _, m := range models {
			ui.WriteWarnings(s.errOut, m.Warnings, s.noColor)
		}
		return s.emit(models, flags.output)
	}

	if !flags.watch {
		return once()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := once(); err != nil {
		reportError(s.errOut, err, s.noColor)
	}

	w, err := watch.NewFileWatcher([]string{path}, 0, s.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.errOut, "watching %s for changes (Ctrl+C to stop)\n", path)

	return w.Run(ctx, func([]string) error {
		if err := once(); err != nil {
			reportError(s.errOut, err, s.noColor)
		}
		return nil
	})
}

// scanFile parses the snapshot at path and scans each root, going through
// the model cache when one is configured
func (s *session) scanFile(ctx context.Context, path string, roots []string) ([]*model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	g, err := graphfile.Parse(data)
	if err != nil {
		return nil, err
	}

	scanner := engine.NewScanner(g, s.opts)
	if len(roots) == 0 {
		roots = scanner.Roots()
	}
	for _, root := range roots {
		if _, ok := g.Lookup(root); !ok {
			ids := make([]string, 0, g.Len())
			for _, n := range g.Types() {
				ids = append(ids, n.ID)
			}
			fmt.Fprint(s.errOut, ui.UnknownRootError(root, ui.Suggest(root, ids), s.noColor))
			return nil, errReported
		}
	}

	s.logger.Info("scanning snapshot", zap.String("path", path), zap.Int("types", g.Len()), zap.Strings("roots", roots))

	if s.models == nil {
		return engine.ScanAll(ctx, g, roots, s.opts)
	}

	fingerprint := s.cfg.Fingerprint()
	models := make([]*model.Model, len(roots))
	for i, root := range roots {
		key := cache.Key(data, root, fingerprint)
		m, hit, err := s.models.GetOrScan(ctx, key, func() (*model.Model, error) {
			return scanner.Scan(root)
		})
		if m == nil {
			return nil, err
		}
		if err != nil {
			s.logger.Warn("model cache unavailable", zap.String("root", root), zap.Error(err))
		}
		s.logger.Debug("scanned root", zap.String("root", root), zap.Bool("cache_hit", hit))
		models[i] = m
	}
	return models, nil
}

// emit renders models in the configured format to stdout or to output. A
// single JSON model is written with model.WriteToFile, which creates missing
// parent directories.
func (s *session) emit(models []*model.Model, output string) error {
	if output == "" {
		return render(s.out, models, s.cfg.Output.Format, s.noColor)
	}

	if s.cfg.Output.Format == formatJSON && len(models) == 1 {
		if err := model.WriteToFile(models[0], output); err != nil {
			return err
		}
		ui.WriteSuccess(s.errOut, fmt.Sprintf("wrote 1 model(s) to %s", output), s.noColor)
		return nil
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := render(f, models, s.cfg.Output.Format, true); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	ui.WriteSuccess(s.errOut, fmt.Sprintf("wrote %d model(s) to %s", len(models), output), s.noColor)
	return nil
}
