package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/schemascan/internal/cache"
	"github.com/conduit-lang/schemascan/internal/cli/config"
	"github.com/conduit-lang/schemascan/internal/engine"
	"github.com/conduit-lang/schemascan/internal/logging"
)

// session carries everything one command invocation needs
type session struct {
	cfg     *config.Config
	opts    engine.Options
	logger  *zap.Logger
	store   cache.Store
	models  *cache.ModelCache
	out     io.Writer
	errOut  io.Writer
	noColor bool
}

// newSession loads configuration, applies flag overrides and builds the
// logger. The model cache is only opened when withCache is set.
func newSession(cmd *cobra.Command, override func(*config.Config), withCache bool) (*session, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger = logger.With(zap.String("scan_id", uuid.NewString()))

	opts, err := cfg.EngineOptions(logger)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:     cfg,
		opts:    opts,
		logger:  logger,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		noColor: noColorFlag(cmd),
	}

	if withCache {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		store, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("failed to open model cache: %w", err)
		}
		if store != nil {
			s.store = store
			s.models = cache.NewModelCache(store, cfg.Cache.TTL)
			logger.Debug("model cache enabled", zap.String("backend", cfg.Cache.Backend))
		}
	}

	return s, nil
}

func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Debug("closing model cache", zap.Error(err))
		}
	}
	_ = s.logger.Sync()
}
