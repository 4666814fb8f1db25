// Package session wires the pipeline for one automation run: one
// browser session, one selector cache, one parsing context, one trace
// sink. Parallel runs each build their own Session; nothing here is
// shared.
package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Ronaldozero7/HeyQ/internal/actions"
	"github.com/Ronaldozero7/HeyQ/internal/browser"
	"github.com/Ronaldozero7/HeyQ/internal/config"
	"github.com/Ronaldozero7/HeyQ/internal/intent"
	"github.com/Ronaldozero7/HeyQ/internal/llm"
	"github.com/Ronaldozero7/HeyQ/internal/nlp"
	"github.com/Ronaldozero7/HeyQ/internal/pages"
	"github.com/Ronaldozero7/HeyQ/internal/secrets"
	"github.com/Ronaldozero7/HeyQ/internal/selector"
	"github.com/Ronaldozero7/HeyQ/internal/snapshot"
	"github.com/Ronaldozero7/HeyQ/internal/trace"
)

// Session is one end-to-end run: utterances in, action results out.
type Session struct {
	launcher *browser.Launcher
	sess     *browser.Session
	page     browser.Page
	parser   *llm.Parser
	runner   *actions.Runner
	executor *actions.Executor
	tracer   *trace.Writer
	logger   zerolog.Logger
}

// New launches a browser and wires the pipeline per cfg. The caller
// owns the returned session and must Close it.
func New(ctx context.Context, cfg config.Config, store *secrets.Store, logger zerolog.Logger) (*Session, error) {
	launcher, err := browser.NewLauncher(ctx, browser.Options{
		Name:   cfg.Browser,
		Headed: cfg.Headed,
		SlowMo: cfg.SlowMo,
	})
	if err != nil {
		return nil, fmt.Errorf("browser init: %w", err)
	}
	bsess, err := launcher.NewSession(ctx)
	if err != nil {
		_ = launcher.Close()
		return nil, fmt.Errorf("browser session: %w", err)
	}
	page := bsess.Page()

	res := selector.New(page,
		selector.WithTTL(cfg.SelectorTTL),
		selector.WithLogger(logger.With().Str("comp", "selector").Logger()),
	)

	var client llm.Client
	if cfg.LLM.Enabled {
		client, err = llm.NewClient(cfg.LLM.Provider, logger.With().Str("comp", "llm").Logger())
		if err != nil {
			// The provider is an enhancement; a missing key must not
			// stop the run.
			logger.Warn().Err(err).Msg("provider unavailable, rule engine only")
			client = nil
		}
	}
	parser := llm.NewParser(client, &intent.Context{}, logger,
		nlp.WithDefaultSite(cfg.DefaultSite))

	var tracer *trace.Writer
	if cfg.TracePath != "" {
		tracer, err = trace.Open(cfg.TracePath)
		if err != nil {
			_ = bsess.Close()
			_ = launcher.Close()
			return nil, err
		}
	}

	runner := actions.NewRunner(page, res, logger,
		actions.WithCredentials(func(site pages.Site) (pages.Credentials, bool) {
			return store.For(site)
		}))

	return &Session{
		launcher: launcher,
		sess:     bsess,
		page:     page,
		parser:   parser,
		runner:   runner,
		executor: actions.NewExecutor(page, res, logger),
		tracer:   tracer,
		logger:   logger.With().Str("comp", "session").Logger(),
	}, nil
}

// Handle parses one utterance, records a redacted trace, and runs the
// resulting intent. Parsing and running never fail outright; whatever
// went wrong is inside the results.
func (s *Session) Handle(ctx context.Context, text string) []actions.ActionResult {
	it := s.parser.ParseIntent(ctx, text)
	s.logger.Info().Str("intent", string(it.Name)).Msg("utterance parsed")
	if s.tracer != nil {
		if err := s.tracer.Append(text, it); err != nil {
			s.logger.Warn().Err(err).Msg("trace append failed")
		}
	}
	return s.runner.Run(ctx, it)
}

// Parse exposes parsing without execution, for dry runs.
func (s *Session) Parse(ctx context.Context, text string) intent.Intent {
	return s.parser.ParseIntent(ctx, text)
}

// RunPlan executes a scripted action list.
func (s *Session) RunPlan(ctx context.Context, plan actions.Plan) []actions.ActionResult {
	s.logger.Info().Str("plan", plan.Name).Int("actions", len(plan.Actions)).Msg("plan started")
	return s.executor.Execute(ctx, plan.Actions)
}

// Snapshot captures the current page state for diagnostics.
func (s *Session) Snapshot(ctx context.Context, screenshotDir string) (snapshot.Summary, error) {
	if screenshotDir != "" {
		return snapshot.CollectWithScreenshot(ctx, s.page, screenshotDir)
	}
	return snapshot.Collect(ctx, s.page)
}

// Close releases the browser session and the trace sink.
func (s *Session) Close() {
	if s.tracer != nil {
		if err := s.tracer.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("trace close failed")
		}
	}
	if err := s.sess.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("browser session close failed")
	}
	if err := s.launcher.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("browser close failed")
	}
}
