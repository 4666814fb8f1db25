package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ronaldozero7/HeyQ/internal/browser"
	"github.com/Ronaldozero7/HeyQ/internal/selector"
)

// BatchAction is one record in a scripted action list. Action selects
// the verb; the remaining fields are verb-specific.
type BatchAction struct {
	Action      string   `yaml:"action" json:"action"`
	URL         string   `yaml:"url,omitempty" json:"url,omitempty"`
	Selector    string   `yaml:"selector,omitempty" json:"selector,omitempty"`
	Text        string   `yaml:"text,omitempty" json:"text,omitempty"`
	Selectors   []string `yaml:"selectors,omitempty" json:"selectors,omitempty"`
	TimeoutMS   int      `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Path        string   `yaml:"path,omitempty" json:"path,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Critical    bool     `yaml:"critical,omitempty" json:"critical,omitempty"`
}

func (a BatchAction) timeout() time.Duration {
	if a.TimeoutMS > 0 {
		return time.Duration(a.TimeoutMS) * time.Millisecond
	}
	return browser.DefaultActionTimeout
}

// Executor runs scripted action lists strictly in order against one
// page, routing selectors through the resolver so drifted markup still
// resolves.
type Executor struct {
	page   browser.Page
	res    *selector.Resolver
	logger zerolog.Logger
}

func NewExecutor(page browser.Page, res *selector.Resolver, logger zerolog.Logger) *Executor {
	return &Executor{
		page:   page,
		res:    res,
		logger: logger.With().Str("comp", "executor").Logger(),
	}
}

// Execute runs every action in order. A failed action marked critical
// halts the batch; the results collected so far are returned and
// nothing completed is rolled back.
func (e *Executor) Execute(ctx context.Context, batch []BatchAction) []ActionResult {
	runID := uuid.NewString()
	logger := e.logger.With().Str("run_id", runID).Logger()
	logger.Info().Int("actions", len(batch)).Msg("batch started")

	results := make([]ActionResult, 0, len(batch))
	for i, action := range batch {
		if err := ctx.Err(); err != nil {
			results = append(results, failed(action.Action, time.Now(), err))
			return results
		}
		started := time.Now()
		result := e.execute(ctx, action)
		result.ElapsedMS = time.Since(started).Milliseconds()
		results = append(results, result)
		if !result.OK {
			logger.Warn().
				Int("index", i).
				Str("action", action.Action).
				Str("error", result.Error).
				Bool("critical", action.Critical).
				Msg("action failed")
			if action.Critical {
				logger.Error().Int("completed", len(results)).Msg("critical action failed, batch halted")
				return results
			}
		}
	}
	logger.Info().Int("completed", len(results)).Msg("batch finished")
	return results
}

func (e *Executor) execute(ctx context.Context, a BatchAction) ActionResult {
	started := time.Now()
	switch a.Action {
	case "navigate":
		if err := e.page.Goto(a.URL, browser.DefaultNavTimeout); err != nil {
			return failed(a.Action, started, err)
		}
		e.res.ObserveNavigation(a.URL)
		return succeeded(a.Action, started, map[string]any{"url": a.URL})

	case "click":
		sel := e.res.Resolve(a.Selector)
		if err := e.page.Locator(sel).First().Click(a.timeout()); err != nil {
			return failed(a.Action, started, err)
		}
		r := succeeded(a.Action, started, nil)
		r.SelectorUsed = sel
		return r

	case "fill":
		sel := e.res.Resolve(a.Selector)
		if err := e.page.Locator(sel).First().Fill(a.Text, a.timeout()); err != nil {
			return failed(a.Action, started, err)
		}
		r := succeeded(a.Action, started, nil)
		r.SelectorUsed = sel
		return r

	case "exists":
		sel := e.res.Resolve(a.Selector)
		n, err := e.page.Locator(sel).Count()
		if err != nil {
			return failed(a.Action, started, err)
		}
		r := succeeded(a.Action, started, map[string]any{"exists": n > 0, "count": n})
		r.SelectorUsed = sel
		return r

	case "first_visible":
		sel, ok := e.res.FirstVisible(a.Selectors)
		r := succeeded(a.Action, started, map[string]any{"found": ok})
		r.SelectorUsed = sel
		return r

	case "wait":
		e.page.WaitTimeout(a.timeout())
		return succeeded(a.Action, started, nil)

	case "screenshot":
		if err := e.page.Screenshot(a.Path); err != nil {
			return failed(a.Action, started, err)
		}
		return succeeded(a.Action, started, map[string]any{"path": a.Path})

	case "smart_click":
		return e.smartClick(a, started)

	default:
		return failed(a.Action, started, fmt.Errorf("unknown action %q", a.Action))
	}
}

// smartClick resolves the declared selector, and when even the
// resolved form will not click, falls back to a text match on the
// action's description.
func (e *Executor) smartClick(a BatchAction, started time.Time) ActionResult {
	sel := e.res.Resolve(a.Selector)
	if err := e.page.Locator(sel).First().Click(a.timeout()); err == nil {
		r := succeeded(a.Action, started, nil)
		r.SelectorUsed = sel
		return r
	}
	text := a.Description
	if text == "" {
		text = a.Text
	}
	if text == "" {
		return failed(a.Action, started, fmt.Errorf("selector %q not clickable and no text fallback", a.Selector))
	}
	if err := e.page.GetByText(text, false).First().Click(a.timeout()); err != nil {
		return failed(a.Action, started, fmt.Errorf("selector %q and text %q both failed: %w", a.Selector, text, err))
	}
	r := succeeded(a.Action, started, map[string]any{"via": "text"})
	r.SelectorUsed = text
	return r
}
