// Package actions turns typed intents and scripted action lists into
// ordered page operations, one ActionResult per operation.
package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ronaldozero7/HeyQ/internal/browser"
	"github.com/Ronaldozero7/HeyQ/internal/intent"
	"github.com/Ronaldozero7/HeyQ/internal/pages"
	"github.com/Ronaldozero7/HeyQ/internal/selector"
)

const clickTimeout = 10 * time.Second

// CredentialSource supplies login secrets per site. Absent credentials
// are not an error: flows simply skip their login step.
type CredentialSource func(site pages.Site) (pages.Credentials, bool)

// Runner executes one intent at a time against a single live page.
// It owns the per-session state the flows need: the current site
// model, the page the last opened product lives on, and the selector
// cache (via the resolver).
type Runner struct {
	page   browser.Page
	res    *selector.Resolver
	logger zerolog.Logger
	creds  CredentialSource
	model  pages.Model

	productPage   browser.Page
	expectedPrice string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithCredentials installs a credential source for login steps.
func WithCredentials(src CredentialSource) RunnerOption {
	return func(r *Runner) { r.creds = src }
}

func NewRunner(page browser.Page, res *selector.Resolver, logger zerolog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		page:   page,
		res:    res,
		logger: logger.With().Str("comp", "runner").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// step is one compiled operation. Critical steps halt the remaining
// sequence on failure; everything else is reported and skipped past.
type step struct {
	name     string
	critical bool
	run      func(ctx context.Context) (map[string]any, error)
}

// Run maps the intent onto the current page model and executes it.
// One ActionResult is produced per compiled step. Non-critical
// failures do not abort the sequence.
func (r *Runner) Run(ctx context.Context, it intent.Intent) []ActionResult {
	steps := r.compile(it)
	results := make([]ActionResult, 0, len(steps))
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			results = append(results, failed(s.name, time.Now(), err))
			return results
		}
		started := time.Now()
		data, err := s.run(ctx)
		if err != nil {
			r.logger.Warn().Str("step", s.name).Err(err).Msg("step failed")
			results = append(results, failed(s.name, started, err))
			if s.critical {
				return results
			}
			continue
		}
		results = append(results, succeeded(s.name, started, data))
	}
	return results
}

// compile maps one intent onto an ordered step sequence. Single-step
// intents become one step; flow intents expand into the full chain.
func (r *Runner) compile(it intent.Intent) []step {
	switch it.Name {
	case intent.KindNavigate:
		return []step{r.navigateStep(it.String(intent.EntitySite), true)}
	case intent.KindSearch:
		return []step{r.searchStep(it.String(intent.EntityQuery))}
	case intent.KindAddToCart:
		// Assumes a prior search left results on the page.
		return []step{r.openResultStep(), r.addSelectedStep(), r.cartStep()}
	case intent.KindCheckout, intent.KindPlaceOrder:
		return []step{r.placeOrderStep()}
	case intent.KindClick:
		return []step{r.clickStep(it.String(intent.EntityTarget))}
	case intent.KindFillForm:
		return []step{r.fillFormStep(it)}
	case intent.KindLogin:
		// Login on its own is a documented no-op: the sites that need
		// it fold it into their checkout flows.
		return []step{{name: "login", run: func(context.Context) (map[string]any, error) {
			r.logger.Info().Msg("standalone login is a no-op; flows log in when needed")
			return nil, nil
		}}}
	case intent.KindFullCheckout, intent.KindAddToCartFlow:
		return r.compileFlow(it)
	default:
		return []step{{name: "unknown", run: func(context.Context) (map[string]any, error) {
			r.logger.Info().Str("raw", it.String(intent.EntityRaw)).Msg("unrecognized command, no action taken")
			return map[string]any{"raw": it.String(intent.EntityRaw)}, nil
		}}}
	}
}

// compileFlow expands a flow intent. Navigation is critical: nothing
// downstream can run without a page model.
func (r *Runner) compileFlow(it intent.Intent) []step {
	site := it.String(intent.EntitySite)
	product := it.String(intent.EntityProduct)
	verify := it.Bool(intent.EntityVerifyPrice)

	steps := []step{r.navigateStep(site, true)}
	if r.creds != nil {
		steps = append(steps, r.loginStep())
	}
	steps = append(steps,
		r.searchStep(product),
		r.addToCartFlowStep(product, verify),
		r.cartStep(),
	)
	if verify {
		steps = append(steps, r.verifyStep(product))
	}
	if it.Name == intent.KindFullCheckout {
		steps = append(steps, r.placeOrderStep())
	}
	return steps
}

func (r *Runner) navigateStep(site string, critical bool) step {
	return step{name: "navigate", critical: critical, run: func(ctx context.Context) (map[string]any, error) {
		if site == "" {
			r.logger.Info().Msg("navigate without site, nothing to do")
			return nil, nil
		}
		resolved, url, err := pages.ResolveSite(site)
		if err != nil {
			return nil, err
		}
		if err := r.page.Goto(url, browser.DefaultNavTimeout); err != nil {
			return nil, fmt.Errorf("goto %s: %w", url, err)
		}
		r.res.ObserveNavigation(url)
		model, err := pages.ForSite(resolved, r.page, r.res, r.logger)
		if err != nil {
			return nil, err
		}
		r.model = model
		model.DismissPopup(ctx)
		return map[string]any{"site": string(resolved), "url": url}, nil
	}}
}

func (r *Runner) loginStep() step {
	return step{name: "login", run: func(ctx context.Context) (map[string]any, error) {
		if r.model == nil {
			return nil, fmt.Errorf("no active site")
		}
		creds, ok := r.creds(r.model.Site())
		if !ok {
			r.logger.Info().Str("site", string(r.model.Site())).Msg("no credentials, skipping login")
			return map[string]any{"skipped": true}, nil
		}
		if err := r.model.OpenLogin(ctx); err != nil {
			return nil, err
		}
		if err := r.model.LoginWithPassword(ctx, creds); err != nil {
			return nil, err
		}
		return map[string]any{"user": creds.Username}, nil
	}}
}

func (r *Runner) searchStep(query string) step {
	return step{name: "search", run: func(ctx context.Context) (map[string]any, error) {
		if r.model == nil {
			return nil, fmt.Errorf("no active site")
		}
		if query == "" {
			return nil, fmt.Errorf("empty search query")
		}
		if err := r.model.Search(ctx, query); err != nil {
			return nil, err
		}
		return map[string]any{"query": query}, nil
	}}
}

// openResultStep opens the top result, recording which page object
// the product now lives on (same tab or popup).
func (r *Runner) openResultStep() step {
	return step{name: "open_first_result", run: func(ctx context.Context) (map[string]any, error) {
		if r.model == nil {
			return nil, fmt.Errorf("no active site")
		}
		product, err := r.model.OpenFirstResult(ctx)
		if err != nil {
			return nil, err
		}
		r.productPage = product
		return nil, nil
	}}
}

func (r *Runner) addSelectedStep() step {
	return step{name: "add_to_cart", run: func(ctx context.Context) (map[string]any, error) {
		if r.model == nil {
			return nil, fmt.Errorf("no active site")
		}
		page := r.productPage
		if page == nil {
			page = r.page
		}
		return nil, r.model.AddSelectedToCart(ctx, page)
	}}
}

// addStep is the flow form: open the top result and add it as one
// reported operation, so flow result counts stay stable.
func (r *Runner) addStep() step {
	return step{name: "add_to_cart", run: func(ctx context.Context) (map[string]any, error) {
		if r.model == nil {
			return nil, fmt.Errorf("no active site")
		}
		product, err := r.model.OpenFirstResult(ctx)
		if err != nil {
			return nil, fmt.Errorf("open first result: %w", err)
		}
		r.productPage = product
		if err := r.model.AddSelectedToCart(ctx, product); err != nil {
			return nil, err
		}
		return nil, nil
	}}
}

// addToCartFlowStep is addStep plus a pre-add price capture when the
// flow asked for verification and the site can report prices.
func (r *Runner) addToCartFlowStep(product string, verify bool) step {
	s := r.addStep()
	if !verify {
		return s
	}
	inner := s.run
	s.run = func(ctx context.Context) (map[string]any, error) {
		if pv, ok := r.model.(pages.PriceVerifier); ok {
			if price, err := pv.InventoryPrice(ctx, product); err == nil {
				r.expectedPrice = price
			} else {
				r.logger.Warn().Err(err).Msg("price capture failed, verification degraded")
			}
		}
		return inner(ctx)
	}
	return s
}

func (r *Runner) cartStep() step {
	return step{name: "go_to_cart", run: func(ctx context.Context) (map[string]any, error) {
		if r.model == nil {
			return nil, fmt.Errorf("no active site")
		}
		return nil, r.model.GoToCart(ctx)
	}}
}

func (r *Runner) verifyStep(product string) step {
	return step{name: "verify_price", run: func(ctx context.Context) (map[string]any, error) {
		pv, ok := r.model.(pages.PriceVerifier)
		if !ok {
			r.logger.Info().Msg("site cannot verify prices, skipping")
			return map[string]any{"skipped": true}, nil
		}
		check := pv.VerifyInCart(ctx, product, r.expectedPrice)
		return map[string]any{
			"product_found":  check.ProductFound,
			"expected_price": check.ExpectedPrice,
			"actual_price":   check.ActualPrice,
			"price_match":    check.PriceMatch,
		}, nil
	}}
}

func (r *Runner) placeOrderStep() step {
	return step{name: "place_order", run: func(ctx context.Context) (map[string]any, error) {
		if r.model == nil {
			return nil, fmt.Errorf("no active site")
		}
		return nil, r.model.PlaceOrder(ctx)
	}}
}

// clickStep clicks by visible text. The target is user phrasing, not a
// selector, so this is fuzzy and best-effort.
func (r *Runner) clickStep(target string) step {
	return step{name: "click", run: func(ctx context.Context) (map[string]any, error) {
		if target == "" {
			return nil, fmt.Errorf("empty click target")
		}
		if err := r.page.GetByText(target, false).First().Click(clickTimeout); err != nil {
			return nil, fmt.Errorf("click %q: %w", target, err)
		}
		return map[string]any{"target": target}, nil
	}}
}

func (r *Runner) fillFormStep(it intent.Intent) step {
	return step{name: "fill_form", run: func(ctx context.Context) (map[string]any, error) {
		pf, ok := r.model.(pages.PaymentFiller)
		if !ok {
			r.logger.Info().Msg("site has no payment form fill, skipping")
			return map[string]any{"skipped": true}, nil
		}
		pf.FillPayment(ctx, pages.PaymentCard{
			Number: it.String("card_number"),
			Name:   it.String("card_name"),
			Expiry: it.String("card_expiry"),
			CVV:    it.String("card_cvv"),
		})
		return nil, nil
	}}
}
