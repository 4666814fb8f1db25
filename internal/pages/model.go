// Package pages maps semantic shop operations onto site-specific
// selector strategies. Every site implements the same Model surface;
// adding a site means adding a model, never editing existing ones.
package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Ronaldozero7/HeyQ/internal/browser"
	"github.com/Ronaldozero7/HeyQ/internal/selector"
)

// Site is the closed set of supported shops.
type Site string

const (
	SiteSauceDemo Site = "saucedemo"
	SiteFlipkart  Site = "flipkart"
	SiteAmazon    Site = "amazon"
)

// URL returns the site's landing page.
func (s Site) URL() string {
	switch s {
	case SiteFlipkart:
		return "https://www.flipkart.com"
	case SiteAmazon:
		return "https://www.amazon.com"
	default:
		return "https://www.saucedemo.com"
	}
}

// ResolveSite maps a free-form site entity (keyword or URL) to a
// known site plus the URL to open. Unknown input falls back to
// saucedemo's shape only when it is not itself a URL.
func ResolveSite(raw string) (Site, string, error) {
	t := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(t, "saucedemo"):
		return SiteSauceDemo, SiteSauceDemo.URL(), nil
	case strings.Contains(t, "flipkart"):
		return SiteFlipkart, SiteFlipkart.URL(), nil
	case strings.Contains(t, "amazon"):
		return SiteAmazon, SiteAmazon.URL(), nil
	case strings.HasPrefix(t, "http://"), strings.HasPrefix(t, "https://"):
		// A URL outside the known set keeps its address but gets no
		// site-specific strategy.
		return "", raw, fmt.Errorf("no page model for %s", raw)
	case t == "":
		return "", "", fmt.Errorf("empty site")
	default:
		return "", "", fmt.Errorf("unknown site %q", raw)
	}
}

// Credentials are per-site login secrets, supplied by the caller.
type Credentials struct {
	Username string
	Password string
}

// CheckoutInfo is the buyer information the demo site's checkout form
// requires.
type CheckoutInfo struct {
	FirstName  string
	LastName   string
	PostalCode string
}

// CartCheck reports a post-add verification.
type CartCheck struct {
	ProductFound  bool
	ExpectedPrice string
	ActualPrice   string
	PriceMatch    bool
}

// Model is the shared semantic operation surface. Concrete strategies
// differ per site: markup, click-vs-popup behavior and login flows are
// site-specific.
type Model interface {
	Site() Site
	// DismissPopup closes any first-visit interstitial. Best effort:
	// the popup may legitimately be absent.
	DismissPopup(ctx context.Context)
	OpenLogin(ctx context.Context) error
	LoginWithPassword(ctx context.Context, creds Credentials) error
	Search(ctx context.Context, query string) error
	// OpenFirstResult opens the top result and returns whichever page
	// object is now current: the popup when one opened, else the same
	// page.
	OpenFirstResult(ctx context.Context) (browser.Page, error)
	AddSelectedToCart(ctx context.Context, product browser.Page) error
	GoToCart(ctx context.Context) error
	PlaceOrder(ctx context.Context) error
}

// PriceVerifier is implemented by models that can compare the listed
// price against the cart price.
type PriceVerifier interface {
	InventoryPrice(ctx context.Context, product string) (string, error)
	VerifyInCart(ctx context.Context, product, expectedPrice string) CartCheck
}

// PaymentFiller is implemented by models with a best-effort payment
// form fill.
type PaymentFiller interface {
	FillPayment(ctx context.Context, card PaymentCard)
}

// PaymentCard holds payment form fields. Values reaching logs or
// traces are masked upstream.
type PaymentCard struct {
	Number string
	Name   string
	Expiry string
	CVV    string
}

// ForSite builds the model for a known site.
func ForSite(site Site, page browser.Page, res *selector.Resolver, logger zerolog.Logger) (Model, error) {
	switch site {
	case SiteSauceDemo:
		return NewSauceDemo(page, res, logger), nil
	case SiteFlipkart:
		return NewFlipkart(page, res, logger), nil
	case SiteAmazon:
		return NewAmazon(page, res, logger), nil
	default:
		return nil, fmt.Errorf("no page model for site %q", site)
	}
}

// dismissStep is one optional step in a best-effort chain: try it,
// ignore failure, move on. Chains stay declarative and testable as
// data instead of nested error handling.
type dismissStep struct {
	name string
	run  func() error
}

func runChain(logger zerolog.Logger, steps []dismissStep) {
	for _, step := range steps {
		if err := step.run(); err != nil {
			logger.Debug().Str("step", step.name).Err(err).Msg("optional step skipped")
			continue
		}
		logger.Debug().Str("step", step.name).Msg("optional step done")
	}
}
