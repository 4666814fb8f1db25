package pages

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ronaldozero7/HeyQ/internal/browser"
	"github.com/Ronaldozero7/HeyQ/internal/selector"
)

// flipkartSelectors carries the marketplace's auto-generated class
// names. They churn across deployments, which is exactly what the
// resolver's alternative generation is for.
type flipkartSelectors struct {
	closeLoginPopup string
	searchInput     string
	searchSubmit    string
	addToCart       string
	goToCart        string
	placeOrder      string
	loginContinue   string
	usernameInput   string
	passwordInput   string
	usePassword     string
}

func defaultFlipkartSelectors() flipkartSelectors {
	return flipkartSelectors{
		closeLoginPopup: "button._2KpZ6l._2doB4z",
		searchInput:     `input[title="Search for Products, Brands and More"]`,
		searchSubmit:    `button[type="submit"]`,
		addToCart:       "button._2KpZ6l._2U9uOA._3v1-ww",
		goToCart:        "a._3SkBxJ",
		placeOrder:      "button._2KpZ6l._2ObVJD._3AWRsL",
		loginContinue:   "button._2KpZ6l._2HKlqd._3AWRsL",
		usernameInput:   `input[class*="_2IX_2-"][type="text"]`,
		passwordInput:   `input[class*="_2IX_2-"][type="password"]`,
		usePassword:     `span:has-text("Use Password")`,
	}
}

// firstResultCandidates are tried in declared order; the layout swaps
// between grid and list result tiles.
var firstResultCandidates = []string{
	`a[href*="/p/"]`,
	"a._1fQZEK",
	"a.s1Q9rs",
}

const (
	fkShortTimeout  = 5 * time.Second
	fkFillTimeout   = 30 * time.Second
	fkClickTimeout  = 20 * time.Second
	fkResultTimeout = 45 * time.Second
	fkPopupTimeout  = 5 * time.Second
)

// Flipkart drives the marketplace site. Result links may open a new
// tab; OpenFirstResult reports whichever page is current afterwards.
type Flipkart struct {
	page   browser.Page
	res    *selector.Resolver
	logger zerolog.Logger
	sel    flipkartSelectors
}

func NewFlipkart(page browser.Page, res *selector.Resolver, logger zerolog.Logger) *Flipkart {
	return &Flipkart{
		page:   page,
		res:    res,
		logger: logger.With().Str("site", string(SiteFlipkart)).Logger(),
		sel:    defaultFlipkartSelectors(),
	}
}

func (m *Flipkart) Site() Site { return SiteFlipkart }

// DismissPopup closes the first-visit login modal. The modal may be
// absent; failure is swallowed.
func (m *Flipkart) DismissPopup(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := m.page.Locator(m.sel.closeLoginPopup).First().Click(fkShortTimeout); err != nil {
		m.logger.Debug().Msg("no initial popup")
		return
	}
	m.logger.Info().Msg("closed initial login popup")
}

func (m *Flipkart) OpenLogin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// The header link may be covered by the popup variant of the same
	// form; either way the form ends up open.
	if err := m.page.GetByText("Login", false).First().Click(fkShortTimeout); err != nil {
		m.logger.Debug().Msg("login link not clickable; form may already be open")
	}
	return nil
}

// LoginWithPassword switches away from the default OTP flow when a
// password option is offered, then works through fallback selector
// chains for each field.
func (m *Flipkart) LoginWithPassword(ctx context.Context, creds Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.page.Locator(m.sel.usePassword).First().Click(4 * time.Second); err != nil {
		m.logger.Debug().Msg("no password toggle; continuing")
	}
	userSelectors := []string{
		m.sel.usernameInput,
		`input[autocomplete="username"]`,
		`input[placeholder*="Enter Email"], input[placeholder*="Mobile"]`,
	}
	if !m.fillFirst(userSelectors, creds.Username) {
		m.logger.Warn().Msg("username field not found; continuing")
	}
	passSelectors := []string{
		m.sel.passwordInput,
		`input[autocomplete="current-password"]`,
		`input[type="password"]`,
	}
	if !m.fillFirst(passSelectors, creds.Password) {
		m.logger.Warn().Msg("password field not found; continuing")
	}
	submitSelectors := []string{
		m.sel.loginContinue,
		`button:has-text("Login")`,
		`button:has-text("Request OTP")`,
		`button[type="submit"]`,
	}
	for _, sel := range submitSelectors {
		if err := m.page.Locator(m.res.Resolve(sel)).First().Click(fkShortTimeout); err == nil {
			return nil
		}
	}
	return fmt.Errorf("login submit not clickable")
}

func (m *Flipkart) Search(ctx context.Context, query string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	input := m.res.Resolve(m.sel.searchInput)
	if err := m.page.Locator(input).First().Fill(query, fkFillTimeout); err != nil {
		return fmt.Errorf("fill search: %w", err)
	}
	if err := m.page.Locator(m.sel.searchSubmit).First().Click(fkClickTimeout); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}
	// DOM-ready is only a lower bound; result presence is checked when
	// the first result is opened.
	return m.page.WaitForLoadState(browser.StateDOMContentLoaded, fkClickTimeout)
}

// OpenFirstResult clicks the top result tile. The marketplace opens
// product pages in a new tab on most layouts; a bounded popup wait
// decides which page object is current afterwards.
func (m *Flipkart) OpenFirstResult(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	link, ok := m.res.FirstVisible(firstResultCandidates)
	if !ok {
		// Last resort: the first link on the page.
		link = "a"
	}
	loc := m.page.Locator(link).First()
	var clickErr error
	popup, err := m.page.ExpectPopup(func() error {
		clickErr = loc.Click(fkResultTimeout)
		return clickErr
	}, fkPopupTimeout)
	if err == nil {
		m.logger.Debug().Str("selector", link).Msg("result opened in popup")
		return popup, nil
	}
	if clickErr != nil {
		return nil, fmt.Errorf("open result %s: %w", link, clickErr)
	}
	// The click landed but no popup arrived: same-tab navigation.
	return m.page, nil
}

func (m *Flipkart) AddSelectedToCart(ctx context.Context, product browser.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := product.WaitForLoadState(browser.StateDOMContentLoaded, fkClickTimeout); err != nil {
		m.logger.Debug().Err(err).Msg("product page load state")
	}
	if err := product.Locator(m.res.Resolve(m.sel.addToCart)).First().Click(fkResultTimeout); err == nil {
		return nil
	}
	if err := product.GetByText("Add to cart", false).First().Click(fkClickTimeout); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return nil
}

func (m *Flipkart) GoToCart(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.goToCart)).First().Click(fkClickTimeout); err == nil {
		return nil
	}
	if err := m.page.GetByText("Cart", false).First().Click(fkClickTimeout); err != nil {
		return fmt.Errorf("open cart: %w", err)
	}
	return nil
}

func (m *Flipkart) PlaceOrder(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.placeOrder)).First().Click(fkClickTimeout); err == nil {
		return nil
	}
	if err := m.page.GetByText("Place Order", false).First().Click(fkClickTimeout); err != nil {
		return fmt.Errorf("place order: %w", err)
	}
	return nil
}

// FillPayment fills whichever payment fields exist. Production
// checkouts block most of this flow, so every field is best effort.
func (m *Flipkart) FillPayment(ctx context.Context, card PaymentCard) {
	if ctx.Err() != nil {
		return
	}
	fields := []struct {
		value     string
		selectors []string
	}{
		{card.Number, []string{`input[name='cardNumber']`, `input[placeholder*='Card number']`}},
		{card.Name, []string{`input[name='nameOnCard']`, `input[placeholder*='Name']`}},
		{card.Expiry, []string{`input[name='expiryDate']`, `input[placeholder*='MM/YY']`, `input[placeholder*='MM / YY']`}},
		{card.CVV, []string{`input[name='cvv']`, `input[placeholder*='CVV']`}},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		m.fillFirst(f.selectors, f.value)
	}
}

// fillFirst fills the first selector that accepts input.
func (m *Flipkart) fillFirst(selectors []string, value string) bool {
	for _, sel := range selectors {
		if err := m.page.Locator(m.res.Resolve(sel)).First().Fill(value, fkShortTimeout); err == nil {
			return true
		}
	}
	return false
}
