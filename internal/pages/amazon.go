package pages

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ronaldozero7/HeyQ/internal/browser"
	"github.com/Ronaldozero7/HeyQ/internal/selector"
)

// amazonSelectors uses comma-joined CSS lists: the retail site serves
// several sign-in layouts and the driver picks whichever variant
// exists.
type amazonSelectors struct {
	accountLink       string
	searchBox         string
	searchSubmit      string
	emailInput        string
	continueBtn       string
	passwordInput     string
	signInSubmit      string
	firstResultLink   string
	addToCartBtn      string
	cartLink          string
	proceedToCheckout string
}

func defaultAmazonSelectors() amazonSelectors {
	return amazonSelectors{
		accountLink:       "#nav-link-accountList",
		searchBox:         "#twotabsearchtextbox",
		searchSubmit:      "#nav-search-submit-button",
		emailInput:        `input#ap_email, input#ap_email_login, input[name="email"], input[type="email"], input[id^="ap_email"]`,
		continueBtn:       `input#continue, #continue, input[name="continue"]`,
		passwordInput:     `input#ap_password, input[name="password"], input[type="password"]`,
		signInSubmit:      `input#signInSubmit, input[name="signInSubmit"], input[type="submit"][name="signInSubmit"]`,
		firstResultLink:   `div[data-asin][data-component-type="s-search-result"] h2 a`,
		addToCartBtn:      `#add-to-cart-button, input#add-to-cart-button, input[name="submit.add-to-cart"]`,
		cartLink:          `#nav-cart, a[href*="/gp/cart/view.html"]`,
		proceedToCheckout: `input[name="proceedToRetailCheckout"], input[name="proceedToALMCheckout"], span#sc-buy-box-ptc-button input`,
	}
}

const (
	azShortTimeout  = 3 * time.Second
	azClickTimeout  = 12 * time.Second
	azFillTimeout   = 20 * time.Second
	azResultTimeout = 45 * time.Second
	azPopupTimeout  = 3 * time.Second
)

// Amazon drives the retail site. Its sign-in pushes passkey/WebAuthn
// prompts that must be dismissed before the password field becomes
// interactable.
type Amazon struct {
	page   browser.Page
	res    *selector.Resolver
	logger zerolog.Logger
	sel    amazonSelectors
}

func NewAmazon(page browser.Page, res *selector.Resolver, logger zerolog.Logger) *Amazon {
	return &Amazon{
		page:   page,
		res:    res,
		logger: logger.With().Str("site", string(SiteAmazon)).Logger(),
		sel:    defaultAmazonSelectors(),
	}
}

func (m *Amazon) Site() Site { return SiteAmazon }

// DismissPopup is a no-op: interstitials on the retail site appear
// during sign-in and are handled there.
func (m *Amazon) DismissPopup(ctx context.Context) {
	m.logger.Debug().Msg("no landing popup to dismiss")
}

func (m *Amazon) OpenLogin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	acct := m.page.Locator(m.res.Resolve(m.sel.accountLink)).First()
	if err := acct.WaitFor(azClickTimeout); err == nil {
		if err := acct.Click(azClickTimeout); err == nil {
			return nil
		}
	}
	if err := m.page.GetByText("Hello, sign in", false).First().Click(azClickTimeout); err != nil {
		return fmt.Errorf("open sign-in: %w", err)
	}
	return nil
}

// dismissPasskeyPrompts steers sign-in away from passkey/WebAuthn
// flows. Each step is independently best-effort: the prompt may or may
// not appear, and which variant shows up differs per account state.
func (m *Amazon) dismissPasskeyPrompts() {
	steps := []dismissStep{
		{"use-password-instead", func() error {
			return m.page.GetByText("Use a password instead", false).First().Click(azShortTimeout)
		}},
		{"use-your-password-instead", func() error {
			return m.page.GetByText("Use your password instead", false).First().Click(azShortTimeout)
		}},
		{"other-options", func() error {
			return m.page.GetByText("Other options", false).First().Click(azShortTimeout)
		}},
		{"not-now", func() error {
			return m.page.GetByText("Not now", false).First().Click(azShortTimeout)
		}},
		{"passkey-dialog-cancel", func() error {
			return m.page.GetByRole("button", "Cancel", false).First().Click(2 * time.Second)
		}},
	}
	runChain(m.logger, steps)
}

func (m *Amazon) LoginWithPassword(ctx context.Context, creds Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	email := m.page.Locator(m.res.Resolve(m.sel.emailInput)).First()
	if err := email.WaitFor(azFillTimeout); err != nil {
		m.logger.Warn().Msg("email field not visible; flow may differ")
	} else if err := email.Fill(creds.Username, azFillTimeout); err != nil {
		return fmt.Errorf("fill email: %w", err)
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.continueBtn)).First().Click(azClickTimeout); err != nil {
		// Continue may be absent when email and password share a form.
		if err := m.page.Press("Enter"); err != nil {
			m.logger.Warn().Msg("continue not activatable; password step may already be shown")
		}
	}
	m.dismissPasskeyPrompts()
	pwd := m.page.Locator(m.res.Resolve(m.sel.passwordInput)).First()
	if err := pwd.WaitFor(azFillTimeout); err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	if err := pwd.Fill(creds.Password, azFillTimeout); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.signInSubmit)).First().Click(azClickTimeout); err == nil {
		return nil
	}
	if err := m.page.GetByText("Sign in", false).First().Click(azClickTimeout); err == nil {
		return nil
	}
	return m.page.Press("Enter")
}

func (m *Amazon) Search(ctx context.Context, query string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.searchBox)).First().Fill(query, azFillTimeout); err != nil {
		return fmt.Errorf("fill search: %w", err)
	}
	if err := m.page.Locator(m.sel.searchSubmit).First().Click(azClickTimeout); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}
	return m.page.WaitForLoadState(browser.StateDOMContentLoaded, azClickTimeout)
}

func (m *Amazon) OpenFirstResult(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	link := m.page.Locator(m.res.Resolve(m.sel.firstResultLink)).First()
	if err := link.WaitFor(azResultTimeout); err != nil {
		link = m.page.Locator("h2 a.a-link-normal").First()
	}
	var clickErr error
	popup, err := m.page.ExpectPopup(func() error {
		clickErr = link.Click(azClickTimeout)
		return clickErr
	}, azPopupTimeout)
	if err == nil {
		return popup, nil
	}
	if clickErr != nil {
		return nil, fmt.Errorf("open result: %w", clickErr)
	}
	// No popup after a successful click means same-tab navigation.
	return m.page, nil
}

func (m *Amazon) AddSelectedToCart(ctx context.Context, product browser.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := product.WaitForLoadState(browser.StateDOMContentLoaded, azClickTimeout); err != nil {
		m.logger.Debug().Err(err).Msg("product page load state")
	}
	if err := product.Locator(m.res.Resolve(m.sel.addToCartBtn)).First().Click(azResultTimeout); err == nil {
		return nil
	}
	if err := product.GetByText("Add to Cart", false).First().Click(azClickTimeout); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return nil
}

func (m *Amazon) GoToCart(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.cartLink)).First().Click(azClickTimeout); err == nil {
		return nil
	}
	if err := m.page.GetByText("Cart", false).First().Click(azClickTimeout); err != nil {
		return fmt.Errorf("open cart: %w", err)
	}
	return nil
}

// PlaceOrder stops at the checkout gate: the retail site requires a
// signed-in payment-ready account past this point.
func (m *Amazon) PlaceOrder(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.proceedToCheckout)).First().Click(azFillTimeout); err == nil {
		return nil
	}
	if err := m.page.GetByText("Proceed to Buy", false).First().Click(azClickTimeout); err != nil {
		return fmt.Errorf("proceed to checkout: %w", err)
	}
	return nil
}
