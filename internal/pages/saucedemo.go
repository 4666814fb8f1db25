package pages

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ronaldozero7/HeyQ/internal/browser"
	"github.com/Ronaldozero7/HeyQ/internal/selector"
)

// sauceSelectors is the declared selector map for the demo shop. The
// markup is stable; fallback generation still applies through the
// resolver.
type sauceSelectors struct {
	username       string
	password       string
	loginBtn       string
	cartLink       string
	cartBadge      string
	inventoryItem  string
	itemName       string
	itemPrice      string
	checkoutBtn    string
	firstName      string
	lastName       string
	postalCode     string
	continueBtn    string
	finishBtn      string
	completeHeader string
	// addByNameTpl targets the add button inside the product card with
	// an exact name.
	addByNameTpl string
	// cartItemTpl scopes a cart row to an exact product name.
	cartItemTpl string
}

func defaultSauceSelectors() sauceSelectors {
	return sauceSelectors{
		username:       "#user-name",
		password:       "#password",
		loginBtn:       "#login-button",
		cartLink:       ".shopping_cart_link",
		cartBadge:      ".shopping_cart_badge",
		inventoryItem:  ".inventory_item",
		itemName:       ".inventory_item .inventory_item_name",
		itemPrice:      ".inventory_item_price",
		checkoutBtn:    "#checkout",
		firstName:      "#first-name",
		lastName:       "#last-name",
		postalCode:     "#postal-code",
		continueBtn:    "#continue",
		finishBtn:      "#finish",
		completeHeader: ".complete-header",
		addByNameTpl:   `//div[@class="inventory_item"]//div[@class="inventory_item_name" and normalize-space()="%s"]/ancestor::div[@class="inventory_item"]//button[contains(@data-test,"add-to-cart")]`,
		cartItemTpl:    `//div[@class="cart_item"]//div[@class="inventory_item_name" and normalize-space()="%s"]/ancestor::div[@class="cart_item"]`,
	}
}

const (
	sauceFillTimeout   = 20 * time.Second
	sauceClickTimeout  = 15 * time.Second
	sauceWaitTimeout   = 20 * time.Second
	cartPollInterval   = 250 * time.Millisecond
	cartPollTimeout    = 10 * time.Second
	removeLabelTimeout = 8 * time.Second
)

// SauceDemo drives the demo shopping site. There is no search box:
// Search picks the best-matching product card on the inventory page
// and OpenFirstResult stays on the same page.
type SauceDemo struct {
	page     browser.Page
	res      *selector.Resolver
	logger   zerolog.Logger
	sel      sauceSelectors
	selected string
	checkout CheckoutInfo
}

func NewSauceDemo(page browser.Page, res *selector.Resolver, logger zerolog.Logger) *SauceDemo {
	return &SauceDemo{
		page:   page,
		res:    res,
		logger: logger.With().Str("site", string(SiteSauceDemo)).Logger(),
		sel:    defaultSauceSelectors(),
		checkout: CheckoutInfo{
			FirstName:  "QA",
			LastName:   "Bot",
			PostalCode: "00000",
		},
	}
}

func (m *SauceDemo) Site() Site { return SiteSauceDemo }

// SetCheckoutInfo overrides the buyer details used by PlaceOrder.
func (m *SauceDemo) SetCheckoutInfo(info CheckoutInfo) {
	if info.FirstName != "" {
		m.checkout.FirstName = info.FirstName
	}
	if info.LastName != "" {
		m.checkout.LastName = info.LastName
	}
	if info.PostalCode != "" {
		m.checkout.PostalCode = info.PostalCode
	}
}

// DismissPopup is a no-op: the demo site shows no interstitial.
func (m *SauceDemo) DismissPopup(ctx context.Context) {
	m.logger.Debug().Msg("no popup to dismiss")
}

// OpenLogin waits for the login form, which is the landing page.
func (m *SauceDemo) OpenLogin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sel := m.res.Resolve(m.sel.username)
	return m.page.Locator(sel).First().WaitFor(sauceWaitTimeout)
}

func (m *SauceDemo) LoginWithPassword(ctx context.Context, creds Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.username)).First().Fill(creds.Username, sauceFillTimeout); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.password)).First().Fill(creds.Password, sauceFillTimeout); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.loginBtn)).First().Click(sauceClickTimeout); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	// Post-login navigation: prefer the URL signal, fall back to the
	// inventory rendering.
	if err := m.page.WaitForURL("**/inventory.html", sauceWaitTimeout); err != nil {
		if err := m.page.Locator(m.sel.inventoryItem).First().WaitFor(sauceWaitTimeout); err != nil {
			return fmt.Errorf("inventory not reached after login: %w", err)
		}
	}
	return nil
}

// Search selects the inventory card that best matches the query.
func (m *SauceDemo) Search(ctx context.Context, query string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.waitForInventory(); err != nil {
		return err
	}
	names := m.productNames()
	best := BestMatch(query, names)
	if best == "" {
		best = query
	}
	m.selected = best
	m.logger.Debug().Str("query", query).Str("selected", best).Msg("product selected")
	return nil
}

// OpenFirstResult stays on the inventory page: products are inline.
func (m *SauceDemo) OpenFirstResult(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.page, nil
}

func (m *SauceDemo) AddSelectedToCart(ctx context.Context, product browser.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.waitForInventory(); err != nil {
		return err
	}
	name := m.selected
	if name == "" {
		name = "Sauce Labs Backpack"
	}
	xp := fmt.Sprintf(m.sel.addByNameTpl, name)
	btn := product.Locator(xp).First()
	if err := btn.ScrollIntoView(5 * time.Second); err == nil {
		if err := btn.Click(sauceClickTimeout); err == nil {
			m.verifyAdded(ctx, product, name)
			return nil
		}
	}
	// Exact-name card not found; click any visible add-to-cart button.
	if err := product.GetByRole("button", "Add to cart", true).First().Click(cartPollTimeout); err != nil {
		return fmt.Errorf("add to cart %q: %w", name, err)
	}
	m.verifyAdded(ctx, product, name)
	return nil
}

// verifyAdded confirms the add took effect: the card's button flips to
// Remove and the cart badge reaches one. Verification timeout is
// non-fatal — logged and skipped.
func (m *SauceDemo) verifyAdded(ctx context.Context, product browser.Page, name string) {
	if err := product.GetByRole("button", "Remove", true).First().WaitFor(removeLabelTimeout); err != nil {
		m.logger.Debug().Str("product", name).Msg("remove label did not appear")
	}
	if !m.waitCartCountAtLeast(ctx, 1, cartPollTimeout) {
		m.logger.Warn().Str("product", name).Msg("cart badge did not update; proceeding")
	}
}

// waitCartCountAtLeast polls the badge at a fixed interval until it
// reports at least n or the timeout elapses.
func (m *SauceDemo) waitCartCountAtLeast(ctx context.Context, n int, timeout time.Duration) bool {
	var elapsed time.Duration
	for elapsed < timeout {
		if ctx.Err() != nil {
			return false
		}
		txt, err := m.page.Locator(m.sel.cartBadge).First().InnerText(time.Second)
		if err == nil {
			if count, convErr := strconv.Atoi(strings.TrimSpace(txt)); convErr == nil && count >= n {
				return true
			}
		}
		m.page.WaitTimeout(cartPollInterval)
		elapsed += cartPollInterval
	}
	return false
}

func (m *SauceDemo) GoToCart(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.cartLink)).First().Click(cartPollTimeout); err != nil {
		return fmt.Errorf("open cart: %w", err)
	}
	if err := m.page.WaitForURL("**/cart.html", cartPollTimeout); err != nil {
		return m.page.Locator(m.sel.checkoutBtn).First().WaitFor(cartPollTimeout)
	}
	return nil
}

// PlaceOrder walks cart -> information -> overview -> completion.
func (m *SauceDemo) PlaceOrder(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.checkoutBtn)).First().Click(sauceClickTimeout); err != nil {
		return fmt.Errorf("start checkout: %w", err)
	}
	first := m.page.Locator(m.res.Resolve(m.sel.firstName)).First()
	if err := first.WaitFor(sauceClickTimeout); err != nil {
		return fmt.Errorf("checkout form: %w", err)
	}
	if err := first.Fill(m.checkout.FirstName, cartPollTimeout); err != nil {
		return fmt.Errorf("fill first name: %w", err)
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.lastName)).First().Fill(m.checkout.LastName, cartPollTimeout); err != nil {
		return fmt.Errorf("fill last name: %w", err)
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.postalCode)).First().Fill(m.checkout.PostalCode, cartPollTimeout); err != nil {
		return fmt.Errorf("fill postal code: %w", err)
	}
	if err := m.page.Locator(m.res.Resolve(m.sel.continueBtn)).First().Click(sauceClickTimeout); err != nil {
		return fmt.Errorf("continue checkout: %w", err)
	}
	finish := m.page.Locator(m.res.Resolve(m.sel.finishBtn)).First()
	if err := finish.WaitFor(sauceClickTimeout); err != nil {
		return fmt.Errorf("overview: %w", err)
	}
	if err := finish.Click(sauceClickTimeout); err != nil {
		return fmt.Errorf("finish order: %w", err)
	}
	if err := m.page.Locator(m.sel.completeHeader).First().WaitFor(sauceWaitTimeout); err != nil {
		return fmt.Errorf("order completion not confirmed: %w", err)
	}
	return nil
}

// InventoryPrice reads the listed price of a product on the inventory
// page.
func (m *SauceDemo) InventoryPrice(ctx context.Context, product string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	xp := fmt.Sprintf(`//div[@class="inventory_item"]//div[@class="inventory_item_name" and normalize-space()="%s"]/ancestor::div[@class="inventory_item"]//div[@class="inventory_item_price"]`, product)
	txt, err := m.page.Locator(xp).First().InnerText(5 * time.Second)
	if err != nil {
		return "", fmt.Errorf("inventory price for %q: %w", product, err)
	}
	return strings.TrimSpace(txt), nil
}

// VerifyInCart confirms the product appears in the cart and, when an
// expected price is given, that the cart price matches. Misses are
// reported in the result, never raised.
func (m *SauceDemo) VerifyInCart(ctx context.Context, product, expectedPrice string) CartCheck {
	check := CartCheck{ExpectedPrice: expectedPrice}
	if ctx.Err() != nil {
		return check
	}
	row := fmt.Sprintf(m.sel.cartItemTpl, product)
	if err := m.page.Locator(row).First().WaitFor(5 * time.Second); err != nil {
		return check
	}
	check.ProductFound = true
	if expectedPrice == "" {
		return check
	}
	priceSel := row + `//div[@class="inventory_item_price"]`
	txt, err := m.page.Locator(priceSel).First().InnerText(5 * time.Second)
	if err != nil {
		return check
	}
	check.ActualPrice = strings.TrimSpace(txt)
	check.PriceMatch = check.ActualPrice == expectedPrice
	return check
}

func (m *SauceDemo) waitForInventory() error {
	if err := m.page.WaitForURL("**/inventory.html", cartPollTimeout); err == nil {
		return nil
	}
	return m.page.Locator(m.sel.inventoryItem).First().WaitFor(sauceWaitTimeout)
}

func (m *SauceDemo) productNames() []string {
	loc := m.page.Locator(m.sel.itemName)
	count, err := loc.Count()
	if err != nil {
		return nil
	}
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		txt, err := loc.Nth(i).InnerText(2 * time.Second)
		if err != nil {
			continue
		}
		if txt = strings.TrimSpace(txt); txt != "" {
			names = append(names, txt)
		}
	}
	return names
}
