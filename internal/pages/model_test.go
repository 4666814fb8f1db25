package pages

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ronaldozero7/HeyQ/internal/browser/browsertest"
	"github.com/Ronaldozero7/HeyQ/internal/selector"
)

func TestResolveSite(t *testing.T) {
	site, url, err := ResolveSite("saucedemo")
	require.NoError(t, err)
	assert.Equal(t, SiteSauceDemo, site)
	assert.Equal(t, "https://www.saucedemo.com", url)

	site, _, err = ResolveSite("go open FLIPKART now")
	require.NoError(t, err)
	assert.Equal(t, SiteFlipkart, site)

	_, url, err = ResolveSite("https://shop.example.com")
	assert.Error(t, err)
	assert.Equal(t, "https://shop.example.com", url)

	_, _, err = ResolveSite("")
	assert.Error(t, err)

	_, _, err = ResolveSite("etsy")
	assert.Error(t, err)
}

func TestForSiteBuildsEveryModel(t *testing.T) {
	page := browsertest.New()
	res := selector.New(page)

	for _, site := range []Site{SiteSauceDemo, SiteFlipkart, SiteAmazon} {
		model, err := ForSite(site, page, res, zerolog.Nop())
		require.NoError(t, err, site)
		assert.Equal(t, site, model.Site())
	}

	_, err := ForSite(Site("etsy"), page, res, zerolog.Nop())
	assert.Error(t, err)
}

func TestSauceDemoLoginNotUnwindOnFailure(t *testing.T) {
	page := browsertest.New()
	page.Missing["#password"] = true
	for _, alt := range selector.Alternatives("#password") {
		page.Missing[alt] = true
	}
	m := NewSauceDemo(page, selector.New(page), zerolog.Nop())

	err := m.LoginWithPassword(context.Background(), Credentials{Username: "u", Password: "p"})
	require.Error(t, err)
	// The username fill before the failing step is not rolled back.
	assert.Contains(t, page.Ops, "fill:#user-name")
	assert.NotContains(t, page.Ops, "click:#login-button")
}

func TestSauceDemoSearchSelectsBestMatch(t *testing.T) {
	page := browsertest.New()
	page.Texts[".inventory_item .inventory_item_name"] = "Sauce Labs Backpack"
	m := NewSauceDemo(page, selector.New(page), zerolog.Nop())

	require.NoError(t, m.Search(context.Background(), "backpack"))
	require.NoError(t, m.AddSelectedToCart(context.Background(), page))
	// The exact-name card is targeted, matching the catalog name.
	found := false
	for _, op := range page.Ops {
		if len(op) > 6 && op[:6] == "click:" {
			found = true
			assert.Contains(t, op, "Sauce Labs Backpack")
			break
		}
	}
	assert.True(t, found)
}

func TestFlipkartOpenFirstResultFallsBackToSamePage(t *testing.T) {
	page := browsertest.New()
	m := NewFlipkart(page, selector.New(page), zerolog.Nop())

	got, err := m.OpenFirstResult(context.Background())
	require.NoError(t, err)
	// No popup appeared; the current page stays current.
	assert.Equal(t, page, got)
}

func TestFlipkartOpenFirstResultUsesPopup(t *testing.T) {
	page := browsertest.New()
	popup := browsertest.New()
	page.Popup = popup
	m := NewFlipkart(page, selector.New(page), zerolog.Nop())

	got, err := m.OpenFirstResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, popup, got)
}

func TestFlipkartOpenFirstResultReportsClickFailure(t *testing.T) {
	page := browsertest.New()
	page.FailClicks[`a[href*="/p/"]`] = true
	m := NewFlipkart(page, selector.New(page), zerolog.Nop())

	// A dead result link is an error, not a same-tab success.
	got, err := m.OpenFirstResult(context.Background())
	require.Error(t, err)
	assert.Nil(t, got)
}

func TestAmazonOpenFirstResultReportsClickFailure(t *testing.T) {
	page := browsertest.New()
	page.FailClicks[`div[data-asin][data-component-type="s-search-result"] h2 a`] = true
	m := NewAmazon(page, selector.New(page), zerolog.Nop())

	got, err := m.OpenFirstResult(context.Background())
	require.Error(t, err)
	assert.Nil(t, got)
}

func TestAmazonPasskeyDismissalIsBestEffort(t *testing.T) {
	page := browsertest.New()
	page.FailClicks["text=Use a password instead"] = true
	page.FailClicks["text=Not now"] = true
	m := NewAmazon(page, selector.New(page), zerolog.Nop())

	// Failed dismissals must not block the login itself.
	err := m.LoginWithPassword(context.Background(), Credentials{Username: "u@example.com", Password: "p"})
	assert.NoError(t, err)
}

func TestCancelledContextStopsOperations(t *testing.T) {
	page := browsertest.New()
	m := NewSauceDemo(page, selector.New(page), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, m.Search(ctx, "backpack"))
	assert.Error(t, m.GoToCart(ctx))
	assert.Empty(t, page.Ops)
}
