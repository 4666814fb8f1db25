package selector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ronaldozero7/HeyQ/internal/browser/browsertest"
)

func TestResolveCacheIdempotence(t *testing.T) {
	page := browsertest.New()
	r := New(page)

	first := r.Resolve("#login-button")
	second := r.Resolve("#login-button")

	assert.Equal(t, "#login-button", first)
	assert.Equal(t, first, second)
	// The second call must come from cache, not the DOM.
	assert.Equal(t, 1, page.Probes["#login-button"])
}

func TestResolveCacheExpiry(t *testing.T) {
	page := browsertest.New()
	now := time.Unix(1000, 0)
	r := New(page, WithTTL(time.Minute), WithClock(func() time.Time { return now }))

	r.Resolve("#login-button")
	now = now.Add(2 * time.Minute)
	r.Resolve("#login-button")

	assert.Equal(t, 2, page.Probes["#login-button"])
}

func TestResolveFallsBackToAlternative(t *testing.T) {
	page := browsertest.New()
	page.Missing["#login-btn"] = true
	r := New(page)

	got := r.Resolve("#login-btn")
	assert.Equal(t, "[id='login-btn']", got)

	// The recovery is cached under the original selector.
	page.Probes = map[string]int{}
	assert.Equal(t, "[id='login-btn']", r.Resolve("#login-btn"))
	assert.Empty(t, page.Probes)
}

func TestResolveNothingMatchesReturnsOriginal(t *testing.T) {
	page := browsertest.New()
	page.Missing["#gone"] = true
	for _, alt := range Alternatives("#gone") {
		page.Missing[alt] = true
	}
	r := New(page)

	assert.Equal(t, "#gone", r.Resolve("#gone"))
}

func TestAlternativesGeneration(t *testing.T) {
	assert.Contains(t, Alternatives("#login-btn"), "[id='login-btn']")
	assert.Contains(t, Alternatives(".primary-class"), "[class*='primary-class']")
	assert.Contains(t, Alternatives("[data-test='add-to-cart']"), "[data-testid='add-to-cart']")
	assert.Empty(t, Alternatives("div > span"))
}

func TestFirstVisibleDeclaredOrder(t *testing.T) {
	page := browsertest.New()
	page.Hidden["#a"] = true
	r := New(page)

	sel, ok := r.FirstVisible([]string{"#a", "#b", "#c"})
	require.True(t, ok)
	assert.Equal(t, "#b", sel)
}

func TestFirstVisibleExpandsAlternatives(t *testing.T) {
	page := browsertest.New()
	page.Hidden["#a"] = true
	page.Hidden["#b"] = true
	page.Hidden["[id='a']"] = true
	r := New(page)

	sel, ok := r.FirstVisible([]string{"#a", "#b"})
	require.True(t, ok)
	assert.Equal(t, "*[id*='a']", sel)
}

func TestFirstVisibleNoneIsNotAnError(t *testing.T) {
	page := browsertest.New()
	page.Hidden["#a"] = true
	for _, alt := range Alternatives("#a") {
		page.Hidden[alt] = true
	}
	r := New(page)

	sel, ok := r.FirstVisible([]string{"#a"})
	assert.False(t, ok)
	assert.Empty(t, sel)
}

func TestObserveNavigationResetsOnNewOrigin(t *testing.T) {
	page := browsertest.New()
	r := New(page)
	r.ObserveNavigation("https://www.saucedemo.com/inventory.html")

	r.Resolve("#login-button")
	r.ObserveNavigation("https://www.saucedemo.com/cart.html")
	r.Resolve("#login-button")
	// Same origin: the cache survives.
	assert.Equal(t, 1, page.Probes["#login-button"])

	r.ObserveNavigation("https://www.flipkart.com")
	r.Resolve("#login-button")
	assert.Equal(t, 2, page.Probes["#login-button"])
}
