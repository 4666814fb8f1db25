package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ronaldozero7/HeyQ/internal/intent"
)

func TestParseDeterministic(t *testing.T) {
	inputs := []string{
		"go to saucedemo",
		"search for backpack",
		"add it to cart",
		"login and add backpack to cart and place the order",
		"gibberish input here",
	}
	for _, in := range inputs {
		a := NewEngine(&intent.Context{}).Parse(in)
		b := NewEngine(&intent.Context{}).Parse(in)
		assert.Equal(t, a, b, "input %q", in)
	}
}

func TestParseNavigate(t *testing.T) {
	e := NewEngine(&intent.Context{})

	it := e.Parse("go to saucedemo")
	assert.Equal(t, intent.KindNavigate, it.Name)
	assert.Equal(t, "saucedemo", it.String(intent.EntitySite))

	it = e.Parse("open https://www.example.com/shop")
	assert.Equal(t, intent.KindNavigate, it.Name)
	assert.Equal(t, "https://www.example.com/shop", it.String(intent.EntitySite))
}

func TestParseNavigateFallsBackToContext(t *testing.T) {
	e := NewEngine(&intent.Context{Site: "flipkart"})
	it := e.Parse("open the site again")
	assert.Equal(t, intent.KindNavigate, it.Name)
	assert.Equal(t, "flipkart", it.String(intent.EntitySite))
}

func TestParseSearchQueryExtraction(t *testing.T) {
	e := NewEngine(&intent.Context{})

	it := e.Parse("search for wireless mouse")
	assert.Equal(t, intent.KindSearch, it.Name)
	assert.Equal(t, "wireless mouse", it.String(intent.EntityQuery))

	it = e.Parse("find fleece jacket")
	assert.Equal(t, intent.KindSearch, it.Name)
	assert.Equal(t, "fleece jacket", it.String(intent.EntityQuery))
}

func TestContextCarryOver(t *testing.T) {
	e := NewEngine(&intent.Context{})

	first := e.Parse("search for widget")
	require.Equal(t, intent.KindSearch, first.Name)
	require.Equal(t, "widget", first.String(intent.EntityQuery))

	second := e.Parse("add to cart")
	require.Equal(t, intent.KindAddToCart, second.Name)
	assert.Equal(t, "widget", second.String(intent.EntityProduct))
}

func TestMultiStepPrecedence(t *testing.T) {
	e := NewEngine(&intent.Context{})
	it := e.Parse("login and add to cart and place the order")
	assert.Equal(t, intent.KindFullCheckout, it.Name)
	assert.Equal(t, []string{"login", "add_to_cart", "checkout", "place_order"}, it.Steps())
	assert.False(t, it.Bool(intent.EntityVerifyPrice))
}

func TestMultiStepWithProductAndVerify(t *testing.T) {
	e := NewEngine(&intent.Context{})
	it := e.Parse("login to saucedemo, add a backpack to cart, verify price and place the order")
	assert.Equal(t, intent.KindFullCheckout, it.Name)
	assert.Equal(t, "saucedemo", it.String(intent.EntitySite))
	assert.Equal(t, "backpack", it.String(intent.EntityProduct))
	assert.True(t, it.Bool(intent.EntityVerifyPrice))
}

func TestAddToCartFlow(t *testing.T) {
	e := NewEngine(&intent.Context{})
	it := e.Parse("open saucedemo and add backpack to cart")
	assert.Equal(t, intent.KindAddToCartFlow, it.Name)
	assert.Equal(t, "saucedemo", it.String(intent.EntitySite))
	assert.Equal(t, "backpack", it.String(intent.EntityProduct))
	assert.Equal(t, []string{"login", "add_to_cart"}, it.Steps())
}

func TestMultiStepDefaultSite(t *testing.T) {
	e := NewEngine(&intent.Context{}, WithDefaultSite("flipkart"))
	it := e.Parse("add a shirt to cart and place the order")
	assert.Equal(t, intent.KindFullCheckout, it.Name)
	assert.Equal(t, "flipkart", it.String(intent.EntitySite))
}

func TestProductAliases(t *testing.T) {
	e := NewEngine(&intent.Context{})
	it := e.Parse("open saucedemo and add a bag to cart")
	require.Equal(t, intent.KindAddToCartFlow, it.Name)
	assert.Equal(t, "backpack", it.String(intent.EntityProduct))
}

func TestParseClickTarget(t *testing.T) {
	e := NewEngine(&intent.Context{})
	it := e.Parse("click on the checkout button")
	// "checkout" in the phrase wins over click by rule order.
	assert.Equal(t, intent.KindCheckout, it.Name)

	it = e.Parse("click on the first result")
	require.Equal(t, intent.KindClick, it.Name)
	assert.Equal(t, "the first result", it.String(intent.EntityTarget))
}

func TestParseSimpleKeywords(t *testing.T) {
	e := NewEngine(&intent.Context{})
	assert.Equal(t, intent.KindCheckout, e.Parse("proceed to checkout").Name)
	assert.Equal(t, intent.KindLogin, e.Parse("sign in please").Name)
	assert.Equal(t, intent.KindPlaceOrder, e.Parse("buy now").Name)
}

func TestParseEmptyInput(t *testing.T) {
	e := NewEngine(&intent.Context{})
	it := e.Parse("")
	assert.Equal(t, intent.KindUnknown, it.Name)
	raw, ok := it.Entities[intent.EntityRaw]
	require.True(t, ok)
	assert.Equal(t, "", raw)
}

func TestParseUnknownPreservesRaw(t *testing.T) {
	e := NewEngine(&intent.Context{})
	it := e.Parse("make me a sandwich")
	assert.Equal(t, intent.KindUnknown, it.Name)
	assert.Equal(t, "make me a sandwich", it.String(intent.EntityRaw))
}

func TestNilContext(t *testing.T) {
	e := NewEngine(nil)
	it := e.Parse("go to amazon")
	assert.Equal(t, "amazon", it.String(intent.EntitySite))
	assert.Equal(t, "amazon", e.Context().Site)
}
