package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ronaldozero7/HeyQ/internal/intent"
)

// stubClient returns a canned completion or error.
type stubClient struct {
	text string
	err  error
}

func (s *stubClient) Complete(context.Context, Request) (string, error) { return s.text, s.err }
func (s *stubClient) Name() string                                      { return "stub" }

func TestParseIntentNoClientUsesRuleEngine(t *testing.T) {
	p := NewParser(nil, &intent.Context{}, zerolog.Nop())
	it := p.ParseIntent(context.Background(), "search for backpack")
	assert.Equal(t, intent.KindSearch, it.Name)
	assert.Equal(t, "backpack", it.String(intent.EntityQuery))
}

func TestParseIntentProviderErrorFallsBack(t *testing.T) {
	p := NewParser(&stubClient{err: errors.New("rate limited")}, &intent.Context{}, zerolog.Nop())
	it := p.ParseIntent(context.Background(), "go to saucedemo")
	assert.Equal(t, intent.KindNavigate, it.Name)
	assert.Equal(t, "saucedemo", it.String(intent.EntitySite))
}

func TestParseIntentMalformedResponseFallsBack(t *testing.T) {
	p := NewParser(&stubClient{text: "sure, here is the plan:"}, &intent.Context{}, zerolog.Nop())
	it := p.ParseIntent(context.Background(), "search for backpack")
	assert.Equal(t, intent.KindSearch, it.Name)
}

func TestParseIntentInvalidActionFallsBack(t *testing.T) {
	p := NewParser(&stubClient{text: `{"action":"purchase_everything"}`}, &intent.Context{}, zerolog.Nop())
	it := p.ParseIntent(context.Background(), "search for backpack")
	assert.Equal(t, intent.KindSearch, it.Name)
}

func TestParseIntentProviderSuccess(t *testing.T) {
	p := NewParser(&stubClient{text: `{
		"action": "add_to_cart_flow",
		"site": "saucedemo",
		"item": "backpack",
		"qty": 1,
		"verify_price": true,
		"confidence": 0.94,
		"reasoning": "compound add-to-cart command"
	}`}, &intent.Context{}, zerolog.Nop())

	it := p.ParseIntent(context.Background(), "open saucedemo and add backpack to cart, verify price")

	require.Equal(t, intent.KindAddToCartFlow, it.Name)
	assert.Equal(t, "saucedemo", it.String(intent.EntitySite))
	assert.Equal(t, "backpack", it.String(intent.EntityProduct))
	assert.True(t, it.Bool(intent.EntityVerifyPrice))
	assert.Equal(t, []string{"login", "add_to_cart"}, it.Steps())
}

func TestParseIntentStripsCodeFence(t *testing.T) {
	p := NewParser(&stubClient{text: "```json\n{\"action\":\"search\",\"item\":\"mouse\"}\n```"}, &intent.Context{}, zerolog.Nop())
	it := p.ParseIntent(context.Background(), "search for mouse")
	require.Equal(t, intent.KindSearch, it.Name)
	assert.Equal(t, "mouse", it.String(intent.EntityQuery))
}

func TestParseIntentUpdatesSharedContext(t *testing.T) {
	pctx := &intent.Context{}
	p := NewParser(&stubClient{text: `{"action":"search","site":"amazon","item":"mouse"}`}, pctx, zerolog.Nop())

	p.ParseIntent(context.Background(), "search for mouse on amazon")
	assert.Equal(t, "amazon", pctx.Site)
	assert.Equal(t, "mouse", pctx.Product)

	// A later fallback parse sees the provider-established context.
	failing := NewParser(&stubClient{err: errors.New("down")}, pctx, zerolog.Nop())
	it := failing.ParseIntent(context.Background(), "add to cart")
	assert.Equal(t, intent.KindAddToCart, it.Name)
	assert.Equal(t, "mouse", it.String(intent.EntityProduct))
}
