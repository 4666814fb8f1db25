package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Ronaldozero7/HeyQ/internal/intent"
	"github.com/Ronaldozero7/HeyQ/internal/nlp"
)

const systemPrompt = `You convert shopping commands into JSON. Respond with a single JSON object and nothing else:
{"action": one of [navigate, search, click, add_to_cart, checkout, login, fill_form, place_order, full_checkout_flow, add_to_cart_flow, unknown],
 "site": site keyword or empty,
 "item": product name or empty,
 "qty": integer quantity (default 1),
 "verify_price": boolean,
 "confidence": 0.0-1.0,
 "reasoning": one short sentence}`

// providerIntent is the structured shape the provider must return.
type providerIntent struct {
	Action      string  `json:"action"`
	Site        string  `json:"site"`
	Item        string  `json:"item"`
	Qty         int     `json:"qty"`
	VerifyPrice bool    `json:"verify_price"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning"`
}

// Parser extracts intents via a provider when one is configured,
// falling back to the deterministic rule engine on any failure.
// Provider errors never reach the caller.
type Parser struct {
	client   Client
	fallback *nlp.Engine
	ctx      *intent.Context
	logger   zerolog.Logger
}

// NewParser wires the provider (may be nil) over the rule engine.
// Both share pctx so follow-up commands resolve against the same
// conversation state regardless of which path parsed them.
func NewParser(client Client, pctx *intent.Context, logger zerolog.Logger, opts ...nlp.Option) *Parser {
	return &Parser{
		client:   client,
		fallback: nlp.NewEngine(pctx, opts...),
		ctx:      pctx,
		logger:   logger.With().Str("comp", "llm-parser").Logger(),
	}
}

// ParseIntent never fails: whatever goes wrong with the provider, the
// rule engine produces the answer.
func (p *Parser) ParseIntent(ctx context.Context, text string) intent.Intent {
	if p.client == nil {
		return p.fallback.Parse(text)
	}
	it, err := p.tryProvider(ctx, text)
	if err != nil {
		p.logger.Warn().Err(err).Msg("provider parse failed, using rule engine")
		return p.fallback.Parse(text)
	}
	return it
}

func (p *Parser) tryProvider(ctx context.Context, text string) (intent.Intent, error) {
	raw, err := p.client.Complete(ctx, Request{
		System: systemPrompt,
		Prompt: text,
	})
	if err != nil {
		return intent.Intent{}, err
	}
	var pi providerIntent
	if err := json.Unmarshal([]byte(stripFences(raw)), &pi); err != nil {
		return intent.Intent{}, fmt.Errorf("malformed provider response: %w", err)
	}
	return p.toIntent(text, pi)
}

// toIntent validates the provider's fields and updates the shared
// conversation context the same way the rule engine would.
func (p *Parser) toIntent(text string, pi providerIntent) (intent.Intent, error) {
	kind := intent.Kind(pi.Action)
	if !validKind(kind) {
		return intent.Intent{}, fmt.Errorf("provider returned unknown action %q", pi.Action)
	}
	p.logger.Debug().
		Str("action", pi.Action).
		Float64("confidence", pi.Confidence).
		Str("reasoning", pi.Reasoning).
		Msg("provider intent")

	it := intent.New(kind, nil)
	if pi.Site != "" {
		it.Entities[intent.EntitySite] = pi.Site
		p.ctx.Site = pi.Site
	} else if p.ctx.Site != "" {
		it.Entities[intent.EntitySite] = p.ctx.Site
	}
	if pi.Item != "" {
		p.ctx.Product = pi.Item
		switch kind {
		case intent.KindSearch:
			it.Entities[intent.EntityQuery] = pi.Item
		default:
			it.Entities[intent.EntityProduct] = pi.Item
		}
	} else if p.ctx.Product != "" && kind != intent.KindNavigate {
		it.Entities[intent.EntityProduct] = p.ctx.Product
	}
	if pi.Qty > 1 {
		it.Entities["qty"] = pi.Qty
	}
	if pi.VerifyPrice {
		it.Entities[intent.EntityVerifyPrice] = true
	}
	switch kind {
	case intent.KindFullCheckout:
		it.Entities[intent.EntitySteps] = []string{"login", "add_to_cart", "checkout", "place_order"}
	case intent.KindAddToCartFlow:
		it.Entities[intent.EntitySteps] = []string{"login", "add_to_cart"}
	case intent.KindUnknown:
		it.Entities[intent.EntityRaw] = text
	}
	return it, nil
}

func validKind(k intent.Kind) bool {
	switch k {
	case intent.KindNavigate, intent.KindSearch, intent.KindClick,
		intent.KindAddToCart, intent.KindCheckout, intent.KindLogin,
		intent.KindFillForm, intent.KindPlaceOrder,
		intent.KindFullCheckout, intent.KindAddToCartFlow,
		intent.KindUnknown:
		return true
	}
	return false
}

// stripFences removes a markdown code fence when the provider wraps
// its JSON in one despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
