// Package nlp turns free text into typed intents using ordered regex
// rules. It is deterministic: no model calls, no randomness, the first
// satisfied rule wins.
package nlp

import (
	"regexp"
	"strings"

	"github.com/Ronaldozero7/HeyQ/internal/intent"
)

const DefaultSite = "saucedemo"

// Multi-step indicators are checked before any single-step rule. The
// list is order-sensitive and intentionally matches the loose original
// heuristics ("verify" alone switches to multi-step mode); do not
// reorder without new requirements.
var multiStepPatterns = []*regexp.Regexp{
	regexp.MustCompile(`open.*login.*add.*cart.*place.*order`),
	regexp.MustCompile(`login.*add.*cart.*place.*order`),
	regexp.MustCompile(`add.*cart.*place.*order`),
	regexp.MustCompile(`open.*login.*add.*cart`),
	regexp.MustCompile(`open.*add.*cart`),
	regexp.MustCompile(`verify.*price`),
	regexp.MustCompile(`and verify`),
}

var multiStepProductPatterns = []*regexp.Regexp{
	regexp.MustCompile(`add\s+(?:a\s+)?(\w+)\s+to`),
	regexp.MustCompile(`add\s+(?:a\s+)?(\w+)`),
	regexp.MustCompile(`(?:get|buy)\s+(?:a\s+)?(\w+)`),
}

var addToCartProductPatterns = []*regexp.Regexp{
	regexp.MustCompile(`add\s+(?:a\s+)?(\w+)\s+to\s+cart`),
	regexp.MustCompile(`add\s+to\s+cart\s+(?:a\s+)?(\w+)`),
	regexp.MustCompile(`add\s+(?:a\s+)?(\w+)`),
}

var (
	queryPattern  = regexp.MustCompile(`(?:search(?: for)?|find|look for)\s+(.+)$`)
	quotedPattern = regexp.MustCompile(`'([^']+)'|"([^"]+)"`)
	urlPattern    = regexp.MustCompile(`https?://\S+`)
	clickPattern  = regexp.MustCompile(`click (?:on )?(.*)`)
)

// productAliases folds spoken variants onto catalog names.
var productAliases = map[string]string{
	"backpack": "backpack",
	"bag":      "backpack",
	"rucksack": "backpack",
	"shirt":    "t-shirt",
	"tshirt":   "t-shirt",
	"t-shirt":  "t-shirt",
}

var siteKeywords = []string{"saucedemo", "flipkart", "amazon"}

// Engine is the deterministic intent recognizer. The conversational
// context is owned by the caller and mutated as a side effect of
// successful site/product extraction.
type Engine struct {
	ctx         *intent.Context
	defaultSite string
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultSite overrides the site assumed by multi-step commands
// that name none.
func WithDefaultSite(site string) Option {
	return func(e *Engine) {
		if site != "" {
			e.defaultSite = site
		}
	}
}

func NewEngine(ctx *intent.Context, opts ...Option) *Engine {
	if ctx == nil {
		ctx = &intent.Context{}
	}
	e := &Engine{ctx: ctx, defaultSite: DefaultSite}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Context exposes the carried conversational state.
func (e *Engine) Context() *intent.Context { return e.ctx }

// Parse maps one utterance to an intent. Rules are mutually exclusive
// by construction: they are evaluated in a fixed order and the first
// match wins. Unmatched text yields KindUnknown with the raw text
// preserved, never dropped.
func (e *Engine) Parse(text string) intent.Intent {
	t := strings.ToLower(strings.TrimSpace(text))

	if isMultiStep(t) {
		return e.parseMultiStep(t, text)
	}

	if containsAny(t, "go to", "open", "navigate") {
		site := extractSite(t)
		if site != "" {
			e.ctx.Site = site
		}
		ents := map[string]any{}
		if resolved := firstNonEmpty(site, e.ctx.Site); resolved != "" {
			ents[intent.EntitySite] = resolved
		}
		return intent.New(intent.KindNavigate, ents)
	}

	if containsAny(t, "search for", "find", "look for", "search") {
		query := extractQuery(t)
		if query != "" {
			e.ctx.Product = query
		}
		ents := map[string]any{}
		if resolved := firstNonEmpty(query, e.ctx.Product); resolved != "" {
			ents[intent.EntityQuery] = resolved
		}
		return intent.New(intent.KindSearch, ents)
	}

	if strings.Contains(t, "add to cart") || strings.Contains(t, "add it to cart") || strings.Contains(t, "add a") {
		product := matchFirst(addToCartProductPatterns, t)
		if product != "" {
			e.ctx.Product = product
		}
		ents := map[string]any{}
		if resolved := firstNonEmpty(product, e.ctx.Product); resolved != "" {
			ents[intent.EntityProduct] = resolved
		}
		return intent.New(intent.KindAddToCart, ents)
	}

	if strings.Contains(t, "checkout") {
		return intent.New(intent.KindCheckout, nil)
	}

	if strings.Contains(t, "login") || strings.Contains(t, "sign in") {
		return intent.New(intent.KindLogin, map[string]any{intent.EntityUseSaved: true})
	}

	if strings.Contains(t, "place order") || strings.Contains(t, "buy now") {
		return intent.New(intent.KindPlaceOrder, nil)
	}

	if containsAny(t, "click", "press") {
		ents := map[string]any{}
		if m := clickPattern.FindStringSubmatch(t); m != nil {
			if target := strings.TrimSpace(m[1]); target != "" {
				ents[intent.EntityTarget] = target
			}
		}
		return intent.New(intent.KindClick, ents)
	}

	return intent.New(intent.KindUnknown, map[string]any{intent.EntityRaw: text})
}

func (e *Engine) parseMultiStep(t, raw string) intent.Intent {
	site := extractSite(t)
	if site == "" {
		site = e.defaultSite
	}
	e.ctx.Site = site

	product := extractMultiStepProduct(t)
	if product != "" {
		e.ctx.Product = product
	}

	switch {
	case strings.Contains(t, "place order") || strings.Contains(t, "place the order"):
		return intent.New(intent.KindFullCheckout, map[string]any{
			intent.EntitySite:        site,
			intent.EntityProduct:     product,
			intent.EntitySteps:       []string{"login", "add_to_cart", "checkout", "place_order"},
			intent.EntityVerifyPrice: strings.Contains(t, "verify"),
		})
	case strings.Contains(t, "add") && strings.Contains(t, "cart"):
		return intent.New(intent.KindAddToCartFlow, map[string]any{
			intent.EntitySite:        site,
			intent.EntityProduct:     product,
			intent.EntitySteps:       []string{"login", "add_to_cart"},
			intent.EntityVerifyPrice: strings.Contains(t, "verify"),
		})
	default:
		return intent.New(intent.KindUnknown, map[string]any{intent.EntityRaw: raw})
	}
}

func isMultiStep(t string) bool {
	for _, p := range multiStepPatterns {
		if p.MatchString(t) {
			return true
		}
	}
	return false
}

func extractMultiStepProduct(t string) string {
	p := matchFirst(multiStepProductPatterns, t)
	if p == "" {
		return ""
	}
	if alias, ok := productAliases[strings.ToLower(p)]; ok {
		return alias
	}
	return p
}

// extractQuery pulls the search query: explicit trigger capture first,
// then the last quoted string, then the last two whitespace tokens.
func extractQuery(t string) string {
	if m := queryPattern.FindStringSubmatch(t); m != nil {
		return strings.TrimSpace(m[1])
	}
	if all := quotedPattern.FindAllStringSubmatch(t, -1); len(all) > 0 {
		last := all[len(all)-1]
		for _, g := range last[1:] {
			if g != "" {
				return g
			}
		}
	}
	parts := strings.Fields(t)
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], " ")
	}
	return ""
}

// extractSite resolves a known site keyword or an explicit URL.
func extractSite(t string) string {
	for _, kw := range siteKeywords {
		if strings.Contains(t, kw) {
			return kw
		}
	}
	if m := urlPattern.FindString(t); m != "" {
		return m
	}
	return ""
}

// productStopwords guards the loose trailing patterns: a bare "add to
// cart" must not capture "to" as a product, or context carry-over from
// the previous utterance would be clobbered.
var productStopwords = map[string]struct{}{
	"to": {}, "it": {}, "the": {}, "them": {}, "this": {}, "that": {},
}

func matchFirst(patterns []*regexp.Regexp, t string) string {
	for _, p := range patterns {
		m := p.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if _, stop := productStopwords[candidate]; stop {
			continue
		}
		return candidate
	}
	return ""
}

func containsAny(t string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
