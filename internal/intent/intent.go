// Package intent defines the typed action requests produced by the
// parsers and consumed by the action runner.
package intent

// Kind is the closed set of recognized actions. Unrecognized text maps
// to KindUnknown with the raw utterance preserved in entities.
type Kind string

const (
	KindNavigate      Kind = "navigate"
	KindSearch        Kind = "search"
	KindClick         Kind = "click"
	KindAddToCart     Kind = "add_to_cart"
	KindCheckout      Kind = "checkout"
	KindLogin         Kind = "login"
	KindFillForm      Kind = "fill_form"
	KindPlaceOrder    Kind = "place_order"
	KindFullCheckout  Kind = "full_checkout_flow"
	KindAddToCartFlow Kind = "add_to_cart_flow"
	KindUnknown       Kind = "unknown"
)

// Well-known entity keys.
const (
	EntitySite        = "site"
	EntityQuery       = "query"
	EntityProduct     = "product"
	EntityTarget      = "target"
	EntitySteps       = "steps"
	EntityVerifyPrice = "verify_price"
	EntityRaw         = "raw"
	EntityUseSaved    = "use_saved"
)

// Intent is one structured action request: a kind plus free-form
// entities extracted from the utterance.
type Intent struct {
	Name     Kind           `json:"name"`
	Entities map[string]any `json:"entities"`
}

// New builds an intent, never leaving Entities nil.
func New(name Kind, entities map[string]any) Intent {
	if entities == nil {
		entities = map[string]any{}
	}
	return Intent{Name: name, Entities: entities}
}

// String returns the entity under key when it is a string, else "".
func (i Intent) String(key string) string {
	s, _ := i.Entities[key].(string)
	return s
}

// Bool returns the entity under key as a bool, false when absent.
func (i Intent) Bool(key string) bool {
	v, ok := i.Entities[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Steps returns the ordered step list of a multi-step intent.
func (i Intent) Steps() []string {
	v, ok := i.Entities[EntitySteps]
	if !ok {
		return nil
	}
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// Context carries conversational state across parse calls within one
// session: users issue follow-ups ("add to cart") without repeating
// the product or site. It is an explicit struct, not hidden package
// state, so independent sessions never interfere.
type Context struct {
	Site    string
	Product string
}
